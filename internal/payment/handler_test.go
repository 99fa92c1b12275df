package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cavos-labs/forma-api/internal/membership"
)

var errTest = errors.New("boom")

type fakePaymentStore struct {
	Store

	updated *StatusUpdate
	payment *Payment
	err     error
}

func (f *fakePaymentStore) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Payment, error) {
	f.updated = &update
	if f.err != nil {
		return nil, f.err
	}
	p := *f.payment
	p.Status = update.Status
	return &p, nil
}

type fakeMembershipStore struct {
	membership.Store

	activated      []string
	activatedStart time.Time
	activatedEnd   time.Time
	activatedGrace time.Time
	detail         *membership.Detail
}

func (f *fakeMembershipStore) Activate(ctx context.Context, id string, startDate, endDate, gracePeriodEnd time.Time) error {
	f.activated = append(f.activated, id)
	f.activatedStart = startDate
	f.activatedEnd = endDate
	f.activatedGrace = gracePeriodEnd
	return nil
}

func (f *fakeMembershipStore) GetDetail(ctx context.Context, id string) (*membership.Detail, error) {
	return f.detail, nil
}

type fakeNotifier struct {
	configured bool
	sent       [][4]string
	err        error
}

func (f *fakeNotifier) Configured() bool { return f.configured }

func (f *fakeNotifier) SendMembershipReminder(phone, gymName, membershipID, paymentID string) error {
	f.sent = append(f.sent, [4]string{phone, gymName, membershipID, paymentID})
	return f.err
}

func updateStatusRequest(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest("PUT", "/payments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func paymentRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/payments", h.UpdateStatus)
	return router
}

func pendingPayment() *Payment {
	return &Payment{
		ID:           "pay-1",
		MembershipID: "mem-1",
		Amount:       25000,
		Status:       StatusPending,
	}
}

func memberDetail(phone string) *membership.Detail {
	d := &membership.Detail{}
	d.ID = "mem-1"
	d.GymName = "Forma Gym"
	if phone != "" {
		d.UserPhone = &phone
	}
	return d
}

func TestUpdateStatusApprovalActivatesMembership(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	payments := &fakePaymentStore{payment: pendingPayment()}
	memberships := &fakeMembershipStore{detail: memberDetail("+50685157252")}
	notifier := &fakeNotifier{configured: true}

	h := NewHandlerWithStores(payments, memberships, notifier, func() time.Time { return now })
	w := updateStatusRequest(t, paymentRouter(h), map[string]string{
		"paymentId":  "pay-1",
		"status":     "approved",
		"approvedBy": "admin@formacr.com",
	})

	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, []string{"mem-1"}, memberships.activated)
	require.Equal(t, now, memberships.activatedStart)
	require.Equal(t, now.AddDate(0, 0, 30), memberships.activatedEnd)
	require.Equal(t, now.AddDate(0, 0, 33), memberships.activatedGrace)

	require.NotNil(t, payments.updated.ApprovedDate)
	require.Equal(t, "admin@formacr.com", *payments.updated.ApprovedBy)
	require.Nil(t, payments.updated.RejectionReason)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "+50685157252", notifier.sent[0][0])
	require.Equal(t, "pay-1", notifier.sent[0][3])

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "whatsapp notification sent", resp["notification"])
}

func TestUpdateStatusRejectionSkipsActivation(t *testing.T) {
	payments := &fakePaymentStore{payment: pendingPayment()}
	memberships := &fakeMembershipStore{detail: memberDetail("")}
	notifier := &fakeNotifier{configured: true}

	h := NewHandlerWithStores(payments, memberships, notifier, nil)
	w := updateStatusRequest(t, paymentRouter(h), map[string]string{
		"paymentId":       "pay-1",
		"status":          "rejected",
		"rejectionReason": "amount does not match",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, memberships.activated)
	require.Empty(t, notifier.sent)
	require.Equal(t, "amount does not match", *payments.updated.RejectionReason)
	require.Nil(t, payments.updated.ApprovedDate)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := NewHandlerWithStores(&fakePaymentStore{payment: pendingPayment()}, &fakeMembershipStore{}, nil, nil)
	w := updateStatusRequest(t, paymentRouter(h), map[string]string{
		"paymentId": "pay-1",
		"status":    "refunded",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusApprovalWithoutPhoneSkipsWhatsApp(t *testing.T) {
	payments := &fakePaymentStore{payment: pendingPayment()}
	memberships := &fakeMembershipStore{detail: memberDetail("")}
	notifier := &fakeNotifier{configured: true}

	h := NewHandlerWithStores(payments, memberships, notifier, nil)
	w := updateStatusRequest(t, paymentRouter(h), map[string]string{
		"paymentId": "pay-1",
		"status":    "approved",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, memberships.activated, 1)
	require.Empty(t, notifier.sent)
}

func TestUpdateStatusApprovalSurvivesWhatsAppFailure(t *testing.T) {
	payments := &fakePaymentStore{payment: pendingPayment()}
	memberships := &fakeMembershipStore{detail: memberDetail("+50685157252")}
	notifier := &fakeNotifier{configured: true, err: errTest}

	h := NewHandlerWithStores(payments, memberships, notifier, nil)
	w := updateStatusRequest(t, paymentRouter(h), map[string]string{
		"paymentId": "pay-1",
		"status":    "approved",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "whatsapp notification failed", resp["notification"])
}
