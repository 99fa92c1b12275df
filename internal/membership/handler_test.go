package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errFake = errors.New("channel down")

type fakeDetailStore struct {
	Store

	detail  *Detail
	err     error
	latest  map[string]*LatestPayment
	listErr error
}

func (f *fakeDetailStore) GetDetail(ctx context.Context, id string) (*Detail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeDetailStore) LatestPaymentsFor(ctx context.Context, ids []string) (map[string]*LatestPayment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.latest, nil
}

type fakeReminder struct {
	configured bool
	sent       []string
	err        error
}

func (f *fakeReminder) Configured() bool { return f.configured }

func (f *fakeReminder) SendMembershipReminder(phone, gymName, membershipID, paymentID string) error {
	f.sent = append(f.sent, phone)
	return f.err
}

func paymentLinkRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/send-payment-link", h.SendPaymentLink)
	return router
}

func sendPaymentLink(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", "/send-payment-link", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pendingDetail() *Detail {
	phone := "+50688889999"
	d := &Detail{}
	d.ID = "mem-1"
	d.Status = StatusPendingPayment
	d.MonthlyFee = 25000
	d.UserEmail = "ana@example.com"
	d.UserFirstName = "Ana"
	d.UserLastName = "Mora"
	d.UserPhone = &phone
	d.GymName = "Forma Gym"
	d.GymSinpePhone = "+50685157252"
	return d
}

func TestSendPaymentLinkDispatchesBothChannels(t *testing.T) {
	store := &fakeDetailStore{
		detail: pendingDetail(),
		latest: map[string]*LatestPayment{"mem-1": {ID: "pay-1", MembershipID: "mem-1"}},
	}
	mailer := &fakeMailer{}
	whatsapp := &fakeReminder{configured: true}

	h := NewHandler(store, nil, mailer, whatsapp, "https://formacr.com/upload-payment")
	w := sendPaymentLink(t, paymentLinkRouter(h), map[string]interface{}{
		"membershipId": "mem-1",
		"sendEmail":    true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "pay-1", mailer.sent[0].PaymentID)
	require.Equal(t, []string{"+50688889999"}, whatsapp.sent)
}

func TestSendPaymentLinkRefusesActiveMembership(t *testing.T) {
	d := pendingDetail()
	d.Status = StatusActive

	h := NewHandler(&fakeDetailStore{detail: d}, nil, &fakeMailer{}, &fakeReminder{configured: true}, "")
	w := sendPaymentLink(t, paymentLinkRouter(h), map[string]interface{}{
		"membershipId": "mem-1",
		"sendEmail":    true,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendPaymentLinkUnknownMembership(t *testing.T) {
	h := NewHandler(&fakeDetailStore{err: ErrMembershipNotFound}, nil, &fakeMailer{}, &fakeReminder{}, "")
	w := sendPaymentLink(t, paymentLinkRouter(h), map[string]interface{}{
		"membershipId": "missing",
		"sendEmail":    true,
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendPaymentLinkWhatsAppOptOut(t *testing.T) {
	store := &fakeDetailStore{detail: pendingDetail(), latest: map[string]*LatestPayment{}}
	whatsapp := &fakeReminder{configured: true}
	sendWhatsApp := false

	h := NewHandler(store, nil, &fakeMailer{}, whatsapp, "")
	w := sendPaymentLink(t, paymentLinkRouter(h), map[string]interface{}{
		"membershipId": "mem-1",
		"sendEmail":    true,
		"sendWhatsApp": sendWhatsApp,
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, whatsapp.sent)
}

func TestSendPaymentLinkReportsChannelFailures(t *testing.T) {
	store := &fakeDetailStore{
		detail: pendingDetail(),
		latest: map[string]*LatestPayment{"mem-1": {ID: "pay-1"}},
	}
	mailer := &fakeMailer{err: errFake}
	whatsapp := &fakeReminder{configured: true, err: errFake}

	h := NewHandler(store, nil, mailer, whatsapp, "")
	w := sendPaymentLink(t, paymentLinkRouter(h), map[string]interface{}{
		"membershipId": "mem-1",
		"sendEmail":    true,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Results struct {
			Email    *struct{ Success bool } `json:"email"`
			WhatsApp *struct{ Success bool } `json:"whatsapp"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Results.Email)
	require.False(t, resp.Results.Email.Success)
	require.NotNil(t, resp.Results.WhatsApp)
	require.False(t, resp.Results.WhatsApp.Success)
}
