package payment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/membership"
	"github.com/cavos-labs/forma-api/internal/metrics"
)

// ActivationNotifier sends the WhatsApp activation message. Failures are
// logged and surfaced informationally, never propagated.
type ActivationNotifier interface {
	Configured() bool
	SendMembershipReminder(phone, gymName, membershipID, paymentID string) error
}

type Handler struct {
	repo        Store
	memberships membership.Store
	whatsapp    ActivationNotifier
	now         func() time.Time
}

func NewHandler(db *sqlx.DB, whatsapp ActivationNotifier) *Handler {
	return &Handler{
		repo:        NewRepository(db),
		memberships: membership.NewRepository(db),
		whatsapp:    whatsapp,
		now:         time.Now,
	}
}

func NewHandlerWithStores(repo Store, memberships membership.Store, whatsapp ActivationNotifier, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{repo: repo, memberships: memberships, whatsapp: whatsapp, now: now}
}

func (h *Handler) List(c *gin.Context) {
	gymID := c.Query("gymId")
	if gymID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "gymId parameter is required"})
		return
	}

	filter := ListFilter{
		GymID:        gymID,
		Status:       c.Query("status"),
		MembershipID: c.Query("membershipId"),
		Limit:        queryInt(c, "limit", 50),
		Offset:       queryInt(c, "offset", 0),
	}

	payments, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		logger.Errorf("Payments fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"payments":   payments,
		"pagination": api.Pagination{Limit: filter.Limit, Offset: filter.Offset, Total: len(payments)},
	})
}

// UpdateStatus approves, rejects, or otherwise re-stamps a payment. There
// is deliberately no guard on the prior status; the back office owns that
// judgement call.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required fields: paymentId and status"})
		return
	}

	status := Status(req.Status)
	if !ValidStatus(status) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid status. Must be one of: pending, approved, rejected, cancelled"})
		return
	}

	ctx := c.Request.Context()
	now := h.now()

	update := StatusUpdate{Status: status}
	if req.Notes != "" {
		update.Notes = &req.Notes
	}
	switch status {
	case StatusApproved:
		update.ApprovedDate = &now
		if req.ApprovedBy != "" {
			update.ApprovedBy = &req.ApprovedBy
		}
		// rejection fields stay nil: approval wipes them
	case StatusRejected:
		if req.RejectionReason != "" {
			update.RejectionReason = &req.RejectionReason
		}
		// approval fields stay nil: rejection wipes them
	}

	pay, err := h.repo.UpdateStatus(ctx, req.PaymentID, update)
	if err != nil {
		if err == ErrPaymentNotFound {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Payment not found"})
			return
		}
		logger.Errorf("Payment update failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update payment"})
		return
	}

	metrics.RecordPayment(string(status))

	response := gin.H{
		"success": true,
		"payment": pay,
		"message": "Payment " + string(status) + " successfully",
	}

	if status == StatusApproved {
		if notice := h.applyApproval(c, pay); notice != "" {
			response["notification"] = notice
		}
	}

	c.JSON(http.StatusOK, response)
}

// applyApproval runs the lifecycle transition for an approved payment and
// best-effort notifies the member. Returns an informational note for the
// response body.
func (h *Handler) applyApproval(c *gin.Context, pay *Payment) string {
	ctx := c.Request.Context()
	now := h.now()

	startDate, endDate, graceEnd := membership.RenewalWindow(now)
	if err := h.memberships.Activate(ctx, pay.MembershipID, startDate, endDate, graceEnd); err != nil {
		logger.Errorf("Membership activation failed for %s: %v", pay.MembershipID, err)
		return "membership activation failed"
	}

	detail, err := h.memberships.GetDetail(ctx, pay.MembershipID)
	if err != nil {
		logger.Errorf("Membership detail fetch failed for %s: %v", pay.MembershipID, err)
		return ""
	}

	if detail.UserPhone == nil || *detail.UserPhone == "" {
		return ""
	}
	if h.whatsapp == nil || !h.whatsapp.Configured() {
		return "whatsapp not configured"
	}

	if err := h.whatsapp.SendMembershipReminder(*detail.UserPhone, detail.GymName, detail.ID, pay.ID); err != nil {
		logger.Errorf("WhatsApp notification failed for membership %s: %v", detail.ID, err)
		return "whatsapp notification failed"
	}

	return "whatsapp notification sent"
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
