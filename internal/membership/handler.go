package membership

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/notification"
)

// ReminderSender mirrors the WhatsApp sender without importing it, so the
// handler can be exercised with a fake.
type ReminderSender interface {
	Configured() bool
	SendMembershipReminder(phone, gymName, membershipID, paymentID string) error
}

type Handler struct {
	repo     Store
	service  *Service
	mailer   InstructionMailer
	whatsapp ReminderSender

	uploadBaseURL string
}

func NewHandler(repo Store, service *Service, mailer InstructionMailer, whatsapp ReminderSender, uploadBaseURL string) *Handler {
	return &Handler{
		repo:          repo,
		service:       service,
		mailer:        mailer,
		whatsapp:      whatsapp,
		uploadBaseURL: uploadBaseURL,
	}
}

// Register onboards a member into a gym.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrGymNotFound:
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
		case ErrGymInactive:
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Gym is not active"})
		case ErrEmailExists:
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "User with this email already exists"})
		case ErrInvalidDate:
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			logger.Errorf("Member registration failed: %v", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"user":         result.User,
		"membership":   result.Membership,
		"notification": result.EmailNote,
		"message":      "Member registered successfully. Awaiting payment.",
	})
}

type listItem struct {
	Detail
	LatestPayment *LatestPayment `json:"latest_payment"`
}

// List returns a gym's memberships, newest first, each with its latest
// payment attached.
func (h *Handler) List(c *gin.Context) {
	gymID := c.Query("gymId")
	if gymID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "gymId parameter is required"})
		return
	}

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	ctx := c.Request.Context()

	memberships, err := h.repo.ListByGym(ctx, gymID, c.Query("status"), limit, offset)
	if err != nil {
		logger.Errorf("Memberships fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch memberships"})
		return
	}

	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.ID
	}

	latest, err := h.repo.LatestPaymentsFor(ctx, ids)
	if err != nil {
		// List still renders without payment data.
		logger.Errorf("Latest payments fetch failed: %v", err)
		latest = map[string]*LatestPayment{}
	}

	items := make([]listItem, len(memberships))
	for i, m := range memberships {
		items[i] = listItem{Detail: m, LatestPayment: latest[m.ID]}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"memberships": items,
		"pagination":  api.Pagination{Limit: limit, Offset: offset, Total: len(items)},
	})
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	// Reject malformed ids before they reach the uuid cast in Postgres.
	if uuid.Validate(id) != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership id"})
		return
	}

	detail, err := h.repo.GetDetail(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "membership": detail})
}

type sendPaymentLinkRequest struct {
	MembershipID string `json:"membershipId" binding:"required"`
	SendEmail    bool   `json:"sendEmail"`
	SendWhatsApp *bool  `json:"sendWhatsApp"`
}

type channelResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SendPaymentLink re-sends payment instructions over email and/or WhatsApp.
// Active memberships have nothing to pay; the request is refused.
func (h *Handler) SendPaymentLink(c *gin.Context) {
	var req sendPaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required field: membershipId"})
		return
	}

	sendWhatsApp := true
	if req.SendWhatsApp != nil {
		sendWhatsApp = *req.SendWhatsApp
	}

	ctx := c.Request.Context()

	detail, err := h.repo.GetDetail(ctx, req.MembershipID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		return
	}

	if detail.Status == StatusActive {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Cannot send payment link for active membership"})
		return
	}

	// A pending membership may not have a payment row yet; the upload page
	// handles a missing paymentId.
	paymentID := ""
	if latest, err := h.repo.LatestPaymentsFor(ctx, []string{detail.ID}); err == nil && latest[detail.ID] != nil {
		paymentID = latest[detail.ID].ID
	}

	results := gin.H{"email": nil, "whatsapp": nil}

	if req.SendEmail && h.mailer != nil {
		res := channelResult{Success: true}
		err := h.mailer.SendPaymentInstructions(ctx, h.uploadBaseURL, notification.PaymentInstructions{
			UserEmail:    detail.UserEmail,
			UserName:     detail.UserFirstName + " " + detail.UserLastName,
			GymName:      detail.GymName,
			SinpePhone:   detail.GymSinpePhone,
			MonthlyFee:   detail.MonthlyFee,
			MembershipID: detail.ID,
			PaymentID:    paymentID,
		})
		if err != nil {
			logger.Errorf("Payment link email failed for membership %s: %v", detail.ID, err)
			res = channelResult{Success: false, Error: err.Error()}
		}
		results["email"] = res
	}

	if sendWhatsApp && h.whatsapp != nil && h.whatsapp.Configured() {
		res := channelResult{Success: true}
		if detail.UserPhone == nil || *detail.UserPhone == "" {
			res = channelResult{Success: false, Error: "member has no phone number"}
		} else if err := h.whatsapp.SendMembershipReminder(*detail.UserPhone, detail.GymName, detail.ID, paymentID); err != nil {
			logger.Errorf("Payment link WhatsApp failed for membership %s: %v", detail.ID, err)
			res = channelResult{Success: false, Error: err.Error()}
		}
		results["whatsapp"] = res
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
		"message": "Payment link dispatch attempted",
	})
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
