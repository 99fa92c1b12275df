package gym

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/auth"
	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/metrics"
)

// ResetMailer delivers the password reset link. Satisfied by the
// notification email service.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, baseResetURL, email, name, token string) error
}

type Handler struct {
	repo         Store
	jwtSecret    string
	mailer       ResetMailer
	resetBaseURL string
}

func NewHandler(db *sqlx.DB, jwtSecret string, mailer ResetMailer, resetBaseURL string) *Handler {
	return &Handler{repo: NewRepository(db), jwtSecret: jwtSecret, mailer: mailer, resetBaseURL: resetBaseURL}
}

func NewHandlerWithStore(repo Store, jwtSecret string, mailer ResetMailer, resetBaseURL string) *Handler {
	return &Handler{repo: repo, jwtSecret: jwtSecret, mailer: mailer, resetBaseURL: resetBaseURL}
}

// Signup creates the gym and its owner login. The two inserts are not a
// transaction; a failed admin insert deletes the gym it orphaned.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()

	exists, err := h.repo.AdminEmailExists(ctx, req.Email)
	if err != nil {
		logger.Errorf("Admin email check failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "An account with this email already exists"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	params := CreateGymParams{
		Name:       req.GymName,
		Address:    req.GymAddress,
		MonthlyFee: req.MonthlyFee,
		SinpePhone: req.SinpePhone,
	}
	if req.GymPhone != "" {
		params.Phone = &req.GymPhone
	}
	if req.GymEmail != "" {
		params.Email = &req.GymEmail
	}

	g, err := h.repo.Create(ctx, params)
	if err != nil {
		logger.Errorf("Gym creation failed: %v", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Failed to create gym record"})
		return
	}

	admin, err := h.repo.CreateAdmin(ctx, g.ID, req.Email, passwordHash, req.FirstName, req.LastName, "owner")
	if err != nil {
		logger.Errorf("Admin creation failed, removing gym %s: %v", g.ID, err)
		if delErr := h.repo.Delete(ctx, g.ID); delErr != nil {
			logger.Errorf("Compensating gym delete failed for %s: %v", g.ID, delErr)
		}
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Failed to create administrator record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  admin.ID,
		"gymId":   g.ID,
		"message": "Registration successful. Please complete payment to activate your gym.",
	})
}

func (h *Handler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()

	admin, err := h.repo.FindAdminByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, err := auth.GenerateSessionToken(admin.ID, admin.GymID, admin.Email, admin.Role, h.jwtSecret)
	if err != nil {
		logger.Errorf("Session token generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"admin": gin.H{
			"id":         admin.ID,
			"email":      admin.Email,
			"first_name": admin.FirstName,
			"last_name":  admin.LastName,
			"gym_id":     admin.GymID,
			"role":       admin.Role,
		},
	})
}

func (h *Handler) Signout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Signed out"})
}

const resetTokenTTL = time.Hour

// ForgotPassword issues a reset token and mails the link. The response is
// the same whether or not the email has an account, so the endpoint cannot
// be used to discover registered addresses.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "A valid email is required"})
		return
	}

	ctx := c.Request.Context()
	genericResponse := gin.H{
		"success": true,
		"message": "If an account with this email exists, you will receive a password reset link.",
	}

	admin, err := h.repo.FindAdminByEmail(ctx, req.Email)
	if err != nil {
		if err != ErrAdminNotFound {
			logger.Errorf("Admin lookup for password reset failed: %v", err)
		}
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	token, err := newResetToken()
	if err != nil {
		logger.Errorf("Reset token generation failed: %v", err)
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	if err := h.repo.SetResetToken(ctx, admin.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		logger.Errorf("Storing reset token for %s failed: %v", admin.ID, err)
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	if err := h.mailer.SendPasswordReset(ctx, h.resetBaseURL, admin.Email, admin.FirstName, token); err != nil {
		logger.Errorf("Reset email for %s failed: %v", admin.Email, err)
	}

	c.JSON(http.StatusOK, genericResponse)
}

// ResetPassword trades a valid token for a new password hash.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Token and a password of at least 8 characters are required"})
		return
	}

	ctx := c.Request.Context()

	admin, err := h.repo.FindAdminByResetToken(ctx, req.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid or expired reset token"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	if err := h.repo.UpdateAdminPassword(ctx, admin.ID, passwordHash); err != nil {
		logger.Errorf("Password update for %s failed: %v", admin.ID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password has been reset successfully. You can now sign in with your new password.",
	})
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Status reports the authenticated session and the gym's billing state.
func (h *Handler) Status(c *gin.Context) {
	gymID, ok := auth.GetGymID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
		return
	}

	g, err := h.repo.GetByID(c.Request.Context(), gymID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "gym": g})
}

func (h *Handler) Get(c *gin.Context) {
	g, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Gym not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "gym": g})
}

// Activate flips the billing flag directly. Normally Stripe's webhook does
// this; the endpoint exists for manual activation.
func (h *Handler) Activate(c *gin.Context) {
	gymID := c.Param("id")
	if uuid.Validate(gymID) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid gym id"})
		return
	}

	g, err := h.repo.SetActive(c.Request.Context(), gymID, true)
	if err != nil {
		if err == ErrGymNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Gym not found"})
			return
		}
		logger.Errorf("Gym activation failed for %s: %v", gymID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to activate gym"})
		return
	}

	metrics.RecordGymActivation()
	logger.Infof("Gym activated: %s", g.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gym activated successfully",
		"gym":     g,
	})
}
