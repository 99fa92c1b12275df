package gym

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

	"github.com/cavos-labs/forma-api/internal/auth"
)

type fakeStore struct {
	Store

	adminExists  bool
	createErr    error
	adminErr     error
	deletedGyms  []string
	createdGym   *Gym
	createdAdmin *Administrator
	admin        *Administrator
	adminFindErr error

	activated       []string
	setActiveErr    error
	resetToken      string
	resetTokenErr   error
	tokenAdmin      *Administrator
	updatedPassword string
}

func (f *fakeStore) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	return f.adminExists, nil
}

func (f *fakeStore) Create(ctx context.Context, p CreateGymParams) (*Gym, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdGym = &Gym{ID: "gym-1", Name: p.Name, Address: p.Address, MonthlyFee: p.MonthlyFee, SinpePhone: p.SinpePhone}
	return f.createdGym, nil
}

func (f *fakeStore) CreateAdmin(ctx context.Context, gymID, email, passwordHash, firstName, lastName, role string) (*Administrator, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.createdAdmin = &Administrator{ID: "admin-1", GymID: gymID, Email: email, PasswordHash: passwordHash, FirstName: firstName, LastName: lastName, Role: role}
	return f.createdAdmin, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.deletedGyms = append(f.deletedGyms, id)
	return nil
}

func (f *fakeStore) FindAdminByEmail(ctx context.Context, email string) (*Administrator, error) {
	if f.adminFindErr != nil {
		return nil, f.adminFindErr
	}
	return f.admin, nil
}

func (f *fakeStore) SetActive(ctx context.Context, id string, active bool) (*Gym, error) {
	if f.setActiveErr != nil {
		return nil, f.setActiveErr
	}
	f.activated = append(f.activated, id)
	return &Gym{ID: id, IsActive: active}, nil
}

func (f *fakeStore) SetResetToken(ctx context.Context, adminID, token string, expiresAt time.Time) error {
	if f.resetTokenErr != nil {
		return f.resetTokenErr
	}
	f.resetToken = token
	return nil
}

func (f *fakeStore) FindAdminByResetToken(ctx context.Context, token string) (*Administrator, error) {
	if f.tokenAdmin == nil || token != f.resetToken {
		return nil, ErrAdminNotFound
	}
	return f.tokenAdmin, nil
}

func (f *fakeStore) UpdateAdminPassword(ctx context.Context, adminID, passwordHash string) error {
	f.updatedPassword = passwordHash
	return nil
}

type fakeResetMailer struct {
	sentTo    string
	sentToken string
	err       error
}

func (f *fakeResetMailer) SendPasswordReset(ctx context.Context, baseResetURL, email, name, token string) error {
	if f.err != nil {
		return f.err
	}
	f.sentTo = email
	f.sentToken = token
	return nil
}

func gymRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/signup", h.Signup)
	router.POST("/auth/signin", h.Signin)
	router.POST("/auth/forgot-password", h.ForgotPassword)
	router.POST("/auth/reset-password", h.ResetPassword)
	router.POST("/api/gyms/:id/activate", h.Activate)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signupBody() map[string]interface{} {
	return map[string]interface{}{
		"email":       "owner@example.com",
		"password":    "supersecret",
		"first_name":  "Luis",
		"last_name":   "Rojas",
		"gym_name":    "Forma Gym",
		"gym_address": "San José",
		"monthly_fee": 25000,
		"sinpe_phone": "8515-7252",
	}
}

func TestSignupCreatesGymAndOwner(t *testing.T) {
	store := &fakeStore{}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/signup", signupBody())

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.createdGym)
	require.NotNil(t, store.createdAdmin)
	require.Equal(t, "owner", store.createdAdmin.Role)
	// Never store the plaintext password.
	require.NotEqual(t, "supersecret", store.createdAdmin.PasswordHash)
	require.Empty(t, store.deletedGyms)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	store := &fakeStore{adminExists: true}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/signup", signupBody())

	require.Equal(t, http.StatusConflict, w.Code)
	require.Nil(t, store.createdGym)
}

func TestSignupCompensatesGymOnAdminFailure(t *testing.T) {
	store := &fakeStore{adminErr: errors.New("insert failed")}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/signup", signupBody())

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, []string{"gym-1"}, store.deletedGyms)
}

func TestSigninSetsSessionCookie(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)

	store := &fakeStore{admin: &Administrator{
		ID: "admin-1", GymID: "gym-1", Email: "owner@example.com",
		PasswordHash: hash, FirstName: "Luis", LastName: "Rojas", Role: "owner",
	}}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/signin", map[string]string{
		"email":    "owner@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.SessionCookie {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)

	claims, err := auth.ValidateSessionToken(sessionCookie.Value, "jwt-secret")
	require.NoError(t, err)
	require.Equal(t, "gym-1", claims.GymID)
}

func TestForgotPasswordEmailsToken(t *testing.T) {
	store := &fakeStore{admin: &Administrator{
		ID: "admin-1", Email: "owner@example.com", FirstName: "Luis",
	}}
	mailer := &fakeResetMailer{}
	h := NewHandlerWithStore(store, "jwt-secret", mailer, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/forgot-password", map[string]string{
		"email": "owner@example.com",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, store.resetToken)
	require.Equal(t, "owner@example.com", mailer.sentTo)
	require.Equal(t, store.resetToken, mailer.sentToken)
}

// The response for an unknown email must match the known-email response, so
// the endpoint cannot confirm which addresses have accounts.
func TestForgotPasswordHidesUnknownEmail(t *testing.T) {
	store := &fakeStore{adminFindErr: ErrAdminNotFound}
	mailer := &fakeResetMailer{}
	h := NewHandlerWithStore(store, "jwt-secret", mailer, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/forgot-password", map[string]string{
		"email": "nobody@example.com",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "If an account with this email exists")
	require.Empty(t, mailer.sentTo)
}

func TestResetPasswordWithValidToken(t *testing.T) {
	store := &fakeStore{
		resetToken: "tok-1",
		tokenAdmin: &Administrator{ID: "admin-1", Email: "owner@example.com"},
	}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/reset-password", map[string]string{
		"token":    "tok-1",
		"password": "newsecret99",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, store.updatedPassword)
	require.NotEqual(t, "newsecret99", store.updatedPassword)
	require.True(t, auth.CheckPassword(store.updatedPassword, "newsecret99"))
}

func TestResetPasswordRejectsBadToken(t *testing.T) {
	store := &fakeStore{resetToken: "tok-1", tokenAdmin: &Administrator{ID: "admin-1"}}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/reset-password", map[string]string{
		"token":    "stale",
		"password": "newsecret99",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, store.updatedPassword)
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	store := &fakeStore{resetToken: "tok-1", tokenAdmin: &Administrator{ID: "admin-1"}}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/reset-password", map[string]string{
		"token":    "tok-1",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, store.updatedPassword)
}

// Activation is addressed by the path segment alone; no body is needed.
func TestActivateUsesPathParam(t *testing.T) {
	store := &fakeStore{}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	gymID := "0b2a2c4e-9a1f-4e6d-8f3a-1c2d3e4f5a6b"
	req, _ := http.NewRequest("POST", "/api/gyms/"+gymID+"/activate", nil)
	w := httptest.NewRecorder()
	gymRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{gymID}, store.activated)
}

func TestActivateRejectsMalformedID(t *testing.T) {
	store := &fakeStore{}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	req, _ := http.NewRequest("POST", "/api/gyms/not-a-uuid/activate", nil)
	w := httptest.NewRecorder()
	gymRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, store.activated)
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)

	store := &fakeStore{admin: &Administrator{ID: "admin-1", PasswordHash: hash}}
	h := NewHandlerWithStore(store, "jwt-secret", &fakeResetMailer{}, "https://formacr.com/reset-password")

	w := postJSON(t, gymRouter(h), "/auth/signin", map[string]string{
		"email":    "owner@example.com",
		"password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
