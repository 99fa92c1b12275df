package user

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/logger"
)

type Handler struct {
	repo Store
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func NewHandlerWithStore(repo Store) *Handler {
	return &Handler{repo: repo}
}

// Create registers a member record. Duplicate emails are a conflict, not an
// upsert.
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()

	exists, err := h.repo.EmailExists(ctx, req.Email)
	if err != nil {
		logger.Errorf("User email check failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create user record"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "User with this email already exists"})
		return
	}

	params, err := paramsFromCreate(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	u, err := h.repo.Create(ctx, params)
	if err != nil {
		logger.Errorf("User creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create user record"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    u,
		"message": "User registered successfully",
	})
}

func (h *Handler) Get(c *gin.Context) {
	u, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.repo.FindByID(ctx, id); err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
		return
	}

	params := CreateParams{
		UID:             req.UID,
		Phone:           req.Phone,
		ProfileImageURL: req.ProfileImageURL,
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date_of_birth must be YYYY-MM-DD"})
			return
		}
		params.DateOfBirth = &dob
	}

	u, err := h.repo.Update(ctx, id, params)
	if err != nil {
		logger.Errorf("User update failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update user record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *Handler) List(c *gin.Context) {
	gymID := c.Query("gymId")
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	users, err := h.repo.List(c.Request.Context(), gymID, limit, offset)
	if err != nil {
		logger.Errorf("Users fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"users":      users,
		"pagination": api.Pagination{Limit: limit, Offset: offset, Total: len(users)},
	})
}

func paramsFromCreate(req CreateUserRequest) (CreateParams, error) {
	params := CreateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.UID != "" {
		params.UID = &req.UID
	}
	if req.Phone != "" {
		params.Phone = &req.Phone
	}
	if req.ProfileImageURL != "" {
		params.ProfileImageURL = &req.ProfileImageURL
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return params, err
		}
		params.DateOfBirth = &dob
	}
	return params, nil
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
