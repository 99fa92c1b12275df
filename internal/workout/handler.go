package workout

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/logger"
)

type Handler struct {
	repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// List returns a gym's workouts, optionally narrowed to one month with
// year and month query parameters.
func (h *Handler) List(c *gin.Context) {
	gymID := c.Query("gym_id")
	if gymID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "gym_id is required"})
		return
	}

	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	if month < 0 || month > 12 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "month must be between 1 and 12"})
		return
	}

	workouts, err := h.repo.ListByMonth(c.Request.Context(), gymID, year, month)
	if err != nil {
		logger.Errorf("Workout list failed for gym %s: %v", gymID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch workouts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workouts": workouts})
}

// Upsert creates the workout for a date or replaces its text if one exists.
func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.WorkoutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "workout_date must be YYYY-MM-DD"})
		return
	}

	w, err := h.repo.Upsert(c.Request.Context(), req.GymID, date, strings.TrimSpace(req.WorkoutText))
	if err != nil {
		logger.Errorf("Workout upsert failed for gym %s: %v", req.GymID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to save workout"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"workout": w})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	w, err := h.repo.UpdateText(c.Request.Context(), req.ID, strings.TrimSpace(req.WorkoutText))
	if errors.Is(err, ErrWorkoutNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Workout not found"})
		return
	}
	if err != nil {
		logger.Errorf("Workout update failed for %s: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update workout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workout": w})
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "id is required"})
		return
	}

	err := h.repo.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrWorkoutNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Workout not found"})
		return
	}
	if err != nil {
		logger.Errorf("Workout delete failed for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete workout"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Workout deleted successfully"})
}
