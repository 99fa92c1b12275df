package sweep

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/logger"
)

type Handler struct {
	job *Job
}

func NewHandler(job *Job) *Handler {
	return &Handler{job: job}
}

// CheckExpired runs the daily membership sweep.
func (h *Handler) CheckExpired(c *gin.Context) {
	summary, err := h.job.Run(c.Request.Context())
	if err != nil {
		logger.Errorf("Membership sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Membership check failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
