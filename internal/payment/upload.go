package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/membership"
	"github.com/cavos-labs/forma-api/internal/metrics"
)

const maxProofSize = 5 * 1024 * 1024

var allowedProofTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ProofStorage is the slice of the object store the upload handler needs.
type ProofStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type UploadHandler struct {
	repo        Store
	memberships membership.Store
	storage     ProofStorage
	now         func() time.Time
}

func NewUploadHandler(repo Store, memberships membership.Store, storage ProofStorage) *UploadHandler {
	return &UploadHandler{repo: repo, memberships: memberships, storage: storage, now: time.Now}
}

// Upload accepts a SINPE proof image and creates a pending payment. All
// validation happens before anything touches storage or the database; a
// failed row insert deletes the object it orphaned.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required fields: file and membershipId"})
		return
	}

	membershipID := c.PostForm("membershipId")
	if membershipID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required fields: file and membershipId"})
		return
	}
	if uuid.Validate(membershipID) != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedProofTypes[contentType] {
		metrics.RecordProofUpload("rejected_type")
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Only image files are allowed (JPEG, PNG, WebP)"})
		return
	}

	if fileHeader.Size > maxProofSize {
		metrics.RecordProofUpload("rejected_size")
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "File size must be less than 5MB"})
		return
	}

	ctx := c.Request.Context()

	detail, err := h.memberships.GetDetail(ctx, membershipID)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxProofSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to read uploaded file"})
		return
	}
	if len(data) > maxProofSize {
		metrics.RecordProofUpload("rejected_size")
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "File size must be less than 5MB"})
		return
	}

	key := fmt.Sprintf("payment-proof-%s-%d%s", membershipID, h.now().UnixMilli(), filepath.Ext(fileHeader.Filename))

	proofURL, err := h.storage.Put(ctx, key, data, contentType)
	if err != nil {
		logger.Errorf("Proof upload failed: %v", err)
		metrics.RecordProofUpload("storage_failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to upload payment proof"})
		return
	}

	params := CreateParams{
		MembershipID:    membershipID,
		Amount:          detail.MonthlyFee,
		PaymentProofURL: &proofURL,
	}
	if ref := c.PostForm("sinpeReference"); ref != "" {
		params.SinpeReference = &ref
	}
	if phone := c.PostForm("sinpePhone"); phone != "" {
		params.SinpePhone = &phone
	}

	pay, err := h.repo.Create(ctx, params)
	if err != nil {
		logger.Errorf("Payment creation failed, removing proof %s: %v", key, err)
		if delErr := h.storage.Delete(ctx, key); delErr != nil {
			logger.Errorf("Compensating proof delete failed for %s: %v", key, delErr)
		}
		metrics.RecordProofUpload("db_failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create payment record"})
		return
	}

	metrics.RecordProofUpload("ok")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": pay,
		"message": "Payment proof uploaded successfully. Awaiting approval.",
	})
}
