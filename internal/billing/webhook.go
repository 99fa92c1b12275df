package billing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/cavos-labs/forma-api/internal/api"
	"github.com/cavos-labs/forma-api/internal/gym"
	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/metrics"
)

const maxWebhookBody = 64 * 1024

// SubscriptionResolver fetches the subscription a recurring invoice belongs
// to. Invoices carry the subscription id but not its metadata.
type SubscriptionResolver interface {
	GetSubscription(id string) (*stripe.Subscription, error)
}

type Handler struct {
	gyms          gym.Store
	subscriptions SubscriptionResolver
	webhookSecret string
}

func NewHandler(gyms gym.Store, subscriptions SubscriptionResolver, webhookSecret string) *Handler {
	return &Handler{
		gyms:          gyms,
		subscriptions: subscriptions,
		webhookSecret: webhookSecret,
	}
}

// Webhook receives Stripe events. The signature is verified against the raw
// body before anything is parsed.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Failed to read request body"})
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.Errorf("Stripe signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid signature"})
		return
	}

	status, resp := h.HandleEvent(c.Request.Context(), event)
	c.JSON(status, resp)
}

// HandleEvent dispatches a verified event. Unknown event types are
// acknowledged so Stripe stops retrying them.
func (h *Handler) HandleEvent(ctx context.Context, event stripe.Event) (int, gin.H) {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return http.StatusBadRequest, gin.H{"error": "Invalid checkout session payload"}
		}

		gymID := session.Metadata["gymId"]
		if gymID == "" {
			logger.Errorf("Checkout session %s has no gymId metadata", session.ID)
			return http.StatusBadRequest, gin.H{"error": "Missing gymId in session metadata"}
		}

		if err := h.activateGym(ctx, gymID); err != nil {
			return http.StatusInternalServerError, gin.H{"error": "Failed to activate gym"}
		}
		logger.Infof("Gym %s activated via checkout session %s", gymID, session.ID)

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return http.StatusBadRequest, gin.H{"error": "Invalid invoice payload"}
		}

		gymID, err := h.gymIDForInvoice(&invoice)
		if err != nil {
			logger.Errorf("Resolving gym for invoice %s failed: %v", invoice.ID, err)
			return http.StatusInternalServerError, gin.H{"error": "Failed to resolve subscription"}
		}
		if gymID == "" {
			// One-off invoices without a gym subscription are not ours to act on.
			logger.Infof("Invoice %s has no gym subscription, ignoring", invoice.ID)
			break
		}

		if err := h.activateGym(ctx, gymID); err != nil {
			return http.StatusInternalServerError, gin.H{"error": "Failed to activate gym"}
		}
		logger.Infof("Gym %s subscription renewed via invoice %s", gymID, invoice.ID)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return http.StatusBadRequest, gin.H{"error": "Invalid invoice payload"}
		}
		customer := ""
		if invoice.Customer != nil {
			customer = invoice.Customer.ID
		}
		// Deactivation is a manual decision; the failure is only recorded.
		logger.Errorf("Stripe payment failed for invoice %s, customer %s", invoice.ID, customer)

	default:
		logger.Debugf("Unhandled Stripe event type %s", event.Type)
	}

	return http.StatusOK, gin.H{"received": true}
}

func (h *Handler) activateGym(ctx context.Context, gymID string) error {
	if _, err := h.gyms.SetActive(ctx, gymID, true); err != nil {
		logger.Errorf("Gym activation failed for %s: %v", gymID, err)
		return err
	}
	metrics.RecordGymActivation()
	return nil
}

func (h *Handler) gymIDForInvoice(invoice *stripe.Invoice) (string, error) {
	if invoice.Subscription == nil {
		return "", nil
	}
	if gymID := invoice.Subscription.Metadata["gymId"]; gymID != "" {
		return gymID, nil
	}
	if h.subscriptions == nil {
		return "", nil
	}

	sub, err := h.subscriptions.GetSubscription(invoice.Subscription.ID)
	if err != nil {
		return "", err
	}
	return sub.Metadata["gymId"], nil
}
