package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	payapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
)

// Maximum webhook payload size (64KB - provider webhooks are small)
const maxWebhookPayloadSize = 65536

// WebhookHandler receives payment confirmation callbacks from providers.
// These endpoints are called by the provider and carry no user auth; the
// webhook signature is the only trust anchor.
type WebhookHandler struct {
	BaseHandler
	webhookService *payapp.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookService *payapp.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// WebhookResponse is the body returned to the provider
type WebhookResponse struct {
	Received bool   `json:"received"`
	Message  string `json:"message,omitempty"`
}

// Handle godoc
// @Summary      Payment provider webhook
// @Description  Receives payment events, verifies the signature and settles the related order
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider type (stripe, paypal, testmode)"
// @Success      200 {object} WebhookResponse
// @Failure      400 {object} WebhookResponse
// @Failure      413 {object} WebhookResponse
// @Router       /webhooks/{provider} [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	providerType := payment.ProviderType(c.Param("provider"))
	if !providerType.IsValid() {
		c.JSON(http.StatusNotFound, WebhookResponse{
			Received: false,
			Message:  "Unknown payment provider",
		})
		return
	}

	// The raw body is required for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	headers := make(map[string]string, len(c.Request.Header))
	for name := range c.Request.Header {
		headers[name] = c.GetHeader(name)
	}

	err = h.webhookService.Handle(c.Request.Context(), providerType, payload, headers)
	if err != nil {
		if errors.Is(err, payment.ErrProviderInvalidWebhook) {
			c.JSON(http.StatusBadRequest, WebhookResponse{
				Received: false,
				Message:  "Invalid webhook signature",
			})
			return
		}
		// Any other failure gets a 500 so the provider retries delivery
		c.JSON(http.StatusInternalServerError, WebhookResponse{
			Received: false,
			Message:  "Webhook processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
