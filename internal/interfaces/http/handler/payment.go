package handler

import (
	"github.com/gin-gonic/gin"

	payapp "github.com/storefront/backend/internal/application/payment"
)

// PaymentHandler handles payment intent creation and confirmation
type PaymentHandler struct {
	BaseHandler
	paymentService *payapp.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateIntent godoc
// @Summary      Create payment intent
// @Description  Starts a payment at the order's provider and attaches the intent to the order
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body payapp.CreateIntentRequest true "Order to pay"
// @Success      200 {object} dto.Response{data=payapp.IntentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req payapp.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.paymentService.CreateIntent(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Confirm godoc
// @Summary      Confirm payment
// @Description  Re-queries the provider and marks the order paid on success
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body payapp.ConfirmPaymentRequest true "Order and intent to confirm"
// @Success      200 {object} dto.Response{data=payapp.ConfirmPaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req payapp.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.paymentService.Confirm(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ClientConfig godoc
// @Summary      Payment client configuration
// @Description  Public keys and available providers for the storefront client
// @Tags         payments
// @Produce      json
// @Success      200 {object} dto.Response{data=payapp.ClientConfigResponse}
// @Router       /payments/config [get]
func (h *PaymentHandler) ClientConfig(c *gin.Context) {
	h.Success(c, h.paymentService.ClientConfig())
}
