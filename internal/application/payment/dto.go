package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
)

// CreateIntentRequest represents a request to open a payment intent
// for an order. The amount is never taken from the client; it always
// comes from the stored order.
type CreateIntentRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	ReturnURL string    `json:"return_url" binding:"omitempty,url,max=500"`
	CancelURL string    `json:"cancel_url" binding:"omitempty,url,max=500"`
}

// IntentResponse represents an opened payment intent
type IntentResponse struct {
	IntentID     string `json:"intent_id"`
	Provider     string `json:"provider"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
	ApproveURL   string `json:"approve_url,omitempty"`
}

// ConfirmPaymentRequest represents a client-side confirmation callback
// after the shopper completed the provider flow
type ConfirmPaymentRequest struct {
	OrderID  uuid.UUID `json:"order_id" binding:"required"`
	IntentID string    `json:"intent_id" binding:"required,max=255"`
}

// ConfirmPaymentResponse represents the reconciled payment state
type ConfirmPaymentResponse struct {
	OrderID   uuid.UUID  `json:"order_id"`
	IsPaid    bool       `json:"is_paid"`
	PaymentID string     `json:"payment_id"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// ProviderInfo describes a payment provider to the client
type ProviderInfo struct {
	Type       string `json:"type"`
	Configured bool   `json:"configured"`
}

// ClientConfigResponse carries the public provider settings the
// browser needs to start a payment
type ClientConfigResponse struct {
	StripePublishableKey string         `json:"stripe_publishable_key,omitempty"`
	PayPalClientID       string         `json:"paypal_client_id,omitempty"`
	TestMode             bool           `json:"test_mode"`
	Providers            []ProviderInfo `json:"providers"`
}

func toIntentResponse(resp *payment.CreateIntentResponse) *IntentResponse {
	return &IntentResponse{
		IntentID:     resp.IntentID,
		Provider:     resp.Provider.String(),
		Status:       resp.Status.String(),
		ClientSecret: resp.ClientSecret,
		ApproveURL:   resp.ApproveURL,
	}
}
