package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Provider Errors
// ---------------------------------------------------------------------------

var (
	// Intent creation errors
	ErrPaymentInvalidOrderID  = errors.New("payment: invalid order ID")
	ErrPaymentInvalidAmount   = errors.New("payment: invalid payment amount")
	ErrPaymentInvalidCurrency = errors.New("payment: invalid currency")
	ErrPaymentInvalidMethod   = errors.New("payment: invalid payment method")

	// Confirmation errors
	ErrPaymentInvalidIntentID = errors.New("payment: invalid intent ID")
	ErrPaymentNotSucceeded    = errors.New("payment: payment has not succeeded at the provider")
	ErrPaymentAmountMismatch  = errors.New("payment: paid amount does not match the order")
	ErrPaymentAlreadyPaid     = errors.New("payment: order already paid")

	// Provider errors
	ErrProviderNotConfigured   = errors.New("payment: provider not configured")
	ErrProviderUnavailable     = errors.New("payment: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("payment: provider request failed")
	ErrProviderInvalidResponse = errors.New("payment: invalid provider response")
	ErrProviderInvalidWebhook  = errors.New("payment: invalid webhook signature")
)

// ---------------------------------------------------------------------------
// ProviderType represents a payment provider
type ProviderType string

const (
	// ProviderTypeStripe represents Stripe PaymentIntents
	ProviderTypeStripe ProviderType = "stripe"
	// ProviderTypePayPal represents PayPal REST v2 Orders
	ProviderTypePayPal ProviderType = "paypal"
	// ProviderTypeTestMode simulates a provider for local development
	ProviderTypeTestMode ProviderType = "testmode"
)

// IsValid returns true if the provider type is valid
func (t ProviderType) IsValid() bool {
	switch t {
	case ProviderTypeStripe, ProviderTypePayPal, ProviderTypeTestMode:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderType
func (t ProviderType) String() string {
	return string(t)
}

// IntentStatus represents the status of a payment intent at the provider
type IntentStatus string

const (
	// IntentStatusPending indicates the intent awaits shopper action
	IntentStatusPending IntentStatus = "PENDING"
	// IntentStatusSucceeded indicates the payment completed
	IntentStatusSucceeded IntentStatus = "SUCCEEDED"
	// IntentStatusFailed indicates the payment failed
	IntentStatusFailed IntentStatus = "FAILED"
	// IntentStatusCancelled indicates the intent was cancelled
	IntentStatusCancelled IntentStatus = "CANCELLED"
)

// IsValid returns true if the status is valid
func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentStatusPending, IntentStatusSucceeded, IntentStatusFailed, IntentStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of IntentStatus
func (s IntentStatus) String() string {
	return string(s)
}

// IsFinal returns true if the status is a terminal state
func (s IntentStatus) IsFinal() bool {
	switch s {
	case IntentStatusSucceeded, IntentStatusFailed, IntentStatusCancelled:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the payment completed
func (s IntentStatus) IsSuccess() bool {
	return s == IntentStatusSucceeded
}

// ---------------------------------------------------------------------------
// Intent Request/Response DTOs
// ---------------------------------------------------------------------------

// CreateIntentRequest represents a request to open a payment intent
// for an order. The amount always comes from the order, never from
// client input.
type CreateIntentRequest struct {
	// OrderID is the storefront order being paid
	OrderID uuid.UUID
	// Amount is the order grand total
	Amount decimal.Decimal
	// Currency is the ISO 4217 currency code
	Currency string
	// CustomerEmail is attached as receipt/payer metadata
	CustomerEmail string
	// Description is shown on the provider dashboard
	Description string
	// ReturnURL is where the provider redirects after approval (PayPal)
	ReturnURL string
	// CancelURL is where the provider redirects on abort (PayPal)
	CancelURL string
	// Metadata is additional key-value data stored on the intent
	Metadata map[string]string
}

// Validate validates the create intent request
func (r *CreateIntentRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return ErrPaymentInvalidOrderID
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentInvalidAmount
	}
	if r.Currency == "" {
		return ErrPaymentInvalidCurrency
	}
	return nil
}

// CreateIntentResponse represents the provider's reply to an intent creation
type CreateIntentResponse struct {
	// IntentID is the provider-side identifier (Stripe PaymentIntent id,
	// PayPal order id, or a fabricated test-mode id)
	IntentID string
	// Provider identifies which provider issued the intent
	Provider ProviderType
	// Status is the initial status
	Status IntentStatus
	// ClientSecret lets the browser SDK confirm the intent (Stripe)
	ClientSecret string
	// ApproveURL is where the shopper approves the payment (PayPal)
	ApproveURL string
}

// QueryIntentRequest represents a request to look up a payment intent
type QueryIntentRequest struct {
	// IntentID is the provider-side identifier
	IntentID string
}

// Validate validates the query intent request
func (r *QueryIntentRequest) Validate() error {
	if r.IntentID == "" {
		return ErrPaymentInvalidIntentID
	}
	return nil
}

// QueryIntentResponse represents the provider's view of an intent
type QueryIntentResponse struct {
	// IntentID is the provider-side identifier
	IntentID string
	// Provider identifies which provider holds the intent
	Provider ProviderType
	// Status is the current status
	Status IntentStatus
	// Amount is the amount the provider will settle
	Amount decimal.Decimal
	// Currency is the ISO 4217 currency code
	Currency string
	// PaymentID is the settled transaction id (capture id for PayPal,
	// the intent id itself for Stripe)
	PaymentID string
	// PayerEmail is the payer account email when the provider exposes it
	PayerEmail string
	// OrderID is the storefront order carried in intent metadata
	OrderID uuid.UUID
	// CompletedAt is when the payment settled
	CompletedAt *time.Time
}

// WebhookEvent is a provider notification after signature verification
type WebhookEvent struct {
	// Provider identifies which provider sent the event
	Provider ProviderType
	// EventID is the provider-side event identifier, used for dedup
	EventID string
	// IntentID is the provider-side intent the event refers to
	IntentID string
	// PaymentID is the settled transaction id
	PaymentID string
	// Status is the intent status the event reports
	Status IntentStatus
	// Amount is the settled amount
	Amount decimal.Decimal
	// Currency is the ISO 4217 currency code
	Currency string
	// PayerEmail is the payer account email when present
	PayerEmail string
	// OrderID is the storefront order carried in intent metadata
	OrderID uuid.UUID
	// RawPayload is the original webhook body
	RawPayload string
}

// ---------------------------------------------------------------------------
// Provider Port Interface
// ---------------------------------------------------------------------------

// Provider defines the port interface for external payment providers.
// It is defined in the domain layer; concrete implementations (Stripe,
// PayPal, test mode) live in the infrastructure layer.
type Provider interface {
	// Type returns the provider type
	Type() ProviderType

	// IsConfigured reports whether credentials are present. An
	// unconfigured provider is eligible for test-mode substitution.
	IsConfigured() bool

	// CreateIntent opens a payment intent for an order
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error)

	// QueryIntent fetches the current provider-side state of an intent
	QueryIntent(ctx context.Context, req *QueryIntentRequest) (*QueryIntentResponse, error)

	// ConfirmIntent finalizes an intent server-side where the provider
	// requires it (PayPal capture); for providers confirmed by the
	// browser SDK it behaves like QueryIntent
	ConfirmIntent(ctx context.Context, req *QueryIntentRequest) (*QueryIntentResponse, error)

	// VerifyWebhook verifies a webhook signature and parses the event.
	// Returns ErrProviderInvalidWebhook when the signature fails.
	VerifyWebhook(ctx context.Context, payload []byte, headers map[string]string) (*WebhookEvent, error)
}

// ConfirmationHandler is implemented by the application layer to process
// verified payment results; client confirmation and webhooks both land here.
type ConfirmationHandler interface {
	// HandlePaymentSucceeded reconciles a succeeded provider payment
	// with the order it references
	HandlePaymentSucceeded(ctx context.Context, result *QueryIntentResponse) error
}

// Registry provides access to configured payment providers
type Registry interface {
	// Get returns the provider for the specified type
	Get(providerType ProviderType) (Provider, error)

	// List returns all registered providers
	List() []Provider
}
