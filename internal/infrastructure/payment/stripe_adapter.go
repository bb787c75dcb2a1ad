package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const (
	stripeMetadataOrderID = "order_id"

	stripeEventIntentSucceeded = "payment_intent.succeeded"
	stripeEventIntentFailed    = "payment_intent.payment_failed"
	stripeEventIntentCanceled  = "payment_intent.canceled"
)

// StripeAdapter implements the payment.Provider port for Stripe
// PaymentIntents. The browser SDK confirms the intent with the client
// secret; the server only creates and reads intents.
type StripeAdapter struct {
	config config.StripeConfig
	sc     *client.API
}

// NewStripeAdapter creates a new Stripe adapter.
// A dedicated API client keeps the key out of the package-level global.
func NewStripeAdapter(cfg config.StripeConfig) *StripeAdapter {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &StripeAdapter{
		config: cfg,
		sc:     sc,
	}
}

// Type returns the provider type
func (a *StripeAdapter) Type() payment.ProviderType {
	return payment.ProviderTypeStripe
}

// IsConfigured reports whether API keys are present
func (a *StripeAdapter) IsConfigured() bool {
	return a.config.IsConfigured()
}

// CreateIntent creates a Stripe PaymentIntent for the given order.
// The order ID travels in intent metadata so webhooks and queries can
// be reconciled back to the order.
func (a *StripeAdapter) CreateIntent(ctx context.Context, req *payment.CreateIntentRequest) (*payment.CreateIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !a.IsConfigured() {
		return nil, payment.ErrProviderNotConfigured
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(stripeMetadataOrderID, req.OrderID.String())
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}

	intent, err := a.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return &payment.CreateIntentResponse{
		IntentID:     intent.ID,
		Provider:     payment.ProviderTypeStripe,
		Status:       mapStripeIntentStatus(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

// QueryIntent fetches the current state of a PaymentIntent
func (a *StripeAdapter) QueryIntent(ctx context.Context, req *payment.QueryIntentRequest) (*payment.QueryIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !a.IsConfigured() {
		return nil, payment.ErrProviderNotConfigured
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := a.sc.PaymentIntents.Get(req.IntentID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return stripeIntentToQueryResponse(intent), nil
}

// ConfirmIntent behaves like QueryIntent: Stripe intents are confirmed
// by the browser SDK, so the server side only has to observe the result
func (a *StripeAdapter) ConfirmIntent(ctx context.Context, req *payment.QueryIntentRequest) (*payment.QueryIntentResponse, error) {
	return a.QueryIntent(ctx, req)
}

// VerifyWebhook verifies the Stripe-Signature header and parses the event
func (a *StripeAdapter) VerifyWebhook(ctx context.Context, payload []byte, headers map[string]string) (*payment.WebhookEvent, error) {
	if a.config.WebhookSecret == "" {
		return nil, payment.ErrProviderNotConfigured
	}

	sigHeader := headerValue(headers, "Stripe-Signature")
	if sigHeader == "" {
		return nil, payment.ErrProviderInvalidWebhook
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, a.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidWebhook, err)
	}

	out := &payment.WebhookEvent{
		Provider:   payment.ProviderTypeStripe,
		EventID:    event.ID,
		RawPayload: string(payload),
	}

	switch string(event.Type) {
	case stripeEventIntentSucceeded, stripeEventIntentFailed, stripeEventIntentCanceled:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
		}
		out.IntentID = intent.ID
		out.PaymentID = intent.ID
		out.Status = mapStripeIntentStatus(intent.Status)
		out.Amount = fromMinorUnits(intent.Amount)
		out.Currency = strings.ToUpper(string(intent.Currency))
		out.PayerEmail = intent.ReceiptEmail
		if raw, ok := intent.Metadata[stripeMetadataOrderID]; ok {
			if id, err := uuid.Parse(raw); err == nil {
				out.OrderID = id
			}
		}

	default:
		// Events we do not act on still get acknowledged
		out.Status = payment.IntentStatusPending
	}

	return out, nil
}

// stripeIntentToQueryResponse maps a PaymentIntent to the provider-neutral shape
func stripeIntentToQueryResponse(intent *stripe.PaymentIntent) *payment.QueryIntentResponse {
	resp := &payment.QueryIntentResponse{
		IntentID:   intent.ID,
		Provider:   payment.ProviderTypeStripe,
		Status:     mapStripeIntentStatus(intent.Status),
		Amount:     fromMinorUnits(intent.Amount),
		Currency:   strings.ToUpper(string(intent.Currency)),
		PayerEmail: intent.ReceiptEmail,
	}

	// Stripe settles on the intent itself, so the intent id doubles as
	// the payment id once it has succeeded
	if resp.Status.IsSuccess() {
		resp.PaymentID = intent.ID
		settled := time.Unix(intent.Created, 0).UTC()
		if intent.LatestCharge != nil && intent.LatestCharge.Created > 0 {
			settled = time.Unix(intent.LatestCharge.Created, 0).UTC()
		}
		resp.CompletedAt = &settled
	}

	if raw, ok := intent.Metadata[stripeMetadataOrderID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			resp.OrderID = id
		}
	}

	return resp
}

// mapStripeIntentStatus maps a Stripe intent status to our intent status
func mapStripeIntentStatus(status stripe.PaymentIntentStatus) payment.IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return payment.IntentStatusCancelled
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusProcessing:
		return payment.IntentStatusPending
	default:
		return payment.IntentStatusPending
	}
}

// wrapStripeError maps a stripe-go error to a provider port error
func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		// Rejected credentials mean the adapter is misconfigured, not
		// that this particular request was bad
		if stripeErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", payment.ErrProviderNotConfigured, stripeErr.Msg)
		}
		switch stripeErr.Type {
		case stripe.ErrorTypeAPI:
			return fmt.Errorf("%w: %s", payment.ErrProviderUnavailable, stripeErr.Msg)
		default:
			return fmt.Errorf("%w: %s", payment.ErrProviderRequestFailed, stripeErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", payment.ErrProviderRequestFailed, err)
}

// toMinorUnits converts a decimal amount to cents.
// Stripe amounts are integers in the currency's smallest unit.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// fromMinorUnits converts cents back to a decimal amount
func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-2)
}

// Ensure StripeAdapter implements the Provider port
var _ payment.Provider = (*StripeAdapter)(nil)
