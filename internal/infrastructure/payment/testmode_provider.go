package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/payment"
)

// TestModeIntentPrefix marks fabricated intent identifiers so they can
// never be mistaken for real provider ids
const TestModeIntentPrefix = "test_"

// TestModeProvider simulates a payment provider for local development
// and demos. CreateIntent fabricates an identifier, and the client then
// drives the same confirmation endpoint a real provider flow would use.
// Intents live in memory only; a restart forgets them.
type TestModeProvider struct {
	mu      sync.RWMutex
	intents map[string]*testModeIntent
}

type testModeIntent struct {
	orderID   uuid.UUID
	amount    decimal.Decimal
	currency  string
	email     string
	status    payment.IntentStatus
	createdAt time.Time
}

// NewTestModeProvider creates a new test-mode provider
func NewTestModeProvider() *TestModeProvider {
	return &TestModeProvider{
		intents: make(map[string]*testModeIntent),
	}
}

// Type returns the provider type
func (p *TestModeProvider) Type() payment.ProviderType {
	return payment.ProviderTypeTestMode
}

// IsConfigured always returns true; test mode needs no credentials
func (p *TestModeProvider) IsConfigured() bool {
	return true
}

// CreateIntent fabricates a payment intent identifier
func (p *TestModeProvider) CreateIntent(ctx context.Context, req *payment.CreateIntentRequest) (*payment.CreateIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	intentID := TestModeIntentPrefix + uuid.NewString()

	p.mu.Lock()
	p.intents[intentID] = &testModeIntent{
		orderID:   req.OrderID,
		amount:    req.Amount,
		currency:  strings.ToUpper(req.Currency),
		email:     req.CustomerEmail,
		status:    payment.IntentStatusPending,
		createdAt: time.Now(),
	}
	p.mu.Unlock()

	return &payment.CreateIntentResponse{
		IntentID: intentID,
		Provider: payment.ProviderTypeTestMode,
		Status:   payment.IntentStatusPending,
	}, nil
}

// QueryIntent returns the simulated state of an intent
func (p *TestModeProvider) QueryIntent(ctx context.Context, req *payment.QueryIntentRequest) (*payment.QueryIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	intent, ok := p.intents[req.IntentID]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown test intent %s", payment.ErrPaymentInvalidIntentID, req.IntentID)
	}

	return p.toQueryResponse(req.IntentID, intent), nil
}

// ConfirmIntent marks the intent as succeeded, simulating the shopper
// completing the payment
func (p *TestModeProvider) ConfirmIntent(ctx context.Context, req *payment.QueryIntentRequest) (*payment.QueryIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	intent, ok := p.intents[req.IntentID]
	if ok && !intent.status.IsFinal() {
		intent.status = payment.IntentStatusSucceeded
	}
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown test intent %s", payment.ErrPaymentInvalidIntentID, req.IntentID)
	}

	return p.toQueryResponse(req.IntentID, intent), nil
}

// VerifyWebhook parses a simulated webhook. There is no signature to
// verify; test-mode webhooks are only reachable when test mode is
// enabled in configuration.
func (p *TestModeProvider) VerifyWebhook(ctx context.Context, payload []byte, headers map[string]string) (*payment.WebhookEvent, error) {
	var body struct {
		EventID  string `json:"event_id"`
		IntentID string `json:"intent_id"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", payment.ErrProviderInvalidWebhook)
	}
	if body.IntentID == "" || !strings.HasPrefix(body.IntentID, TestModeIntentPrefix) {
		return nil, payment.ErrProviderInvalidWebhook
	}

	p.mu.RLock()
	intent, ok := p.intents[body.IntentID]
	p.mu.RUnlock()
	if !ok {
		return nil, payment.ErrProviderInvalidWebhook
	}

	status := payment.IntentStatus(strings.ToUpper(body.Status))
	if !status.IsValid() {
		status = payment.IntentStatusSucceeded
	}

	eventID := body.EventID
	if eventID == "" {
		eventID = TestModeIntentPrefix + "evt_" + uuid.NewString()
	}

	resp := p.toQueryResponse(body.IntentID, intent)
	return &payment.WebhookEvent{
		Provider:   payment.ProviderTypeTestMode,
		EventID:    eventID,
		IntentID:   body.IntentID,
		PaymentID:  body.IntentID,
		Status:     status,
		Amount:     resp.Amount,
		Currency:   resp.Currency,
		PayerEmail: resp.PayerEmail,
		OrderID:    resp.OrderID,
		RawPayload: string(payload),
	}, nil
}

func (p *TestModeProvider) toQueryResponse(intentID string, intent *testModeIntent) *payment.QueryIntentResponse {
	resp := &payment.QueryIntentResponse{
		IntentID:   intentID,
		Provider:   payment.ProviderTypeTestMode,
		Status:     intent.status,
		Currency:   intent.currency,
		PayerEmail: intent.email,
		OrderID:    intent.orderID,
		Amount:     intent.amount,
	}
	if intent.status.IsSuccess() {
		resp.PaymentID = intentID
		now := time.Now().UTC()
		resp.CompletedAt = &now
	}
	return resp
}

// Ensure TestModeProvider implements the Provider port
var _ payment.Provider = (*TestModeProvider)(nil)
