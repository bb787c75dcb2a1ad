package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const (
	paypalLiveBaseURL    = "https://api-m.paypal.com"
	paypalSandboxBaseURL = "https://api-m.sandbox.paypal.com"

	paypalIntentCapture = "CAPTURE"

	paypalOrderStatusCreated             = "CREATED"
	paypalOrderStatusSaved               = "SAVED"
	paypalOrderStatusApproved            = "APPROVED"
	paypalOrderStatusPayerActionRequired = "PAYER_ACTION_REQUIRED"
	paypalOrderStatusCompleted           = "COMPLETED"
	paypalOrderStatusVoided              = "VOIDED"

	paypalEventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	paypalEventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	paypalEventCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
	paypalEventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
	paypalEventOrderCompleted   = "CHECKOUT.ORDER.COMPLETED"

	// Refresh the OAuth token a minute before PayPal expires it
	paypalTokenExpiryMargin = 60 * time.Second
)

// PayPalAdapter implements the payment.Provider port for PayPal REST v2
// Orders. The shopper approves the order on PayPal's page; the capture
// happens server-side in ConfirmIntent.
type PayPalAdapter struct {
	config     config.PayPalConfig
	httpClient *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalAdapter creates a new PayPal adapter
func NewPayPalAdapter(cfg config.PayPalConfig) *PayPalAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = paypalSandboxBaseURL
	}
	return &PayPalAdapter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Type returns the provider type
func (a *PayPalAdapter) Type() payment.ProviderType {
	return payment.ProviderTypePayPal
}

// IsConfigured reports whether API credentials are present
func (a *PayPalAdapter) IsConfigured() bool {
	return a.config.IsConfigured()
}

// CreateIntent creates a PayPal order for the given storefront order.
// The storefront order ID travels in custom_id so webhooks and queries
// can be reconciled without a local lookup table.
func (a *PayPalAdapter) CreateIntent(ctx context.Context, req *payment.CreateIntentRequest) (*payment.CreateIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !a.IsConfigured() {
		return nil, payment.ErrProviderNotConfigured
	}

	body := paypalCreateOrderRequest{
		Intent: paypalIntentCapture,
		PurchaseUnits: []paypalPurchaseUnit{
			{
				ReferenceID: req.OrderID.String(),
				CustomID:    req.OrderID.String(),
				Description: req.Description,
				Amount: &paypalAmount{
					CurrencyCode: strings.ToUpper(req.Currency),
					Value:        req.Amount.StringFixed(2),
				},
			},
		},
	}

	if req.ReturnURL != "" || req.CancelURL != "" {
		body.ApplicationContext = &paypalApplicationContext{
			ReturnURL:          req.ReturnURL,
			CancelURL:          req.CancelURL,
			UserAction:         "PAY_NOW",
			ShippingPreference: "NO_SHIPPING",
		}
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, err
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}
	if order.ID == "" {
		return nil, payment.ErrProviderInvalidResponse
	}

	resp := &payment.CreateIntentResponse{
		IntentID: order.ID,
		Provider: payment.ProviderTypePayPal,
		Status:   mapPayPalOrderStatus(order.Status),
	}
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			resp.ApproveURL = link.Href
			break
		}
	}

	return resp, nil
}

// QueryIntent fetches the current state of a PayPal order
func (a *PayPalAdapter) QueryIntent(ctx context.Context, req *payment.QueryIntentRequest) (*payment.QueryIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !a.IsConfigured() {
		return nil, payment.ErrProviderNotConfigured
	}

	respBody, err := a.doRequest(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(req.IntentID), nil)
	if err != nil {
		return nil, err
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}

	return a.toQueryResponse(&order), nil
}

// ConfirmIntent captures an approved PayPal order. Capturing an order
// that was already captured is treated as success and resolved with a
// follow-up query, so confirmation stays idempotent.
func (a *PayPalAdapter) ConfirmIntent(ctx context.Context, req *payment.QueryIntentRequest) (*payment.QueryIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !a.IsConfigured() {
		return nil, payment.ErrProviderNotConfigured
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(req.IntentID)+"/capture", struct{}{})
	if err != nil {
		if strings.Contains(err.Error(), "ORDER_ALREADY_CAPTURED") {
			return a.QueryIntent(ctx, req)
		}
		return nil, err
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}

	return a.toQueryResponse(&order), nil
}

// VerifyWebhook verifies the webhook signature against PayPal's
// verification endpoint and parses the event
func (a *PayPalAdapter) VerifyWebhook(ctx context.Context, payload []byte, headers map[string]string) (*payment.WebhookEvent, error) {
	if !a.IsConfigured() || a.config.WebhookID == "" {
		return nil, payment.ErrProviderNotConfigured
	}

	var rawEvent json.RawMessage
	if err := json.Unmarshal(payload, &rawEvent); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", payment.ErrProviderInvalidWebhook)
	}

	verifyReq := paypalVerifyWebhookRequest{
		AuthAlgo:         headerValue(headers, "Paypal-Auth-Algo"),
		CertURL:          headerValue(headers, "Paypal-Cert-Url"),
		TransmissionID:   headerValue(headers, "Paypal-Transmission-Id"),
		TransmissionSig:  headerValue(headers, "Paypal-Transmission-Sig"),
		TransmissionTime: headerValue(headers, "Paypal-Transmission-Time"),
		WebhookID:        a.config.WebhookID,
		WebhookEvent:     rawEvent,
	}
	if verifyReq.TransmissionID == "" || verifyReq.TransmissionSig == "" {
		return nil, payment.ErrProviderInvalidWebhook
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verifyReq)
	if err != nil {
		return nil, err
	}

	var verifyResp paypalVerifyWebhookResponse
	if err := json.Unmarshal(respBody, &verifyResp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}
	if verifyResp.VerificationStatus != "SUCCESS" {
		return nil, payment.ErrProviderInvalidWebhook
	}

	var event paypalWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}

	return a.toWebhookEvent(&event, payload), nil
}

// toQueryResponse maps a PayPal order to the provider-neutral shape
func (a *PayPalAdapter) toQueryResponse(order *paypalOrderResponse) *payment.QueryIntentResponse {
	resp := &payment.QueryIntentResponse{
		IntentID: order.ID,
		Provider: payment.ProviderTypePayPal,
		Status:   mapPayPalOrderStatus(order.Status),
	}

	if order.Payer != nil {
		resp.PayerEmail = order.Payer.EmailAddress
	}

	if len(order.PurchaseUnits) > 0 {
		unit := order.PurchaseUnits[0]
		if unit.CustomID != "" {
			if id, err := uuid.Parse(unit.CustomID); err == nil {
				resp.OrderID = id
			}
		}
		if unit.Amount != nil {
			if amount, err := decimal.NewFromString(unit.Amount.Value); err == nil {
				resp.Amount = amount
			}
			resp.Currency = unit.Amount.CurrencyCode
		}
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			capture := unit.Payments.Captures[0]
			resp.PaymentID = capture.ID
			if capture.Amount != nil {
				if amount, err := decimal.NewFromString(capture.Amount.Value); err == nil {
					resp.Amount = amount
				}
				resp.Currency = capture.Amount.CurrencyCode
			}
			if t, err := time.Parse(time.RFC3339, capture.UpdateTime); err == nil {
				resp.CompletedAt = &t
			} else if t, err := time.Parse(time.RFC3339, capture.CreateTime); err == nil {
				resp.CompletedAt = &t
			}
		}
	}

	return resp
}

// toWebhookEvent maps a verified PayPal event to the provider-neutral shape
func (a *PayPalAdapter) toWebhookEvent(event *paypalWebhookEvent, payload []byte) *payment.WebhookEvent {
	out := &payment.WebhookEvent{
		Provider:   payment.ProviderTypePayPal,
		EventID:    event.ID,
		RawPayload: string(payload),
	}

	switch event.EventType {
	case paypalEventCaptureCompleted:
		out.Status = payment.IntentStatusSucceeded
		out.PaymentID = event.Resource.ID
		if event.Resource.SupplementaryData != nil {
			out.IntentID = event.Resource.SupplementaryData.RelatedIDs.OrderID
		}
		if event.Resource.CustomID != "" {
			if id, err := uuid.Parse(event.Resource.CustomID); err == nil {
				out.OrderID = id
			}
		}
		if event.Resource.Amount != nil {
			if amount, err := decimal.NewFromString(event.Resource.Amount.Value); err == nil {
				out.Amount = amount
			}
			out.Currency = event.Resource.Amount.CurrencyCode
		}

	case paypalEventCaptureDenied:
		out.Status = payment.IntentStatusFailed
		out.PaymentID = event.Resource.ID
		if event.Resource.SupplementaryData != nil {
			out.IntentID = event.Resource.SupplementaryData.RelatedIDs.OrderID
		}

	case paypalEventOrderApproved, paypalEventOrderCompleted:
		out.IntentID = event.Resource.ID
		out.Status = payment.IntentStatusPending
		if event.EventType == paypalEventOrderCompleted {
			out.Status = payment.IntentStatusSucceeded
		}
		if event.Resource.Payer != nil {
			out.PayerEmail = event.Resource.Payer.EmailAddress
		}
		if len(event.Resource.PurchaseUnits) > 0 {
			unit := event.Resource.PurchaseUnits[0]
			if unit.CustomID != "" {
				if id, err := uuid.Parse(unit.CustomID); err == nil {
					out.OrderID = id
				}
			}
			if unit.Amount != nil {
				if amount, err := decimal.NewFromString(unit.Amount.Value); err == nil {
					out.Amount = amount
				}
				out.Currency = unit.Amount.CurrencyCode
			}
		}

	default:
		out.IntentID = event.Resource.ID
		out.Status = payment.IntentStatusPending
	}

	return out
}

// getAccessToken returns a cached OAuth2 token, fetching a new one
// via client_credentials when missing or close to expiry
func (a *PayPalAdapter) getAccessToken(ctx context.Context) (string, error) {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("paypal: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("paypal: failed to read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: token request returned HTTP %d", payment.ErrProviderRequestFailed, resp.StatusCode)
	}

	var token paypalTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}
	if token.AccessToken == "" {
		return "", payment.ErrProviderInvalidResponse
	}

	a.accessToken = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - paypalTokenExpiryMargin)

	return a.accessToken, nil
}

// doRequest performs an authenticated request against the PayPal API
func (a *PayPalAdapter) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	token, err := a.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("paypal: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("paypal: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paypal: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr paypalErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Name != "" {
			issue := apiErr.Name
			if len(apiErr.Details) > 0 {
				issue = apiErr.Details[0].Issue
			}
			return nil, fmt.Errorf("%w: %s - %s", payment.ErrProviderRequestFailed, issue, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrProviderRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// headerValue looks up a header by its canonical name, tolerating the
// lowercase forms some proxies forward
func headerValue(headers map[string]string, canonical string) string {
	if v, ok := headers[canonical]; ok {
		return v
	}
	if v, ok := headers[strings.ToLower(canonical)]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, canonical) {
			return v
		}
	}
	return ""
}

// mapPayPalOrderStatus maps a PayPal order status to our intent status
func mapPayPalOrderStatus(status string) payment.IntentStatus {
	switch status {
	case paypalOrderStatusCompleted:
		return payment.IntentStatusSucceeded
	case paypalOrderStatusVoided:
		return payment.IntentStatusCancelled
	case paypalOrderStatusCreated, paypalOrderStatusSaved,
		paypalOrderStatusApproved, paypalOrderStatusPayerActionRequired:
		return payment.IntentStatusPending
	default:
		return payment.IntentStatusPending
	}
}

// Ensure PayPalAdapter implements the Provider port
var _ payment.Provider = (*PayPalAdapter)(nil)
