package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// newPayPalTestServer fakes the OAuth token endpoint and dispatches the
// remaining routes to the provided handler
func newPayPalTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *PayPalAdapter) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok, "token request must use basic auth")
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"A21AAF","token_type":"Bearer","expires_in":32400}`)
			return
		}

		assert.Equal(t, "Bearer A21AAF", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	adapter := NewPayPalAdapter(config.PayPalConfig{
		ClientID:  "client-id",
		Secret:    "client-secret",
		BaseURL:   server.URL,
		WebhookID: "WH-123",
	})
	return server, adapter
}

func TestPayPalAdapter_CreateIntent(t *testing.T) {
	orderID := uuid.New()

	_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/checkout/orders", r.URL.Path)

		var body paypalCreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		assert.Equal(t, orderID.String(), body.PurchaseUnits[0].CustomID)
		assert.Equal(t, "42.50", body.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{
			"id": "5O190127TN364715T",
			"status": "CREATED",
			"links": [
				{"href": "https://api.sandbox.paypal.com/v2/checkout/orders/5O190127TN364715T", "rel": "self", "method": "GET"},
				{"href": "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", "rel": "approve", "method": "GET"}
			]
		}`)
	})

	resp, err := adapter.CreateIntent(context.Background(), &payment.CreateIntentRequest{
		OrderID:   orderID,
		Amount:    decimal.NewFromFloat(42.50),
		Currency:  "usd",
		ReturnURL: "https://shop.example.com/checkout/return",
		CancelURL: "https://shop.example.com/checkout/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "5O190127TN364715T", resp.IntentID)
	assert.Equal(t, payment.IntentStatusPending, resp.Status)
	assert.Contains(t, resp.ApproveURL, "checkoutnow")
}

func TestPayPalAdapter_ConfirmIntent(t *testing.T) {
	orderID := uuid.New()

	_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/checkout/orders/5O190127TN364715T/capture", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "5O190127TN364715T",
			"status": "COMPLETED",
			"payer": {"email_address": "buyer@example.com"},
			"purchase_units": [{
				"custom_id": %q,
				"payments": {
					"captures": [{
						"id": "3C679366HH908993F",
						"status": "COMPLETED",
						"amount": {"currency_code": "USD", "value": "42.50"},
						"create_time": "2026-08-28T10:25:31Z",
						"update_time": "2026-08-28T10:25:32Z"
					}]
				}
			}]
		}`, orderID.String())
	})

	resp, err := adapter.ConfirmIntent(context.Background(), &payment.QueryIntentRequest{IntentID: "5O190127TN364715T"})
	require.NoError(t, err)

	assert.Equal(t, payment.IntentStatusSucceeded, resp.Status)
	assert.Equal(t, "3C679366HH908993F", resp.PaymentID)
	assert.Equal(t, orderID, resp.OrderID)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(42.50)))
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "buyer@example.com", resp.PayerEmail)
	require.NotNil(t, resp.CompletedAt)
}

func TestPayPalAdapter_ConfirmIntent_AlreadyCaptured(t *testing.T) {
	_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed.","details":[{"issue":"ORDER_ALREADY_CAPTURED","description":"Order already captured."}]}`)
			return
		}

		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "5O190127TN364715T", "status": "COMPLETED", "purchase_units": [{"amount": {"currency_code": "USD", "value": "42.50"}}]}`)
	})

	resp, err := adapter.ConfirmIntent(context.Background(), &payment.QueryIntentRequest{IntentID: "5O190127TN364715T"})
	require.NoError(t, err)
	assert.Equal(t, payment.IntentStatusSucceeded, resp.Status)
}

func TestPayPalAdapter_QueryIntent_RequestFailed(t *testing.T) {
	_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"name":"RESOURCE_NOT_FOUND","message":"The specified resource does not exist."}`)
	})

	_, err := adapter.QueryIntent(context.Background(), &payment.QueryIntentRequest{IntentID: "5O190127TN364715T"})
	assert.ErrorIs(t, err, payment.ErrProviderRequestFailed)
}

func TestPayPalAdapter_VerifyWebhook(t *testing.T) {
	orderID := uuid.New()
	payload := []byte(fmt.Sprintf(`{
		"id": "WH-2WR32451HC0233532-67976317FL4543714",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource_type": "capture",
		"resource": {
			"id": "3C679366HH908993F",
			"status": "COMPLETED",
			"custom_id": %q,
			"amount": {"currency_code": "USD", "value": "42.50"},
			"supplementary_data": {"related_ids": {"order_id": "5O190127TN364715T"}}
		}
	}`, orderID.String()))

	headers := map[string]string{
		"Paypal-Auth-Algo":         "SHA256withRSA",
		"Paypal-Cert-Url":          "https://api.paypal.com/v1/notifications/certs/CERT-360caa42",
		"Paypal-Transmission-Id":   "69cd13f0-d67a-11e5",
		"Paypal-Transmission-Sig":  "lmI95Jx3Y9nhR5SJWlHVIWpg4AgFk7n9bCHSRxbrd8A9zrhdu2rMyFrmz+Zjh3s3boXB07VXCXUZy/UFzUlnGJn0wDugt7FlSvdKeIJenLRemUxYCPVoEZzg9VFNqOa48gMkvF+XTpxBeUx/kWy6B5cp7GkT2+pOowfRK7OaynuxUoKW3JcMWw272VKjLTtTAShncla7tGF+55rxyt2KNZIIqxNMJ48RDZheGU5w1npu9dZHnPgTXB9iomeVRoD8O/jhRpnKsGrDschyNdkeh81BJJMH4Ctc6lnCCquoP/GzCzz33MMsNdid7vL/NIWaCsekQpW26FpWPi/tfj8nLA==",
		"Paypal-Transmission-Time": "2026-08-28T10:25:33Z",
	}

	t.Run("accepts a verified event", func(t *testing.T) {
		_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/notifications/verify-webhook-signature", r.URL.Path)

			var body paypalVerifyWebhookRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "WH-123", body.WebhookID)
			assert.Equal(t, "69cd13f0-d67a-11e5", body.TransmissionID)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"verification_status": "SUCCESS"}`)
		})

		event, err := adapter.VerifyWebhook(context.Background(), payload, headers)
		require.NoError(t, err)

		assert.Equal(t, "WH-2WR32451HC0233532-67976317FL4543714", event.EventID)
		assert.Equal(t, payment.IntentStatusSucceeded, event.Status)
		assert.Equal(t, "5O190127TN364715T", event.IntentID)
		assert.Equal(t, "3C679366HH908993F", event.PaymentID)
		assert.Equal(t, orderID, event.OrderID)
		assert.True(t, event.Amount.Equal(decimal.NewFromFloat(42.50)))
	})

	t.Run("rejects a failed verification", func(t *testing.T) {
		_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"verification_status": "FAILURE"}`)
		})

		_, err := adapter.VerifyWebhook(context.Background(), payload, headers)
		assert.ErrorIs(t, err, payment.ErrProviderInvalidWebhook)
	})

	t.Run("rejects missing signature headers", func(t *testing.T) {
		_, adapter := newPayPalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("verification endpoint should not be called")
		})

		_, err := adapter.VerifyWebhook(context.Background(), payload, map[string]string{})
		assert.ErrorIs(t, err, payment.ErrProviderInvalidWebhook)
	})
}

func TestPayPalAdapter_NotConfigured(t *testing.T) {
	adapter := NewPayPalAdapter(config.PayPalConfig{})

	_, err := adapter.CreateIntent(context.Background(), &payment.CreateIntentRequest{
		OrderID:  uuid.New(),
		Amount:   decimal.NewFromInt(10),
		Currency: "USD",
	})
	assert.ErrorIs(t, err, payment.ErrProviderNotConfigured)
	assert.False(t, adapter.IsConfigured())
}

func TestMapPayPalOrderStatus(t *testing.T) {
	assert.Equal(t, payment.IntentStatusSucceeded, mapPayPalOrderStatus("COMPLETED"))
	assert.Equal(t, payment.IntentStatusCancelled, mapPayPalOrderStatus("VOIDED"))
	assert.Equal(t, payment.IntentStatusPending, mapPayPalOrderStatus("CREATED"))
	assert.Equal(t, payment.IntentStatusPending, mapPayPalOrderStatus("APPROVED"))
	assert.Equal(t, payment.IntentStatusPending, mapPayPalOrderStatus("SOMETHING_NEW"))
}
