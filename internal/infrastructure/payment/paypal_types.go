package payment

// PayPal REST v2 Orders API wire types. Only the fields the adapter
// reads or writes are declared.

// OAuth2 token endpoint response
type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string        `json:"reference_id,omitempty"`
	CustomID    string        `json:"custom_id,omitempty"`
	Description string        `json:"description,omitempty"`
	Amount      *paypalAmount `json:"amount,omitempty"`
	Payments    *struct {
		Captures []paypalCapture `json:"captures,omitempty"`
	} `json:"payments,omitempty"`
}

type paypalCapture struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	Amount     *paypalAmount `json:"amount"`
	CreateTime string        `json:"create_time"`
	UpdateTime string        `json:"update_time"`
}

type paypalApplicationContext struct {
	ReturnURL          string `json:"return_url,omitempty"`
	CancelURL          string `json:"cancel_url,omitempty"`
	UserAction         string `json:"user_action,omitempty"`
	ShippingPreference string `json:"shipping_preference,omitempty"`
}

type paypalCreateOrderRequest struct {
	Intent             string                    `json:"intent"`
	PurchaseUnits      []paypalPurchaseUnit      `json:"purchase_units"`
	ApplicationContext *paypalApplicationContext `json:"application_context,omitempty"`
}

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paypalPayer struct {
	EmailAddress string `json:"email_address"`
	PayerID      string `json:"payer_id"`
}

type paypalOrderResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	Payer         *paypalPayer         `json:"payer"`
	Links         []paypalLink         `json:"links"`
	CreateTime    string               `json:"create_time"`
	UpdateTime    string               `json:"update_time"`
}

type paypalErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

// Webhook signature verification request/response
type paypalVerifyWebhookRequest struct {
	AuthAlgo         string      `json:"auth_algo"`
	CertURL          string      `json:"cert_url"`
	TransmissionID   string      `json:"transmission_id"`
	TransmissionSig  string      `json:"transmission_sig"`
	TransmissionTime string      `json:"transmission_time"`
	WebhookID        string      `json:"webhook_id"`
	WebhookEvent     interface{} `json:"webhook_event"`
}

type paypalVerifyWebhookResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// Webhook event envelope. The resource shape depends on the event type:
// CHECKOUT.ORDER.* carries an order, PAYMENT.CAPTURE.* carries a capture.
type paypalWebhookEvent struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	ResourceType string `json:"resource_type"`
	Resource     struct {
		ID                string               `json:"id"`
		Status            string               `json:"status"`
		CustomID          string               `json:"custom_id"`
		Amount            *paypalAmount        `json:"amount"`
		PurchaseUnits     []paypalPurchaseUnit `json:"purchase_units"`
		Payer             *paypalPayer         `json:"payer"`
		SupplementaryData *struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
		UpdateTime string `json:"update_time"`
	} `json:"resource"`
	CreateTime string `json:"create_time"`
}
