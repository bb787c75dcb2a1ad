package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// ShippingAddressRequest represents the shipping address in a checkout request
type ShippingAddressRequest struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

// CheckoutRequest represents a request to turn the cart into an order
type CheckoutRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required,oneof=stripe paypal testmode"`
}

// OrderListFilter contains filter parameters for listing orders
type OrderListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending paid delivered cancelled"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ShippingAddressResponse represents a shipping address in API responses
type ShippingAddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	Items           []OrderItemResponse     `json:"items"`
	ShippingAddress ShippingAddressResponse `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method"`
	Currency        string                  `json:"currency"`
	ItemsTotal      decimal.Decimal         `json:"items_total"`
	ShippingTotal   decimal.Decimal         `json:"shipping_total"`
	TaxTotal        decimal.Decimal         `json:"tax_total"`
	GrandTotal      decimal.Decimal         `json:"grand_total"`
	Status          string                  `json:"status"`
	IsPaid          bool                    `json:"is_paid"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	IsDelivered     bool                    `json:"is_delivered"`
	DeliveredAt     *time.Time              `json:"delivered_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().Amount(),
		}
	}

	return &OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: ShippingAddressResponse{
			Line1:      o.ShippingAddress.Line1(),
			Line2:      o.ShippingAddress.Line2(),
			City:       o.ShippingAddress.City(),
			PostalCode: o.ShippingAddress.PostalCode(),
			Country:    o.ShippingAddress.Country(),
		},
		PaymentMethod: string(o.PaymentMethod),
		Currency:      string(o.Currency),
		ItemsTotal:    o.ItemsTotal,
		ShippingTotal: o.ShippingTotal,
		TaxTotal:      o.TaxTotal,
		GrandTotal:    o.GrandTotal,
		Status:        string(o.Status),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *ToOrderResponse(&orders[i])
	}
	return responses
}
