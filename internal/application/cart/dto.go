package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

// UpdateItemRequest represents a request to change a line quantity.
// A quantity of zero removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=99"`
}

// CartItemResponse represents a cart line in API responses
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	UserID    uuid.UUID          `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
	Currency  string             `json:"currency"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToCartResponse converts a domain cart to its API representation
func ToCartResponse(c *cart.Cart) *CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Currency:  string(item.Currency),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().Amount(),
		}
	}

	total := c.Total()
	return &CartResponse{
		UserID:    c.UserID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Total:     total.Amount(),
		Currency:  string(total.Currency()),
		UpdatedAt: c.UpdatedAt,
	}
}
