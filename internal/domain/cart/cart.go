package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// MaxItemQuantity caps a single line to keep carts sane
const MaxItemQuantity = 99

// CartItem is a line in a shopper's cart. Name and unit price are
// snapshots taken when the item was added; checkout re-reads the
// catalog before money changes hands.
type CartItem struct {
	ProductID uuid.UUID            `json:"product_id"`
	Name      string               `json:"name"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	Currency  valueobject.Currency `json:"currency"`
	Quantity  int                  `json:"quantity"`
}

// Subtotal returns unit price times quantity
func (i CartItem) Subtotal() valueobject.Money {
	m, _ := valueobject.NewMoney(i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))), i.Currency)
	return m
}

// Cart holds a shopper's selected products until checkout.
// Carts are transient: they live in cache keyed by user and are
// cleared when an order is created.
type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     make([]CartItem, 0),
		UpdatedAt: time.Now(),
	}
}

// AddItem adds a product to the cart, merging quantity if the product
// is already present
func (c *Cart) AddItem(productID uuid.UUID, name string, unitPrice valueobject.Money, quantity int) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			merged := c.Items[idx].Quantity + quantity
			if merged > MaxItemQuantity {
				return shared.NewDomainError("QUANTITY_LIMIT_EXCEEDED", "Quantity per item cannot exceed 99")
			}
			c.Items[idx].Quantity = merged
			c.Items[idx].Name = name
			c.Items[idx].UnitPrice = unitPrice.Amount()
			c.Items[idx].Currency = unitPrice.Currency()
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	if quantity > MaxItemQuantity {
		return shared.NewDomainError("QUANTITY_LIMIT_EXCEEDED", "Quantity per item cannot exceed 99")
	}

	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice.Amount(),
		Currency:  unitPrice.Currency(),
		Quantity:  quantity,
	})
	c.UpdatedAt = time.Now()

	return nil
}

// UpdateItemQuantity replaces the quantity of an existing line
func (c *Cart) UpdateItemQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if quantity > MaxItemQuantity {
		return shared.NewDomainError("QUANTITY_LIMIT_EXCEEDED", "Quantity per item cannot exceed 99")
	}

	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			c.Items[idx].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.ErrNotFound
}

// RemoveItem removes a line from the cart
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.ErrNotFound
}

// Clear removes all lines from the cart
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.UpdatedAt = time.Now()
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total number of units across all lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Total returns the sum of all line subtotals
func (c *Cart) Total() valueobject.Money {
	total := valueobject.Zero(valueobject.DefaultCurrency)
	for _, item := range c.Items {
		if total.IsZero() && total.Currency() != item.Currency {
			total = valueobject.Zero(item.Currency)
		}
		total = total.MustAdd(item.Subtotal())
	}
	return total
}
