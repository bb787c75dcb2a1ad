package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // Created, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // Payment confirmed
	OrderStatusDelivered OrderStatus = "delivered" // Shipped and delivered
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled before payment
)

// CanTransitionTo checks if a status transition is allowed
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
		OrderStatusPaid:      {OrderStatusDelivered},
		OrderStatusDelivered: {},
		OrderStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// PaymentMethod identifies which payment provider settles an order
type PaymentMethod string

const (
	PaymentMethodStripe   PaymentMethod = "stripe"
	PaymentMethodPayPal   PaymentMethod = "paypal"
	PaymentMethodTestMode PaymentMethod = "testmode"
)

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodStripe, PaymentMethodPayPal, PaymentMethodTestMode:
		return true
	}
	return false
}

// OrderItem is an immutable snapshot of a purchased product line.
// Name and unit price are frozen at order creation so later catalog
// edits never change what the shopper agreed to pay.
type OrderItem struct {
	ID        uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name      string               `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	Quantity  int                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line snapshot
func NewOrderItem(productID uuid.UUID, name string, unitPrice valueobject.Money, quantity int) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice.Amount().Round(2),
		Currency:  unitPrice.Currency(),
		Quantity:  quantity,
	}, nil
}

// Subtotal returns unit price times quantity
func (i *OrderItem) Subtotal() valueobject.Money {
	m, _ := valueobject.NewMoney(i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))), i.Currency)
	return m
}

// Order is the aggregate root for a customer purchase. Totals are
// computed once at creation; isPaid flips only through MarkPaid, which
// payment confirmation and provider webhooks both funnel into.
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID"`
	ShippingAddress valueobject.Address  `gorm:"type:jsonb"`
	PaymentMethod   PaymentMethod        `gorm:"type:varchar(20);not null"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	ItemsTotal      decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	ShippingTotal   decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	TaxTotal        decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	GrandTotal      decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus          `gorm:"type:varchar(20);not null;default:'pending';index"`
	IsPaid          bool                 `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsDelivered     bool `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
	PaymentIntentID string `gorm:"type:varchar(255);index"` // Provider-side intent/order id
	PaymentID       string `gorm:"type:varchar(255);index"` // Provider-side settled payment id
	PayerEmail      string `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order from item snapshots. Shipping and tax
// are priced by the caller; the aggregate derives items and grand totals.
func NewOrder(
	userID uuid.UUID,
	items []*OrderItem,
	shippingAddress valueobject.Address,
	paymentMethod PaymentMethod,
	shippingTotal, taxTotal valueobject.Money,
) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER_ID", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if shippingAddress.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if shippingTotal.IsNegative() || taxTotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Shipping and tax cannot be negative")
	}

	currency := items[0].Currency
	itemsTotal := valueobject.Zero(currency)
	for _, item := range items {
		if item.Currency != currency {
			return nil, shared.NewDomainError("CURRENCY_MISMATCH", "All order items must share one currency")
		}
		itemsTotal = itemsTotal.MustAdd(item.Subtotal())
	}

	grandTotal, err := itemsTotal.Add(shippingTotal)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Shipping total currency does not match items")
	}
	grandTotal, err = grandTotal.Add(taxTotal)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Tax total currency does not match items")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]OrderItem, 0, len(items)),
		ShippingAddress:   shippingAddress,
		PaymentMethod:     paymentMethod,
		Currency:          currency,
		ItemsTotal:        itemsTotal.Amount().Round(2),
		ShippingTotal:     shippingTotal.Amount().Round(2),
		TaxTotal:          taxTotal.Amount().Round(2),
		GrandTotal:        grandTotal.Amount().Round(2),
		Status:            OrderStatusPending,
	}

	for _, item := range items {
		item.OrderID = order.ID
		order.Items = append(order.Items, *item)
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// GrandTotalMoney returns the grand total as a Money value object
func (o *Order) GrandTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.GrandTotal, o.Currency)
	return m
}

// ItemsTotalMoney returns the items total as a Money value object
func (o *Order) ItemsTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.ItemsTotal, o.Currency)
	return m
}

// AttachPaymentIntent records the provider-side intent created for this order
func (o *Order) AttachPaymentIntent(intentID string) error {
	if o.IsPaid {
		return shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}
	if o.Status != OrderStatusPending {
		return shared.ErrInvalidState
	}
	if intentID == "" {
		return shared.NewDomainError("INVALID_INTENT_ID", "Payment intent ID cannot be empty")
	}

	o.PaymentIntentID = intentID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// MarkPaid transitions the order to paid, recording the provider's
// payment id. The caller is responsible for verifying the payment with
// the provider first.
func (o *Order) MarkPaid(paymentID, payerEmail string) error {
	if o.IsPaid {
		return shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return shared.ErrInvalidState
	}
	if paymentID == "" {
		return shared.NewDomainError("INVALID_PAYMENT_ID", "Payment ID cannot be empty")
	}

	now := time.Now()
	o.Status = OrderStatusPaid
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentID = paymentID
	o.PayerEmail = payerEmail
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkDelivered transitions a paid order to delivered
func (o *Order) MarkDelivered() error {
	if !o.IsPaid {
		return shared.NewDomainError("NOT_PAID", "Order must be paid before delivery")
	}
	if !o.Status.CanTransitionTo(OrderStatusDelivered) {
		return shared.ErrInvalidState
	}

	now := time.Now()
	o.Status = OrderStatusDelivered
	o.IsDelivered = true
	o.DeliveredAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Cancel cancels a pending order so its stock can be restored
func (o *Order) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.ErrInvalidState
	}

	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// IsOwnedBy returns true if the order belongs to the given user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsPending returns true if the order awaits payment
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsCancelled returns true if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}
