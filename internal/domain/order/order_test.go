package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) valueobject.Address {
	t.Helper()
	return valueobject.MustNewAddress("1 Market Street", "San Francisco", "94105", "US")
}

func testItems(t *testing.T) []*OrderItem {
	t.Helper()
	desk, err := NewOrderItem(uuid.New(), "Walnut Desk", valueobject.NewMoneyUSDFromFloat(349.99), 2)
	require.NoError(t, err)
	lamp, err := NewOrderItem(uuid.New(), "Desk Lamp", valueobject.NewMoneyUSDFromFloat(39.99), 1)
	require.NoError(t, err)
	return []*OrderItem{desk, lamp}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(
		uuid.New(),
		testItems(t),
		testAddress(t),
		PaymentMethodStripe,
		valueobject.NewMoneyUSDFromFloat(10.00),
		valueobject.NewMoneyUSDFromFloat(55.50),
	)
	require.NoError(t, err)
	return o
}

func TestNewOrderItem(t *testing.T) {
	t.Run("creates item snapshot", func(t *testing.T) {
		productID := uuid.New()
		item, err := NewOrderItem(productID, "Walnut Desk", valueobject.NewMoneyUSDFromFloat(349.99), 2)

		require.NoError(t, err)
		assert.Equal(t, productID, item.ProductID)
		assert.Equal(t, 2, item.Quantity)
		assert.True(t, item.Subtotal().Equals(valueobject.NewMoneyUSDFromFloat(699.98)))
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewOrderItem(uuid.Nil, "Walnut Desk", valueobject.ZeroUSD(), 1)
		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), "Walnut Desk", valueobject.ZeroUSD(), 0)
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), "Walnut Desk", valueobject.NewMoneyUSDFromFloat(-1), 1)
		assert.Error(t, err)
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("computes totals from items", func(t *testing.T) {
		o := newTestOrder(t)

		// 2*349.99 + 39.99 = 739.97
		assert.True(t, o.ItemsTotal.Equal(decimal.NewFromFloat(739.97)))
		assert.True(t, o.ShippingTotal.Equal(decimal.NewFromFloat(10.00)))
		assert.True(t, o.TaxTotal.Equal(decimal.NewFromFloat(55.50)))
		// 739.97 + 10 + 55.50 = 805.47
		assert.True(t, o.GrandTotal.Equal(decimal.NewFromFloat(805.47)))

		assert.Equal(t, OrderStatusPending, o.Status)
		assert.False(t, o.IsPaid)
		assert.False(t, o.IsDelivered)
		assert.Len(t, o.Items, 2)
		for _, item := range o.Items {
			assert.Equal(t, o.ID, item.OrderID)
		}

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*OrderCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), nil, testAddress(t), PaymentMethodStripe,
			valueobject.ZeroUSD(), valueobject.ZeroUSD())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("rejects empty address", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), testItems(t), valueobject.EmptyAddress(), PaymentMethodStripe,
			valueobject.ZeroUSD(), valueobject.ZeroUSD())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "address is required")
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), testItems(t), testAddress(t), PaymentMethod("cheque"),
			valueobject.ZeroUSD(), valueobject.ZeroUSD())
		assert.Error(t, err)
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		desk, err := NewOrderItem(uuid.New(), "Walnut Desk", valueobject.NewMoneyUSDFromFloat(349.99), 1)
		require.NoError(t, err)
		euroLamp, err := NewOrderItem(uuid.New(), "Desk Lamp", mustMoney(t, 39.99, valueobject.EUR), 1)
		require.NoError(t, err)

		_, err = NewOrder(uuid.New(), []*OrderItem{desk, euroLamp}, testAddress(t), PaymentMethodStripe,
			valueobject.ZeroUSD(), valueobject.ZeroUSD())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "one currency")
	})
}

func mustMoney(t *testing.T, amount float64, currency valueobject.Currency) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromFloat(amount, currency)
	require.NoError(t, err)
	return m
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusDelivered))

	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusPaid))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPaid))
}

func TestOrder_AttachPaymentIntent(t *testing.T) {
	o := newTestOrder(t)

	require.NoError(t, o.AttachPaymentIntent("pi_123"))
	assert.Equal(t, "pi_123", o.PaymentIntentID)

	t.Run("rejects empty intent id", func(t *testing.T) {
		assert.Error(t, o.AttachPaymentIntent(""))
	})

	t.Run("rejects after payment", func(t *testing.T) {
		require.NoError(t, o.MarkPaid("pi_123", "shopper@example.com"))
		assert.Error(t, o.AttachPaymentIntent("pi_456"))
	})
}

func TestOrder_MarkPaid(t *testing.T) {
	t.Run("marks pending order paid", func(t *testing.T) {
		o := newTestOrder(t)
		o.ClearDomainEvents()

		require.NoError(t, o.MarkPaid("pi_123", "shopper@example.com"))

		assert.True(t, o.IsPaid)
		assert.NotNil(t, o.PaidAt)
		assert.Equal(t, OrderStatusPaid, o.Status)
		assert.Equal(t, "pi_123", o.PaymentID)
		assert.Equal(t, "shopper@example.com", o.PayerEmail)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*OrderPaidEvent)
		assert.True(t, ok)
	})

	t.Run("second payment rejected", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("pi_123", ""))

		err := o.MarkPaid("pi_456", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already paid")
	})

	t.Run("cancelled order cannot be paid", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel())

		err := o.MarkPaid("pi_123", "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("empty payment id rejected", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Error(t, o.MarkPaid("", ""))
	})
}

func TestOrder_MarkDelivered(t *testing.T) {
	t.Run("delivers paid order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("pi_123", ""))

		require.NoError(t, o.MarkDelivered())

		assert.True(t, o.IsDelivered)
		assert.NotNil(t, o.DeliveredAt)
		assert.Equal(t, OrderStatusDelivered, o.Status)
	})

	t.Run("unpaid order cannot be delivered", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.MarkDelivered()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be paid")
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancels pending order", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.Cancel())
		assert.True(t, o.IsCancelled())
	})

	t.Run("paid order cannot be cancelled", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid("pi_123", ""))

		err := o.Cancel()
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestOrder_IsOwnedBy(t *testing.T) {
	userID := uuid.New()
	o, err := NewOrder(userID, testItems(t), testAddress(t), PaymentMethodTestMode,
		valueobject.ZeroUSD(), valueobject.ZeroUSD())
	require.NoError(t, err)

	assert.True(t, o.IsOwnedBy(userID))
	assert.False(t, o.IsOwnedBy(uuid.New()))
}
