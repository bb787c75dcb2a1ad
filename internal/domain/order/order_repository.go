package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order with its items
	Create(ctx context.Context, order *Order) error

	// Update updates an existing order
	Update(ctx context.Context, order *Order) error

	// FindByID finds an order by ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByPaymentIntentID finds the order correlated to a provider intent
	FindByPaymentIntentID(ctx context.Context, intentID string) (*Order, error)

	// FindByUserID finds all orders for a user matching the filter
	FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountByUserID counts orders for a user matching the filter
	CountByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)

	// FindAll finds all orders matching the filter (admin)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
