package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence.
// Carts are keyed by user; a missing cart is reported as shared.ErrNotFound
// and callers create an empty one lazily.
type CartRepository interface {
	// Get returns the cart for a user
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save stores the cart, refreshing its expiry
	Save(ctx context.Context, cart *Cart) error

	// Delete removes the cart for a user
	Delete(ctx context.Context, userID uuid.UUID) error
}
