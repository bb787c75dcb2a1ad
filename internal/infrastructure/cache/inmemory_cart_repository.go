package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryCartRepository implements cart.CartRepository with a map.
// Suitable for single-instance deployments and testing; carts expire
// lazily on read.
type InMemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]cartEntry
	ttl   time.Duration
}

type cartEntry struct {
	cart      *cart.Cart
	expiresAt time.Time
}

// NewInMemoryCartRepository creates an in-memory cart repository
func NewInMemoryCartRepository(ttl time.Duration) *InMemoryCartRepository {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &InMemoryCartRepository{
		carts: make(map[uuid.UUID]cartEntry),
		ttl:   ttl,
	}
}

// Get returns the cart for a user, or shared.ErrNotFound when none exists
func (r *InMemoryCartRepository) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.carts[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, shared.ErrNotFound
	}
	return e.cart, nil
}

// Save stores the cart and refreshes its expiry
func (r *InMemoryCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if c == nil || c.UserID == uuid.Nil {
		return shared.NewDomainError("INVALID_CART", "Cart must belong to a user")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[c.UserID] = cartEntry{
		cart:      c,
		expiresAt: time.Now().Add(r.ttl),
	}
	return nil
}

// Delete removes the cart for a user
func (r *InMemoryCartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}

// Ensure InMemoryCartRepository implements CartRepository
var _ cart.CartRepository = (*InMemoryCartRepository)(nil)
