package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
)

const cartKeyPrefix = "cart:"

// DefaultCartTTL is used when no TTL is configured
const DefaultCartTTL = 30 * 24 * time.Hour

// RedisCartRepository implements cart.CartRepository on Redis.
// Carts are stored as JSON keyed by user ID; every Save refreshes
// the TTL so active shoppers never lose their cart.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepository creates a cart repository backed by an existing
// Redis client. The caller retains ownership of the client.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cart for a user, or shared.ErrNotFound when none exists
func (r *RedisCartRepository) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &c, nil
}

// Save stores the cart and refreshes its expiry
func (r *RedisCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if c == nil || c.UserID == uuid.Nil {
		return shared.NewDomainError("INVALID_CART", "Cart must belong to a user")
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, r.key(c.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}

	return nil
}

// Delete removes the cart for a user. Deleting an absent cart is not an error.
func (r *RedisCartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) key(userID uuid.UUID) string {
	return cartKeyPrefix + userID.String()
}

// Ensure RedisCartRepository implements CartRepository
var _ cart.CartRepository = (*RedisCartRepository)(nil)
