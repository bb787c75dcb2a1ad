package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartService manages the shopper's cart. The cart lives in cache and
// stores price snapshots; the catalog is only consulted when a product
// is added.
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
}

// NewCartService creates a new cart service
func NewCartService(cartRepo cart.CartRepository, productRepo catalog.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Get returns the user's cart, creating an empty one if none exists
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	userCart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToCartResponse(userCart), nil
}

// AddItem adds a product to the cart. The product must exist, be
// active, and have enough stock to cover the requested line quantity.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for purchase")
	}

	userCart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Stock is checked against the resulting line quantity so repeated
	// adds cannot pile past what the shelf holds. The authoritative
	// check happens again at checkout.
	requested := req.Quantity
	for _, item := range userCart.Items {
		if item.ProductID == req.ProductID {
			requested += item.Quantity
		}
	}
	if !product.HasStock(requested) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock for the requested quantity")
	}

	if err := userCart.AddItem(product.ID, product.Name, product.PriceMoney(), req.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, userCart); err != nil {
		return nil, err
	}

	return ToCartResponse(userCart), nil
}

// UpdateItem changes a line's quantity. Quantity zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	userCart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item is not in the cart")
		}
		return nil, err
	}

	if req.Quantity == 0 {
		if err := userCart.RemoveItem(productID); err != nil {
			return nil, err
		}
	} else {
		if err := userCart.UpdateItemQuantity(productID, req.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.cartRepo.Save(ctx, userCart); err != nil {
		return nil, err
	}

	return ToCartResponse(userCart), nil
}

// RemoveItem removes a line from the cart
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	return s.UpdateItem(ctx, userID, productID, UpdateItemRequest{Quantity: 0})
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Delete(ctx, userID)
}

func (s *CartService) loadOrCreate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	userCart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.NewCart(userID), nil
		}
		return nil, err
	}
	return userCart, nil
}
