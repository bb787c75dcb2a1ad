package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OrderService handles checkout and the order lifecycle.
//
// Checkout re-reads the catalog instead of trusting cart snapshots:
// prices and stock may have changed while the cart sat in cache. The
// order is created unpaid; payment runs afterwards and a failure there
// leaves a recoverable pending order.
type OrderService struct {
	orderRepo   order.OrderRepository
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	checkout    config.CheckoutConfig
	logger      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo order.OrderRepository,
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	checkout config.CheckoutConfig,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		checkout:    checkout,
		logger:      logger,
	}
}

// Checkout turns the user's cart into a pending order, reserving stock
// and clearing the cart
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	userCart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CART_EMPTY", "Cart is empty")
		}
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, shared.NewDomainError("CART_EMPTY", "Cart is empty")
	}

	address, err := valueobject.NewAddress(
		req.ShippingAddress.Line1,
		req.ShippingAddress.City,
		req.ShippingAddress.PostalCode,
		req.ShippingAddress.Country,
		valueobject.WithLine2(req.ShippingAddress.Line2),
	)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	paymentMethod := order.PaymentMethod(req.PaymentMethod)
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	items, products, err := s.priceCartLines(ctx, userCart)
	if err != nil {
		return nil, err
	}

	itemsTotal := valueobject.Zero(items[0].Currency)
	for _, item := range items {
		itemsTotal = itemsTotal.MustAdd(item.Subtotal())
	}

	newOrder, err := order.NewOrder(
		userID,
		items,
		address,
		paymentMethod,
		s.shippingTotal(itemsTotal),
		s.taxTotal(itemsTotal),
	)
	if err != nil {
		return nil, err
	}

	// Reserve stock before persisting the order; if the order insert
	// fails the reservation is rolled back.
	if err := s.productRepo.SaveBatch(ctx, products); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, newOrder); err != nil {
		for _, product := range products {
			if restoreErr := product.RestoreStock(quantityFor(items, product.ID)); restoreErr != nil {
				s.logger.Error("Stock rollback failed",
					zap.String("product_id", product.ID.String()),
					zap.Error(restoreErr))
			}
		}
		if rollbackErr := s.productRepo.SaveBatch(ctx, products); rollbackErr != nil {
			s.logger.Error("Stock rollback save failed", zap.Error(rollbackErr))
		}
		return nil, err
	}

	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		// The order exists either way; a stale cart is only a nuisance.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	s.logger.Info("Order created",
		zap.String("order_id", newOrder.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("grand_total", newOrder.GrandTotal.StringFixed(2)))

	return ToOrderResponse(newOrder), nil
}

// Get returns an order if it belongs to the user
func (s *OrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	ord, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(ord), nil
}

// ListMine returns the user's own orders
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	total, err := s.orderRepo.CountByUserID(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	orders, err := s.orderRepo.FindByUserID(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// Cancel cancels a pending unpaid order and restores its stock
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	ord, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if err := ord.Cancel(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, ord); err != nil {
		return nil, err
	}

	if err := s.restoreOrderStock(ctx, ord); err != nil {
		s.logger.Error("Failed to restore stock for cancelled order",
			zap.String("order_id", ord.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Order cancelled", zap.String("order_id", ord.ID.String()))

	return ToOrderResponse(ord), nil
}

// ListAll returns orders across all users. Admin only.
func (s *OrderService) ListAll(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// GetAny returns any order by ID. Admin only.
func (s *OrderService) GetAny(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(ord), nil
}

// MarkDelivered marks a paid order as delivered. Admin only.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := ord.MarkDelivered(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, ord); err != nil {
		return nil, err
	}

	s.logger.Info("Order delivered", zap.String("order_id", ord.ID.String()))

	return ToOrderResponse(ord), nil
}

// priceCartLines re-reads the catalog for every cart line and reserves
// stock on the returned products. Current catalog prices win over cart
// snapshots.
func (s *OrderService) priceCartLines(ctx context.Context, userCart *cart.Cart) ([]*order.OrderItem, []*catalog.Product, error) {
	ids := make([]uuid.UUID, len(userCart.Items))
	for i, item := range userCart.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]*order.OrderItem, 0, len(userCart.Items))
	reserved := make([]*catalog.Product, 0, len(userCart.Items))
	for _, line := range userCart.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product "+line.Name+" is no longer available")
		}
		if !product.IsPurchasable(line.Quantity) {
			return nil, nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+product.Name+" is out of stock or inactive")
		}
		if err := product.ReserveStock(line.Quantity); err != nil {
			return nil, nil, err
		}

		item, err := order.NewOrderItem(product.ID, product.Name, product.PriceMoney(), line.Quantity)
		if err != nil {
			return nil, nil, err
		}

		items = append(items, item)
		reserved = append(reserved, product)
	}

	return items, reserved, nil
}

func (s *OrderService) restoreOrderStock(ctx context.Context, ord *order.Order) error {
	ids := make([]uuid.UUID, len(ord.Items))
	for i, item := range ord.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	quantities := make(map[uuid.UUID]int, len(ord.Items))
	for _, item := range ord.Items {
		quantities[item.ProductID] = item.Quantity
	}

	restored := make([]*catalog.Product, 0, len(products))
	for i := range products {
		product := &products[i]
		if err := product.RestoreStock(quantities[product.ID]); err != nil {
			return err
		}
		restored = append(restored, product)
	}

	return s.productRepo.SaveBatch(ctx, restored)
}

func (s *OrderService) shippingTotal(itemsTotal valueobject.Money) valueobject.Money {
	threshold := decimal.NewFromFloat(s.checkout.FreeShippingThreshold)
	if threshold.IsPositive() && itemsTotal.Amount().GreaterThanOrEqual(threshold) {
		return valueobject.Zero(itemsTotal.Currency())
	}

	shipping, _ := valueobject.NewMoney(decimal.NewFromFloat(s.checkout.ShippingFlatRate), itemsTotal.Currency())
	return shipping
}

func (s *OrderService) taxTotal(itemsTotal valueobject.Money) valueobject.Money {
	if s.checkout.TaxRate <= 0 {
		return valueobject.Zero(itemsTotal.Currency())
	}
	return itemsTotal.CalculatePercentage(decimal.NewFromFloat(s.checkout.TaxRate)).Round(2)
}

func (s *OrderService) toDomainFilter(filter OrderListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}

func (s *OrderService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Hide other users' orders entirely rather than answering 403.
	if !ord.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}

	return ord, nil
}

func quantityFor(items []*order.OrderItem, productID uuid.UUID) int {
	for _, item := range items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}
