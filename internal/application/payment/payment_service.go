package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PaymentService opens payment intents and reconciles their results
// with orders. An order is only marked paid after the provider-side
// state has been verified: status succeeded, amount matching the order,
// and the intent correlated back to the order id. Client confirmation
// and webhooks both converge on HandlePaymentSucceeded, so whichever
// arrives first wins and the other becomes a no-op.
type PaymentService struct {
	orderRepo order.OrderRepository
	userRepo  identity.UserRepository
	registry  payment.Registry
	config    config.PaymentConfig
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	registry payment.Registry,
	cfg config.PaymentConfig,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		registry:  registry,
		config:    cfg,
		logger:    logger,
	}
}

// CreateIntent opens a provider-side payment intent for an unpaid
// order. The order already exists, so a provider failure here leaves a
// recoverable pending order the shopper can retry.
func (s *PaymentService) CreateIntent(ctx context.Context, userID uuid.UUID, req CreateIntentRequest) (*IntentResponse, error) {
	ord, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if ord.IsPaid {
		return nil, payment.ErrPaymentAlreadyPaid
	}
	if !ord.IsPending() {
		return nil, shared.ErrInvalidState
	}

	provider, err := s.registry.Get(payment.ProviderType(ord.PaymentMethod))
	if err != nil {
		return nil, err
	}

	email := ""
	if user, userErr := s.userRepo.FindByID(ctx, userID); userErr == nil {
		email = user.Email
	}

	resp, err := provider.CreateIntent(ctx, &payment.CreateIntentRequest{
		OrderID:       ord.ID,
		Amount:        ord.GrandTotal,
		Currency:      string(ord.Currency),
		CustomerEmail: email,
		Description:   "Storefront order " + ord.ID.String(),
		ReturnURL:     req.ReturnURL,
		CancelURL:     req.CancelURL,
		Metadata:      map[string]string{"user_id": userID.String()},
	})
	if err != nil {
		s.logger.Error("Intent creation failed",
			zap.String("order_id", ord.ID.String()),
			zap.String("provider", provider.Type().String()),
			zap.Error(err))
		return nil, err
	}

	if err := ord.AttachPaymentIntent(resp.IntentID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, ord); err != nil {
		return nil, err
	}

	s.logger.Info("Payment intent opened",
		zap.String("order_id", ord.ID.String()),
		zap.String("intent_id", resp.IntentID),
		zap.String("provider", resp.Provider.String()))

	return toIntentResponse(resp), nil
}

// Confirm reconciles a client-reported payment with the provider and
// the order. The provider is always asked for the authoritative state;
// nothing from the client beyond the intent id is trusted.
func (s *PaymentService) Confirm(ctx context.Context, userID uuid.UUID, req ConfirmPaymentRequest) (*ConfirmPaymentResponse, error) {
	ord, err := s.ownedOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if ord.IsPaid {
		return confirmResponse(ord), nil
	}

	if ord.PaymentIntentID != "" && ord.PaymentIntentID != req.IntentID {
		return nil, payment.ErrPaymentInvalidIntentID
	}

	provider, err := s.registry.Get(payment.ProviderType(ord.PaymentMethod))
	if err != nil {
		return nil, err
	}

	result, err := provider.ConfirmIntent(ctx, &payment.QueryIntentRequest{IntentID: req.IntentID})
	if err != nil {
		return nil, err
	}

	// Test mode fabricates intents the order never saw; adopt the id
	// so the settlement stays traceable.
	if ord.PaymentIntentID == "" {
		if err := ord.AttachPaymentIntent(result.IntentID); err != nil {
			return nil, err
		}
	}

	if err := s.settle(ctx, ord, result); err != nil {
		return nil, err
	}

	return confirmResponse(ord), nil
}

// HandlePaymentSucceeded reconciles a verified provider payment with
// the order it references. Webhook delivery lands here.
func (s *PaymentService) HandlePaymentSucceeded(ctx context.Context, result *payment.QueryIntentResponse) error {
	ord, err := s.findOrderForResult(ctx, result)
	if err != nil {
		return err
	}

	if ord.IsPaid {
		// Client confirmation already settled this order.
		return nil
	}

	if ord.PaymentIntentID == "" {
		if err := ord.AttachPaymentIntent(result.IntentID); err != nil {
			return err
		}
	}

	return s.settle(ctx, ord, result)
}

// ClientConfig returns the public provider settings for the browser
func (s *PaymentService) ClientConfig() *ClientConfigResponse {
	providers := s.registry.List()
	infos := make([]ProviderInfo, len(providers))
	for i, p := range providers {
		infos[i] = ProviderInfo{
			Type:       p.Type().String(),
			Configured: p.IsConfigured(),
		}
	}

	return &ClientConfigResponse{
		StripePublishableKey: s.config.Stripe.PublishableKey,
		PayPalClientID:       s.config.PayPal.ClientID,
		TestMode:             s.config.ForceTestMode,
		Providers:            infos,
	}
}

// settle verifies the provider result against the order and marks it
// paid. All payment paths funnel through here.
func (s *PaymentService) settle(ctx context.Context, ord *order.Order, result *payment.QueryIntentResponse) error {
	if !result.Status.IsSuccess() {
		s.logger.Warn("Payment not succeeded at provider",
			zap.String("order_id", ord.ID.String()),
			zap.String("intent_id", result.IntentID),
			zap.String("status", result.Status.String()))
		return payment.ErrPaymentNotSucceeded
	}

	if result.OrderID != uuid.Nil && result.OrderID != ord.ID {
		s.logger.Error("Intent references a different order",
			zap.String("order_id", ord.ID.String()),
			zap.String("intent_order_id", result.OrderID.String()))
		return payment.ErrPaymentInvalidIntentID
	}

	if !result.Amount.IsZero() {
		if !result.Amount.Equal(ord.GrandTotal) || result.Currency != string(ord.Currency) {
			s.logger.Error("Settled amount does not match order",
				zap.String("order_id", ord.ID.String()),
				zap.String("order_total", ord.GrandTotal.StringFixed(2)),
				zap.String("settled", result.Amount.StringFixed(2)),
				zap.String("settled_currency", result.Currency))
			return payment.ErrPaymentAmountMismatch
		}
	}

	paymentID := result.PaymentID
	if paymentID == "" {
		paymentID = result.IntentID
	}

	if err := ord.MarkPaid(paymentID, result.PayerEmail); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "ALREADY_PAID" {
			return nil
		}
		return err
	}

	if err := s.orderRepo.Update(ctx, ord); err != nil {
		return err
	}

	s.logger.Info("Order paid",
		zap.String("order_id", ord.ID.String()),
		zap.String("payment_id", paymentID),
		zap.String("provider", result.Provider.String()))

	return nil
}

func (s *PaymentService) findOrderForResult(ctx context.Context, result *payment.QueryIntentResponse) (*order.Order, error) {
	if result.OrderID != uuid.Nil {
		ord, err := s.orderRepo.FindByID(ctx, result.OrderID)
		if err == nil {
			return ord, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	return s.orderRepo.FindByPaymentIntentID(ctx, result.IntentID)
}

func (s *PaymentService) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ord.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	return ord, nil
}

func confirmResponse(ord *order.Order) *ConfirmPaymentResponse {
	return &ConfirmPaymentResponse{
		OrderID:   ord.ID,
		IsPaid:    ord.IsPaid,
		PaymentID: ord.PaymentID,
		Status:    string(ord.Status),
		PaidAt:    ord.PaidAt,
	}
}

var _ payment.ConfirmationHandler = (*PaymentService)(nil)
