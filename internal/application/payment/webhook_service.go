package payment

import (
	"context"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WebhookService processes signed provider notifications. Events are
// deduplicated by provider event id; a failed handler releases the
// dedup marker so the provider's retry can get through.
type WebhookService struct {
	registry    payment.Registry
	handler     payment.ConfirmationHandler
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	registry payment.Registry,
	handler payment.ConfirmationHandler,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		registry:    registry,
		handler:     handler,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
	}
}

// Handle verifies a webhook and applies its effect. Unknown event
// types and non-success statuses are acknowledged without action so
// the provider stops retrying them.
func (s *WebhookService) Handle(ctx context.Context, providerType payment.ProviderType, payload []byte, headers map[string]string) error {
	provider, err := s.registry.Get(providerType)
	if err != nil {
		return err
	}

	event, err := provider.VerifyWebhook(ctx, payload, headers)
	if err != nil {
		s.logger.Warn("Webhook verification failed",
			zap.String("provider", providerType.String()),
			zap.Error(err))
		return err
	}

	logger := s.logger.With(
		zap.String("provider", event.Provider.String()),
		zap.String("event_id", event.EventID),
		zap.String("intent_id", event.IntentID),
		zap.String("status", event.Status.String()))

	if s.idemConfig.Enabled && event.EventID != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.EventID, s.idemConfig.TTL)
		if err != nil {
			logger.Error("Idempotency check failed", zap.Error(err))
			return err
		}
		if !fresh {
			logger.Info("Duplicate webhook event skipped")
			return nil
		}
	}

	if !event.Status.IsSuccess() {
		logger.Info("Webhook event acknowledged without action")
		return nil
	}

	result := &payment.QueryIntentResponse{
		IntentID:   event.IntentID,
		Provider:   event.Provider,
		Status:     event.Status,
		Amount:     event.Amount,
		Currency:   event.Currency,
		PaymentID:  event.PaymentID,
		PayerEmail: event.PayerEmail,
		OrderID:    event.OrderID,
	}

	if err := s.handler.HandlePaymentSucceeded(ctx, result); err != nil {
		if s.idemConfig.Enabled && event.EventID != "" {
			if unmarkErr := s.idempotency.Unmark(ctx, event.EventID); unmarkErr != nil {
				logger.Error("Failed to release dedup marker", zap.Error(unmarkErr))
			}
		}
		logger.Error("Webhook handling failed", zap.Error(err))
		return err
	}

	logger.Info("Webhook event processed")
	return nil
}
