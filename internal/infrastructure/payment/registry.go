package payment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// ProviderRegistry implements payment.Registry. It constructs every
// provider up front and decides per request whether the real provider
// is usable or the test-mode simulation should stand in for it.
type ProviderRegistry struct {
	stripe   *StripeAdapter
	paypal   *PayPalAdapter
	testMode *TestModeProvider

	allowTestMode bool
	forceTestMode bool
	logger        *zap.Logger
}

// NewProviderRegistry creates a registry from payment configuration
func NewProviderRegistry(cfg config.PaymentConfig, logger *zap.Logger) *ProviderRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderRegistry{
		stripe:        NewStripeAdapter(cfg.Stripe),
		paypal:        NewPayPalAdapter(cfg.PayPal),
		testMode:      NewTestModeProvider(),
		allowTestMode: cfg.AllowTestMode,
		forceTestMode: cfg.ForceTestMode,
		logger:        logger,
	}
}

// Get returns the provider for the given type.
// When the requested provider has no credentials and test mode is
// allowed, the simulation is substituted so checkout keeps working in
// development environments.
func (r *ProviderRegistry) Get(providerType payment.ProviderType) (payment.Provider, error) {
	if !providerType.IsValid() {
		return nil, fmt.Errorf("%w: unknown provider %q", payment.ErrPaymentInvalidMethod, providerType)
	}

	if r.forceTestMode {
		return r.testMode, nil
	}

	var provider payment.Provider
	switch providerType {
	case payment.ProviderTypeStripe:
		provider = r.stripe
	case payment.ProviderTypePayPal:
		provider = r.paypal
	case payment.ProviderTypeTestMode:
		if !r.allowTestMode {
			return nil, payment.ErrProviderNotConfigured
		}
		return r.testMode, nil
	}

	if !provider.IsConfigured() {
		if r.allowTestMode {
			r.logger.Warn("payment provider not configured, substituting test mode",
				zap.String("provider", providerType.String()),
			)
			return r.testMode, nil
		}
		return nil, fmt.Errorf("%w: %s", payment.ErrProviderNotConfigured, providerType)
	}

	return provider, nil
}

// List returns all providers that can currently serve requests
func (r *ProviderRegistry) List() []payment.Provider {
	if r.forceTestMode {
		return []payment.Provider{r.testMode}
	}

	providers := make([]payment.Provider, 0, 3)
	if r.stripe.IsConfigured() {
		providers = append(providers, r.stripe)
	}
	if r.paypal.IsConfigured() {
		providers = append(providers, r.paypal)
	}
	if r.allowTestMode {
		providers = append(providers, r.testMode)
	}
	return providers
}

// Ensure ProviderRegistry implements the Registry port
var _ payment.Registry = (*ProviderRegistry)(nil)
