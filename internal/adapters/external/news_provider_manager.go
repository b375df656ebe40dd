package external

import (
	"context"
	"fmt"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// NewsProviderManagerAdapter implements Chain of Responsibility over news
// providers: each call tries them in order until one succeeds
type NewsProviderManagerAdapter struct {
	providers []ports.NewsProvider
	logger    ports.Logger
}

// NewsProviderManagerConfig holds configuration for creating the manager
type NewsProviderManagerConfig struct {
	Providers     map[string]ports.NewsProvider
	ProviderOrder []string
	Logger        ports.Logger
}

// NewNewsProviderManagerAdapter orders the configured providers. Names in
// ProviderOrder without a provider are skipped.
func NewNewsProviderManagerAdapter(config NewsProviderManagerConfig) *NewsProviderManagerAdapter {
	manager := &NewsProviderManagerAdapter{
		providers: []ports.NewsProvider{},
		logger:    config.Logger,
	}

	seen := make(map[string]bool)
	for _, name := range config.ProviderOrder {
		if provider, exists := config.Providers[name]; exists && provider != nil && !seen[name] {
			manager.providers = append(manager.providers, provider)
			seen[name] = true
		}
	}

	if len(manager.providers) == 0 {
		for name, provider := range config.Providers {
			if provider != nil && !seen[name] {
				manager.providers = append(manager.providers, provider)
			}
		}
	}

	return manager
}

// Search tries each provider until one succeeds
func (m *NewsProviderManagerAdapter) Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error) {
	return m.chain(ctx, "search", query, func(p ports.NewsProvider) (*domain.NewsDigest, error) {
		return p.Search(ctx, query, limit)
	})
}

// TopHeadlines tries each provider until one succeeds
func (m *NewsProviderManagerAdapter) TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error) {
	return m.chain(ctx, "headlines", countryCode, func(p ports.NewsProvider) (*domain.NewsDigest, error) {
		return p.TopHeadlines(ctx, countryCode, limit)
	})
}

// GetProviderName returns the name of this news provider
func (m *NewsProviderManagerAdapter) GetProviderName() string {
	return "chain"
}

func (m *NewsProviderManagerAdapter) chain(ctx context.Context, operation, subject string,
	call func(ports.NewsProvider) (*domain.NewsDigest, error)) (*domain.NewsDigest, error) {
	if len(m.providers) == 0 {
		return nil, errors.NewConfigurationError("no news providers configured", nil)
	}

	var lastErr error
	for i, provider := range m.providers {
		name := provider.GetProviderName()
		m.logger.Debug("Trying news provider",
			ports.F("provider", name),
			ports.F("operation", operation),
			ports.F("attempt", i+1),
			ports.F("subject", subject))

		digest, err := call(provider)
		if err == nil {
			return digest, nil
		}

		lastErr = err
		m.logger.Warn("News provider failed, trying next",
			ports.F("provider", name),
			ports.F("operation", operation),
			ports.F("error", err.Error()))

		if ctx.Err() != nil {
			break
		}
	}

	m.logger.Error("All news providers failed",
		ports.F("operation", operation),
		ports.F("subject", subject),
		ports.F("providers_tried", len(m.providers)),
		ports.F("last_error", lastErr.Error()))

	if appErr, ok := errors.As(lastErr); ok {
		wrapped := *appErr
		wrapped.Message = fmt.Sprintf("all news providers failed (tried %d): %s", len(m.providers), appErr.Message)
		return nil, &wrapped
	}
	return nil, errors.NewAppError(fmt.Sprintf("all news providers failed (tried %d providers)", len(m.providers)), lastErr)
}

// GetProviderInfo returns information about configured providers
func (m *NewsProviderManagerAdapter) GetProviderInfo() map[string]interface{} {
	names := make([]string, len(m.providers))
	for i, provider := range m.providers {
		names[i] = provider.GetProviderName()
	}

	return map[string]interface{}{
		"total_providers":  len(m.providers),
		"provider_order":   names,
		"chain_enabled":    true,
		"fallback_enabled": len(m.providers) > 1,
	}
}
