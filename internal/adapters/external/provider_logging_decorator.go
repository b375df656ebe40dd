package external

import (
	"context"
	"time"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
)

// RegistryLoggingDecorator decorates the country registry with structured logging
type RegistryLoggingDecorator struct {
	registry ports.CountryRegistry
	logger   ports.Logger
}

// NewRegistryLoggingDecorator creates a new logging decorator for the registry
func NewRegistryLoggingDecorator(registry ports.CountryRegistry, logger ports.Logger) ports.CountryRegistry {
	return &RegistryLoggingDecorator{
		registry: registry,
		logger:   logger,
	}
}

// ByCode wraps the registry call with structured logging
func (d *RegistryLoggingDecorator) ByCode(ctx context.Context, code string) (*domain.Country, error) {
	var country *domain.Country
	err := d.logged(OpRegistryByCode, code, func() (int, error) {
		var err error
		country, err = d.registry.ByCode(ctx, code)
		return 1, err
	})
	return country, err
}

// ByCodes wraps the registry call with structured logging
func (d *RegistryLoggingDecorator) ByCodes(ctx context.Context, codes []string) ([]domain.Country, error) {
	var countries []domain.Country
	err := d.logged(OpRegistryByCodes, codes, func() (int, error) {
		var err error
		countries, err = d.registry.ByCodes(ctx, codes)
		return len(countries), err
	})
	return countries, err
}

// ByName wraps the registry call with structured logging
func (d *RegistryLoggingDecorator) ByName(ctx context.Context, name string) ([]domain.Country, error) {
	var countries []domain.Country
	err := d.logged(OpRegistryByName, name, func() (int, error) {
		var err error
		countries, err = d.registry.ByName(ctx, name)
		return len(countries), err
	})
	return countries, err
}

// ByRegion wraps the registry call with structured logging
func (d *RegistryLoggingDecorator) ByRegion(ctx context.Context, region string) ([]domain.Country, error) {
	var countries []domain.Country
	err := d.logged(OpRegistryByRegion, region, func() (int, error) {
		var err error
		countries, err = d.registry.ByRegion(ctx, region)
		return len(countries), err
	})
	return countries, err
}

// All wraps the registry call with structured logging
func (d *RegistryLoggingDecorator) All(ctx context.Context) ([]domain.Country, error) {
	var countries []domain.Country
	err := d.logged(OpRegistryAll, nil, func() (int, error) {
		var err error
		countries, err = d.registry.All(ctx)
		return len(countries), err
	})
	return countries, err
}

func (d *RegistryLoggingDecorator) logged(operation string, argument interface{}, call func() (int, error)) error {
	d.logger.Info("Registry lookup started",
		ports.F("operation", operation),
		ports.F("argument", argument),
		ports.F("event", "request"))

	startTime := time.Now()
	results, err := call()
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("Registry lookup failed",
			ports.F("operation", operation),
			ports.F("argument", argument),
			ports.F("event", "error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return err
	}

	d.logger.Info("Registry lookup completed",
		ports.F("operation", operation),
		ports.F("argument", argument),
		ports.F("event", "response"),
		ports.F("duration_ms", duration.Milliseconds()),
		ports.F("results", results))
	return nil
}

// NewsProviderLoggingDecorator decorates a news provider, usually the chain,
// with structured logging
type NewsProviderLoggingDecorator struct {
	provider ports.NewsProvider
	logger   ports.Logger
}

// NewNewsProviderLoggingDecorator creates a new logging decorator for news providers
func NewNewsProviderLoggingDecorator(provider ports.NewsProvider, logger ports.Logger) ports.NewsProvider {
	return &NewsProviderLoggingDecorator{
		provider: provider,
		logger:   logger,
	}
}

// Search wraps the provider call with structured logging
func (d *NewsProviderLoggingDecorator) Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error) {
	return d.logged(OpNewsSearch, query, func() (*domain.NewsDigest, error) {
		return d.provider.Search(ctx, query, limit)
	})
}

// TopHeadlines wraps the provider call with structured logging
func (d *NewsProviderLoggingDecorator) TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error) {
	return d.logged(OpNewsHeadlines, countryCode, func() (*domain.NewsDigest, error) {
		return d.provider.TopHeadlines(ctx, countryCode, limit)
	})
}

// GetProviderName returns the name of the wrapped provider with logging indication
func (d *NewsProviderLoggingDecorator) GetProviderName() string {
	return "logged(" + d.provider.GetProviderName() + ")"
}

// GetProviderInfo delegates to the wrapped chain when it reports one
func (d *NewsProviderLoggingDecorator) GetProviderInfo() map[string]interface{} {
	info := map[string]interface{}{"provider": d.provider.GetProviderName()}
	if reporter, ok := d.provider.(interface{ GetProviderInfo() map[string]interface{} }); ok {
		info = reporter.GetProviderInfo()
	}
	info["logging_enabled"] = true
	return info
}

func (d *NewsProviderLoggingDecorator) logged(operation, subject string, call func() (*domain.NewsDigest, error)) (*domain.NewsDigest, error) {
	d.logger.Info("News request started",
		ports.F("operation", operation),
		ports.F("subject", subject),
		ports.F("event", "chain_start"))

	startTime := time.Now()
	digest, err := call()
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("News request failed",
			ports.F("operation", operation),
			ports.F("subject", subject),
			ports.F("event", "chain_error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return nil, err
	}

	d.logger.Info("News request completed",
		ports.F("operation", operation),
		ports.F("subject", subject),
		ports.F("event", "chain_success"),
		ports.F("duration_ms", duration.Milliseconds()),
		ports.F("provider", digest.Provider),
		ports.F("articles", len(digest.Articles)))
	return digest, nil
}
