package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"geosynth.app/internal/adapters/external"
	"geosynth.app/internal/adapters/infrastructure"
	"geosynth.app/internal/adapters/transport"
	"geosynth.app/internal/config"
	"geosynth.app/internal/ports"
)

// Provider names used for transport clients, metrics and health details
const (
	ProviderRestCountries = "restcountries"
	ProviderWorldBank     = "worldbank"
	ProviderGeocoding     = "openmeteo-geocoding"
	ProviderForecast      = "openmeteo-forecast"
	ProviderNewsAPI       = "newsapi"
	ProviderRSS           = "rss"
	ProviderExchangeRate  = "exchangerate"
	ProviderWikipedia     = "wikipedia"
)

type DependencyContainer struct {
	config     *config.Config
	ports      *ports.ApplicationPorts
	httpClient *http.Client
	logger     ports.Logger
	metrics    *infrastructure.MetricsCollectorAdapter
	configured map[string]bool
	closers    []io.Closer
}

// DependencyOptions lets tests swap the outbound HTTP client
type DependencyOptions struct {
	Logger     *slog.Logger
	HTTPClient *http.Client
}

func NewDependencyContainer(cfg *config.Config, opts DependencyOptions) (*DependencyContainer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	container := &DependencyContainer{
		config:     cfg,
		httpClient: httpClient,
		configured: make(map[string]bool),
	}

	if err := container.initializePorts(opts.Logger); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializePorts(base *slog.Logger) error {
	slog.Info("Initializing ports...")

	logger, providerLogger, err := c.buildLoggers(base)
	if err != nil {
		return err
	}

	metrics := infrastructure.NewMetricsCollectorAdapter(infrastructure.MetricsCollectorConfig{
		CacheBackend: c.config.Cache.Type.String(),
	})
	c.logger = logger
	c.metrics = metrics

	store, err := external.NewCacheProviderFactory(metrics).CreateCacheProvider(&c.config.Cache)
	if err != nil {
		slog.Error("Failed to create cache provider", "error", err)
		return fmt.Errorf("create cache provider: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	slog.Info("Cache provider initialized",
		"type", c.config.Cache.Type.String(),
		"max_size", c.config.Cache.MaxSize)

	providers := c.config.Providers

	var registry ports.CountryRegistry
	registry, err = external.NewRestCountriesProviderAdapter(external.RestCountriesProviderParams{
		Client: c.newClient(ProviderRestCountries, providers.RestCountriesBaseURL, nil),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create registry provider: %w", err)
	}
	if providerLogger != nil {
		registry = external.NewRegistryLoggingDecorator(registry, providerLogger)
	}
	c.configured["registry"] = true

	economics, err := external.NewWorldBankProviderAdapter(external.WorldBankProviderParams{
		Client:    c.newClient(ProviderWorldBank, providers.WorldBankBaseURL, nil),
		Logger:    logger,
		DateRange: providers.EconomicsDateRange,
	})
	if err != nil {
		return fmt.Errorf("create economics provider: %w", err)
	}
	c.configured["economics"] = true

	weather, err := external.NewOpenMeteoProviderAdapter(external.OpenMeteoProviderParams{
		Geocoding: c.newClient(ProviderGeocoding, providers.GeocodingBaseURL, nil),
		Forecast:  c.newClient(ProviderForecast, providers.ForecastBaseURL, nil),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create weather provider: %w", err)
	}
	c.configured["weather"] = true

	news, err := c.buildNewsChain(logger, providerLogger)
	if err != nil {
		return err
	}

	encyclopedia, err := external.NewWikipediaProviderAdapter(external.WikipediaProviderParams{
		Client: c.newClient(ProviderWikipedia, providers.WikipediaBaseURL, nil),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create encyclopedia provider: %w", err)
	}
	c.configured["encyclopedia"] = true

	c.ports = &ports.ApplicationPorts{
		CountryRegistry:      registry,
		EconomicsProvider:    economics,
		WeatherProvider:      weather,
		NewsProvider:         news,
		EncyclopediaProvider: encyclopedia,
		CacheProvider:        store,
		ConfigProvider:       infrastructure.NewConfigProviderAdapter(c.config),
		Logger:               logger,
		Metrics:              metrics,
	}

	// ExchangeRate-API has no keyless tier
	if providers.ExchangeAPIKey != "" {
		exchange, err := external.NewExchangeRateProviderAdapter(external.ExchangeRateProviderParams{
			Client: c.newClient(ProviderExchangeRate, providers.ExchangeBaseURL,
				[]string{providers.ExchangeAPIKey},
				transport.WithResponseInterceptor(external.ExchangeRateResultInterceptor())),
			Logger: logger,
			APIKey: providers.ExchangeAPIKey,
		})
		if err != nil {
			return fmt.Errorf("create exchange provider: %w", err)
		}
		c.ports.ExchangeProvider = exchange
		c.configured["exchange"] = true
	} else {
		slog.Warn("EXCHANGERATE_API_KEY not set, exchange rates disabled")
		c.configured["exchange"] = false
	}

	slog.Info("Ports initialized successfully", "providers", c.configured)
	return nil
}

// buildLoggers returns the service logger and, when provider call logging is
// enabled, the logger the provider decorators write to. A configured log
// file receives provider calls in addition to the service log.
func (c *DependencyContainer) buildLoggers(base *slog.Logger) (ports.Logger, ports.Logger, error) {
	logger := infrastructure.NewSlogLoggerAdapter(base)
	if !c.config.Log.ProviderCalls {
		return logger, nil, nil
	}
	if c.config.Log.FilePath == "" {
		return logger, logger, nil
	}

	fileLogger, err := infrastructure.NewFileLoggerAdapter(c.config.Log.FilePath)
	if err != nil {
		slog.Warn("Failed to create file logger, provider calls go to the service log only", "error", err)
		return logger, logger, nil
	}
	slog.Info("Provider call logging enabled", "path", fileLogger.Path())
	return logger, infrastructure.NewMultiLogger(logger, fileLogger), nil
}

func (c *DependencyContainer) buildNewsChain(logger, providerLogger ports.Logger) (ports.NewsProvider, error) {
	providers := c.config.Providers
	available := make(map[string]ports.NewsProvider)

	if providers.NewsAPIKey != "" {
		newsAPI, err := external.NewNewsAPIProviderAdapter(external.NewsAPIProviderParams{
			Client: c.newClient(ProviderNewsAPI, providers.NewsAPIBaseURL,
				[]string{providers.NewsAPIKey},
				transport.WithRequestInterceptor(transport.QueryParamInterceptor("apiKey", providers.NewsAPIKey))),
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create newsapi provider: %w", err)
		}
		available[ProviderNewsAPI] = newsAPI
	}

	rss, err := external.NewRSSNewsProviderAdapter(external.RSSNewsProviderParams{
		Client: c.newClient(ProviderRSS, providers.NewsRSSBaseURL, nil),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create rss news provider: %w", err)
	}
	available[ProviderRSS] = rss

	for name, provider := range available {
		if providerLogger != nil {
			available[name] = external.NewNewsProviderLoggingDecorator(provider, providerLogger)
		}
	}

	c.configured[ProviderNewsAPI] = available[ProviderNewsAPI] != nil
	c.configured["news"] = true

	return external.NewNewsProviderManagerAdapter(external.NewsProviderManagerConfig{
		Providers:     available,
		ProviderOrder: providers.NewsProviderOrder,
		Logger:        logger,
	}), nil
}

// newClient builds one transport client per provider. Retry attempts resolve
// as HTTP_RETRY_POLICIES, then the built-in per-operation defaults, then
// HTTP_RETRY_ATTEMPTS. Secrets are redacted from logged URLs.
func (c *DependencyContainer) newClient(provider, baseURL string, secrets []string, opts ...transport.Option) *transport.Client {
	t := c.config.Transport

	all := []transport.Option{
		transport.WithHTTPClient(c.httpClient),
		transport.WithLogger(c.logger),
		transport.WithMetrics(c.metrics),
		transport.WithRateLimit(t.RateLimitRPS, t.RateLimitBurst),
		transport.WithRequestInterceptor(transport.UserAgentInterceptor(t.UserAgent)),
	}
	all = append(all, opts...)

	return transport.NewClient(transport.Config{
		Provider: provider,
		BaseURL:  baseURL,
		Timeout:  t.Timeout,
		Retry: transport.NewRetryPolicies(transport.RetryPolicy{
			MaxAttempts: t.RetryAttempts,
			BaseDelay:   t.RetryBaseDelay,
			MaxDelay:    t.RetryMaxDelay,
		}, external.DefaultRetryAttempts(), t.RetryPolicies),
		Secrets:     secrets,
		Development: c.config.Log.IsDevelopment(),
	}, all...)
}

// ApplicationPorts returns the wired ports
func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

// Metrics returns the collector behind the metrics port
func (c *DependencyContainer) Metrics() *infrastructure.MetricsCollectorAdapter {
	return c.metrics
}

// ConfiguredProviders reports which providers are wired, for health checks
func (c *DependencyContainer) ConfiguredProviders() map[string]bool {
	out := make(map[string]bool, len(c.configured))
	for k, v := range c.configured {
		out[k] = v
	}
	return out
}

// Cleanup releases the cache backend connection
func (c *DependencyContainer) Cleanup() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
