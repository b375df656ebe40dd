// Package api provides HTTP adapters for the hexagonal architecture
// These adapters handle incoming HTTP requests and translate them to use cases
package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router        *gin.Engine
	config        ServerConfig
	countries     CountryService
	profiles      ProfileService
	exchange      ExchangeService
	cacheStats    CacheStatsReader
	healthChecker ports.SystemHealthChecker
	metrics       MetricsSnapshotter
	logger        ports.Logger
}

// Use case interfaces that the HTTP adapter depends on
type CountryService interface {
	GetCountry(ctx context.Context, code string) (*domain.Country, error)
	SearchCountries(ctx context.Context, query string) ([]domain.Country, error)
	GetCountriesByRegion(ctx context.Context, region string) ([]domain.Country, error)
	GetAllCountries(ctx context.Context) ([]domain.Country, error)
	GetCountryEconomics(ctx context.Context, code string) (*domain.EconomicIndicatorSet, error)
	GetNeighbours(ctx context.Context, code string) ([]domain.CountrySummary, error)
}

type ProfileService interface {
	GetAggregatedProfile(ctx context.Context, code string) (*domain.AggregatedProfile, error)
	Invalidate(ctx context.Context, code string) error
	ClearAll(ctx context.Context) (int, error)
}

type ExchangeService interface {
	Convert(ctx context.Context, from, to string, amount float64) (*domain.Conversion, error)
	SupportedCurrencies(ctx context.Context) ([]domain.CurrencyInfo, error)
}

type CacheStatsReader interface {
	Stats(ctx context.Context) (ports.CacheStats, error)
}

type MetricsSnapshotter interface {
	GetMetrics(ctx context.Context) (map[string]interface{}, error)
}

// ServerOptions represents options for creating the HTTP server. Exchange is
// optional; without it the exchange routes answer 503.
type ServerOptions struct {
	Config        ServerConfig
	Countries     CountryService
	Profiles      ProfileService
	Exchange      ExchangeService
	CacheStats    CacheStatsReader
	HealthChecker ports.SystemHealthChecker
	Metrics       MetricsSnapshotter
	Logger        ports.Logger
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	server := &HTTPServerAdapter{
		router:        router,
		config:        opts.Config,
		countries:     opts.Countries,
		profiles:      opts.Profiles,
		exchange:      opts.Exchange,
		cacheStats:    opts.CacheStats,
		healthChecker: opts.HealthChecker,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
	}

	server.setupRoutes()
	return server, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.Countries == nil {
		return errors.NewValidationError("country service is required")
	}
	if opts.Profiles == nil {
		return errors.NewValidationError("profile service is required")
	}
	if opts.CacheStats == nil {
		return errors.NewValidationError("cache stats reader is required")
	}
	if opts.HealthChecker == nil {
		return errors.NewValidationError("health checker is required")
	}
	if opts.Metrics == nil {
		return errors.NewValidationError("metrics snapshotter is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		countries := api.Group("/countries")
		countries.GET("", s.listCountries)
		countries.GET("/search", s.searchCountries)
		countries.GET("/:code", s.getCountry)
		countries.GET("/:code/economics", s.getCountryEconomics)
		countries.GET("/:code/profile", s.getCountryProfile)
		countries.GET("/:code/neighbours", s.getCountryNeighbours)

		api.GET("/exchange/convert", s.convertCurrency)
		api.GET("/exchange/currencies", s.listCurrencies)

		api.DELETE("/cache/countries/:code", s.invalidateCountry)
		api.DELETE("/cache", s.clearCache)
		api.GET("/cache/stats", s.getCacheStats)

		api.GET("/health", s.getHealth)
		api.GET("/metrics", s.getMetrics)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler exposes the router to an http.Server
func (s *HTTPServerAdapter) Handler() *gin.Engine {
	return s.router
}

// Addr returns the listen address
func (s *HTTPServerAdapter) Addr() string {
	return fmt.Sprintf(":%d", s.config.Port)
}
