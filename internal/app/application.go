package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"geosynth.app/internal/adapters/api"
	"geosynth.app/internal/adapters/infrastructure"
	"geosynth.app/internal/config"
	"geosynth.app/internal/core/cache"
	"geosynth.app/internal/core/country"
	"geosynth.app/internal/core/encyclopedia"
	"geosynth.app/internal/core/exchange"
	"geosynth.app/internal/core/news"
	"geosynth.app/internal/core/profile"
	"geosynth.app/internal/core/weather"
	"geosynth.app/internal/ports"
)

type Application struct {
	config    *config.Config
	container *DependencyContainer

	// Use Cases
	cacheManager *cache.Manager
	countries    *country.Repository
	exchange     *exchange.Repository
	profiles     *profile.UseCase

	// Adapters
	httpServer *http.Server
	router     *gin.Engine

	// Infrastructure
	ports *ports.ApplicationPorts
}

// NewApplication wires every component from configuration
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	container, err := NewDependencyContainer(cfg, DependencyOptions{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, container)
	if err != nil {
		_ = container.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies creates an application with provided dependencies
func NewApplicationWithDependencies(cfg *config.Config, container *DependencyContainer) (*Application, error) {
	app := &Application{
		config:    cfg,
		container: container,
		ports:     container.ApplicationPorts(),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")

	cacheConfig := a.config.Cache
	manager, err := cache.NewManager(cache.ManagerDependencies{
		Store:        a.ports.CacheProvider,
		Logger:       a.ports.Logger,
		Metrics:      a.ports.Metrics,
		DefaultTTL:   cacheConfig.DefaultTTL,
		SingleFlight: cacheConfig.SingleFlight,
	})
	if err != nil {
		return fmt.Errorf("create cache manager: %w", err)
	}
	a.cacheManager = manager

	// Country records only carry economics while the feature is on
	var economics ports.EconomicsProvider
	if a.config.Features.Economics {
		economics = a.ports.EconomicsProvider
	}

	countries, err := country.NewRepository(country.RepositoryDependencies{
		Registry:  a.ports.CountryRegistry,
		Economics: economics,
		Cache:     manager,
		Logger:    a.ports.Logger,
		TTL: country.TTLs{
			Country:   cacheConfig.TTL.Country,
			Search:    cacheConfig.TTL.Search,
			Economics: cacheConfig.TTL.Economics,
		},
	})
	if err != nil {
		return fmt.Errorf("create country repository: %w", err)
	}
	a.countries = countries

	weatherRepo, err := weather.NewRepository(weather.RepositoryDependencies{
		Provider:     a.ports.WeatherProvider,
		Cache:        manager,
		Logger:       a.ports.Logger,
		TTL:          cacheConfig.TTL.Weather,
		ForecastDays: a.config.Providers.ForecastDays,
	})
	if err != nil {
		return fmt.Errorf("create weather repository: %w", err)
	}

	newsRepo, err := news.NewRepository(news.RepositoryDependencies{
		Provider: a.ports.NewsProvider,
		Cache:    manager,
		Logger:   a.ports.Logger,
		TTL:      cacheConfig.TTL.News,
		PageSize: a.config.Providers.NewsPageSize,
	})
	if err != nil {
		return fmt.Errorf("create news repository: %w", err)
	}

	encyclopediaRepo, err := encyclopedia.NewRepository(encyclopedia.RepositoryDependencies{
		Provider: a.ports.EncyclopediaProvider,
		Cache:    manager,
		Logger:   a.ports.Logger,
		TTL:      cacheConfig.TTL.Encyclopedia,
	})
	if err != nil {
		return fmt.Errorf("create encyclopedia repository: %w", err)
	}

	deps := profile.UseCaseDependencies{
		Countries:    countries,
		Weather:      weatherRepo,
		News:         newsRepo,
		Encyclopedia: encyclopediaRepo,
		Config:       a.ports.ConfigProvider,
		Logger:       a.ports.Logger,
		Metrics:      a.ports.Metrics,
	}

	if a.ports.ExchangeProvider != nil {
		exchangeRepo, err := exchange.NewRepository(exchange.RepositoryDependencies{
			Provider: a.ports.ExchangeProvider,
			Cache:    manager,
			Logger:   a.ports.Logger,
			TTL:      cacheConfig.TTL.Exchange,
		})
		if err != nil {
			return fmt.Errorf("create exchange repository: %w", err)
		}
		a.exchange = exchangeRepo
		deps.Exchange = exchangeRepo
	}

	profiles, err := profile.NewUseCase(deps)
	if err != nil {
		return fmt.Errorf("create profile use case: %w", err)
	}
	a.profiles = profiles

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	if !a.config.Log.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	systemHealthChecker := infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		CacheChecker:    infrastructure.NewCacheHealthChecker(a.ports.CacheProvider),
		ProviderChecker: infrastructure.NewProviderHealthChecker(a.container.ConfiguredProviders(), a.ports.ConfigProvider.GetProfileConfig().Features),
		ConfigProvider:  a.ports.ConfigProvider,
	})

	opts := api.ServerOptions{
		Config: api.ServerConfig{
			Port: a.config.Server.Port,
		},
		Countries:     a.countries,
		Profiles:      a.profiles,
		CacheStats:    a.cacheManager,
		HealthChecker: systemHealthChecker,
		Metrics:       a.container.Metrics(),
		Logger:        a.ports.Logger,
	}
	if a.exchange != nil {
		opts.Exchange = a.exchange
	}

	httpAdapter, err := api.NewHTTPServerAdapter(opts)
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}

	a.router = httpAdapter.Handler()
	a.httpServer = &http.Server{
		Addr:         httpAdapter.Addr(),
		Handler:      a.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

// Start serves HTTP until the server is shut down
func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting HTTP server", "port", a.config.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.container.Cleanup(); err != nil {
		slog.Warn("Error closing cache backend", "error", err)
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.router
}

// GetProfileUseCase returns the aggregation use case
func (a *Application) GetProfileUseCase() *profile.UseCase {
	return a.profiles
}

// GetCountryRepository returns the country repository
func (a *Application) GetCountryRepository() *country.Repository {
	return a.countries
}
