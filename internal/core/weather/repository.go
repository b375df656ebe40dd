// Package weather serves current conditions for a city through the cache.
package weather

import (
	"context"
	"time"

	"geosynth.app/internal/core/cache"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const keyPrefix = "weather"

type Repository struct {
	provider     ports.WeatherProvider
	cache        *cache.Manager
	logger       ports.Logger
	ttl          time.Duration
	forecastDays int
}

type RepositoryDependencies struct {
	Provider     ports.WeatherProvider
	Cache        *cache.Manager
	Logger       ports.Logger
	TTL          time.Duration
	ForecastDays int
}

func NewRepository(deps RepositoryDependencies) (*Repository, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("weather provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	days := deps.ForecastDays
	if days <= 0 {
		days = 3
	}

	return &Repository{
		provider:     deps.Provider,
		cache:        deps.Cache,
		logger:       deps.Logger,
		ttl:          ttl,
		forecastDays: days,
	}, nil
}

// GetForCity geocodes the city and reads its conditions
func (r *Repository) GetForCity(ctx context.Context, city, countryCode string) (*domain.WeatherSnapshot, error) {
	request := Request{City: city, CountryCode: countryCode}
	if err := request.IsValid(); err != nil {
		return nil, errors.NewValidationError("invalid weather request: " + err.Error())
	}
	request.Normalize()

	key := cache.Key(keyPrefix, "city", request.cacheArgument())
	return cache.GetOrSet(ctx, r.cache, key, func(ctx context.Context) (*domain.WeatherSnapshot, error) {
		location, err := r.provider.Geocode(ctx, request.City)
		if err != nil {
			r.logFailure("Geocoding failed", request, err)
			return nil, err
		}

		snapshot, err := r.provider.Conditions(ctx, *location, r.forecastDays)
		if err != nil {
			r.logFailure("Weather conditions failed", request, err)
			return nil, err
		}
		if err := validateSnapshot(snapshot); err != nil {
			return nil, errors.NewValidationError("invalid weather data from provider: " + err.Error())
		}

		r.logger.Debug("Weather retrieved",
			ports.F("city", request.City),
			ports.F("temperature", snapshot.Current.Temperature))
		return snapshot, nil
	}, cache.WithTTL(r.ttl))
}

// ClearAll drops every weather entry
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	return r.cache.ClearByPrefix(ctx, cache.Prefix(keyPrefix))
}

func (r *Repository) logFailure(msg string, request Request, err error) {
	r.logger.Error(msg,
		ports.F("city", request.City),
		ports.F("country", request.CountryCode),
		ports.F("error_kind", errors.KindOf(err).String()),
		ports.F("error", err.Error()))
}
