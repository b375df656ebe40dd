// Package exchange serves currency rates and conversions through the cache.
package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"geosynth.app/internal/core/cache"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

const keyPrefix = "exchange"

type Repository struct {
	provider ports.ExchangeProvider
	cache    *cache.Manager
	logger   ports.Logger
	ttl      time.Duration
}

type RepositoryDependencies struct {
	Provider ports.ExchangeProvider
	Cache    *cache.Manager
	Logger   ports.Logger
	TTL      time.Duration
}

func NewRepository(deps RepositoryDependencies) (*Repository, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("exchange provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	ttl := deps.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Repository{provider: deps.Provider, cache: deps.Cache, logger: deps.Logger, ttl: ttl}, nil
}

// Latest returns the rates quoted from base
func (r *Repository) Latest(ctx context.Context, base string) (*domain.ExchangeSnapshot, error) {
	base, err := normalizeCurrency(base)
	if err != nil {
		return nil, err
	}

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "latest", base), func(ctx context.Context) (*domain.ExchangeSnapshot, error) {
		snapshot, err := r.provider.Latest(ctx, base)
		if err != nil {
			r.logFailure("Exchange rates failed", base, err)
			return nil, err
		}
		return snapshot, nil
	}, cache.WithTTL(r.ttl))
}

// Convert converts amount from one currency to another
func (r *Repository) Convert(ctx context.Context, from, to string, amount float64) (*domain.Conversion, error) {
	from, err := normalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	to, err = normalizeCurrency(to)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, errors.NewValidationError("amount cannot be negative")
	}

	amt := strconv.FormatFloat(amount, 'f', -1, 64)
	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "pair", from, to, amt), func(ctx context.Context) (*domain.Conversion, error) {
		conversion, err := r.provider.Convert(ctx, from, to, amount)
		if err != nil {
			r.logFailure("Currency conversion failed", from+"/"+to, err)
			return nil, err
		}
		return conversion, nil
	}, cache.WithTTL(r.ttl))
}

// SupportedCurrencies lists the currencies the provider quotes
func (r *Repository) SupportedCurrencies(ctx context.Context) ([]domain.CurrencyInfo, error) {
	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "codes", "all"), func(ctx context.Context) ([]domain.CurrencyInfo, error) {
		currencies, err := r.provider.SupportedCurrencies(ctx)
		if err != nil {
			r.logFailure("Supported currencies failed", "all", err)
			return nil, err
		}
		return currencies, nil
	}, cache.WithTTL(r.ttl))
}

// ClearAll drops every exchange entry
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	return r.cache.ClearByPrefix(ctx, cache.Prefix(keyPrefix))
}

func (r *Repository) logFailure(msg, subject string, err error) {
	r.logger.Error(msg,
		ports.F("subject", subject),
		ports.F("error_kind", errors.KindOf(err).String()),
		ports.F("error", err.Error()))
}

func normalizeCurrency(code string) (string, error) {
	if !validation.IsValidCurrencyCode(code) {
		return "", errors.NewValidationError(fmt.Sprintf("invalid currency code %q", code))
	}
	return strings.ToUpper(strings.TrimSpace(code)), nil
}
