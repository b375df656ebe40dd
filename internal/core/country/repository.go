// Package country serves country records, searches and economics through the cache.
package country

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"geosynth.app/internal/core/cache"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

const (
	keyPrefix = "country"

	// MinSearchLength is the shortest query sent upstream
	MinSearchLength = 2
)

// TTLs holds the expiry of each kind of entry
type TTLs struct {
	Country   time.Duration
	Search    time.Duration
	Economics time.Duration
}

// DefaultTTLs keeps records for an hour and searches for five minutes
func DefaultTTLs() TTLs {
	return TTLs{
		Country:   time.Hour,
		Search:    5 * time.Minute,
		Economics: time.Hour,
	}
}

type Repository struct {
	registry  ports.CountryRegistry
	economics ports.EconomicsProvider
	cache     *cache.Manager
	logger    ports.Logger
	ttl       TTLs
}

type RepositoryDependencies struct {
	Registry  ports.CountryRegistry
	Economics ports.EconomicsProvider
	Cache     *cache.Manager
	Logger    ports.Logger
	TTL       TTLs
}

// NewRepository creates the repository. Economics is optional; without it
// countries are served without indicators.
func NewRepository(deps RepositoryDependencies) (*Repository, error) {
	if deps.Registry == nil {
		return nil, errors.NewValidationError("country registry is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	ttl := deps.TTL
	if ttl == (TTLs{}) {
		ttl = DefaultTTLs()
	}

	return &Repository{
		registry:  deps.Registry,
		economics: deps.Economics,
		cache:     deps.Cache,
		logger:    deps.Logger,
		ttl:       ttl,
	}, nil
}

// GetCountry returns the country for an alpha-2 or alpha-3 code. Economic
// indicators are attached when they can be fetched; their failure is logged
// and never surfaced.
func (r *Repository) GetCountry(ctx context.Context, code string) (*domain.Country, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "code", code), func(ctx context.Context) (*domain.Country, error) {
		country, err := r.registry.ByCode(ctx, code)
		if err != nil {
			r.logFailure("Country lookup failed", "code", code, err)
			return nil, err
		}
		r.rememberCodes(ctx, country)

		if r.economics == nil {
			return country, nil
		}
		set, err := r.GetCountryEconomics(ctx, country.Code)
		if err != nil {
			r.logger.Warn("Economics unavailable, serving country without them",
				ports.F("code", country.Code),
				ports.F("error_kind", errors.KindOf(err).String()),
				ports.F("error", err.Error()))
			return country, nil
		}
		return country.WithEconomics(set), nil
	}, cache.WithTTL(r.ttl.Country))
}

// SearchCountries finds countries by name. Queries shorter than two
// characters return an empty result without calling the registry.
func (r *Repository) SearchCountries(ctx context.Context, query string) ([]domain.Country, error) {
	query = validation.NormalizeQuery(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return []domain.Country{}, nil
	}

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "search", query), func(ctx context.Context) ([]domain.Country, error) {
		countries, err := r.registry.ByName(ctx, query)
		if err != nil {
			r.logFailure("Country search failed", "query", query, err)
			return nil, err
		}
		return countries, nil
	}, cache.WithTTL(r.ttl.Search))
}

// GetCountriesByRegion lists the countries of a region
func (r *Repository) GetCountriesByRegion(ctx context.Context, region string) ([]domain.Country, error) {
	region = validation.NormalizeQuery(region)
	if region == "" {
		return nil, errors.NewValidationError("region cannot be empty")
	}

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "region", region), func(ctx context.Context) ([]domain.Country, error) {
		countries, err := r.registry.ByRegion(ctx, region)
		if err != nil {
			r.logFailure("Region lookup failed", "region", region, err)
			return nil, err
		}
		return countries, nil
	}, cache.WithTTL(r.ttl.Country))
}

// GetAllCountries lists every country
func (r *Repository) GetAllCountries(ctx context.Context) ([]domain.Country, error) {
	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "all", "list"), func(ctx context.Context) ([]domain.Country, error) {
		countries, err := r.registry.All(ctx)
		if err != nil {
			r.logFailure("Country list failed", "operation", "all", err)
			return nil, err
		}
		return countries, nil
	}, cache.WithTTL(r.ttl.Country))
}

// GetCountryEconomics returns the indicator set for a country
func (r *Repository) GetCountryEconomics(ctx context.Context, code string) (*domain.EconomicIndicatorSet, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if r.economics == nil {
		return nil, errors.NewConfigurationError("economics provider is not configured", nil)
	}

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "economics", code), func(ctx context.Context) (*domain.EconomicIndicatorSet, error) {
		set, err := r.economics.Indicators(ctx, code)
		if err != nil {
			r.logFailure("Economics lookup failed", "code", code, err)
			return nil, err
		}
		return set, nil
	}, cache.WithTTL(r.ttl.Economics))
}

// GetNeighbours returns the bordering countries in summary form
func (r *Repository) GetNeighbours(ctx context.Context, code string) ([]domain.CountrySummary, error) {
	country, err := r.GetCountry(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(country.Borders) == 0 {
		return []domain.CountrySummary{}, nil
	}

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "neighbours", country.Code), func(ctx context.Context) ([]domain.CountrySummary, error) {
		countries, err := r.registry.ByCodes(ctx, country.Borders)
		if err != nil {
			r.logFailure("Neighbour lookup failed", "code", country.Code, err)
			return nil, err
		}
		summaries := make([]domain.CountrySummary, len(countries))
		for i := range countries {
			summaries[i] = countries[i].Summary()
		}
		return summaries, nil
	}, cache.WithTTL(r.ttl.Country))
}

// Invalidate drops every entry held for a country under both of its codes,
// whichever of the two is passed in
func (r *Repository) Invalidate(ctx context.Context, code string) error {
	code, err := normalizeCode(code)
	if err != nil {
		return err
	}

	codes := []string{code}
	var aliases []string
	if hit, err := r.cache.Get(ctx, cache.Key(keyPrefix, "alias", code), &aliases); err == nil && hit {
		codes = appendCodes(codes, aliases...)
	}
	var cached domain.Country
	if hit, err := r.cache.Get(ctx, cache.Key(keyPrefix, "code", code), &cached); err == nil && hit {
		codes = appendCodes(codes, cached.Code, cached.Code3)
	}

	for _, c := range codes {
		for _, op := range []string{"code", "economics", "neighbours", "alias"} {
			if err := r.cache.Delete(ctx, cache.Key(keyPrefix, op, c)); err != nil {
				return err
			}
		}
	}

	r.logger.Info("Country cache invalidated", ports.F("codes", codes))
	return nil
}

// rememberCodes links the alpha-2 and alpha-3 codes of a fetched record so
// either one can later invalidate entries stored under the other
func (r *Repository) rememberCodes(ctx context.Context, country *domain.Country) {
	codes := appendCodes(nil, country.Code, country.Code3)
	for _, c := range codes {
		key := cache.Key(keyPrefix, "alias", c)
		if err := r.cache.Set(ctx, key, codes, cache.WithTTL(r.ttl.Country)); err != nil {
			r.logger.Warn("Failed to store country code alias",
				ports.F("key", key),
				ports.F("error", err.Error()))
		}
	}
}

// ClearAll drops every country entry and reports how many were removed
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	return r.cache.ClearByPrefix(ctx, cache.Prefix(keyPrefix))
}

func (r *Repository) logFailure(msg, key string, value interface{}, err error) {
	r.logger.Error(msg,
		ports.F(key, value),
		ports.F("error_kind", errors.KindOf(err).String()),
		ports.F("error", err.Error()))
}

func normalizeCode(code string) (string, error) {
	if !validation.IsValidCountryCode(code) {
		return "", errors.NewValidationError(fmt.Sprintf("invalid country code %q: expected 2 or 3 letters", code))
	}
	return validation.NormalizeCountryCode(code), nil
}

// appendCodes adds the known codes not yet present, upper-cased
func appendCodes(codes []string, candidates ...string) []string {
	for _, c := range candidates {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || c == domain.Unknown {
			continue
		}
		seen := false
		for _, existing := range codes {
			if existing == c {
				seen = true
				break
			}
		}
		if !seen {
			codes = append(codes, c)
		}
	}
	return codes
}
