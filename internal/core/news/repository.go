// Package news serves news digests through the cache.
package news

import (
	"context"
	"time"

	"geosynth.app/internal/core/cache"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
	"geosynth.app/pkg/validation"
)

const (
	keyPrefix       = "news"
	defaultPageSize = 10
	maxPageSize     = 100
)

type Repository struct {
	provider ports.NewsProvider
	cache    *cache.Manager
	logger   ports.Logger
	ttl      time.Duration
	pageSize int
}

type RepositoryDependencies struct {
	Provider ports.NewsProvider
	Cache    *cache.Manager
	Logger   ports.Logger
	TTL      time.Duration
	PageSize int
}

func NewRepository(deps RepositoryDependencies) (*Repository, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("news provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Repository{
		provider: deps.Provider,
		cache:    deps.Cache,
		logger:   deps.Logger,
		ttl:      ttl,
		pageSize: pageSize,
	}, nil
}

// Search returns recent articles for a query; limit <= 0 uses the page size
func (r *Repository) Search(ctx context.Context, query string, limit int) (*domain.NewsDigest, error) {
	query = validation.NormalizeQuery(query)
	if query == "" {
		return nil, errors.NewValidationError("news query cannot be empty")
	}
	limit = r.limit(limit)

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "search", query, limit), func(ctx context.Context) (*domain.NewsDigest, error) {
		digest, err := r.provider.Search(ctx, query, limit)
		if err != nil {
			r.logFailure("News search failed", query, err)
			return nil, err
		}
		return digest, nil
	}, cache.WithTTL(r.ttl))
}

// TopHeadlines returns the current headlines of a country
func (r *Repository) TopHeadlines(ctx context.Context, countryCode string, limit int) (*domain.NewsDigest, error) {
	if !validation.IsValidCountryCode(countryCode) || len(validation.NormalizeCountryCode(countryCode)) != 2 {
		return nil, errors.NewValidationError("headlines need a two-letter country code")
	}
	countryCode = validation.NormalizeCountryCode(countryCode)
	limit = r.limit(limit)

	return cache.GetOrSet(ctx, r.cache, cache.Key(keyPrefix, "headlines", countryCode, limit), func(ctx context.Context) (*domain.NewsDigest, error) {
		digest, err := r.provider.TopHeadlines(ctx, countryCode, limit)
		if err != nil {
			r.logFailure("Headlines failed", countryCode, err)
			return nil, err
		}
		return digest, nil
	}, cache.WithTTL(r.ttl))
}

// ClearAll drops every news entry
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	return r.cache.ClearByPrefix(ctx, cache.Prefix(keyPrefix))
}

func (r *Repository) limit(n int) int {
	if n <= 0 {
		return r.pageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

func (r *Repository) logFailure(msg, subject string, err error) {
	r.logger.Error(msg,
		ports.F("subject", subject),
		ports.F("error_kind", errors.KindOf(err).String()),
		ports.F("error", err.Error()))
}
