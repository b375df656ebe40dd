// Package encyclopedia serves article summaries through the cache.
package encyclopedia

import (
	"context"
	"strings"
	"time"

	"geosynth.app/internal/core/cache"
	"geosynth.app/internal/domain"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const keyPrefix = "encyclopedia"

type Repository struct {
	provider ports.EncyclopediaProvider
	cache    *cache.Manager
	logger   ports.Logger
	ttl      time.Duration
}

type RepositoryDependencies struct {
	Provider ports.EncyclopediaProvider
	Cache    *cache.Manager
	Logger   ports.Logger
	TTL      time.Duration
}

func NewRepository(deps RepositoryDependencies) (*Repository, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("encyclopedia provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Repository{provider: deps.Provider, cache: deps.Cache, logger: deps.Logger, ttl: ttl}, nil
}

// Summary returns the lead section of the article with the given title
func (r *Repository) Summary(ctx context.Context, title string) (*domain.EncyclopediaSummary, error) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return nil, errors.NewValidationError("article title cannot be empty")
	}

	key := cache.Key(keyPrefix, "summary", strings.ToLower(title))
	return cache.GetOrSet(ctx, r.cache, key, func(ctx context.Context) (*domain.EncyclopediaSummary, error) {
		summary, err := r.provider.Summary(ctx, title)
		if err != nil {
			r.logger.Error("Encyclopedia summary failed",
				ports.F("title", title),
				ports.F("error_kind", errors.KindOf(err).String()),
				ports.F("error", err.Error()))
			return nil, err
		}
		return summary, nil
	}, cache.WithTTL(r.ttl))
}

// ClearAll drops every encyclopedia entry
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	return r.cache.ClearByPrefix(ctx, cache.Prefix(keyPrefix))
}
