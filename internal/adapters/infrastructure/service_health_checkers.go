package infrastructure

import (
	"context"
	"time"

	"geosynth.app/internal/ports"
)

// CacheHealthChecker reports whether the cache backend answers
type CacheHealthChecker struct {
	cache   ports.CacheProvider
	timeout time.Duration
}

// NewCacheHealthChecker creates a new cache health checker
func NewCacheHealthChecker(cache ports.CacheProvider) *CacheHealthChecker {
	return &CacheHealthChecker{cache: cache, timeout: 2 * time.Second}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Check pings backends that support it, then asks for stats
func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cache",
		Status:    "healthy",
		Details:   map[string]interface{}{},
	}

	if c.cache == nil {
		status.Status = "unhealthy"
		status.Error = "cache backend is not configured"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if p, ok := c.cache.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Error = err.Error()
			return status
		}
		status.Details["ping"] = "PONG"
	}

	stats, err := c.cache.Stats(ctx)
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}

	status.Details["backend"] = stats.Backend
	status.Details["size"] = stats.Size
	status.Details["maxSize"] = stats.MaxSize
	return status
}

// ProviderHealthChecker reports which upstream providers are wired
type ProviderHealthChecker struct {
	providers map[string]bool
	features  ports.FeatureFlags
}

// NewProviderHealthChecker takes provider name to configured flag
func NewProviderHealthChecker(providers map[string]bool, features ports.FeatureFlags) *ProviderHealthChecker {
	return &ProviderHealthChecker{providers: providers, features: features}
}

// Check does not call upstreams; it reports configuration only
func (p *ProviderHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "providers",
		Status:    "healthy",
		Details:   map[string]interface{}{},
	}

	for name, configured := range p.providers {
		status.Details[name] = configured
	}
	status.Details["features"] = map[string]bool{
		"economics":    p.features.Economics,
		"weather":      p.features.Weather,
		"news":         p.features.News,
		"exchange":     p.features.Exchange,
		"encyclopedia": p.features.Encyclopedia,
	}

	if !p.providers["registry"] {
		status.Status = "unhealthy"
		status.Error = "country registry is not available"
	}

	return status
}
