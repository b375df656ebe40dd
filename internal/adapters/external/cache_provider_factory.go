package external

import (
	"fmt"

	"geosynth.app/internal/config"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

type CacheProviderFactory struct {
	metrics ports.MetricsCollector
}

func NewCacheProviderFactory(metrics ports.MetricsCollector) *CacheProviderFactory {
	return &CacheProviderFactory{metrics: metrics}
}

func (f *CacheProviderFactory) CreateCacheProvider(cfg *config.CacheConfig) (ports.CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case config.CacheTypeMemory:
		return NewMemoryCacheProvider(MemoryCacheOptions{MaxSize: cfg.MaxSize, Metrics: f.metrics}), nil
	case config.CacheTypeRedis:
		provider, err := NewRedisCacheProviderAdapter(&cfg.Redis, cfg.MaxSize, f.metrics)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type.String()), nil)
	}
}
