package infrastructure

import (
	"geosynth.app/internal/config"
	"geosynth.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

// NewConfigProviderAdapter creates a new config provider adapter
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

// GetProfileConfig returns aggregation settings
func (c *ConfigProviderAdapter) GetProfileConfig() ports.ProfileConfig {
	features := c.config.Features
	return ports.ProfileConfig{
		Features: ports.FeatureFlags{
			Economics:    features.Economics,
			Weather:      features.Weather,
			News:         features.News,
			Exchange:     features.Exchange,
			Encyclopedia: features.Encyclopedia,
		},
		NewsPageSize: c.config.Providers.NewsPageSize,
		ForecastDays: c.config.Providers.ForecastDays,
	}
}

// GetCacheConfig returns cache configuration
func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Type:         c.config.Cache.Type.String(),
		DefaultTTL:   c.config.Cache.DefaultTTL,
		MaxSize:      c.config.Cache.MaxSize,
		SingleFlight: c.config.Cache.SingleFlight,
	}
}
