package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosynth.app/internal/config"
	"geosynth.app/internal/mocks"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

func TestSlogLoggerAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Warn("Retrying upstream request",
		ports.F("provider", "worldbank"),
		ports.F("error", errors.NewNetworkError("timeout", nil)))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "worldbank", entry["provider"])
	assert.Equal(t, "NETWORK_ERROR: timeout", entry["error"])
}

func TestSlogLoggerAdapter_ZeroValueUsesDefault(t *testing.T) {
	logger := &SlogLoggerAdapter{}
	assert.NotPanics(t, func() { logger.Info("hello") })
}

func TestMultiLogger(t *testing.T) {
	a := mocks.NewLogger()
	b := mocks.NewLogger()
	logger := NewMultiLogger(a, nil, b)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e", ports.F("k", "v"))

	assert.Len(t, a.Entries(), 4)
	assert.Len(t, b.Entries(), 4)
	assert.Equal(t, "v", b.Entries()[3].Fields["k"])
}

func TestConfigProviderAdapter(t *testing.T) {
	cfg := &config.Config{
		Cache: config.CacheConfig{Type: config.CacheTypeRedis, DefaultTTL: time.Hour, MaxSize: 250, SingleFlight: true},
		Providers: config.ProvidersConfig{NewsPageSize: 7, ForecastDays: 5},
		Features:  config.FeaturesConfig{Economics: true, News: true},
	}

	adapter := NewConfigProviderAdapter(cfg)

	profile := adapter.GetProfileConfig()
	assert.True(t, profile.Features.Economics)
	assert.False(t, profile.Features.Weather)
	assert.True(t, profile.Features.News)
	assert.Equal(t, 7, profile.NewsPageSize)
	assert.Equal(t, 5, profile.ForecastDays)

	cache := adapter.GetCacheConfig()
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, 250, cache.MaxSize)
	assert.True(t, cache.SingleFlight)
}

type stubCache struct {
	ports.CacheProvider
	stats ports.CacheStats
	err   error
}

func (s stubCache) Stats(context.Context) (ports.CacheStats, error) {
	return s.stats, s.err
}

type pingingCache struct {
	stubCache
	pingErr error
}

func (p pingingCache) Ping(context.Context) error { return p.pingErr }

func TestCacheHealthChecker_Ping(t *testing.T) {
	ok := NewCacheHealthChecker(pingingCache{stubCache: stubCache{stats: ports.CacheStats{Backend: "redis"}}})
	status := ok.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "PONG", status.Details["ping"])

	down := NewCacheHealthChecker(pingingCache{pingErr: errors.NewNetworkError("dial tcp: connection refused", nil)})
	status = down.Check(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Error, "connection refused")
}

func TestSystemHealthChecker(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		checker := NewSystemHealthChecker(SystemHealthCheckerConfig{
			CacheChecker:    NewCacheHealthChecker(stubCache{stats: ports.CacheStats{Backend: "memory", Size: 3, MaxSize: 100}}),
			ProviderChecker: NewProviderHealthChecker(map[string]bool{"registry": true, "news": false}, mocks.AllFeatures()),
			ConfigProvider:  &mocks.ConfigProvider{Cache: ports.CacheConfig{Type: "memory", MaxSize: 100}},
		})

		results := checker.CheckAll(context.Background())

		require.Contains(t, results, "cache")
		assert.Equal(t, "healthy", results["cache"].Status)
		assert.Equal(t, 3, results["cache"].Details["size"])
		assert.Equal(t, "healthy", results["providers"].Status)
		assert.Equal(t, false, results["providers"].Details["news"])
		assert.Equal(t, "memory", results["config"].Details["cacheType"])
	})

	t.Run("unhealthy cache and missing registry", func(t *testing.T) {
		checker := NewSystemHealthChecker(SystemHealthCheckerConfig{
			CacheChecker:    NewCacheHealthChecker(stubCache{err: errors.NewNetworkError("redis down", nil)}),
			ProviderChecker: NewProviderHealthChecker(map[string]bool{}, ports.FeatureFlags{}),
		})

		results := checker.CheckAll(context.Background())

		assert.Equal(t, "unhealthy", results["cache"].Status)
		assert.Contains(t, results["cache"].Error, "redis down")
		assert.Equal(t, "unhealthy", results["providers"].Status)
		assert.NotContains(t, results, "config")
	})
}

func TestMetricsCollectorAdapter_GetMetrics(t *testing.T) {
	adapter := NewMetricsCollectorAdapter(MetricsCollectorConfig{CacheBackend: "adapter_test"})
	ctx := context.Background()

	adapter.RecordCacheHit(ctx, "country")
	adapter.RecordCacheMiss(ctx, "country")
	adapter.RecordCacheEviction(ctx, "capacity")
	adapter.RecordCacheOperation(ctx, "get", time.Millisecond)
	adapter.RecordUpstreamRequest(ctx, "restcountries", "registry.byCode", "success", 10*time.Millisecond)
	adapter.RecordUpstreamRetry(ctx, "restcountries", "registry.byCode")
	adapter.RecordSection(ctx, "weather", "available")

	snapshot, err := adapter.GetMetrics(ctx)
	require.NoError(t, err)

	cache := snapshot["cache"].(map[string]interface{})
	assert.Equal(t, "adapter_test", cache["backend"])
	assert.Equal(t, int64(1), cache["hits"])
	assert.Equal(t, int64(1), cache["evictions"])
	assert.Contains(t, snapshot["upstreams"], "restcountries")
}
