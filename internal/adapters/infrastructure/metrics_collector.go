package infrastructure

import (
	"context"
	"time"

	"geosynth.app/metrics"
)

// MetricsCollectorAdapter implements ports.MetricsCollector on top of the
// Prometheus collectors in the metrics package
type MetricsCollectorAdapter struct {
	cacheMetrics    *metrics.CacheMetrics
	upstreamMetrics *metrics.UpstreamMetrics
}

// MetricsCollectorConfig holds configuration for creating the metrics collector
type MetricsCollectorConfig struct {
	CacheBackend string
}

// NewMetricsCollectorAdapter creates a new metrics collector adapter
func NewMetricsCollectorAdapter(config MetricsCollectorConfig) *MetricsCollectorAdapter {
	backend := config.CacheBackend
	if backend == "" {
		backend = "memory"
	}
	return &MetricsCollectorAdapter{
		cacheMetrics:    metrics.NewCacheMetrics(backend),
		upstreamMetrics: metrics.NewUpstreamMetrics(),
	}
}

func (m *MetricsCollectorAdapter) RecordCacheHit(_ context.Context, namespace string) {
	m.cacheMetrics.RecordHit(namespace)
}

func (m *MetricsCollectorAdapter) RecordCacheMiss(_ context.Context, namespace string) {
	m.cacheMetrics.RecordMiss(namespace)
}

func (m *MetricsCollectorAdapter) RecordCacheEviction(_ context.Context, reason string) {
	m.cacheMetrics.RecordEviction(reason)
}

func (m *MetricsCollectorAdapter) RecordCacheOperation(_ context.Context, operation string, duration time.Duration) {
	m.cacheMetrics.RecordLatency(operation, duration.Seconds())
}

func (m *MetricsCollectorAdapter) RecordUpstreamRequest(_ context.Context, provider, operation, outcome string, duration time.Duration) {
	m.upstreamMetrics.RecordRequest(provider, operation, outcome, duration.Seconds())
}

func (m *MetricsCollectorAdapter) RecordUpstreamRetry(_ context.Context, provider, operation string) {
	m.upstreamMetrics.RecordRetry(provider, operation)
}

func (m *MetricsCollectorAdapter) RecordSection(_ context.Context, section, status string) {
	m.upstreamMetrics.RecordSection(section, status)
}

// GetMetrics returns a JSON-friendly snapshot for the diagnostics endpoint
func (m *MetricsCollectorAdapter) GetMetrics(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"cache":     m.cacheMetrics.GetStats(),
		"upstreams": m.upstreamMetrics.GetStats(),
	}, nil
}
