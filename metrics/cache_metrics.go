package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type CacheMetricsCollector struct {
	Hits      *prometheus.CounterVec
	Misses    *prometheus.CounterVec
	Requests  *prometheus.CounterVec
	Evictions *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
	HitRatio  *prometheus.GaugeVec
}

var (
	cacheCollector     *CacheMetricsCollector
	cacheCollectorOnce sync.Once
)

func getCacheCollector() *CacheMetricsCollector {
	cacheCollectorOnce.Do(func() {
		cacheCollector = &CacheMetricsCollector{
			Hits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_cache_hits_total",
					Help: "The total number of cache hits",
				},
				[]string{"backend", "namespace"},
			),
			Misses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_cache_misses_total",
					Help: "The total number of cache misses",
				},
				[]string{"backend", "namespace"},
			),
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_cache_requests_total",
					Help: "The total number of cache lookups",
				},
				[]string{"backend"},
			),
			Evictions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_cache_evictions_total",
					Help: "Entries removed by capacity or expiry",
				},
				[]string{"backend", "reason"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "geosynth_cache_duration_seconds",
					Help:    "Cache operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"backend", "operation"},
			),
			HitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "geosynth_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total lookups)",
				},
				[]string{"backend"},
			),
		}
	})
	return cacheCollector
}

type CacheMetrics struct {
	backend   string
	hits      int64
	misses    int64
	total     int64
	evictions int64
	collector *CacheMetricsCollector
	mu        sync.RWMutex
}

func NewCacheMetrics(backend string) *CacheMetrics {
	return &CacheMetrics{
		backend:   backend,
		collector: getCacheCollector(),
	}
}

func (m *CacheMetrics) RecordHit(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.Hits.WithLabelValues(m.backend, namespace).Inc()
	m.collector.Requests.WithLabelValues(m.backend).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.Misses.WithLabelValues(m.backend, namespace).Inc()
	m.collector.Requests.WithLabelValues(m.backend).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordEviction(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictions++
	m.collector.Evictions.WithLabelValues(m.backend, reason).Inc()
}

func (m *CacheMetrics) RecordLatency(operation string, seconds float64) {
	m.collector.Latency.WithLabelValues(m.backend, operation).Observe(seconds)
}

// updateHitRatio updates the Prometheus hit ratio gauge.
// Must be called while holding the mutex.
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.HitRatio.WithLabelValues(m.backend).Set(ratio)
	}
}

func (m *CacheMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return map[string]interface{}{
		"backend":   m.backend,
		"hits":      m.hits,
		"misses":    m.misses,
		"total":     m.total,
		"evictions": m.evictions,
		"hit_ratio": hitRatio,
	}
}
