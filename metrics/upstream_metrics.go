package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type UpstreamMetricsCollector struct {
	Requests *prometheus.CounterVec
	Retries  *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Sections *prometheus.CounterVec
}

var (
	upstreamCollector     *UpstreamMetricsCollector
	upstreamCollectorOnce sync.Once
)

func getUpstreamCollector() *UpstreamMetricsCollector {
	upstreamCollectorOnce.Do(func() {
		upstreamCollector = &UpstreamMetricsCollector{
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_upstream_requests_total",
					Help: "Outbound provider calls by outcome",
				},
				[]string{"provider", "operation", "outcome"},
			),
			Retries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_upstream_retries_total",
					Help: "Retries issued after a retryable failure",
				},
				[]string{"provider", "operation"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "geosynth_upstream_duration_seconds",
					Help:    "Outbound provider call duration in seconds",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"provider", "operation"},
			),
			Sections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "geosynth_profile_sections_total",
					Help: "Aggregated profile sections by status",
				},
				[]string{"section", "status"},
			),
		}
	})
	return upstreamCollector
}

// UpstreamMetrics records provider traffic and profile assembly outcomes
type UpstreamMetrics struct {
	collector *UpstreamMetricsCollector
	mu        sync.RWMutex
	calls     map[string]int64
	failures  map[string]int64
}

func NewUpstreamMetrics() *UpstreamMetrics {
	return &UpstreamMetrics{
		collector: getUpstreamCollector(),
		calls:     make(map[string]int64),
		failures:  make(map[string]int64),
	}
}

func (m *UpstreamMetrics) RecordRequest(provider, operation, outcome string, seconds float64) {
	m.collector.Requests.WithLabelValues(provider, operation, outcome).Inc()
	m.collector.Latency.WithLabelValues(provider, operation).Observe(seconds)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[provider]++
	if outcome != "success" {
		m.failures[provider]++
	}
}

func (m *UpstreamMetrics) RecordRetry(provider, operation string) {
	m.collector.Retries.WithLabelValues(provider, operation).Inc()
}

func (m *UpstreamMetrics) RecordSection(section, status string) {
	m.collector.Sections.WithLabelValues(section, status).Inc()
}

// GetStats returns call and failure counts per provider
func (m *UpstreamMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	providers := make(map[string]interface{}, len(m.calls))
	for provider, calls := range m.calls {
		providers[provider] = map[string]interface{}{
			"calls":    calls,
			"failures": m.failures[provider],
		}
	}
	return providers
}
