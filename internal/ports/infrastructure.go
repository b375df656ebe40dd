package ports

import (
	"context"
	"time"
)

// FeatureFlags switches optional profile sections on and off
type FeatureFlags struct {
	Economics    bool
	Weather      bool
	News         bool
	Exchange     bool
	Encyclopedia bool
}

// ProfileConfig represents aggregation settings
type ProfileConfig struct {
	Features     FeatureFlags
	NewsPageSize int
	ForecastDays int
}

// CacheConfig represents cache configuration as seen by diagnostics
type CacheConfig struct {
	Type         string
	DefaultTTL   time.Duration
	MaxSize      int
	SingleFlight bool
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetProfileConfig() ProfileConfig
	GetCacheConfig() CacheConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// MetricsCollector defines the contract for metrics collection
type MetricsCollector interface {
	RecordCacheHit(ctx context.Context, namespace string)
	RecordCacheMiss(ctx context.Context, namespace string)
	RecordCacheEviction(ctx context.Context, reason string)
	RecordCacheOperation(ctx context.Context, operation string, duration time.Duration)
	RecordUpstreamRequest(ctx context.Context, provider, operation, outcome string, duration time.Duration)
	RecordUpstreamRetry(ctx context.Context, provider, operation string)
	RecordSection(ctx context.Context, section, status string)
}
