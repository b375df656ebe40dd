// Package cache provides the typed read-through cache used by every repository.
// Values are stored as JSON in a bounded ports.CacheProvider.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// Manager stores typed values under string keys with per-entry expiry
type Manager struct {
	store        ports.CacheProvider
	defaultTTL   time.Duration
	logger       ports.Logger
	metrics      ports.MetricsCollector
	singleFlight bool
	group        singleflight.Group
}

// ManagerDependencies holds dependencies for creating the manager
type ManagerDependencies struct {
	Store        ports.CacheProvider
	Logger       ports.Logger
	Metrics      ports.MetricsCollector
	DefaultTTL   time.Duration
	SingleFlight bool
}

// NewManager creates a cache manager
func NewManager(deps ManagerDependencies) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.NewValidationError("cache store is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.DefaultTTL < 0 {
		return nil, errors.NewValidationError("default TTL cannot be negative")
	}

	return &Manager{
		store:        deps.Store,
		defaultTTL:   deps.DefaultTTL,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		singleFlight: deps.SingleFlight,
	}, nil
}

type setOptions struct {
	ttl    time.Duration
	custom bool
}

// SetOption adjusts how a single entry is stored
type SetOption func(*setOptions)

// WithTTL stores the entry for d; zero means the entry never expires
func WithTTL(d time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = d
		o.custom = true
	}
}

// WithoutExpiry stores an entry that only eviction or invalidation removes
func WithoutExpiry() SetOption {
	return WithTTL(ports.NoExpiry)
}

// Get decodes the entry under key into dst. A missing or expired entry
// reports false with no error.
func (m *Manager) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	start := time.Now()
	defer m.observe(ctx, "get", start)

	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.IsNotFoundError(err) {
			m.recordMiss(ctx, key)
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		m.logger.Warn("Discarding undecodable cache entry",
			ports.F("key", key),
			ports.F("error", err.Error()))
		if delErr := m.store.Delete(ctx, key); delErr != nil {
			m.logger.Warn("Failed to delete undecodable cache entry", ports.F("key", key), ports.F("error", delErr.Error()))
		}
		m.recordMiss(ctx, key)
		return false, nil
	}

	m.recordHit(ctx, key)
	return true, nil
}

// Set stores v under key. Without options the default TTL applies.
func (m *Manager) Set(ctx context.Context, key string, v interface{}, opts ...SetOption) error {
	start := time.Now()
	defer m.observe(ctx, "set", start)

	o := setOptions{ttl: m.defaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl < 0 {
		return errors.NewValidationError("TTL cannot be negative")
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ValidationError, "value for "+key+" cannot be encoded", err)
	}
	return m.store.Set(ctx, key, raw, o.ttl)
}

// Delete removes one entry; a missing key is not an error
func (m *Manager) Delete(ctx context.Context, key string) error {
	defer m.observe(ctx, "delete", time.Now())
	return m.store.Delete(ctx, key)
}

// ClearByPrefix removes every entry whose key starts with prefix
func (m *Manager) ClearByPrefix(ctx context.Context, prefix string) (int, error) {
	defer m.observe(ctx, "clear_prefix", time.Now())
	if prefix == "" {
		return 0, errors.NewValidationError("prefix cannot be empty")
	}

	n, err := m.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	m.logger.Info("Cache prefix cleared", ports.F("prefix", prefix), ports.F("removed", n))
	return n, nil
}

// Clear removes every entry
func (m *Manager) Clear(ctx context.Context) error {
	defer m.observe(ctx, "clear", time.Now())
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info("Cache cleared")
	return nil
}

// Stats reports the store's size, live keys and counters
func (m *Manager) Stats(ctx context.Context) (ports.CacheStats, error) {
	return m.store.Stats(ctx)
}

// GetOrSet returns the cached value for key, or calls fn, stores its result
// and returns it. A failing fn stores nothing and its error is returned as is.
// Store failures degrade to calling fn.
func GetOrSet[T any](ctx context.Context, m *Manager, key string, fn func(context.Context) (T, error), opts ...SetOption) (T, error) {
	var cached T
	hit, err := m.Get(ctx, key, &cached)
	if err != nil {
		m.logger.Warn("Cache read failed, fetching",
			ports.F("key", key),
			ports.F("error", err.Error()))
	}
	if hit {
		return cached, nil
	}

	compute := func() (T, error) {
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		if setErr := m.Set(ctx, key, v, opts...); setErr != nil {
			m.logger.Warn("Failed to cache value",
				ports.F("key", key),
				ports.F("error", setErr.Error()))
		}
		return v, nil
	}

	if !m.singleFlight {
		return compute()
	}

	shared, err, _ := m.group.Do(key, func() (interface{}, error) {
		return compute()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := shared.(T)
	return v, nil
}

// Namespace returns the key prefix before the first underscore
func Namespace(key string) string {
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return key
}

func (m *Manager) recordHit(ctx context.Context, key string) {
	if m.metrics != nil {
		m.metrics.RecordCacheHit(ctx, Namespace(key))
	}
}

func (m *Manager) recordMiss(ctx context.Context, key string) {
	if m.metrics != nil {
		m.metrics.RecordCacheMiss(ctx, Namespace(key))
	}
}

func (m *Manager) observe(ctx context.Context, operation string, start time.Time) {
	if m.metrics != nil {
		m.metrics.RecordCacheOperation(ctx, operation, time.Since(start))
	}
}
