package ports

import (
	"context"
	"time"
)

// NoExpiry stores an entry that only eviction or invalidation removes
const NoExpiry time.Duration = 0

// CacheProvider defines the contract for a bounded byte store with
// per-entry expiry. Get reports a miss with a NOT_FOUND error.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
}

// CacheStats describes a cache store for diagnostics
type CacheStats struct {
	Backend     string    `json:"backend"`
	Size        int       `json:"size"`
	MaxSize     int       `json:"maxSize"`
	Keys        []string  `json:"keys"`
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	HitRatio    float64   `json:"hitRatio"`
	LastUpdated time.Time `json:"lastUpdated"`
}
