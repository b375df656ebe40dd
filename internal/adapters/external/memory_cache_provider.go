package external

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// MemoryCacheOptions configures the in-process store
type MemoryCacheOptions struct {
	MaxSize int
	Metrics ports.MetricsCollector
	Clock   func() time.Time
}

// MemoryCacheProvider is a bounded in-process store. When full, the entry
// inserted earliest is evicted; reads never change the order.
type MemoryCacheProvider struct {
	maxSize int
	metrics ports.MetricsCollector
	now     func() time.Time

	mutex   sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	stats   struct {
		hits      int64
		misses    int64
		evictions int64
	}
}

type memoryCacheItem struct {
	key       string
	data      []byte
	expiresAt time.Time
}

func (i *memoryCacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

func NewMemoryCacheProvider(opts MemoryCacheOptions) *MemoryCacheProvider {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCacheProvider{
		maxSize: opts.MaxSize,
		metrics: opts.Metrics,
		now:     clock,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *MemoryCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, exists := c.entries[key]
	if !exists {
		c.stats.misses++
		return nil, errors.NewNotFoundError("cache miss")
	}

	item := el.Value.(*memoryCacheItem)
	if item.expired(c.now()) {
		c.removeElement(ctx, el, "expired")
		c.stats.misses++
		return nil, errors.NewNotFoundError("cache miss")
	}

	c.stats.hits++
	return item.data, nil
}

func (c *MemoryCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl < 0 {
		return errors.NewValidationError("cache TTL cannot be negative")
	}

	item := &memoryCacheItem{key: key, data: value}
	if ttl != ports.NoExpiry {
		item.expiresAt = c.now().Add(ttl)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Overwriting counts as a fresh insertion.
	if el, exists := c.entries[key]; exists {
		c.order.Remove(el)
		delete(c.entries, key)
	}

	if c.maxSize > 0 {
		for c.order.Len() >= c.maxSize {
			c.removeElement(ctx, c.order.Front(), "capacity")
		}
	}

	c.entries[key] = c.order.PushBack(item)
	return nil
}

func (c *MemoryCacheProvider) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, exists := c.entries[key]; exists {
		c.order.Remove(el)
		delete(c.entries, key)
	}
	return nil
}

func (c *MemoryCacheProvider) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		item := el.Value.(*memoryCacheItem)
		if strings.HasPrefix(item.key, prefix) {
			c.order.Remove(el)
			delete(c.entries, item.key)
			removed++
		}
		el = next
	}
	return removed, nil
}

func (c *MemoryCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("cache key cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, exists := c.entries[key]
	if !exists {
		return false, nil
	}
	return !el.Value.(*memoryCacheItem).expired(c.now()), nil
}

func (c *MemoryCacheProvider) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Stats drops expired entries first so Size and Keys only cover live data
func (c *MemoryCacheProvider) Stats(ctx context.Context) (ports.CacheStats, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		item := el.Value.(*memoryCacheItem)
		if item.expired(now) {
			c.removeElement(ctx, el, "expired")
		} else {
			keys = append(keys, item.key)
		}
		el = next
	}

	total := c.stats.hits + c.stats.misses
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(c.stats.hits) / float64(total)
	}

	return ports.CacheStats{
		Backend:     "memory",
		Size:        len(keys),
		MaxSize:     c.maxSize,
		Keys:        keys,
		Hits:        c.stats.hits,
		Misses:      c.stats.misses,
		Evictions:   c.stats.evictions,
		HitRatio:    hitRatio,
		LastUpdated: now,
	}, nil
}

// removeElement must be called while holding the mutex
func (c *MemoryCacheProvider) removeElement(ctx context.Context, el *list.Element, reason string) {
	item := el.Value.(*memoryCacheItem)
	c.order.Remove(el)
	delete(c.entries, item.key)
	c.stats.evictions++
	if c.metrics != nil {
		c.metrics.RecordCacheEviction(ctx, reason)
	}
}
