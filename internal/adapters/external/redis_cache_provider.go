package external

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"geosynth.app/internal/config"
	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

const (
	redisOrderKey = "__meta:order"
	redisSeqKey   = "__meta:seq"
	redisScanSize = 200
)

// RedisCacheProviderAdapter implements CacheProvider on Redis. Entries live
// under a namespace; a sorted set scored by an insertion sequence keeps the
// FIFO order used for capacity eviction.
type RedisCacheProviderAdapter struct {
	client    *redis.Client
	namespace string
	maxSize   int
	metrics   ports.MetricsCollector
	stats     struct {
		hits      int64
		misses    int64
		evictions int64
		mutex     sync.RWMutex
	}
}

// NewRedisCacheProviderAdapter connects and pings the server
func NewRedisCacheProviderAdapter(config *config.RedisConfig, maxSize int, metrics ports.MetricsCollector) (*RedisCacheProviderAdapter, error) {
	if config == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  time.Duration(config.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewNetworkError("failed to connect to Redis", err)
	}

	return &RedisCacheProviderAdapter{
		client:    client,
		namespace: config.Namespace,
		maxSize:   maxSize,
		metrics:   metrics,
	}, nil
}

func (r *RedisCacheProviderAdapter) key(k string) string {
	return r.namespace + k
}

func (r *RedisCacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			// Expired entries leave a stale order member behind.
			r.client.ZRem(ctx, r.key(redisOrderKey), key)
			r.recordMiss()
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewNetworkError("redis get operation failed", err)
	}

	r.recordHit()
	return val, nil
}

func (r *RedisCacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl < 0 {
		return errors.NewValidationError("cache TTL cannot be negative")
	}

	seq, err := r.client.Incr(ctx, r.key(redisSeqKey)).Result()
	if err != nil {
		return errors.NewNetworkError("redis set operation failed", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// A zero TTL means no expiration in go-redis.
		pipe.Set(ctx, r.key(key), value, ttl)
		pipe.ZAdd(ctx, r.key(redisOrderKey), &redis.Z{Score: float64(seq), Member: key})
		return nil
	})
	if err != nil {
		return errors.NewNetworkError("redis set operation failed", err)
	}

	return r.enforceCapacity(ctx)
}

func (r *RedisCacheProviderAdapter) enforceCapacity(ctx context.Context) error {
	if r.maxSize <= 0 {
		return nil
	}

	count, err := r.client.ZCard(ctx, r.key(redisOrderKey)).Result()
	if err != nil {
		return errors.NewNetworkError("redis zcard operation failed", err)
	}
	if count <= int64(r.maxSize) {
		return nil
	}

	if _, err := r.liveKeys(ctx); err != nil {
		return err
	}
	count, err = r.client.ZCard(ctx, r.key(redisOrderKey)).Result()
	if err != nil {
		return errors.NewNetworkError("redis zcard operation failed", err)
	}
	excess := count - int64(r.maxSize)
	if excess <= 0 {
		return nil
	}

	oldest, err := r.client.ZRange(ctx, r.key(redisOrderKey), 0, excess-1).Result()
	if err != nil {
		return errors.NewNetworkError("redis zrange operation failed", err)
	}

	if err := r.removeMembers(ctx, oldest); err != nil {
		return err
	}

	r.stats.mutex.Lock()
	r.stats.evictions += int64(len(oldest))
	r.stats.mutex.Unlock()
	if r.metrics != nil {
		for range oldest {
			r.metrics.RecordCacheEviction(ctx, "capacity")
		}
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	return r.removeMembers(ctx, []string{key})
}

func (r *RedisCacheProviderAdapter) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := r.scan(ctx, escapeGlob(r.key(prefix))+"*")
	if err != nil {
		return 0, err
	}

	members := make([]string, 0, len(keys))
	for _, k := range keys {
		member := strings.TrimPrefix(k, r.namespace)
		if member == redisOrderKey || member == redisSeqKey {
			continue
		}
		members = append(members, member)
	}
	if len(members) == 0 {
		return 0, nil
	}

	if err := r.removeMembers(ctx, members); err != nil {
		return 0, err
	}
	return len(members), nil
}

func (r *RedisCacheProviderAdapter) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("cache key cannot be empty")
	}

	count, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, errors.NewNetworkError("redis exists operation failed", err)
	}

	return count > 0, nil
}

// Clear removes every key in the namespace, leaving other data in the
// database untouched
func (r *RedisCacheProviderAdapter) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx, escapeGlob(r.namespace)+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.NewNetworkError("redis clear operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) Stats(ctx context.Context) (ports.CacheStats, error) {
	keys, err := r.liveKeys(ctx)
	if err != nil {
		return ports.CacheStats{}, err
	}

	r.stats.mutex.RLock()
	defer r.stats.mutex.RUnlock()

	total := r.stats.hits + r.stats.misses
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(r.stats.hits) / float64(total)
	}

	return ports.CacheStats{
		Backend:     "redis",
		Size:        len(keys),
		MaxSize:     r.maxSize,
		Keys:        keys,
		Hits:        r.stats.hits,
		Misses:      r.stats.misses,
		Evictions:   r.stats.evictions,
		HitRatio:    hitRatio,
		LastUpdated: time.Now(),
	}, nil
}

// liveKeys returns members in insertion order, pruning those whose value
// has expired
func (r *RedisCacheProviderAdapter) liveKeys(ctx context.Context) ([]string, error) {
	members, err := r.client.ZRange(ctx, r.key(redisOrderKey), 0, -1).Result()
	if err != nil {
		return nil, errors.NewNetworkError("redis zrange operation failed", err)
	}
	if len(members) == 0 {
		return []string{}, nil
	}

	pipe := r.client.Pipeline()
	checks := make([]*redis.IntCmd, len(members))
	for i, m := range members {
		checks[i] = pipe.Exists(ctx, r.key(m))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.NewNetworkError("redis exists operation failed", err)
	}

	live := make([]string, 0, len(members))
	var stale []interface{}
	for i, m := range members {
		if checks[i].Val() > 0 {
			live = append(live, m)
		} else {
			stale = append(stale, m)
		}
	}

	if len(stale) > 0 {
		if err := r.client.ZRem(ctx, r.key(redisOrderKey), stale...).Err(); err != nil {
			return nil, errors.NewNetworkError("redis zrem operation failed", err)
		}
		if r.metrics != nil {
			for range stale {
				r.metrics.RecordCacheEviction(ctx, "expired")
			}
		}
	}

	return live, nil
}

func (r *RedisCacheProviderAdapter) removeMembers(ctx context.Context, members []string) error {
	if len(members) == 0 {
		return nil
	}

	fullKeys := make([]string, len(members))
	zmembers := make([]interface{}, len(members))
	for i, m := range members {
		fullKeys[i] = r.key(m)
		zmembers[i] = m
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, fullKeys...)
		pipe.ZRem(ctx, r.key(redisOrderKey), zmembers...)
		return nil
	})
	if err != nil {
		return errors.NewNetworkError("redis delete operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, redisScanSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.NewNetworkError("redis scan operation failed", err)
	}
	return keys, nil
}

func (r *RedisCacheProviderAdapter) recordHit() {
	r.stats.mutex.Lock()
	defer r.stats.mutex.Unlock()
	r.stats.hits++
}

func (r *RedisCacheProviderAdapter) recordMiss() {
	r.stats.mutex.Lock()
	defer r.stats.mutex.Unlock()
	r.stats.misses++
}

// Close closes the Redis client connection
func (r *RedisCacheProviderAdapter) Close() error {
	if err := r.client.Close(); err != nil {
		return errors.NewNetworkError("failed to close Redis connection", err)
	}
	return nil
}

// Ping checks if Redis connection is alive
func (r *RedisCacheProviderAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewNetworkError("Redis ping failed", err)
	}
	return nil
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
