package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultCacheTTL is how long a marked record suppresses re-emission.
const DefaultCacheTTL = 24 * time.Hour

// defaultMaxCacheEntries bounds the in-memory cache; novel keys accumulate
// over the process lifetime otherwise.
const defaultMaxCacheEntries = 100_000

func cacheKey(source, nativeID string) string {
	return source + ":" + nativeID
}

// MemoryCache is a process-local TTL cache keyed on (source, native_id).
// The clock is injectable so tests can simulate expiry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]time.Time // key -> last mark
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache returns a cache with the given TTL; ttl <= 0 uses
// DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries:    make(map[string]time.Time),
		ttl:        ttl,
		maxEntries: defaultMaxCacheEntries,
		now:        time.Now,
	}
}

// WithClock substitutes the time source. Test hook.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Seen(_ context.Context, source, nativeID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	marked, ok := c.entries[cacheKey(source, nativeID)]
	if !ok {
		return false
	}
	return c.now().Sub(marked) < c.ttl
}

func (c *MemoryCache) Mark(_ context.Context, source, nativeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(source, nativeID)] = c.now()
	if len(c.entries) > c.maxEntries {
		c.evictLocked()
	}
}

// Len reports the current number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked first sweeps expired entries, then if still over capacity drops
// the oldest marks until under the cap.
func (c *MemoryCache) evictLocked() {
	now := c.now()
	for k, marked := range c.entries {
		if now.Sub(marked) >= c.ttl {
			delete(c.entries, k)
		}
	}

	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, marked := range c.entries {
			if oldestKey == "" || marked.Before(oldest) {
				oldestKey = k
				oldest = marked
			}
		}
		delete(c.entries, oldestKey)
	}
}

// RedisCache keys each (source, native_id) pair as its own TTL'd Redis key,
// delegating expiry to the server. Backend errors fail open: a Redis outage
// means duplicate emissions, not lost discoveries.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func redisDedupeKey(source, nativeID string) string {
	return fmt.Sprintf("scout:seen:%s:%s", source, nativeID)
}

func (c *RedisCache) Seen(ctx context.Context, source, nativeID string) bool {
	n, err := c.rdb.Exists(ctx, redisDedupeKey(source, nativeID)).Result()
	if err != nil {
		logrus.WithError(err).WithField("source", source).Warn("dedupe cache read failed, failing open")
		return false
	}
	return n > 0
}

func (c *RedisCache) Mark(ctx context.Context, source, nativeID string) {
	if err := c.rdb.Set(ctx, redisDedupeKey(source, nativeID), "1", c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("source", source).Warn("dedupe cache write failed")
	}
}
