package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/giftbooks/internal/gift"
)

// DefaultCacheTTL is how long a search result is reused.
const DefaultCacheTTL = time.Hour

// cacheKeyPrefix namespaces search results in shared stores.
const cacheKeyPrefix = "giftbooks:search:"

// Cache stores search results by key.
type Cache interface {
	// Get returns the cached records and whether the key was present.
	Get(ctx context.Context, key string) ([]gift.CandidateRecord, bool, error)
	// Set stores records under key for ttl.
	Set(ctx context.Context, key string, records []gift.CandidateRecord, ttl time.Duration) error
}

// CacheKey derives the storage key for a query.
func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// CachedSearcher serves repeated queries from a Cache. Cache failures are
// logged and the upstream is used instead.
type CachedSearcher struct {
	next    Searcher
	cache   Cache
	ttl     time.Duration
	metrics *Metrics
}

// NewCachedSearcher wraps next with cache. A non-positive ttl uses DefaultCacheTTL.
func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration, metrics *Metrics) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSearcher{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Search returns cached records for query, fetching and storing them on a miss.
// Errors are never cached.
func (s *CachedSearcher) Search(ctx context.Context, query string) ([]gift.CandidateRecord, error) {
	key := CacheKey(query)

	records, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncCache("error")
		slog.WarnContext(ctx, "catalog cache read failed", "error", err)
	case ok:
		s.metrics.IncCache("hit")
		return records, nil
	default:
		s.metrics.IncCache("miss")
	}

	records, err = s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, records, s.ttl); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", "error", err)
	}
	return records, nil
}

// RedisCache stores JSON-encoded search results in Redis.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a RedisCache.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]gift.CandidateRecord, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var records []gift.CandidateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("decode cached records: %w", err)
	}
	return records, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, records []gift.CandidateRecord, ttl time.Duration) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

type memoryEntry struct {
	records []gift.CandidateRecord
	expires time.Time
}

// MemoryCache is an in-process Cache used when Redis isn't configured.
// Thread-safe for concurrent access.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]gift.CandidateRecord, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		return nil, false, nil
	}
	return e.records, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, records []gift.CandidateRecord, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{records: records, expires: c.now().Add(ttl)}
	return nil
}

// Cleanup removes expired entries. Call periodically to bound memory.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
