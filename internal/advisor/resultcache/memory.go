package resultcache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process cache of what-if costs with TTL-based
// expiry instead of a size bound, for a long-running serve process that
// would rather let stale costs age out than cap total entries.
type MemoryCache struct {
	data   sync.Map
	config CacheConfig
	cancel context.CancelFunc
}

// costEntry is one cached cost, with its expiration time.
type costEntry struct {
	cost       float64
	expiration time.Time
}

// NewMemoryCache creates a new in-memory cache with the default configuration.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultCacheConfig())
}

// NewMemoryCacheWithConfig creates a new in-memory cache with custom configuration.
func NewMemoryCacheWithConfig(config CacheConfig) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		config: config,
		cancel: cancel,
	}

	go mc.cleanupExpired(ctx)

	return mc
}

// Get implements Cache.
func (m *MemoryCache) Get(key string) (float64, bool) {
	fullKey := m.config.Prefix + key

	value, ok := m.data.Load(fullKey)
	if !ok {
		return 0, false
	}

	entry := value.(costEntry)
	if !entry.expiration.IsZero() && time.Now().After(entry.expiration) {
		m.data.Delete(fullKey)
		return 0, false
	}

	return entry.cost, true
}

// Set implements Cache.
func (m *MemoryCache) Set(key string, cost float64, ttl time.Duration) {
	fullKey := m.config.Prefix + key

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	entry := costEntry{cost: cost}
	if ttl > 0 {
		entry.expiration = time.Now().Add(ttl)
	}

	m.data.Store(fullKey, entry)
}

// Close stops the background cleanup goroutine.
func (m *MemoryCache) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

// cleanupExpired periodically removes expired costs from the cache, so a
// long-running serve process doesn't accumulate every query's cost forever.
func (m *MemoryCache) cleanupExpired(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.data.Range(func(key, value interface{}) bool {
				entry := value.(costEntry)
				if !entry.expiration.IsZero() && now.After(entry.expiration) {
					m.data.Delete(key)
				}
				return true
			})
		}
	}
}
