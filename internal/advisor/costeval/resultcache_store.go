package costeval

import (
	"time"

	"github.com/conduit-lang/indexadvisor/internal/advisor/resultcache"
)

// ResultCacheStore adapts a resultcache.Cache (in-memory or Redis-backed)
// into a CacheStore, letting a run share or persist per-query costs across
// process invocations instead of starting every run cold. TTL is fixed at
// construction since costs for an unchanged schema don't meaningfully
// expire during the handful of minutes a search takes.
type ResultCacheStore struct {
	backing resultcache.Cache
	ttl     time.Duration
}

// NewResultCacheStore wraps backing as a CacheStore. A zero ttl uses
// backing's own default TTL.
func NewResultCacheStore(backing resultcache.Cache, ttl time.Duration) *ResultCacheStore {
	return &ResultCacheStore{backing: backing, ttl: ttl}
}

// Get implements CacheStore.
func (s *ResultCacheStore) Get(key string) (float64, bool) {
	return s.backing.Get(key)
}

// Set implements CacheStore.
func (s *ResultCacheStore) Set(key string, value float64) {
	s.backing.Set(key, value, s.ttl)
}
