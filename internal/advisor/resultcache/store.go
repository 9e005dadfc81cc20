package resultcache

import "time"

// Cache is the backing store for per-query what-if costs shared across
// advisor runs or serve replicas: a flat key (derived from a query's text
// and its relevant-index set, see CostEvaluation.costForQuery) mapping to the
// planner's estimated cost for that candidate index set. Unlike a generic
// response cache there is no Delete/Clear/Exists surface — a what-if cost
// never needs to be invalidated early, only left to expire.
type Cache interface {
	// Get returns the cached cost for key, or ok=false on a miss or expiry.
	Get(key string) (cost float64, ok bool)

	// Set stores cost for key. A zero ttl uses the backend's DefaultTTL.
	Set(key string, cost float64, ttl time.Duration)
}

// CacheConfig holds common configuration for cache backends.
type CacheConfig struct {
	// DefaultTTL is used when Set is called with a zero ttl.
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys, so a shared Redis instance can
	// be reused by other services without key collisions.
	Prefix string
}

// DefaultCacheConfig returns a default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "indexadvisor:",
	}
}
