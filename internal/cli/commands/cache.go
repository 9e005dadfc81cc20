package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/conduit-lang/indexadvisor/internal/advisor/costeval"
	"github.com/conduit-lang/indexadvisor/internal/advisor/resultcache"
	"github.com/conduit-lang/indexadvisor/internal/cli/config"
)

// buildCacheStore builds the CacheStore an evaluator should use for this
// run, dispatching on cache_backend:
//
//   - "memory" (the default): an in-process LRU bounded by cache_size, cheap
//     and with no eviction surprises beyond its fixed capacity.
//   - "memory-ttl": an in-process cache with no size bound but a fixed TTL
//     per entry, for a long-running serve process that would rather let
//     stale what-if costs expire than cap total entries.
//   - "redis": a shared store behind redis_addr, so repeated runs and
//     multiple serve replicas reuse already-priced what-if costs instead of
//     re-asking the planner.
func buildCacheStore(ctx context.Context, cfg config.Config) (costeval.CacheStore, error) {
	backend, _ := cfg["cache_backend"].(string)
	cacheSize, _ := cfg["cache_size"].(int)

	switch backend {
	case "", "memory":
		return costeval.NewLRUCacheStore(cacheSize)
	case "memory-ttl":
		return costeval.NewResultCacheStore(resultcache.NewMemoryCache(), 10*time.Minute), nil
	case "redis":
		addr, _ := cfg["redis_addr"].(string)
		if addr == "" {
			return nil, fmt.Errorf("cache_backend %q requires redis_addr", backend)
		}
		backing, err := resultcache.NewRedisCacheWithConfig(resultcache.RedisConfig{
			Addr:        addr,
			CacheConfig: resultcache.DefaultCacheConfig(),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return costeval.NewResultCacheStore(backing, 10*time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown cache_backend %q", backend)
	}
}
