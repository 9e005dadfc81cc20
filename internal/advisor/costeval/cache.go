package costeval

import (
	lru "github.com/hashicorp/golang-lru"
)

// CacheStore is the pluggable backing store for per-query cost lookups. The
// evaluator only ever needs Get/Set over a flat string key; what happens
// behind that (an in-process LRU, a shared Redis instance) is the store's
// concern, not the evaluator's.
type CacheStore interface {
	Get(key string) (float64, bool)
	Set(key string, value float64)
}

// LRUCacheStore is the default CacheStore: a bounded in-process cache. It is
// the right default because a single advisor run's cache is never shared
// across processes and rarely grows past a few thousand entries (one per
// distinct query/relevant-index-set pair).
type LRUCacheStore struct {
	cache *lru.Cache
}

// DefaultLRUSize is used when a run doesn't configure a cache size.
const DefaultLRUSize = 4096

// NewLRUCacheStore builds an LRUCacheStore holding at most size entries.
func NewLRUCacheStore(size int) (*LRUCacheStore, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCacheStore{cache: c}, nil
}

// Get implements CacheStore.
func (s *LRUCacheStore) Get(key string) (float64, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

// Set implements CacheStore.
func (s *LRUCacheStore) Set(key string, value float64) {
	s.cache.Add(key, value)
}

// MemoryCacheStore is an unbounded map-backed CacheStore, useful for tests
// and for short demo runs where eviction would only obscure behavior.
type MemoryCacheStore struct {
	entries map[string]float64
}

// NewMemoryCacheStore builds an empty MemoryCacheStore.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{entries: make(map[string]float64)}
}

// Get implements CacheStore.
func (s *MemoryCacheStore) Get(key string) (float64, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Set implements CacheStore.
func (s *MemoryCacheStore) Set(key string, value float64) {
	s.entries[key] = value
}

// Len reports how many entries are currently cached, for test assertions.
func (s *MemoryCacheStore) Len() int {
	return len(s.entries)
}
