// Package cache implements the response cache spec §4.8 describes: GET
// responses are cached by their request key for a bounded time, and a
// write to any position invalidates nothing explicitly — entries simply
// expire. No caching library appears anywhere in the example corpus, so
// this is grounded on the teacher's own sharded-FIFO
// store.PositionCache (internal/store/cache.go), generalized from a
// fixed-width position key to an arbitrary string request key and given
// a wall-clock expiry per entry instead of running forever.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

const shardCount = 256

// Cache is a sharded, size-bounded, TTL-expiring string-keyed cache.
type Cache struct {
	shards      [shardCount]*shard
	maxPerShard int
	ttl         time.Duration
	hits        uint64
	misses      uint64
}

type shard struct {
	mu    sync.RWMutex
	cache map[string]entry
	order []string
}

type entry struct {
	value   []byte
	expires time.Time
}

// New creates a Cache holding up to maxEntries/256 live entries per shard
// (at least one per shard, so at most max(maxEntries, 256) in total),
// each valid for ttl after being written.
func New(maxEntries int, ttl time.Duration) *Cache {
	maxPerShard := maxEntries / shardCount
	if maxPerShard < 1 {
		maxPerShard = 1
	}

	c := &Cache{maxPerShard: maxPerShard, ttl: ttl}
	for i := range c.shards {
		c.shards[i] = &shard{
			cache: make(map[string]entry),
			order: make([]string, 0, maxPerShard),
		}
	}
	return c
}

func shardFor(key string) uint8 {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return uint8(h)
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	s := c.shards[shardFor(key)]

	s.mu.RLock()
	e, ok := s.cache[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(e.expires) {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}
	atomic.AddUint64(&c.hits, 1)
	return e.value, true
}

// Put stores value under key, evicting the oldest entry in its shard if
// the shard is at capacity.
func (c *Cache) Put(key string, value []byte) {
	s := c.shards[shardFor(key)]
	e := entry{value: value, expires: time.Now().Add(c.ttl)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cache[key]; exists {
		s.cache[key] = e
		return
	}

	for len(s.cache) >= c.maxPerShard && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.cache, oldest)
	}

	s.cache[key] = e
	s.order = append(s.order, key)
}

// Stats reports cache hit/miss counters and current size.
func (c *Cache) Stats() (hits, misses uint64, size int) {
	hits = atomic.LoadUint64(&c.hits)
	misses = atomic.LoadUint64(&c.misses)
	for _, s := range c.shards {
		s.mu.RLock()
		size += len(s.cache)
		s.mu.RUnlock()
	}
	return
}
