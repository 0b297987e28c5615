// Package cache memoizes expensive compute results as opaque bytes,
// bounded by capacity and entry age.
package cache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Defaults. The SQL query path constructs its cache with
// WithMaxEntries(100), keeping the historical bound of that surface.
const (
	defaultTTL        = 5 * time.Minute
	defaultMaxEntries = 1024
	defaultEvictBatch = 20
	shardCount        = 16
)

type entry struct {
	value   []byte
	created time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Cache is a sharded, TTL- and capacity-bounded key->bytes store.
// Writers only lock the shard their key hashes to, so they never block
// readers of other keys.
type Cache struct {
	shards     [shardCount]*shard
	ttl        time.Duration
	maxEntries int
	evictBatch int
	size       atomic.Int64
	now        func() time.Time
}

// New creates a cache with the given options.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        defaultTTL,
		maxEntries: defaultMaxEntries,
		evictBatch: defaultEvictBatch,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return c
}

func (c *Cache) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)%shardCount]
}

// Get returns the stored bytes for key. An entry older than the TTL is
// treated as absent and proactively evicted.
func (c *Cache) Get(key string) ([]byte, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.created) > c.ttl {
		s.mu.Lock()
		// Re-check under the write lock: a Put may have refreshed it.
		if cur, ok := s.entries[key]; ok && c.now().Sub(cur.created) > c.ttl {
			delete(s.entries, key)
			c.size.Add(-1)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Put stores value under key, always overwriting. When the global entry
// count exceeds the capacity, the oldest entries (by creation timestamp)
// are evicted in one batch.
func (c *Cache) Put(key string, value []byte) {
	s := c.shardFor(key)
	s.mu.Lock()
	_, existed := s.entries[key]
	s.entries[key] = entry{value: value, created: c.now()}
	s.mu.Unlock()
	if !existed {
		if c.size.Add(1) > int64(c.maxEntries) {
			c.evictOldest()
		}
	}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	return int(c.size.Load())
}

// Clear drops every entry. Pattern-based invalidation is deliberately
// not offered; callers that need finer control use distinct caches.
func (c *Cache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		for k := range s.entries {
			delete(s.entries, k)
			c.size.Add(-1)
		}
		s.mu.Unlock()
	}
}

type aged struct {
	key     string
	shard   *shard
	created time.Time
}

// evictOldest removes the evictBatch oldest entries across all shards.
// Eviction is rare (only on overflow), so the full scan is acceptable.
func (c *Cache) evictOldest() {
	all := make([]aged, 0, c.maxEntries+1)
	for _, s := range c.shards {
		s.mu.RLock()
		for k, e := range s.entries {
			all = append(all, aged{key: k, shard: s, created: e.created})
		}
		s.mu.RUnlock()
	}
	sort.Slice(all, func(i, j int) bool { return all[i].created.Before(all[j].created) })

	n := c.evictBatch
	if n > len(all) {
		n = len(all)
	}
	for _, a := range all[:n] {
		a.shard.mu.Lock()
		if _, ok := a.shard.entries[a.key]; ok {
			delete(a.shard.entries, a.key)
			c.size.Add(-1)
		}
		a.shard.mu.Unlock()
	}
}
