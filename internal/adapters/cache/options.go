package cache

import "time"

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL sets the maximum entry age.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the entry count; exceeding it triggers a batch
// eviction of the oldest entries.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithEvictBatch sets how many of the oldest entries one overflow evicts.
func WithEvictBatch(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.evictBatch = n
		}
	}
}

// withClock overrides the time source for tests.
func withClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}
