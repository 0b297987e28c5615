package cache

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/openlift/ironstats/pkg/metrics"
)

// group deduplicates concurrent computations of the same key. One group
// per process is enough: keys already carry an operation prefix.
var group singleflight.Group

// GetOrCompute is the single memoization decorator shared by the
// visualization and SQL compute paths. Cache failures are never fatal:
// a value that fails to unmarshal counts as a miss, and a value that
// fails to marshal is returned uncached.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error)) (T, error) {
	if b, ok := c.Get(key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			metrics.RecordCacheHit()
			return v, nil
		}
		// Corrupt entry: treat as a miss and fall through to recompute.
	}
	metrics.RecordCacheMiss()

	res, err, _ := group.Do(key, func() (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return v, err
		}
		if b, err := json.Marshal(v); err == nil {
			c.Put(key, b)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
