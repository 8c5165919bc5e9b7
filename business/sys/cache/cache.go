// Package cache provides a read-through response cache. Values are computed
// on a miss, stored for a fixed time to live and served verbatim until they
// expire. Entries are never refreshed or invalidated early.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pecanrolls/rolls-gateway/business/sys/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an entry is served before it must be recomputed.
const DefaultTTL = 10 * time.Second

// FetchFunc computes the value for a key on a cache miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Cache is a cache-aside store of values keyed by string.
type Cache[V any] struct {
	name  string
	ttl   time.Duration
	items *ttlcache.Cache[string, V]
	group singleflight.Group
}

// New constructs a cache whose entries live for ttl. The name labels the
// cache in metrics.
func New[V any](name string, ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	items := ttlcache.New[string, V](
		ttlcache.WithTTL[string, V](ttl),
		ttlcache.WithDisableTouchOnHit[string, V](),
	)

	return &Cache[V]{
		name:  name,
		ttl:   ttl,
		items: items,
	}
}

// Start runs the expired entry cleanup until Stop is called. It blocks and
// is meant to be run in its own goroutine.
func (c *Cache[V]) Start() {
	c.items.Start()
}

// Stop ends the cleanup started by Start.
func (c *Cache[V]) Stop() {
	c.items.Stop()
}

// TTL returns how long entries are served.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Len returns the number of entries held, expired or not.
func (c *Cache[V]) Len() int {
	return c.items.Len()
}

// Get returns the value stored for key when it hasn't expired. Otherwise
// fetch is called and a successful result is stored before it is returned.
// Errors are returned to the caller and never stored. Concurrent misses for
// the same key share a single fetch. A caller whose context ends stops
// waiting without failing the fetch for the others.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	if item := c.items.Get(key); item != nil {
		metrics.CacheHit(c.name)
		return item.Value(), nil
	}
	metrics.CacheMiss(c.name)

	ch := c.group.DoChan(key, func() (any, error) {

		// The fetch belongs to every waiting caller, not the first one.
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return value, err
		}

		c.items.Set(key, value, ttlcache.DefaultTTL)
		return value, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()

	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}

		value, _ := res.Val.(V)
		return value, nil
	}
}
