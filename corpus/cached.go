package corpus

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/ncd/internal/cache"
)

// CachedSource keeps recently read members in memory. Concurrent reads of
// the same missing member share one underlying read.
type CachedSource struct {
	src   Source
	lru   *cache.LRU
	group singleflight.Group
}

// NewCachedSource wraps src with an LRU of capacity bytes. Returned content
// is shared between callers and must not be modified.
func NewCachedSource(src Source, capacity int64) *CachedSource {
	return &CachedSource{src: src, lru: cache.NewLRU(capacity)}
}

// List implements Source. Listings are never cached.
func (c *CachedSource) List(ctx context.Context) ([]string, error) {
	return c.src.List(ctx)
}

// Read implements Source.
func (c *CachedSource) Read(ctx context.Context, id string) ([]byte, error) {
	if b, ok := c.lru.Get(id); ok {
		return b, nil
	}
	v, err, _ := c.group.Do(id, func() (any, error) {
		b, err := c.src.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		c.lru.Set(id, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Stats returns cache hits and misses.
func (c *CachedSource) Stats() (hits, misses int64) {
	return c.lru.Stats()
}
