package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU(100)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", []byte("hello"))
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), v)
	assert.Equal(t, int64(5), c.Size())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_EdgeCases(t *testing.T) {
	c := NewLRU(50)

	// Item larger than capacity
	c.Set("big", make([]byte, 60))
	_, ok := c.Get("big")
	assert.False(t, ok, "item > capacity should not be cached")

	// Update existing item
	c.Set("k", make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())
	c.Set("k", make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	c.Set("k", make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())

	// Growing past capacity evicts the item itself
	c.Set("k", make([]byte, 70))
	assert.Equal(t, int64(0), c.Size())
	assert.Equal(t, 0, c.Len())

	c.Set("r", make([]byte, 5))
	c.Remove("r")
	c.Remove("missing")
	assert.Equal(t, int64(0), c.Size())
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU(30)

	c.Set("a", make([]byte, 10))
	c.Set("b", make([]byte, 10))
	c.Set("c", make([]byte, 10))

	// Touch a so that b is the least recently used.
	_, _ = c.Get("a")
	c.Set("d", make([]byte, 10))

	_, ok := c.Get("b")
	assert.False(t, ok, "b should be evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, int64(30), c.Size())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU(1 << 10)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*i)%64)
				c.Set(key, make([]byte, 16))
				_, _ = c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), int64(1<<10))
	assert.Equal(t, int64(c.Len()*16), c.Size())
}
