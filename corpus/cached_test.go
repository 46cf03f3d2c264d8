package corpus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts reads per call.
type countingSource struct {
	staticSource
	reads atomic.Int64
}

func (s *countingSource) Read(ctx context.Context, id string) ([]byte, error) {
	s.reads.Add(1)
	return s.staticSource.Read(ctx, id)
}

func TestCachedSource_ReadsOnce(t *testing.T) {
	inner := &countingSource{staticSource: staticSource{
		ids:     []string{"a", "b"},
		content: map[string]string{"a": "aaaa", "b": "bbbb"},
	}}
	src := NewCachedSource(inner, 1<<10)
	ctx := context.Background()

	ids, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	for range 5 {
		b, err := src.Read(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "aaaa", string(b))
	}
	assert.Equal(t, int64(1), inner.reads.Load())

	hits, misses := src.Stats()
	assert.Equal(t, int64(4), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{staticSource: staticSource{content: map[string]string{}}}
	src := NewCachedSource(inner, 1<<10)

	for range 2 {
		_, err := src.Read(context.Background(), "missing")
		require.Error(t, err)
	}
	assert.Equal(t, int64(2), inner.reads.Load())
}

func TestCachedSource_ZeroCapacity(t *testing.T) {
	inner := &countingSource{staticSource: staticSource{content: map[string]string{"a": "aaaa"}}}
	src := NewCachedSource(inner, 0)

	for range 3 {
		_, err := src.Read(context.Background(), "a")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), inner.reads.Load())
}

func TestCachedSource_Concurrent(t *testing.T) {
	inner := &countingSource{staticSource: staticSource{content: map[string]string{"a": "aaaa"}}}
	src := NewCachedSource(inner, 1<<10)

	var (
		wg     sync.WaitGroup
		failed atomic.Bool
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := src.Read(context.Background(), "a")
			if err != nil || string(b) != "aaaa" {
				failed.Store(true)
			}
		}()
	}
	wg.Wait()

	assert.False(t, failed.Load())
	reads := inner.reads.Load()
	assert.LessOrEqual(t, reads, int64(16))

	_, err := src.Read(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, reads, inner.reads.Load(), "later reads are served from memory")
}
