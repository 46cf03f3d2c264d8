package corpus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ncd/blobstore"
)

// flakyStore fails the first n calls of Get and List.
type flakyStore struct {
	*blobstore.MemoryStore
	failures atomic.Int32
	gets     atomic.Int32
	lists    atomic.Int32
}

var errFlaky = errors.New("connection reset")

func (f *flakyStore) fail() bool {
	return f.failures.Add(-1) >= 0
}

func (f *flakyStore) Get(ctx context.Context, name string) ([]byte, error) {
	f.gets.Add(1)
	if f.fail() {
		return nil, errFlaky
	}
	return f.MemoryStore.Get(ctx, name)
}

func (f *flakyStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.lists.Add(1)
	if f.fail() {
		return nil, errFlaky
	}
	return f.MemoryStore.List(ctx, prefix)
}

func fastRetry(o *BlobOptions) {
	o.Retry = RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func seed(t *testing.T) *blobstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	m := blobstore.NewMemoryStore()
	require.NoError(t, m.Put(ctx, "corpus/b", []byte("bbbb")))
	require.NoError(t, m.Put(ctx, "corpus/a", []byte("aaaa")))
	require.NoError(t, m.Put(ctx, "corpus/distances.json", []byte("{}")))
	require.NoError(t, m.Put(ctx, "other/c", []byte("cccc")))
	return m
}

func TestBlobSource_ListAndRead(t *testing.T) {
	src := NewBlobSource(seed(t), "corpus/").Exclude("distances.json")
	ctx := context.Background()

	ids, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	got, err := src.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaa"), got)
}

func TestBlobSource_RetriesTransientErrors(t *testing.T) {
	store := &flakyStore{MemoryStore: seed(t)}
	store.failures.Store(2)

	var retries []string
	src := NewBlobSource(store, "corpus/", fastRetry, func(o *BlobOptions) {
		o.OnRetry = func(op, id string, err error, _ time.Duration) {
			retries = append(retries, op+":"+id)
		}
	})

	got, err := src.Read(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("bbbb"), got)
	assert.Equal(t, int32(3), store.gets.Load())
	assert.Equal(t, []string{"read:b", "read:b"}, retries)
}

func TestBlobSource_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &flakyStore{MemoryStore: seed(t)}
	store.failures.Store(10)

	src := NewBlobSource(store, "corpus/", fastRetry)

	_, err := src.List(context.Background())
	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, int32(3), store.lists.Load())
}

func TestBlobSource_NotFoundIsPermanent(t *testing.T) {
	store := &flakyStore{MemoryStore: seed(t)}
	src := NewBlobSource(store, "corpus/", fastRetry)

	_, err := src.Read(context.Background(), "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.Equal(t, int32(1), store.gets.Load())
}

func TestRetryPolicy_NoRetry(t *testing.T) {
	calls := 0
	err := NoRetry().Do(context.Background(), func() error {
		calls++
		return errFlaky
	}, nil)
	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := DefaultRetryPolicy().Do(ctx, func() error {
		calls++
		cancel()
		return errFlaky
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
