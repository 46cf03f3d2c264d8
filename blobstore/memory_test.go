package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	payload := []byte("abc")
	require.NoError(t, store.Put(ctx, "x/1", payload))
	payload[0] = 'z' // must not leak into the store

	got, err := ReadAll(ctx, store, "x/1")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, store.Put(ctx, "x/2", []byte("def")))
	require.NoError(t, store.Put(ctx, "y/1", []byte("ghi")))

	names, err := store.List(ctx, "x/")
	require.NoError(t, err)
	assert.Equal(t, []string{"x/1", "x/2"}, names)

	require.NoError(t, store.Delete(ctx, "x/1"))
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x/2", "y/1"}, names)
}

func TestMemoryStore_PutHook(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "m", []byte("old")))

	boom := errors.New("disk full")
	store.PutHook = func(string, []byte) error { return boom }

	require.ErrorIs(t, store.Put(ctx, "m", []byte("new")), boom)

	got, err := ReadAll(ctx, store, "m")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "m", []byte("abc")))

	got, err := store.Get(ctx, "m")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := store.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("distances.json"))
	assert.Equal(t, "application/json", ContentType("distances.json.meta.json"))
	assert.Equal(t, "application/octet-stream", ContentType("genome.fa"))
}
