package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ncd/internal/fs"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Put a blob
	blobName := "a.fa"
	data := []byte("hello world, this is a test blob")
	require.NoError(t, store.Put(ctx, blobName, data))

	_, err := os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadAll
	all, err := ReadAll(ctx, store, blobName)
	require.NoError(t, err)
	require.Equal(t, data, all)

	// 4. List skips directories and temp files
	require.NoError(t, store.Put(ctx, "b.fa", []byte("second")))
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "c.fa.tmp-999"), []byte("x"), 0o600))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a.fa", "b.fa"}, names)

	names, err = store.List(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"b.fa"}, names)

	// 5. Delete is idempotent
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	_, err = store.Open(ctx, blobName)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalBlobStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	data, err := ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLocalBlobStore_OpenDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "dir"), 0o755))

	_, err := NewLocalStore(tmpDir).Open(context.Background(), "dir")
	require.Error(t, err)
}

func TestLocalBlobStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "x", []byte("y")), context.Canceled)
	_, err := store.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalBlobStore_FailedPutKeepsPrevious(t *testing.T) {
	tmpDir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	store := newLocalStoreFS(tmpDir, ffs)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "distances.json", []byte(`{"a":{"a":0}}`)))

	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 3})
	err := store.Put(ctx, "distances.json", []byte(`{"a":{"a":0},"b":{"b":0}}`))
	require.ErrorIs(t, err, fs.ErrInjected)

	ffs.ClearRules()
	data, err := ReadAll(ctx, store, "distances.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"a":0}}`, string(data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"distances.json"}, names)
}
