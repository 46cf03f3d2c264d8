package persistence

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ncd/internal/fs"
)

func TestSaveToFile_ReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "distances.json")

	require.NoError(t, SaveBytes(target, []byte(`{"a":{"a":0}}`)))
	require.NoError(t, SaveBytes(target, []byte(`{"b":{"b":0}}`)))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, `{"b":{"b":0}}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may survive a successful save")
}

func TestSaveToFile_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "distances.json")
	require.NoError(t, SaveBytes(target, []byte("old")))

	boom := errors.New("boom")
	err := SaveToFile(target, func(w io.Writer) error {
		_, _ = w.Write([]byte("half-written"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveToFile_MissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "distances.json")
	err := SaveBytes(target, []byte("x"))
	require.Error(t, err)
}

func TestIsTempAndCleanup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "distances.json")
	stale := filepath.Join(dir, "distances.json.tmp-12345")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0o600))
	require.NoError(t, SaveBytes(target, []byte("{}")))

	assert.True(t, IsTemp(stale))
	assert.False(t, IsTemp(target))

	n, err := CleanupTemp(target)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestCleanupTemp_OnlyMatchingTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "distances.json")
	other := filepath.Join(dir, "other.json.tmp-1")
	require.NoError(t, os.WriteFile(other, []byte("partial"), 0o600))

	n, err := CleanupTemp(target)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.FileExists(t, other)

	n, err = CleanupTemp(filepath.Join(dir, "missing", "distances.json"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveToFileFS_CrashMidWriteKeepsPrevious(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"ShortWrite", fs.Fault{FailAfterBytes: 4}},
		{"SyncFails", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"CloseFails", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"RenameFails", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, "distances.json")
			require.NoError(t, SaveBytes(target, []byte(`{"a":{"a":0}}`)))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule(".tmp-", tt.fault)

			err := SaveBytesFS(ffs, target, []byte(`{"a":{"a":0},"b":{"b":0}}`))
			require.ErrorIs(t, err, fs.ErrInjected)

			data, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, `{"a":{"a":0}}`, string(data))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "the temp file is removed")
		})
	}
}
