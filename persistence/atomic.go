package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hupe1980/ncd/internal/fs"
)

// tempInfix marks in-flight temporary files created by SaveToFile.
const tempInfix = ".tmp-"

// FileMode is the permission applied to files written by SaveToFile.
const FileMode os.FileMode = 0o644

// SaveToFile atomically replaces filename with the bytes produced by writeFunc.
//
// If writeFunc or any step before the rename fails, the target is left untouched
// and the temporary file is removed.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	return SaveToFileFS(fs.Default, filename, writeFunc)
}

// SaveToFileFS is SaveToFile on an explicit file system.
func SaveToFileFS(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := createTemp(fsys, filename)
	if err != nil {
		return fmt.Errorf("persistence: create temp file for %s: %w", base, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return fmt.Errorf("persistence: write %s: %w", base, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("persistence: flush %s: %w", base, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("persistence: sync %s: %w", base, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistence: close %s: %w", base, err)
	}

	if err := fsys.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("persistence: rename %s: %w", base, err)
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := fsys.OpenFile(dir, os.O_RDONLY, 0); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	return nil
}

// createTemp creates a fresh temp file next to filename.
func createTemp(fsys fs.FileSystem, filename string) (fs.File, error) {
	const attempts = 10
	var err error
	for range attempts {
		name := filename + tempInfix + uuid.NewString()[:8]
		var f fs.File
		f, err = fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FileMode)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	return nil, err
}

// SaveBytes atomically replaces filename with data.
func SaveBytes(filename string, data []byte) error {
	return SaveBytesFS(fs.Default, filename, data)
}

// SaveBytesFS is SaveBytes on an explicit file system.
func SaveBytesFS(fsys fs.FileSystem, filename string, data []byte) error {
	return SaveToFileFS(fsys, filename, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// IsTemp reports whether name looks like a temporary file left by SaveToFile.
func IsTemp(name string) bool {
	return strings.Contains(filepath.Base(name), tempInfix)
}

// CleanupTemp removes stale temporary files for filename, e.g. after a crash
// between creating the temp file and the rename. It returns the number of
// files removed.
func CleanupTemp(filename string) (int, error) {
	return CleanupTempFS(fs.Default, filename)
}

// CleanupTempFS is CleanupTemp on fsys.
func CleanupTempFS(fsys fs.FileSystem, filename string) (int, error) {
	dir := filepath.Dir(filename)
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	prefix := filepath.Base(filename) + tempInfix
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if err := fsys.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
