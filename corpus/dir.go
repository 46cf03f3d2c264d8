package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/ncd/persistence"
	"github.com/hupe1980/ncd/resource"
)

// DirOptions configures a DirSource.
type DirOptions struct {
	// Controller throttles reads. Optional.
	Controller *resource.Controller
}

// DirSource reads the regular files of a single directory. Identifiers are
// base file names. Subdirectories, special files, and in-flight temporary
// files are ignored; symbolic links to regular files are followed.
type DirSource struct {
	dir  string
	opts DirOptions

	mu      sync.RWMutex
	exclude excludeSet
}

// NewDirSource returns a source over dir.
func NewDirSource(dir string, optFns ...func(*DirOptions)) *DirSource {
	var opts DirOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DirSource{dir: dir, opts: opts}
}

// Dir returns the directory.
func (d *DirSource) Dir() string { return d.dir }

// Exclude hides the given base names from List and returns d.
func (d *DirSource) Exclude(names ...string) *DirSource {
	d.mu.Lock()
	d.exclude = d.exclude.add(names...)
	d.mu.Unlock()
	return d
}

func (d *DirSource) excluded(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.exclude.has(name)
}

// List implements Source.
func (d *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: list %s: %w", d.dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if d.excluded(name) || persistence.IsTemp(name) {
			continue
		}

		mode := e.Type()
		if mode&os.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(d.dir, name))
			if err != nil {
				// Dangling link.
				continue
			}
			mode = info.Mode()
		}
		if !mode.IsRegular() {
			continue
		}
		ids = append(ids, name)
	}

	slices.Sort(ids)
	return ids, nil
}

// Read implements Source.
func (d *DirSource) Read(ctx context.Context, id string) ([]byte, error) {
	if id == "" || strings.ContainsRune(id, os.PathSeparator) || id == "." || id == ".." {
		return nil, fmt.Errorf("corpus: invalid identifier %q", id)
	}

	path := filepath.Join(d.dir, id)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", id, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("corpus: stat %s: %w", id, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("corpus: read %s: not a regular file", id)
	}

	data, err := resource.ReadAll(ctx, f, d.opts.Controller, info.Size())
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", id, err)
	}
	return data, nil
}
