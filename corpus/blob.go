package corpus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/ncd/blobstore"
	"github.com/hupe1980/ncd/persistence"
	"github.com/hupe1980/ncd/resource"
)

// BlobOptions configures a BlobSource.
type BlobOptions struct {
	// Retry wraps every List and Read call.
	Retry RetryPolicy
	// Controller throttles reads. Optional.
	Controller *resource.Controller
	// OnRetry is called before each retry wait. Optional.
	OnRetry func(op, id string, err error, wait time.Duration)
}

// BlobSource reads corpus members from a blob store. Identifiers are blob
// names with the prefix removed.
type BlobSource struct {
	store  blobstore.BlobStore
	prefix string
	opts   BlobOptions

	mu      sync.RWMutex
	exclude excludeSet
}

// NewBlobSource returns a source over the blobs of store whose names start
// with prefix.
func NewBlobSource(store blobstore.BlobStore, prefix string, optFns ...func(*BlobOptions)) *BlobSource {
	opts := BlobOptions{Retry: DefaultRetryPolicy()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &BlobSource{store: store, prefix: prefix, opts: opts}
}

// Exclude hides the given identifiers from List and returns b.
func (b *BlobSource) Exclude(ids ...string) *BlobSource {
	b.mu.Lock()
	b.exclude = b.exclude.add(ids...)
	b.mu.Unlock()
	return b
}

func (b *BlobSource) excluded(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exclude.has(id)
}

func (b *BlobSource) notify(op, id string) func(error, time.Duration) {
	if b.opts.OnRetry == nil {
		return nil
	}
	return func(err error, wait time.Duration) {
		b.opts.OnRetry(op, id, err, wait)
	}
}

// List implements Source.
func (b *BlobSource) List(ctx context.Context) ([]string, error) {
	var names []string
	err := b.opts.Retry.Do(ctx, func() error {
		var err error
		names, err = b.store.List(ctx, b.prefix)
		return err
	}, b.notify("list", ""))
	if err != nil {
		return nil, fmt.Errorf("corpus: list %q: %w", b.prefix, err)
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.HasPrefix(name, b.prefix) {
			continue
		}
		id := strings.TrimPrefix(name, b.prefix)
		if id == "" || b.excluded(id) || persistence.IsTemp(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Read implements Source.
func (b *BlobSource) Read(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := b.opts.Retry.Do(ctx, func() error {
		var err error
		data, err = blobstore.ReadAll(ctx, b.store, b.prefix+id)
		return err
	}, b.notify("read", id))
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", id, err)
	}

	if err := b.opts.Controller.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}
