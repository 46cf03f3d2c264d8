package matrix

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/hupe1980/ncd/blobstore"
	"github.com/hupe1980/ncd/codec"
)

// MetaSuffix is appended to the matrix name to form the sidecar name.
const MetaSuffix = ".meta.json"

// metaFormat is the sidecar format version.
const metaFormat = 1

// Meta is the sidecar document stored next to a matrix.
type Meta struct {
	Format     int    `json:"format"`
	Compressor string `json:"compressor"`
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Codec encodes the matrix document. Defaults to codec.Default.
	Codec codec.Codec

	// Compressor is the fingerprint of the compressor configuration producing
	// the distances. When empty, no configuration check is made and no sidecar
	// is written.
	Compressor string
}

// Store persists one Matrix under a name in a BlobStore.
type Store struct {
	blobs blobstore.BlobStore
	name  string
	opts  StoreOptions

	mu          sync.Mutex
	metaCurrent bool
}

// NewStore returns a Store for the named document.
func NewStore(blobs blobstore.BlobStore, name string, optFns ...func(*StoreOptions)) *Store {
	opts := StoreOptions{Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return &Store{blobs: blobs, name: name, opts: opts}
}

// Name returns the document name.
func (s *Store) Name() string { return s.name }

// MetaName returns the sidecar name.
func (s *Store) MetaName() string { return s.name + MetaSuffix }

// Load reads and validates the matrix. A missing document yields an empty
// matrix. A corrupt document yields a *CorruptError; nothing is repaired.
//
// The sidecar is only checked when the document exists. A sidecar left
// behind by a deleted document is replaced on the next Save.
func (s *Store) Load(ctx context.Context) (Matrix, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, s.name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return New(), nil
		}
		return nil, fmt.Errorf("matrix: load %s: %w", s.name, err)
	}

	if err := s.checkMeta(ctx); err != nil {
		return nil, err
	}

	return Decode(s.opts.Codec, data)
}

// Save validates m and atomically replaces the stored document.
func (s *Store) Save(ctx context.Context, m Matrix) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("matrix: refusing to save %s: %w", s.name, err)
	}

	data, err := s.opts.Codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("matrix: encode %s: %w", s.name, err)
	}

	if err := s.writeMeta(ctx); err != nil {
		return err
	}

	if err := s.blobs.Put(ctx, s.name, data); err != nil {
		return fmt.Errorf("matrix: save %s: %w", s.name, err)
	}
	return nil
}

// checkMeta verifies the sidecar against the configured fingerprint.
func (s *Store) checkMeta(ctx context.Context) error {
	if s.opts.Compressor == "" {
		return nil
	}

	data, err := blobstore.ReadAll(ctx, s.blobs, s.MetaName())
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("matrix: load %s: %w", s.MetaName(), err)
	}

	var meta Meta
	if err := s.opts.Codec.Unmarshal(data, &meta); err != nil {
		return &CorruptError{Kind: KindMeta, cause: err}
	}
	if meta.Compressor != "" && meta.Compressor != s.opts.Compressor {
		return &MismatchError{Stored: meta.Compressor, Current: s.opts.Compressor}
	}

	s.mu.Lock()
	s.metaCurrent = meta.Compressor == s.opts.Compressor && meta.Format == metaFormat
	s.mu.Unlock()
	return nil
}

// writeMeta writes the sidecar once per Store, before the first matrix save.
func (s *Store) writeMeta(ctx context.Context) error {
	if s.opts.Compressor == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metaCurrent {
		return nil
	}

	data, err := s.opts.Codec.Marshal(Meta{Format: metaFormat, Compressor: s.opts.Compressor})
	if err != nil {
		return fmt.Errorf("matrix: encode %s: %w", s.MetaName(), err)
	}
	if err := s.blobs.Put(ctx, s.MetaName(), data); err != nil {
		return fmt.Errorf("matrix: save %s: %w", s.MetaName(), err)
	}
	s.metaCurrent = true
	return nil
}

// Decode parses and validates a matrix document.
func Decode(c codec.Codec, data []byte) (Matrix, error) {
	if c == nil {
		c = codec.Default
	}

	var doc any
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Kind: KindSyntax, cause: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &CorruptError{Kind: KindSyntax, cause: fmt.Errorf("document is %s, want object", typeName(doc))}
	}

	m := make(Matrix, len(obj))
	for _, id := range slices.Sorted(maps.Keys(obj)) {
		rawRow, ok := obj[id].(map[string]any)
		if !ok {
			return nil, &CorruptError{
				Kind:  KindRowType,
				Row:   id,
				cause: fmt.Errorf("row is %s, want object", typeName(obj[id])),
			}
		}

		row := make(Row, len(rawRow))
		for _, col := range slices.Sorted(maps.Keys(rawRow)) {
			switch v := rawRow[col].(type) {
			case nil:
				return nil, &CorruptError{Kind: KindMissingValue, Row: id, Column: col}
			case float64:
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, &CorruptError{Kind: KindNonFinite, Row: id, Column: col}
				}
				row[col] = v
			default:
				return nil, &CorruptError{
					Kind:   KindNonNumeric,
					Row:    id,
					Column: col,
					cause:  fmt.Errorf("value is %s", typeName(v)),
				}
			}
		}
		if _, ok := row[id]; !ok {
			return nil, &CorruptError{Kind: KindMissingSelf, Row: id}
		}
		m[id] = row
	}
	return m, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
