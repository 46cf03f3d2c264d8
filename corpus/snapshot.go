package corpus

import (
	"context"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Snapshot is the fixed identifier list of one build.
type Snapshot struct {
	src   Source
	ids   []string
	index map[string]uint32
}

// Capture lists src once and returns the snapshot.
func Capture(ctx context.Context, src Source) (*Snapshot, error) {
	ids, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(src, ids), nil
}

// NewSnapshot builds a snapshot over ids, which are sorted and de-duplicated.
func NewSnapshot(src Source, ids []string) *Snapshot {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	index := make(map[string]uint32, len(sorted))
	for i, id := range sorted {
		index[id] = uint32(i)
	}
	return &Snapshot{src: src, ids: sorted, index: index}
}

// IDs returns the identifiers in sorted order.
func (s *Snapshot) IDs() []string {
	return slices.Clone(s.ids)
}

// Len returns the number of identifiers.
func (s *Snapshot) Len() int { return len(s.ids) }

// ID returns the identifier at position i.
func (s *Snapshot) ID(i int) string { return s.ids[i] }

// Contains reports whether id is part of the snapshot.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Read returns the content of id. Content is read from the source on every
// call.
func (s *Snapshot) Read(ctx context.Context, id string) ([]byte, error) {
	if !s.Contains(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	return s.src.Read(ctx, id)
}

// PendingSet returns the positions of identifiers that are not in processed.
// Processed identifiers outside the snapshot are ignored.
func (s *Snapshot) PendingSet(processed []string) *roaring.Bitmap {
	all := roaring.New()
	all.AddRange(0, uint64(len(s.ids)))

	done := roaring.New()
	for _, id := range processed {
		if i, ok := s.index[id]; ok {
			done.Add(i)
		}
	}
	all.AndNot(done)
	return all
}

// Pending returns the identifiers that are not in processed, in snapshot order.
func (s *Snapshot) Pending(processed []string) []string {
	set := s.PendingSet(processed)
	out := make([]string, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, s.ids[it.Next()])
	}
	return out
}
