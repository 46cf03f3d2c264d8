package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource serves a fixed listing.
type staticSource struct {
	ids     []string
	content map[string]string
	listErr error
}

func (s staticSource) List(context.Context) ([]string, error) {
	return s.ids, s.listErr
}

func (s staticSource) Read(_ context.Context, id string) ([]byte, error) {
	c, ok := s.content[id]
	if !ok {
		return nil, errors.New("no such member")
	}
	return []byte(c), nil
}

func TestCapture_SortsAndDeduplicates(t *testing.T) {
	src := staticSource{ids: []string{"c", "a", "b", "a"}}

	snap, err := Capture(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, snap.IDs())
	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, "b", snap.ID(1))
	assert.True(t, snap.Contains("c"))
	assert.False(t, snap.Contains("d"))

	// IDs returns a copy.
	ids := snap.IDs()
	ids[0] = "zzz"
	assert.Equal(t, "a", snap.ID(0))
}

func TestCapture_ListError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Capture(context.Background(), staticSource{listErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestSnapshot_Pending(t *testing.T) {
	snap := NewSnapshot(nil, []string{"a", "b", "c", "d"})

	tests := []struct {
		name      string
		processed []string
		expected  []string
	}{
		{"Fresh", nil, []string{"a", "b", "c", "d"}},
		{"Partial", []string{"b", "d"}, []string{"a", "c"}},
		{"Complete", []string{"d", "c", "b", "a"}, []string{}},
		{"StaleRowsIgnored", []string{"a", "gone"}, []string{"b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, snap.Pending(tt.processed))
			assert.Equal(t, uint64(len(tt.expected)), snap.PendingSet(tt.processed).GetCardinality())
		})
	}
}

func TestSnapshot_Read(t *testing.T) {
	src := staticSource{ids: []string{"a"}, content: map[string]string{"a": "aaaa", "x": "xxxx"}}
	snap, err := Capture(context.Background(), src)
	require.NoError(t, err)

	got, err := snap.Read(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaa"), got)

	// Present in the source but not in the snapshot.
	_, err = snap.Read(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnknownID)
}
