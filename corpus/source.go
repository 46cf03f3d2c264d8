package corpus

import (
	"context"
	"errors"
)

// ErrUnknownID is returned when reading an identifier that is not part of a
// snapshot.
var ErrUnknownID = errors.New("corpus: unknown identifier")

// Source lists and reads corpus members.
// Implementations must be safe for concurrent use.
type Source interface {
	// List returns the identifiers of all members.
	List(ctx context.Context) ([]string, error)
	// Read returns the complete content of one member.
	Read(ctx context.Context, id string) ([]byte, error)
}

// excludeSet is a set of identifiers a source never reports.
type excludeSet map[string]struct{}

func (s excludeSet) add(names ...string) excludeSet {
	if s == nil {
		s = make(excludeSet, len(names))
	}
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

func (s excludeSet) has(name string) bool {
	_, ok := s[name]
	return ok
}
