package ncd

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSource is returned by New when no corpus source is given.
	ErrNilSource = errors.New("ncd: nil corpus source")

	// ErrNilStore is returned by New when no matrix store is given.
	ErrNilStore = errors.New("ncd: nil matrix store")
)

// RowError reports why a row could not be completed. Column is empty when the
// row's own content could not be read.
//
// The original underlying error can be accessed via errors.Unwrap.
type RowError struct {
	ID     string
	Column string
	cause  error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %q: %v", e.ID, e.cause)
	}
	return fmt.Sprintf("row %q column %q: %v", e.ID, e.Column, e.cause)
}

func (e *RowError) Unwrap() error { return e.cause }

// SaveError reports a failed matrix save. Previously saved snapshots are intact.
//
// The original underlying error can be accessed via errors.Unwrap.
type SaveError struct {
	Name  string
	Rows  int
	cause error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("ncd: save %s (%d rows): %v", e.Name, e.Rows, e.cause)
}

func (e *SaveError) Unwrap() error { return e.cause }
