package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is matched by every *CorruptError.
	ErrCorrupt = errors.New("matrix: corrupt document")

	// ErrConfigMismatch is returned when the stored matrix was built with a
	// different compressor configuration.
	ErrConfigMismatch = errors.New("matrix: compressor configuration mismatch")
)

// Kind classifies a corruption.
type Kind string

const (
	// KindSyntax means the document could not be decoded.
	KindSyntax Kind = "syntax"
	// KindRowType means a row is not an object.
	KindRowType Kind = "row_type"
	// KindMissingValue means a leaf is null.
	KindMissingValue Kind = "missing_value"
	// KindNonNumeric means a leaf is not a number.
	KindNonNumeric Kind = "non_numeric"
	// KindNonFinite means a leaf is NaN or infinite.
	KindNonFinite Kind = "non_finite"
	// KindMissingSelf means a row has no entry for its own identifier.
	KindMissingSelf Kind = "missing_self"
	// KindMeta means the sidecar document could not be decoded.
	KindMeta Kind = "meta"
)

// CorruptError describes why a matrix document was rejected.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type CorruptError struct {
	Kind   Kind
	Row    string
	Column string
	cause  error
}

func (e *CorruptError) Error() string {
	msg := fmt.Sprintf("matrix: corrupt document (%s)", e.Kind)
	if e.Row != "" {
		msg += fmt.Sprintf(": row %q", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *CorruptError) Unwrap() error { return e.cause }

// Is reports ErrCorrupt as a match.
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// MismatchError carries both fingerprints of a configuration mismatch.
type MismatchError struct {
	Stored  string
	Current string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("matrix: built with compressor %q, configured %q", e.Stored, e.Current)
}

// Is reports ErrConfigMismatch as a match.
func (e *MismatchError) Is(target error) bool { return target == ErrConfigMismatch }
