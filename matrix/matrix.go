package matrix

import (
	"cmp"
	"maps"
	"math"
	"slices"
)

// Row maps a column identifier to a distance.
type Row map[string]float64

// Entry is a single (column, distance) pair of a Row.
type Entry struct {
	ID       string
	Distance float64
}

// Sorted returns the row's entries by ascending distance, ties broken by ID.
func (r Row) Sorted() []Entry {
	out := make([]Entry, 0, len(r))
	for id, d := range r {
		out = append(out, Entry{ID: id, Distance: d})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Matrix maps a row identifier to its complete Row.
type Matrix map[string]Row

// New returns an empty matrix.
func New() Matrix {
	return make(Matrix)
}

// Len returns the number of rows.
func (m Matrix) Len() int { return len(m) }

// Has reports whether a row for id exists.
func (m Matrix) Has(id string) bool {
	_, ok := m[id]
	return ok
}

// Set stores row under id, replacing any previous row.
func (m Matrix) Set(id string, row Row) {
	m[id] = row
}

// Keys returns the row identifiers in sorted order.
func (m Matrix) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for id, row := range m {
		out[id] = maps.Clone(row)
	}
	return out
}

// Validate checks every row the way Load does. Rows are visited in sorted
// order so the reported error is deterministic.
func (m Matrix) Validate() error {
	for _, id := range m.Keys() {
		row := m[id]
		if row == nil {
			return &CorruptError{Kind: KindRowType, Row: id}
		}
		for _, col := range slices.Sorted(maps.Keys(row)) {
			d := row[col]
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return &CorruptError{Kind: KindNonFinite, Row: id, Column: col}
			}
		}
		if _, ok := row[id]; !ok {
			return &CorruptError{Kind: KindMissingSelf, Row: id}
		}
	}
	return nil
}

// SymmetryReport summarizes how far a matrix is from symmetric.
type SymmetryReport struct {
	// Pairs is the number of unordered pairs (i != j) present in both directions.
	Pairs int
	// MaxDelta is the largest |d(i,j) - d(j,i)|.
	MaxDelta float64
	// MaxPair is the pair that produced MaxDelta.
	MaxPair [2]string
	// MeanDelta is the average |d(i,j) - d(j,i)| over all pairs.
	MeanDelta float64
	// Exceeding counts the pairs whose delta is larger than the tolerance.
	Exceeding int
}

// Symmetry compares d(i,j) with d(j,i) for every pair stored in both
// directions and counts the pairs that differ by more than tol.
func (m Matrix) Symmetry(tol float64) SymmetryReport {
	var (
		rep SymmetryReport
		sum float64
	)
	keys := m.Keys()
	for x, i := range keys {
		for _, j := range keys[x+1:] {
			dij, ok := m[i][j]
			if !ok {
				continue
			}
			dji, ok := m[j][i]
			if !ok {
				continue
			}
			delta := math.Abs(dij - dji)
			rep.Pairs++
			sum += delta
			if delta > rep.MaxDelta || rep.Pairs == 1 {
				rep.MaxDelta = delta
				rep.MaxPair = [2]string{i, j}
			}
			if delta > tol {
				rep.Exceeding++
			}
		}
	}
	if rep.Pairs > 0 {
		rep.MeanDelta = sum / float64(rep.Pairs)
	}
	return rep
}
