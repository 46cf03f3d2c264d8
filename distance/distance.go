package distance

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/ncd/compressor"
)

// ErrDegenerate is returned when both inputs compress to zero bytes, which
// would make the ratio undefined.
var ErrDegenerate = errors.New("distance: both inputs compress to zero bytes")

// Func computes the distance between two byte strings.
type Func func(x, y []byte) (float64, error)

var concatPool = sync.Pool{
	New: func() any { return new([]byte) },
}

// NCD returns the Normalized Compression Distance of x and y under c.
// The concatenation is always x followed by y with no separator.
func NCD(c compressor.Compressor, x, y []byte) (float64, error) {
	cx, err := c.Len(x)
	if err != nil {
		return 0, fmt.Errorf("distance: compress x: %w", err)
	}
	cy, err := c.Len(y)
	if err != nil {
		return 0, fmt.Errorf("distance: compress y: %w", err)
	}

	bp := concatPool.Get().(*[]byte)
	defer concatPool.Put(bp)
	xy := append(append((*bp)[:0], x...), y...)
	*bp = xy

	cxy, err := c.Len(xy)
	if err != nil {
		return 0, fmt.Errorf("distance: compress xy: %w", err)
	}

	return Ratio(cx, cy, cxy)
}

// Ratio applies the NCD formula to precomputed compressed lengths.
func Ratio(cx, cy, cxy int) (float64, error) {
	lo, hi := min(cx, cy), max(cx, cy)
	if hi == 0 {
		return 0, ErrDegenerate
	}
	return float64(cxy-lo) / float64(hi), nil
}

// Bind returns a Func that measures NCD with c.
func Bind(c compressor.Compressor) Func {
	return func(x, y []byte) (float64, error) {
		return NCD(c, x, y)
	}
}

// SelfDistance returns NCD(x, x). For a good compressor it is close to 0.
func SelfDistance(c compressor.Compressor, x []byte) (float64, error) {
	return NCD(c, x, x)
}
