package compressor

import (
	"fmt"
	"math/bits"

	"github.com/ulikunitz/xz/lzma"
)

// lzmaBufSize is the encoder look-ahead buffer.
const lzmaBufSize = 1 << 20

// lzmaMatcher is the match finder. The library's binary-tree finder misses
// repeats in the input, so x||x would cost almost twice x; the 4-byte hash
// table finds them.
const lzmaMatcher = lzma.HashTable4

// lzmaCompressor emits a raw LZMA2 chunk stream: no .xz or .lzma container,
// no check, only the chunks and the end marker.
type lzmaCompressor struct {
	cfg   Config
	props lzma.Properties
}

func newLZMA(cfg Config) (*lzmaCompressor, error) {
	c := &lzmaCompressor{
		cfg:   cfg,
		props: lzma.Properties{LC: 3, LP: 0, PB: 2},
	}
	if cfg.maxDictCap() < lzma.MinDictCap {
		return nil, &ConfigError{
			Field:  "max_dict_cap",
			Value:  fmt.Sprint(cfg.MaxDictCap),
			Reason: fmt.Sprintf("must be at least %d", lzma.MinDictCap),
		}
	}
	// Verify the largest configuration once so Len never fails on settings.
	wc := c.writerConfig(cfg.maxDictCap())
	if err := wc.Verify(); err != nil {
		return nil, &ConfigError{Field: "lzma", Value: cfg.String(), Reason: err.Error(), cause: err}
	}
	return c, nil
}

// dictCap returns the dictionary size for an input of n bytes: the next power
// of two, clamped to [lzma.MinDictCap, MaxDictCap]. A dictionary that covers
// the whole input emits the same stream as any larger one while keeping the
// match finder's memory proportional to the input.
func (c *lzmaCompressor) dictCap(n int) int {
	limit := c.cfg.maxDictCap()
	if n <= lzma.MinDictCap {
		return lzma.MinDictCap
	}
	if n >= limit {
		return limit
	}
	capacity := 1 << bits.Len(uint(n-1))
	return min(capacity, limit)
}

func (c *lzmaCompressor) writerConfig(dictCap int) lzma.Writer2Config {
	props := c.props
	return lzma.Writer2Config{
		Properties: &props,
		DictCap:    dictCap,
		BufSize:    lzmaBufSize,
		Matcher:    lzmaMatcher,
	}
}

func (c *lzmaCompressor) Len(p []byte) (int, error) {
	cw := &countingWriter{}
	wc := c.writerConfig(c.dictCap(len(p)))
	w, err := wc.NewWriter2(cw)
	if err != nil {
		return 0, fmt.Errorf("compressor: lzma writer: %w", err)
	}
	if _, err := w.Write(p); err != nil {
		return 0, fmt.Errorf("compressor: lzma write: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("compressor: lzma close: %w", err)
	}
	return cw.n, nil
}

func (c *lzmaCompressor) Config() Config {
	return c.cfg
}
