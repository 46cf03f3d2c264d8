package compressor

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// deflateCompressor measures raw DEFLATE streams (RFC 1951) without a zlib or
// gzip wrapper.
type deflateCompressor struct {
	cfg  Config
	pool sync.Pool
}

func newDeflate(cfg Config) (*deflateCompressor, error) {
	// Construct once to surface level errors at startup.
	if _, err := flate.NewWriter(io.Discard, flate.BestCompression); err != nil {
		return nil, &ConfigError{Field: "deflate", Value: cfg.String(), Reason: err.Error(), cause: err}
	}
	c := &deflateCompressor{cfg: cfg}
	c.pool.New = func() any {
		w, _ := flate.NewWriter(io.Discard, flate.BestCompression)
		return w
	}
	return c, nil
}

func (c *deflateCompressor) Len(p []byte) (int, error) {
	w := c.pool.Get().(*flate.Writer)
	defer c.pool.Put(w)

	cw := &countingWriter{}
	w.Reset(cw)
	if _, err := w.Write(p); err != nil {
		return 0, fmt.Errorf("compressor: deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("compressor: deflate close: %w", err)
	}
	return cw.n, nil
}

func (c *deflateCompressor) Config() Config {
	return c.cfg
}
