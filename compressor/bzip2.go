package compressor

import (
	"fmt"
	"io"
	"sync"

	"github.com/dsnet/compress/bzip2"
)

// bzip2Compressor measures bzip2 streams at level 9 (900k blocks). The
// format's block and stream CRCs are mandatory; they add a fixed number of
// bytes per block and do not depend on content.
type bzip2Compressor struct {
	cfg  Config
	pool sync.Pool
}

func newBZip2(cfg Config) (*bzip2Compressor, error) {
	// Construct once to surface level errors at startup.
	if _, err := newBZip2Writer(io.Discard); err != nil {
		return nil, &ConfigError{Field: "bzip2", Value: cfg.String(), Reason: err.Error(), cause: err}
	}
	c := &bzip2Compressor{cfg: cfg}
	c.pool.New = func() any {
		w, _ := newBZip2Writer(io.Discard)
		return w
	}
	return c, nil
}

func newBZip2Writer(w io.Writer) (*bzip2.Writer, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
}

func (c *bzip2Compressor) Len(p []byte) (int, error) {
	w := c.pool.Get().(*bzip2.Writer)
	defer c.pool.Put(w)

	cw := &countingWriter{}
	if err := w.Reset(cw); err != nil {
		return 0, fmt.Errorf("compressor: bzip2 reset: %w", err)
	}
	if _, err := w.Write(p); err != nil {
		return 0, fmt.Errorf("compressor: bzip2 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("compressor: bzip2 close: %w", err)
	}
	return cw.n, nil
}

func (c *bzip2Compressor) Config() Config {
	return c.cfg
}
