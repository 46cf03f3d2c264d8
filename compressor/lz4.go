package compressor

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4Compressor measures raw LZ4 blocks (no frame header, no checksums).
type lz4Compressor struct {
	cfg  Config
	pool sync.Pool
}

func newLZ4(cfg Config) (*lz4Compressor, error) {
	c := &lz4Compressor{cfg: cfg}
	c.pool.New = func() any {
		return &lz4.CompressorHC{Level: lz4.Level9}
	}
	return c, nil
}

func (c *lz4Compressor) Len(p []byte) (int, error) {
	hc := c.pool.Get().(*lz4.CompressorHC)
	defer c.pool.Put(hc)

	// A destination of CompressBlockBound bytes always receives a block, even
	// for incompressible input.
	dst := make([]byte, lz4.CompressBlockBound(len(p)))
	n, err := hc.CompressBlock(p, dst)
	if err != nil {
		return 0, fmt.Errorf("compressor: lz4: %w", err)
	}
	return n, nil
}

func (c *lz4Compressor) Config() Config {
	return c.cfg
}
