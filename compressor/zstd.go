package compressor

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdCompressor measures single-segment Zstandard frames without checksum.
// The frame header is a few bytes that depend only on the input length.
type zstdCompressor struct {
	cfg Config
	enc *zstd.Encoder
}

func newZstd(cfg Config) (*zstdCompressor, error) {
	// EncodeAll is safe for concurrent use on a shared encoder.
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderCRC(false),
		zstd.WithSingleSegment(true),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, &ConfigError{Field: "zstd", Value: cfg.String(), Reason: err.Error(), cause: err}
	}
	return &zstdCompressor{cfg: cfg, enc: enc}, nil
}

func (c *zstdCompressor) Len(p []byte) (int, error) {
	out := c.enc.EncodeAll(p, make([]byte, 0, zstdBound(len(p))))
	if len(out) == 0 && len(p) > 0 {
		return 0, fmt.Errorf("compressor: zstd produced no output for %d bytes", len(p))
	}
	return len(out), nil
}

func (c *zstdCompressor) Config() Config {
	return c.cfg
}

// zstdBound is a loose upper bound used to size the output buffer.
func zstdBound(n int) int {
	return n + n/128 + 64
}
