package compressor

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Algorithm names a compression algorithm.
type Algorithm string

const (
	// LZMA is raw LZMA2 (the default).
	LZMA Algorithm = "lzma"
	// Zstd is Zstandard.
	Zstd Algorithm = "zstd"
	// Deflate is raw DEFLATE.
	Deflate Algorithm = "deflate"
	// LZ4 is the raw LZ4 block format.
	LZ4 Algorithm = "lz4"
	// BZip2 is the bzip2 block-sorting format.
	BZip2 Algorithm = "bzip2"
)

// Algorithms returns all supported algorithms, default first.
func Algorithms() []Algorithm {
	return []Algorithm{LZMA, Zstd, Deflate, LZ4, BZip2}
}

// ParseAlgorithm converts a name (case-insensitive) into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Algorithms() {
		if a == known {
			return a, nil
		}
	}
	return "", &ConfigError{Field: "algorithm", Value: s, Reason: "unknown algorithm"}
}

const (
	// DefaultDeltaDistance is the delta filter distance used with LZMA.
	DefaultDeltaDistance = 5

	// MaxDeltaDistance is the largest supported delta distance.
	MaxDeltaDistance = 256

	// DefaultMaxDictCap is the largest LZMA dictionary (the preset-9 size).
	DefaultMaxDictCap = 64 << 20
)

// Config is the fixed set of parameters used for every length measurement.
type Config struct {
	// Algorithm selects the compressor.
	Algorithm Algorithm

	// DeltaDistance enables the delta pre-filter when > 0.
	DeltaDistance int

	// MaxDictCap bounds the LZMA dictionary size. 0 means DefaultMaxDictCap.
	// Ignored by other algorithms.
	MaxDictCap int
}

// DefaultConfig returns delta(5) + raw LZMA2.
func DefaultConfig() Config {
	return ConfigFor(LZMA)
}

// ConfigFor returns the default configuration for the given algorithm. Only
// LZMA enables the delta pre-filter by default.
func ConfigFor(a Algorithm) Config {
	cfg := Config{Algorithm: a}
	if a == LZMA {
		cfg.DeltaDistance = DefaultDeltaDistance
		cfg.MaxDictCap = DefaultMaxDictCap
	}
	return cfg
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	if c.DeltaDistance < 0 || c.DeltaDistance > MaxDeltaDistance {
		return &ConfigError{
			Field:  "delta_distance",
			Value:  strconv.Itoa(c.DeltaDistance),
			Reason: fmt.Sprintf("must be between 0 and %d", MaxDeltaDistance),
		}
	}
	if c.MaxDictCap < 0 {
		return &ConfigError{Field: "max_dict_cap", Value: strconv.Itoa(c.MaxDictCap), Reason: "must not be negative"}
	}
	return nil
}

// String returns a stable fingerprint of every setting that affects lengths.
func (c Config) String() string {
	var b strings.Builder
	b.WriteString(string(c.Algorithm))
	if c.DeltaDistance > 0 {
		b.WriteString("+delta=")
		b.WriteString(strconv.Itoa(c.DeltaDistance))
	}
	if c.Algorithm == LZMA {
		b.WriteString("+hc4+maxdict=")
		b.WriteString(strconv.Itoa(c.maxDictCap()))
	}
	return b.String()
}

func (c Config) maxDictCap() int {
	if c.MaxDictCap == 0 {
		return DefaultMaxDictCap
	}
	return c.MaxDictCap
}

// ConfigError reports an invalid compressor configuration.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("compressor: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// Compressor measures compressed lengths.
// Implementations must be safe for concurrent use.
type Compressor interface {
	// Len returns the compressed length of p in bytes.
	Len(p []byte) (int, error)
	// Config returns the configuration the compressor was built from.
	Config() Config
}

// New builds a Compressor for cfg.
func New(cfg Config) (Compressor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		c   Compressor
		err error
	)
	switch cfg.Algorithm {
	case LZMA:
		c, err = newLZMA(cfg)
	case Zstd:
		c, err = newZstd(cfg)
	case Deflate:
		c, err = newDeflate(cfg)
	case LZ4:
		c, err = newLZ4(cfg)
	case BZip2:
		c, err = newBZip2(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DeltaDistance > 0 {
		c = &deltaFiltered{inner: c, dist: cfg.DeltaDistance}
	}
	return c, nil
}

// Counted wraps a Compressor and counts calls and input bytes.
type Counted struct {
	Compressor
	calls atomic.Int64
	bytes atomic.Int64
}

// NewCounted wraps c.
func NewCounted(c Compressor) *Counted {
	return &Counted{Compressor: c}
}

// Len implements Compressor.
func (c *Counted) Len(p []byte) (int, error) {
	c.calls.Add(1)
	c.bytes.Add(int64(len(p)))
	return c.Compressor.Len(p)
}

// Calls returns the number of Len calls so far.
func (c *Counted) Calls() int64 { return c.calls.Load() }

// Bytes returns the total number of input bytes measured so far.
func (c *Counted) Bytes() int64 { return c.bytes.Load() }

// countingWriter discards everything and remembers how much was written.
type countingWriter struct {
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}
