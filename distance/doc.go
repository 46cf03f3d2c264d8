// Package distance provides the Normalized Compression Distance.
//
// For a compressor C and byte strings x and y:
//
//	NCD(x, y) = (C(xy) - min(C(x), C(y))) / max(C(x), C(y))
//
// where xy is x immediately followed by y. Values near 0 mean "very similar",
// values near 1 mean "unrelated". Real compressors are not ideal, so results may
// exceed 1 slightly and NCD(x, y) may differ from NCD(y, x); neither is corrected.
//
// # Usage
//
//	c, _ := compressor.New(compressor.DefaultConfig())
//	d, err := distance.NCD(c, x, y)
//
//	fn := distance.Bind(c)
//	d, err = fn(x, y)
package distance
