// Package compressor measures compressed lengths for compression-based distances.
//
// A Compressor answers one question: how many bytes does p compress to under a
// fixed configuration? The answer must be deterministic and must only reflect
// content, so every algorithm writes a raw stream without container framing,
// timestamps, file names, or optional checksums.
//
// # Algorithms
//
//   - LZMA (default): delta pre-filter (distance 5) feeding a raw LZMA2 stream,
//     4-byte hash-table match finder, dictionary sized to the input (up to 64 MiB).
//   - Zstd: best-compression level, no checksum, single segment.
//   - Deflate: raw DEFLATE at BestCompression, no zlib or gzip header.
//   - LZ4: raw LZ4 block, high-compression mode at level 9.
//   - BZip2: bzip2 stream at level 9. Only its mandatory CRCs are written.
//
// All lengths that feed one distance computation, and in practice one matrix,
// must come from the same Config. Config.String returns a stable fingerprint
// of the settings that influence lengths.
//
// # Usage
//
//	c, err := compressor.New(compressor.DefaultConfig())
//	if err != nil {
//	    return err // configuration errors are fatal at startup
//	}
//	n, err := c.Len(data)
package compressor
