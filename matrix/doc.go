// Package matrix holds the pairwise distance matrix and its persistence.
//
// A Matrix maps a row identifier to a Row, and a Row maps a column identifier
// to the distance from the row's content to the column's content. A row is
// either absent or complete for the corpus that produced it; the matrix is not
// assumed to be symmetric.
//
// A Store loads and saves a Matrix as a two-level JSON object through a
// blobstore.BlobStore. Loading validates every row and fails with a
// *CorruptError instead of repairing or discarding anything. Saving validates,
// encodes with sorted keys (so unchanged rows are byte-identical across saves),
// and replaces the document with a single atomic Put.
//
// Next to the matrix the Store keeps a small sidecar document (name + ".meta.json")
// recording the compressor fingerprint. Distances from different compressor
// configurations must never be mixed, so a mismatch is reported as
// ErrConfigMismatch.
package matrix
