// Package corpus lists and reads the files whose pairwise distances are measured.
//
// A Source enumerates identifiers and returns their content. A Snapshot is the
// sorted, de-duplicated identifier list captured once per build; the same
// snapshot decides which rows are pending and which columns every row has.
// Content is read on use and never cached.
//
// Two sources are provided:
//
//   - DirSource: the regular files of one directory (non-recursive).
//   - BlobSource: the blobs under a prefix of any blobstore.BlobStore, with
//     every remote call wrapped in a RetryPolicy.
package corpus
