// Package blobstore provides the storage abstraction behind corpus sources and
// matrix snapshots.
//
// A BlobStore holds named, immutable-once-written blobs. Put replaces a blob
// atomically: concurrent readers see either the old or the new content.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, Put via temp file + rename
//   - MemoryStore: in-memory, for tests
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with DynamoDB commits
//   - minio.Store: MinIO and other S3-compatible services
package blobstore
