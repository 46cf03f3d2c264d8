// Package s3 provides Amazon S3 implementations of blobstore.BlobStore.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "corpus/")
//
// Store writes each blob with a single PutObject (or a multipart upload for large
// blobs), which S3 applies atomically. DDBCommitStore adds DynamoDB conditional
// writes on top so that two writers replacing the same blob are detected instead
// of silently overwriting each other.
package s3
