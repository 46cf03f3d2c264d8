package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/ncd/blobstore"
	minioblob "github.com/hupe1980/ncd/blobstore/minio"
	s3blob "github.com/hupe1980/ncd/blobstore/s3"
)

// Scheme identifies where a location lives.
type Scheme string

const (
	SchemeLocal Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinIO Scheme = "minio"
)

// Location is a parsed corpus or output argument.
type Location struct {
	Scheme Scheme
	// Endpoint is the MinIO host[:port].
	Endpoint string
	// Bucket is the S3 or MinIO bucket.
	Bucket string
	// Path is the local path or the key prefix inside the bucket.
	Path string
}

// ParseLocation accepts a local path, s3://bucket/prefix or
// minio://endpoint/bucket/prefix.
func ParseLocation(s string) (Location, error) {
	switch {
	case strings.HasPrefix(s, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(s, "s3://"), "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("location %q: missing bucket", s)
		}
		return Location{Scheme: SchemeS3, Bucket: bucket, Path: strings.Trim(prefix, "/")}, nil
	case strings.HasPrefix(s, "minio://"):
		parts := strings.SplitN(strings.TrimPrefix(s, "minio://"), "/", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return Location{}, fmt.Errorf("location %q: want minio://endpoint/bucket[/prefix]", s)
		}
		loc := Location{Scheme: SchemeMinIO, Endpoint: parts[0], Bucket: parts[1]}
		if len(parts) == 3 {
			loc.Path = strings.Trim(parts[2], "/")
		}
		return loc, nil
	case strings.Contains(s, "://"):
		return Location{}, fmt.Errorf("location %q: unsupported scheme", s)
	case s == "":
		return Location{}, fmt.Errorf("location: empty path")
	default:
		return Location{Scheme: SchemeLocal, Path: filepath.Clean(s)}, nil
	}
}

// IsLocal reports whether the location is on the local filesystem.
func (l Location) IsLocal() bool { return l.Scheme == SchemeLocal }

// Split returns the parent location and the final element, used to turn an
// output document into a store plus a name.
func (l Location) Split() (Location, string) {
	parent := l
	if l.IsLocal() {
		parent.Path = filepath.Dir(l.Path)
		return parent, filepath.Base(l.Path)
	}
	dir, name := path.Split(l.Path)
	parent.Path = strings.TrimSuffix(dir, "/")
	return parent, name
}

// SameContainer reports whether l and o address the same directory or
// bucket prefix.
func (l Location) SameContainer(o Location) bool {
	if l.Scheme != o.Scheme || l.Endpoint != o.Endpoint || l.Bucket != o.Bucket {
		return false
	}
	if l.IsLocal() {
		a, errA := filepath.Abs(l.Path)
		b, errB := filepath.Abs(o.Path)
		return errA == nil && errB == nil && a == b
	}
	return l.Path == o.Path
}

func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3:
		return "s3://" + path.Join(l.Bucket, l.Path)
	case SchemeMinIO:
		return "minio://" + path.Join(l.Endpoint, l.Bucket, l.Path)
	default:
		return l.Path
	}
}

// openStore returns a blob store rooted at l.
func openStore(ctx context.Context, cfg *Config, l Location) (blobstore.BlobStore, error) {
	switch l.Scheme {
	case SchemeS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		store := s3blob.NewStore(awss3.NewFromConfig(awsCfg), l.Bucket, l.Path)
		if cfg.DDBTable == "" {
			return store, nil
		}
		return s3blob.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), cfg.DDBTable), nil
	case SchemeMinIO:
		client, err := minio.New(l.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating MinIO client: %w", err)
		}
		return minioblob.NewStore(client, l.Bucket, l.Path), nil
	default:
		return blobstore.NewLocalStore(l.Path), nil
	}
}
