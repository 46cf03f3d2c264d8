package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/hupe1980/ncd/blobstore"
)

// DDBCommitStore implements blobstore.BlobStore backed by S3 with DynamoDB
// as the commit log for every Put.
//
// S3 has no compare-and-swap, so two writers replacing the same object would
// silently drop one another's update. DDBCommitStore writes each Put to a new
// versioned object ("<name>.v<version>-<suffix>") and then commits that version with a
// conditional PutItem. Only one writer can commit a given version; the loser gets
// ErrConcurrentModification and its orphan object is deleted.
//
// Table schema:
//   - Partition key: blob_uri (string) - s3://bucket/prefix/name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name ncd-commits \
//	  --attribute-definitions AttributeName=blob_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=blob_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	s3Store   *Store
	ddbClient DDBClient
	tableName string
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when a concurrent write is detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// NewDDBCommitStore creates a new S3+DynamoDB commit store.
func NewDDBCommitStore(s3Store *Store, ddbClient DDBClient, tableName string) *DDBCommitStore {
	return &DDBCommitStore{
		s3Store:   s3Store,
		ddbClient: ddbClient,
		tableName: tableName,
	}
}

func (s *DDBCommitStore) blobURI(name string) string {
	return "s3://" + s.s3Store.bucket + "/" + s.s3Store.key(name)
}

// versionedName returns a unique object name for a version. The random suffix
// keeps two writers racing for the same version from overwriting each other's
// object before the commit decides between them.
func versionedName(name string, version uint64) string {
	return name + ".v" + strconv.FormatUint(version, 10) + "-" + uuid.NewString()[:8]
}

// Open opens the latest committed version of a blob.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	version, object, err := s.latestVersion(ctx, name)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return s.s3Store.Open(ctx, object)
}

// Get reads the latest committed version of a blob.
func (s *DDBCommitStore) Get(ctx context.Context, name string) ([]byte, error) {
	version, object, err := s.latestVersion(ctx, name)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return s.s3Store.Get(ctx, object)
}

// Put writes data as the next version of name and commits it.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	current, _, err := s.latestVersion(ctx, name)
	if err != nil {
		return err
	}
	next := current + 1
	object := versionedName(name, next)

	if err := s.s3Store.Put(ctx, object, data); err != nil {
		return err
	}

	if err := s.commitVersion(ctx, name, next, object); err != nil {
		// Best-effort removal of the uncommitted object.
		_ = s.s3Store.Delete(ctx, object)
		return err
	}

	// Older versions are not removed; a reader may still be fetching one.
	return nil
}

// Delete removes the latest committed object of name. The commit log is kept.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	version, object, err := s.latestVersion(ctx, name)
	if err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	return s.s3Store.Delete(ctx, object)
}

// List lists the raw S3 objects with prefix, including versioned objects.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.s3Store.List(ctx, prefix)
}

// latestVersion queries DynamoDB for the latest committed version of name.
func (s *DDBCommitStore) latestVersion(ctx context.Context, name string) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("blob_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.blobURI(name)},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	objectAttr, ok := item["object"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid object attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, objectAttr.Value, nil
}

// commitVersion atomically records version using a DynamoDB conditional write.
func (s *DDBCommitStore) commitVersion(ctx context.Context, name string, version uint64, object string) error {
	_, err := s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"blob_uri": &types.AttributeValueMemberS{Value: s.blobURI(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"object":   &types.AttributeValueMemberS{Value: object},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}
	return nil
}
