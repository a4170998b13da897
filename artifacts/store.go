package artifacts

import (
	"context"
)

// Object is an artifact body together with the metadata it was stored with
type Object struct {
	Body     []byte
	Metadata map[string]string
}

// ObjectStore implementations read/write artifacts to a backing object store. Missing buckets
// or keys are reported as ErrArtifactNotFound, other failures as *StorageError.
type ObjectStore interface {
	Type() string
	Get(ctx context.Context, bucket, key string) (*Object, error)
	Head(ctx context.Context, bucket, key string) (map[string]string, error)

	// Put creates or overwrites the object. The last write wins.
	Put(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) error
	ListKeys(ctx context.Context, bucket string) ([]string, error)

	// CreateBucketIfAbsent idempotently creates the bucket
	CreateBucketIfAbsent(ctx context.Context, bucket string) error

	// ExistsWithMetadataValue reports whether the object exists and its metadataKey equals
	// expected. A missing object or bucket is false, not an error.
	ExistsWithMetadataValue(ctx context.Context, bucket, key, metadataKey, expected string) (bool, error)
}
