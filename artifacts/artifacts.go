// Package artifacts saves and retrieves gateway runtime artifacts in an object store
package artifacts

import (
	"context"
	"errors"
	"fmt"
)

// Transfer copies every artifact in bucket from source to destination, metadata included.
// Artifacts already in the destination are overwritten. Returns the number of artifacts copied.
func Transfer(ctx context.Context, source ObjectStore, destination ObjectStore, bucket string) (int, error) {
	keys, err := source.ListKeys(ctx, bucket)
	if errors.Is(err, ErrArtifactNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("Error listing source bucket %s: %w", bucket, err)
	}

	if err := destination.CreateBucketIfAbsent(ctx, bucket); err != nil {
		return 0, fmt.Errorf("Error creating destination bucket %s: %w", bucket, err)
	}

	copied := 0
	for _, key := range keys {
		object, err := source.Get(ctx, bucket, key)
		if err != nil {
			return copied, fmt.Errorf("Error reading %s/%s from source: %w", bucket, key, err)
		}

		if err := destination.Put(ctx, bucket, key, object.Body, object.Metadata); err != nil {
			return copied, fmt.Errorf("Error writing %s/%s to destination: %w", bucket, key, err)
		}
		copied++
	}

	return copied, nil
}
