package artifacts

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound is returned when an artifact or the bucket holding it is not found
	ErrArtifactNotFound = errors.New("artifact not found")
)

// StorageError is returned when the object store could not serve a request
type StorageError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (s *StorageError) Error() string {
	if s.Key == "" {
		return fmt.Sprintf("Error during %s on bucket %s: %+v", s.Op, s.Bucket, s.Err)
	}
	return fmt.Sprintf("Error during %s of %s/%s: %+v", s.Op, s.Bucket, s.Key, s.Err)
}

// Unwrap returns the underlying error
func (s *StorageError) Unwrap() error {
	return s.Err
}

// NotFound returns an error for a missing bucket/key that matches ErrArtifactNotFound
func NotFound(bucket, key string) error {
	if key == "" {
		return fmt.Errorf("Bucket %s: %w", bucket, ErrArtifactNotFound)
	}
	return fmt.Errorf("%s/%s: %w", bucket, key, ErrArtifactNotFound)
}
