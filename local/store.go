// Package local contains an object store backed by a directory on the local file system. Each
// bucket is a directory and each artifact a file in it; metadata is kept next to the artifacts
// in a hidden directory.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/apim-extensions/s3artifacts/artifacts"
	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"
)

const (
	// StoreType is the type identifier for local stores
	StoreType = "local"

	metadataDirName = ".metadata"
	tempPrefix      = ".tmp-"
)

var _ artifacts.ObjectStore = (*Store)(nil)

// Store reads and writes artifacts below a root directory
type Store struct {
	root string
}

// NewStore returns a store rooted at root. The directory is created if it does not exist.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("Error determining absolute path for %s: %+v", root, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("Error creating store directory %s: %+v", abs, err)
	}

	return &Store{root: abs}, nil
}

// Type returns the local store type
func (s *Store) Type() string {
	return StoreType
}

// Get reads an artifact and its metadata
func (s *Store) Get(ctx context.Context, bucket, key string) (*artifacts.Object, error) {
	metadata, err := s.Head(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	body, err := ioutil.ReadFile(s.objectPath(bucket, key))
	if os.IsNotExist(err) {
		return nil, artifacts.NotFound(bucket, key)
	} else if err != nil {
		return nil, &artifacts.StorageError{Op: "get", Bucket: bucket, Key: key, Err: err}
	}

	return &artifacts.Object{Body: body, Metadata: metadata}, nil
}

// Head reads only the metadata of an artifact
func (s *Store) Head(ctx context.Context, bucket, key string) (map[string]string, error) {
	if err := checkKey(key); err != nil {
		return nil, &artifacts.StorageError{Op: "head", Bucket: bucket, Key: key, Err: err}
	}

	if _, err := os.Stat(s.objectPath(bucket, key)); os.IsNotExist(err) {
		return nil, artifacts.NotFound(bucket, key)
	} else if err != nil {
		return nil, &artifacts.StorageError{Op: "head", Bucket: bucket, Key: key, Err: err}
	}

	data, err := ioutil.ReadFile(s.metadataPath(bucket, key))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	} else if err != nil {
		return nil, &artifacts.StorageError{Op: "head", Bucket: bucket, Key: key, Err: err}
	}

	metadata := make(map[string]string)
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, &artifacts.StorageError{Op: "head", Bucket: bucket, Key: key,
			Err: fmt.Errorf("Error decoding metadata: %+v", err)}
	}

	return metadata, nil
}

// Put writes the artifact. Metadata and body are each replaced atomically, metadata first, but
// not together: a failure between the two renames leaves the new metadata next to the old body.
// That window is accepted for a development store.
func (s *Store) Put(ctx context.Context, bucket, key string, body []byte, metadata map[string]string) error {
	if err := checkKey(key); err != nil {
		return &artifacts.StorageError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}

	bucketDir := s.bucketPath(bucket)
	if info, err := os.Stat(bucketDir); err != nil || !info.IsDir() {
		return &artifacts.StorageError{Op: "put", Bucket: bucket, Key: key,
			Err: fmt.Errorf("Bucket %s does not exist", bucket)}
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return &artifacts.StorageError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}

	if err := writeFileAtomic(s.metadataPath(bucket, key), encoded); err != nil {
		return &artifacts.StorageError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}

	if err := writeFileAtomic(s.objectPath(bucket, key), body); err != nil {
		return &artifacts.StorageError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}

	synclog.Debugf("Object %s successfully written to %s", key, bucketDir)
	return nil
}

// ListKeys returns every artifact key in the bucket, sorted
func (s *Store) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	entries, err := ioutil.ReadDir(s.bucketPath(bucket))
	if os.IsNotExist(err) {
		return nil, artifacts.NotFound(bucket, "")
	} else if err != nil {
		return nil, &artifacts.StorageError{Op: "list", Bucket: bucket, Err: err}
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		keys = append(keys, entry.Name())
	}

	return keys, nil
}

// CreateBucketIfAbsent creates the bucket directory
func (s *Store) CreateBucketIfAbsent(ctx context.Context, bucket string) error {
	if err := checkKey(bucket); err != nil {
		return &artifacts.StorageError{Op: "create bucket", Bucket: bucket, Err: err}
	}

	bucketDir := s.bucketPath(bucket)
	if info, err := os.Stat(bucketDir); err == nil && info.IsDir() {
		synclog.Warningf("Bucket %s already existed. It will be used as is", bucket)
		return nil
	}

	if err := os.MkdirAll(filepath.Join(bucketDir, metadataDirName), 0755); err != nil {
		return &artifacts.StorageError{Op: "create bucket", Bucket: bucket, Err: err}
	}

	return nil
}

// ExistsWithMetadataValue checks a single metadata value of an artifact
func (s *Store) ExistsWithMetadataValue(ctx context.Context, bucket, key, metadataKey,
	expected string) (bool, error) {
	metadata, err := s.Head(ctx, bucket, key)
	if errors.Is(err, artifacts.ErrArtifactNotFound) {
		synclog.Warningf("Requested file %s does not exist in bucket %s", key, bucket)
		return false, nil
	} else if err != nil {
		return false, err
	}

	value, ok := model.MetadataValue(metadata, metadataKey)
	return ok && value == expected, nil
}

func (s *Store) bucketPath(bucket string) string {
	return filepath.Join(s.root, bucket)
}

func (s *Store) objectPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, key)
}

func (s *Store) metadataPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, metadataDirName, key+".json")
}

// checkKey rejects names that would escape the bucket directory or collide with store internals
func checkKey(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("Name %q cannot be stored locally", name)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("Error creating directory %s: %+v", dir, err)
	}

	file, err := ioutil.TempFile(dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("Error creating temp file in %s: %+v", dir, err)
	}
	defer os.Remove(file.Name())

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("Error writing %s: %+v", file.Name(), err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("Error closing %s: %+v", file.Name(), err)
	}

	if err := os.Chmod(file.Name(), 0644); err != nil {
		return fmt.Errorf("Error setting permissions on %s: %+v", file.Name(), err)
	}

	if err := os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("Error moving %s to %s: %+v", file.Name(), path, err)
	}

	return nil
}
