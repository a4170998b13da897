package artifacts

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

const (
	// S3StoreType is the type identifier for the S3 store
	S3StoreType = "s3"

	// HeadObject reports a missing key with this code rather than NoSuchKey
	errCodeNotFound = "NotFound"

	defaultRegion = "us-east-1"
)

// S3Store stores artifacts in S3 or any S3 compatible object store
type S3Store struct {
	svc      s3iface.S3API
	uploader s3manageriface.UploaderAPI
	region   string
}

// NewS3Store returns a store backed by S3
func NewS3Store(svc *s3.S3) *S3Store {
	return NewS3StoreWithUploader(svc, s3manager.NewUploaderWithClient(svc), aws.StringValue(svc.Config.Region))
}

// NewS3StoreWithUploader returns a store using svc for reads and uploader for writes. Buckets are
// created in region.
func NewS3StoreWithUploader(svc s3iface.S3API, uploader s3manageriface.UploaderAPI, region string) *S3Store {
	return &S3Store{
		svc:      svc,
		uploader: uploader,
		region:   region,
	}
}

// Type returns the S3 store type
func (s *S3Store) Type() string {
	return S3StoreType
}

// Get fetches the body and metadata of an object
func (s *S3Store) Get(ctx context.Context, bucket, key string) (*Object, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := s.svc.GetObjectWithContext(ctx, input)
	if err != nil {
		return nil, s.translate("get", bucket, key, err)
	}
	defer output.Body.Close()

	body, err := ioutil.ReadAll(output.Body)
	if err != nil {
		return nil, &StorageError{Op: "get", Bucket: bucket, Key: key, Err: err}
	}

	return &Object{
		Body:     body,
		Metadata: aws.StringValueMap(output.Metadata),
	}, nil
}

// Head fetches only the metadata of an object
func (s *S3Store) Head(ctx context.Context, bucket, key string) (map[string]string, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := s.svc.HeadObjectWithContext(ctx, input)
	if err != nil {
		return nil, s.translate("head", bucket, key, err)
	}

	return aws.StringValueMap(output.Metadata), nil
}

// Put uploads an artifact with the given user metadata
func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte,
	metadata map[string]string) error {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(model.ContentType),
		Metadata:    aws.StringMap(metadata),
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return &StorageError{Op: "put", Bucket: bucket, Key: key, Err: err}
	}

	synclog.Debugf("Object %s successfully created in %s", key, bucket)
	return nil
}

// ListKeys returns every key in the bucket
func (s *S3Store) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}

	keys := make([]string, 0)
	err := s.svc.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, object := range page.Contents {
			keys = append(keys, aws.StringValue(object.Key))
		}
		return true
	})
	if err != nil {
		return nil, s.translate("list", bucket, "", err)
	}

	return keys, nil
}

// CreateBucketIfAbsent creates the bucket. A bucket that already exists is used as is.
func (s *S3Store) CreateBucketIfAbsent(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	if s.region != "" && s.region != defaultRegion {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(s.region),
		}
	}

	if _, err := s.svc.CreateBucketWithContext(ctx, input); err != nil {
		code := errorCode(err)
		if statusCode(err) != http.StatusConflict &&
			code != s3.ErrCodeBucketAlreadyOwnedByYou &&
			code != s3.ErrCodeBucketAlreadyExists {
			return &StorageError{Op: "create bucket", Bucket: bucket, Err: err}
		}

		synclog.Warningf("Bucket %s already existed. It will be used as is", bucket)
	}

	return nil
}

// ExistsWithMetadataValue checks a single metadata value of an object
func (s *S3Store) ExistsWithMetadataValue(ctx context.Context, bucket, key, metadataKey,
	expected string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := s.svc.HeadObjectWithContext(ctx, input)
	if err != nil {
		switch {
		case isNotFound(err):
			synclog.Warningf("Requested file %s does not exist in bucket %s", key, bucket)
			return false, nil
		case statusCode(err) == http.StatusBadRequest:
			synclog.Warningf("Requested bucket %s does not exist", bucket)
			return false, nil
		}
		return false, &StorageError{Op: "head", Bucket: bucket, Key: key, Err: err}
	}

	value, ok := model.MetadataValue(aws.StringValueMap(output.Metadata), metadataKey)
	return ok && value == expected, nil
}

func (s *S3Store) translate(op, bucket, key string, err error) error {
	if isNotFound(err) {
		return NotFound(bucket, key)
	}
	return &StorageError{Op: op, Bucket: bucket, Key: key, Err: err}
}

func isNotFound(err error) bool {
	if statusCode(err) == http.StatusNotFound {
		return true
	}

	switch errorCode(err) {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, errCodeNotFound:
		return true
	}
	return false
}

func statusCode(err error) int {
	var requestFailure awserr.RequestFailure
	if errors.As(err, &requestFailure) {
		return requestFailure.StatusCode()
	}
	return 0
}

func errorCode(err error) string {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return awsErr.Code()
	}
	return ""
}
