package artifacts

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type fakeObject struct {
	body     []byte
	metadata map[string]*string
}

// fakeS3 is an in-memory S3 that answers with the same error codes and status codes as the real
// service. Only the calls the store makes are implemented.
type fakeS3 struct {
	s3iface.S3API

	mu            sync.Mutex
	buckets       map[string]map[string]*fakeObject
	createInputs  []*s3.CreateBucketInput
	failures      map[string]error // keyed by operation, e.g. "get"
	keyFailures   map[string]error // keyed by object key, applies to get and head
	pageSize      int
	listRequests  int
	uploadRequest int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		buckets:     make(map[string]map[string]*fakeObject),
		failures:    make(map[string]error),
		keyFailures: make(map[string]error),
		pageSize:    2,
	}
}

func requestFailure(code string, status int) error {
	return awserr.NewRequestFailure(awserr.New(code, http.StatusText(status), nil), status, "request-id")
}

func (f *fakeS3) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakeS3) failKey(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyFailures[key] = err
}

func (f *fakeS3) hasBucket(bucket string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.buckets[bucket]
	return ok
}

func (f *fakeS3) lookup(op string, bucket, key *string, missingKeyCode string) (*fakeObject, error) {
	if err := f.failures[op]; err != nil {
		return nil, err
	}
	if err := f.keyFailures[aws.StringValue(key)]; err != nil {
		return nil, err
	}

	objects, ok := f.buckets[aws.StringValue(bucket)]
	if !ok {
		return nil, requestFailure(s3.ErrCodeNoSuchBucket, http.StatusNotFound)
	}

	object, ok := objects[aws.StringValue(key)]
	if !ok {
		return nil, requestFailure(missingKeyCode, http.StatusNotFound)
	}

	return object, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput,
	opts ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	object, err := f.lookup("get", input.Bucket, input.Key, s3.ErrCodeNoSuchKey)
	if err != nil {
		return nil, err
	}

	return &s3.GetObjectOutput{
		Body:     ioutil.NopCloser(bytes.NewReader(object.body)),
		Metadata: object.metadata,
	}, nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, input *s3.HeadObjectInput,
	opts ...request.Option) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	object, err := f.lookup("head", input.Bucket, input.Key, errCodeNotFound)
	if err != nil {
		return nil, err
	}

	return &s3.HeadObjectOutput{Metadata: object.metadata}, nil
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input,
	fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	f.mu.Lock()
	f.listRequests++
	if err := f.failures["list"]; err != nil {
		f.mu.Unlock()
		return err
	}

	objects, ok := f.buckets[aws.StringValue(input.Bucket)]
	if !ok {
		f.mu.Unlock()
		return requestFailure(s3.ErrCodeNoSuchBucket, http.StatusNotFound)
	}

	keys := make([]string, 0, len(objects))
	for key := range objects {
		keys = append(keys, key)
	}
	f.mu.Unlock()
	sort.Strings(keys)

	for start := 0; start == 0 || start < len(keys); start += f.pageSize {
		end := start + f.pageSize
		if end > len(keys) {
			end = len(keys)
		}

		page := &s3.ListObjectsV2Output{}
		for _, key := range keys[start:end] {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(key)})
		}

		if !fn(page, end == len(keys)) {
			break
		}
	}

	return nil
}

func (f *fakeS3) CreateBucketWithContext(ctx aws.Context, input *s3.CreateBucketInput,
	opts ...request.Option) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createInputs = append(f.createInputs, input)
	if err := f.failures["create"]; err != nil {
		return nil, err
	}

	bucket := aws.StringValue(input.Bucket)
	if _, ok := f.buckets[bucket]; ok {
		return nil, requestFailure(s3.ErrCodeBucketAlreadyOwnedByYou, http.StatusConflict)
	}

	f.buckets[bucket] = make(map[string]*fakeObject)
	return &s3.CreateBucketOutput{}, nil
}

// Upload and UploadWithContext make the fake usable as the uploader as well
func (f *fakeS3) Upload(input *s3manager.UploadInput,
	options ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(aws.BackgroundContext(), input, options...)
}

func (f *fakeS3) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput,
	options ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	body, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploadRequest++
	if err := f.failures["put"]; err != nil {
		return nil, err
	}

	objects, ok := f.buckets[aws.StringValue(input.Bucket)]
	if !ok {
		return nil, requestFailure(s3.ErrCodeNoSuchBucket, http.StatusNotFound)
	}

	// S3 hands user metadata back with canonicalized header names
	metadata := make(map[string]*string, len(input.Metadata))
	for key, value := range input.Metadata {
		metadata[http.CanonicalHeaderKey(key)] = aws.String(aws.StringValue(value))
	}

	if aws.StringValue(input.ContentType) != "application/json" {
		return nil, awserr.New("UnexpectedContentType", aws.StringValue(input.ContentType), nil)
	}

	objects[aws.StringValue(input.Key)] = &fakeObject{body: body, metadata: metadata}
	return &s3manager.UploadOutput{}, nil
}

func newFakeStore(region string) (*S3Store, *fakeS3) {
	fake := newFakeS3()
	return NewS3StoreWithUploader(fake, fake, region), fake
}
