package artifacts

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/apim-extensions/s3artifacts/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaverAndRetriever(labels ...string) (*ArtifactSaver, *ArtifactRetriever, *fakeS3) {
	store, fake := newFakeStore("")
	environments := testEnvironments(labels...)
	return NewSaver(store, environments), NewRetriever(store, environments), fake
}

func TestRetrieveArtifactRoundTrip(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("Prod 1")

	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "Prod 1", model.InstructionPublish))

	content, err := retriever.RetrieveArtifact(ctx, "a1", "Prod 1", model.InstructionPublish)
	require.NoError(t, err)
	assert.Equal(t, artifactA1, content)

	content, err = retriever.RetrieveArtifact(ctx, "a1", "prod1", model.InstructionPublish)
	require.NoError(t, err)
	assert.Equal(t, artifactA1, content, "labels differing only in case and whitespace share a bucket")
}

func TestRetrieveArtifactKeepsBytesVerbatim(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("env1")
	pretty := "{\n  \"apiId\": \"a1\",\n  \"name\": \"n\",\n  \"version\": \"v1\",\n  \"tenantDomain\": \"t\"\n}\n"

	require.NoError(t, saver.SaveArtifact(ctx, []byte(pretty), "env1", model.InstructionPublish))

	content, err := retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionAny)
	require.NoError(t, err)
	assert.Equal(t, pretty, content)
}

func TestRetrieveArtifactInstructionMismatch(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("env1")

	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "env1", model.InstructionPublish))

	content, err := retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionRemove)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestRetrieveArtifactWildcard(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("env1")

	for _, instruction := range []string{model.InstructionPublish, model.InstructionRemove} {
		require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "env1", instruction))

		content, err := retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionAny)
		require.NoError(t, err)
		assert.Equal(t, artifactA1, content, instruction)
	}
}

func TestRetrieveArtifactWithoutInstructionMetadata(t *testing.T) {
	ctx := context.Background()
	store, _ := newFakeStore("")
	retriever := NewRetriever(store, testEnvironments("env1"))
	require.NoError(t, store.CreateBucketIfAbsent(ctx, "env1"))
	require.NoError(t, store.Put(ctx, "env1", "a1.json", []byte(artifactA1), nil))

	content, err := retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionPublish)
	require.NoError(t, err)
	assert.Empty(t, content)

	content, err = retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionAny)
	require.NoError(t, err)
	assert.Equal(t, artifactA1, content)
}

func TestRetrieveArtifactMissing(t *testing.T) {
	ctx := context.Background()
	_, retriever, _ := newSaverAndRetriever("env1")

	content, err := retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionAny)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestRetrieveArtifactStorageFailure(t *testing.T) {
	ctx := context.Background()
	_, retriever, fake := newSaverAndRetriever("env1")
	fake.fail("get", requestFailure("InternalError", http.StatusInternalServerError))

	_, err := retriever.RetrieveArtifact(ctx, "a1", "env1", model.InstructionAny)
	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestRetrieveAllArtifacts(t *testing.T) {
	ctx := context.Background()
	saver, retriever, fake := newSaverAndRetriever("env1")

	artifactA2 := `{"apiId":"a2","name":"m","version":"v1","tenantDomain":"t"}`
	artifactA3 := `{"apiId":"a3","name":"o","version":"v1","tenantDomain":"t"}`
	for _, artifact := range []string{artifactA1, artifactA2, artifactA3} {
		require.NoError(t, saver.SaveArtifact(ctx, []byte(artifact), "env1", model.InstructionPublish))
	}

	contents, err := retriever.RetrieveAllArtifacts(ctx, "env1")
	require.NoError(t, err)
	assert.Equal(t, []string{artifactA1, artifactA2, artifactA3}, contents)

	fake.failKey("a2.json", requestFailure("InternalError", http.StatusInternalServerError))
	contents, err = retriever.RetrieveAllArtifacts(ctx, "env1")
	require.NoError(t, err)
	assert.Equal(t, []string{artifactA1, artifactA3}, contents)
}

func TestRetrieveAllArtifactsMissingBucket(t *testing.T) {
	_, retriever, _ := newSaverAndRetriever("env1")

	contents, err := retriever.RetrieveAllArtifacts(context.Background(), "env1")
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestRetrieveAllArtifactsListFailure(t *testing.T) {
	_, retriever, fake := newSaverAndRetriever("env1")
	fake.fail("list", requestFailure("AccessDenied", http.StatusForbidden))

	_, err := retriever.RetrieveAllArtifacts(context.Background(), "env1")
	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestRetrieveAttributes(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("Prod 1", "env1", "env2")

	artifactB := `{"apiId":"b7","name":"pets","version":"2.0","tenantDomain":"carbon.super"}`
	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "env1", model.InstructionPublish))
	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactB), "Prod 1", model.InstructionPublish))

	attributes, err := retriever.RetrieveAttributes(ctx, "pets", "2.0", "carbon.super")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apiId": "b7", "label": "Prod 1"}, attributes)

	attributes, err = retriever.RetrieveAttributes(ctx, "n", "v1", "t")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apiId": "a1", "label": "env1"}, attributes)
}

func TestRetrieveAttributesFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("env1", "env2")

	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "env2", model.InstructionPublish))
	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "env1", model.InstructionRemove))

	attributes, err := retriever.RetrieveAttributes(ctx, "n", "v1", "t")
	require.NoError(t, err)
	assert.Equal(t, "env1", attributes[model.AttributeLabel])
}

func TestRetrieveAttributesNoMatch(t *testing.T) {
	ctx := context.Background()
	saver, retriever, _ := newSaverAndRetriever("env1", "env2")
	require.NoError(t, saver.SaveArtifact(ctx, []byte(artifactA1), "env1", model.InstructionPublish))

	_, err := retriever.RetrieveAttributes(ctx, "n", "v2", "t")
	assert.True(t, errors.Is(err, ErrArtifactNotFound))
}

func TestRetrieveAttributesListFailure(t *testing.T) {
	ctx := context.Background()
	_, retriever, fake := newSaverAndRetriever("env1")
	fake.fail("list", requestFailure("InternalError", http.StatusInternalServerError))

	_, err := retriever.RetrieveAttributes(ctx, "n", "v1", "t")
	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestRetrieverLifecycle(t *testing.T) {
	_, retriever, _ := newSaverAndRetriever("env1")
	assert.NoError(t, retriever.Init(context.Background()))
	assert.Equal(t, "S3Retriever", retriever.Name())
	assert.NoError(t, retriever.Disconnect())

	_, invalid, _ := newSaverAndRetriever("a")
	assert.Error(t, invalid.Init(context.Background()))
}
