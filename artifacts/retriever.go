package artifacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"

	"golang.org/x/sync/errgroup"
)

// ArtifactRetriever reads gateway runtime artifacts back out of an object store
type ArtifactRetriever struct {
	store        ObjectStore
	environments model.Environments
}

// NewRetriever returns a retriever reading from store. environments are the gateway
// environments scanned by RetrieveAttributes.
func NewRetriever(store ObjectStore, environments model.Environments) *ArtifactRetriever {
	return &ArtifactRetriever{
		store:        store,
		environments: environments,
	}
}

// Init validates the configured environments
func (r *ArtifactRetriever) Init(ctx context.Context) error {
	if err := r.environments.Validate(); err != nil {
		return fmt.Errorf("Error validating environments: %w", err)
	}
	return nil
}

// RetrieveArtifact returns the artifact for apiID stored for label, provided it was saved with
// instruction. The wildcard instruction matches anything. An empty string is returned when the
// artifact does not exist or the instruction does not match.
func (r *ArtifactRetriever) RetrieveArtifact(ctx context.Context, apiID, label,
	instruction string) (string, error) {
	location, err := model.NewLocation(apiID, label)
	if err != nil {
		return "", err
	}

	object, err := r.store.Get(ctx, location.Bucket, location.Key)
	if errors.Is(err, ErrArtifactNotFound) {
		synclog.Debugf("No artifact at %s", location)
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("Error retrieving %s: %w", location, err)
	}

	if instruction != model.InstructionAny {
		stored, ok := model.MetadataValue(object.Metadata, model.MetadataGatewayInstruction)
		if !ok || stored != instruction {
			synclog.Debugf("Ignoring %s: stored instruction %q does not match %q", location, stored, instruction)
			return "", nil
		}
	}

	return string(object.Body), nil
}

// RetrieveAllArtifacts returns every artifact stored for label. Artifacts that cannot be read
// are logged and skipped, but failing to list the bucket is an error.
func (r *ArtifactRetriever) RetrieveAllArtifacts(ctx context.Context, label string) ([]string, error) {
	bucket, err := model.BucketForLabel(label)
	if err != nil {
		return nil, err
	}

	keys, err := r.store.ListKeys(ctx, bucket)
	if errors.Is(err, ErrArtifactNotFound) {
		synclog.Debugf("No bucket for label %s", label)
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("Error listing artifacts for %s: %w", label, err)
	}

	contents := make([]string, 0, len(keys))
	for _, key := range keys {
		object, err := r.store.Get(ctx, bucket, key)
		if err != nil {
			synclog.Errorf("Skipping %s/%s: %+v", bucket, key, err)
			continue
		}
		contents = append(contents, string(object.Body))
	}

	return contents, nil
}

// RetrieveAttributes finds the artifact saved for apiName/version/tenantDomain in any configured
// environment and returns its API id and gateway label. Environments are scanned in label order
// and the first match wins.
func (r *ArtifactRetriever) RetrieveAttributes(ctx context.Context, apiName, version,
	tenantDomain string) (map[string]string, error) {
	labels := r.environments.Labels()
	listings := make([][]string, len(labels))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, label := range labels {
		bucket := model.NormalizeLabel(label)
		group.Go(func() error {
			keys, err := r.store.ListKeys(groupCtx, bucket)
			if errors.Is(err, ErrArtifactNotFound) {
				synclog.Debugf("Skipping environment %s: bucket %s does not exist", label, bucket)
				return nil
			} else if err != nil {
				return fmt.Errorf("Error listing artifacts for %s: %w", label, err)
			}
			listings[i] = keys
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, label := range labels {
		bucket := model.NormalizeLabel(label)
		for _, key := range listings[i] {
			metadata, err := r.store.Head(ctx, bucket, key)
			if errors.Is(err, ErrArtifactNotFound) {
				continue
			} else if err != nil {
				return nil, fmt.Errorf("Error reading metadata of %s/%s: %w", bucket, key, err)
			}

			if !matches(metadata, model.MetadataAPIName, apiName) ||
				!matches(metadata, model.MetadataVersion, version) ||
				!matches(metadata, model.MetadataTenantDomain, tenantDomain) {
				continue
			}

			apiID, _ := model.MetadataValue(metadata, model.MetadataAPIID)
			gatewayEnv, ok := model.MetadataValue(metadata, model.MetadataGatewayEnv)
			if !ok {
				gatewayEnv = label
			}

			return map[string]string{
				model.AttributeAPIID: apiID,
				model.AttributeLabel: gatewayEnv,
			}, nil
		}
	}

	return nil, fmt.Errorf("No artifact for %s/%s-%s: %w", tenantDomain, apiName, version, ErrArtifactNotFound)
}

// Disconnect releases the retriever. The store client holds no connections that need closing.
func (r *ArtifactRetriever) Disconnect() error {
	return nil
}

// Name returns the name the retriever is registered under
func (r *ArtifactRetriever) Name() string {
	return componentName(r.store, "Retriever")
}

func matches(metadata map[string]string, key, expected string) bool {
	value, ok := model.MetadataValue(metadata, key)
	return ok && value == expected
}
