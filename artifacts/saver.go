package artifacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"

	"golang.org/x/sync/errgroup"
)

// ArtifactSaver saves gateway runtime artifacts into an object store, one bucket per gateway label
type ArtifactSaver struct {
	store        ObjectStore
	environments model.Environments
}

// NewSaver returns a saver writing to store. environments are the gateway environments checked
// by IsPublished.
func NewSaver(store ObjectStore, environments model.Environments) *ArtifactSaver {
	return &ArtifactSaver{
		store:        store,
		environments: environments,
	}
}

// Init creates a bucket for every configured environment
func (s *ArtifactSaver) Init(ctx context.Context) error {
	if err := s.environments.Validate(); err != nil {
		return fmt.Errorf("Error validating environments: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, label := range s.environments.Labels() {
		bucket := model.NormalizeLabel(label)
		group.Go(func() error {
			return s.store.CreateBucketIfAbsent(groupCtx, bucket)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("Error creating environment buckets: %w", err)
	}

	synclog.Debugf("%s initialized with %d environments", s.Name(), len(s.environments))
	return nil
}

// SaveArtifact stores the artifact for label. The bucket is created when missing; it is not
// removed again if the upload fails.
func (s *ArtifactSaver) SaveArtifact(ctx context.Context, payload []byte, label, instruction string) error {
	if err := validateInstruction(instruction); err != nil {
		return err
	}

	artifact, err := model.ParseArtifact(payload)
	if err != nil {
		return err
	}

	location, err := model.NewLocation(artifact.APIID, label)
	if err != nil {
		return err
	}

	if err := s.store.CreateBucketIfAbsent(ctx, location.Bucket); err != nil {
		return fmt.Errorf("Error preparing bucket for %s: %w", artifact.String(), err)
	}

	metadata := artifact.Metadata(label, instruction)
	if err := s.store.Put(ctx, location.Bucket, location.Key, artifact.Raw, metadata); err != nil {
		return fmt.Errorf("Error saving %s: %w", artifact.String(), err)
	}

	synclog.Debugf("Saved %s to %s with instruction %s", artifact.String(), location, instruction)
	return nil
}

// IsPublished returns true if any configured environment holds the artifact with the publish
// instruction. Environments that cannot be checked are logged and skipped; their errors are
// only returned when no environment matched.
func (s *ArtifactSaver) IsPublished(ctx context.Context, apiID string) (bool, error) {
	key := model.KeyForAPI(apiID)
	var errs []error
	for _, label := range s.environments.Labels() {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		bucket := model.NormalizeLabel(label)
		published, err := s.store.ExistsWithMetadataValue(ctx, bucket, key,
			model.MetadataGatewayInstruction, model.InstructionPublish)
		if err != nil {
			synclog.Errorf("Error checking publish status of %s in %s: %+v", apiID, label, err)
			errs = append(errs, err)
			continue
		}

		if published {
			return true, nil
		}
	}

	if len(errs) > 0 {
		return false, fmt.Errorf("Error checking publish status of %s: %w", apiID, errors.Join(errs...))
	}

	return false, nil
}

// Disconnect releases the saver. The store client holds no connections that need closing.
func (s *ArtifactSaver) Disconnect() error {
	return nil
}

// Name returns the name the saver is registered under
func (s *ArtifactSaver) Name() string {
	return componentName(s.store, "Saver")
}
