package artifacts

import (
	"context"
)

// Saver is the capability the gateway host uses to persist runtime artifacts
type Saver interface {
	Init(ctx context.Context) error
	SaveArtifact(ctx context.Context, artifact []byte, label, instruction string) error
	IsPublished(ctx context.Context, apiID string) (bool, error)
	Disconnect() error
	Name() string
}

// Retriever is the capability the gateway host uses to read runtime artifacts back
type Retriever interface {
	Init(ctx context.Context) error
	RetrieveArtifact(ctx context.Context, apiID, label, instruction string) (string, error)
	RetrieveAllArtifacts(ctx context.Context, label string) ([]string, error)
	RetrieveAttributes(ctx context.Context, apiName, version, tenantDomain string) (map[string]string, error)
	Disconnect() error
	Name() string
}

var (
	_ Saver     = (*ArtifactSaver)(nil)
	_ Retriever = (*ArtifactRetriever)(nil)
)

// componentName is S3Saver, LocalRetriever, etc.
func componentName(store ObjectStore, component string) string {
	switch store.Type() {
	case S3StoreType:
		return "S3" + component
	case "local":
		return "Local" + component
	}
	return store.Type() + component
}
