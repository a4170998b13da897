package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/apim-extensions/s3artifacts"
	"github.com/apim-extensions/s3artifacts/artifacts"
	"github.com/apim-extensions/s3artifacts/local"
	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/spf13/pflag"
)

const (
	backendS3    = "s3"
	backendLocal = "local"

	defaultRegion = "us-east-1"
)

// Settings are the process level settings every command shares
type Settings struct {
	AccessKey        string
	SecretKey        string
	Region           string
	Profile          string
	Endpoint         string
	EnvironmentsFile string
	Backend          string
	Root             string
}

// AddFlags registers the settings on flagSet. Defaults come from the environment.
func (s *Settings) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.AccessKey, "access-key", os.Getenv("AWS_ACCESS_KEY_ID"), "object store access key")
	flagSet.StringVar(&s.SecretKey, "secret-key", os.Getenv("AWS_SECRET_ACCESS_KEY"), "object store secret key")
	flagSet.StringVar(&s.Region, "region", envOrDefault("AWS_REGION", defaultRegion), "object store region")
	flagSet.StringVar(&s.Profile, "profile", os.Getenv("AWS_PROFILE"), "shared credentials profile")
	flagSet.StringVar(&s.Endpoint, "endpoint", os.Getenv("GWARTIFACTS_ENDPOINT"),
		"endpoint of an S3 compatible store")
	flagSet.StringVar(&s.EnvironmentsFile, "environments", os.Getenv("GWARTIFACTS_ENVIRONMENTS"),
		"YAML file listing the gateway environments")
	flagSet.StringVar(&s.Backend, "backend", envOrDefault("GWARTIFACTS_BACKEND", backendS3),
		"object store backend, s3 or local")
	flagSet.StringVar(&s.Root, "root", os.Getenv("GWARTIFACTS_ROOT"), "root directory of the local backend")
}

// Store returns the object store the settings describe
func (s *Settings) Store() (artifacts.ObjectStore, error) {
	switch s.Backend {
	case backendS3:
		sess, err := NewSession(s)
		if err != nil {
			return nil, fmt.Errorf("Error creating AWS session: %+v", err)
		}
		return artifacts.NewS3Store(s3.New(sess)), nil
	case backendLocal:
		if s.Root == "" {
			return nil, fmt.Errorf("The local backend requires --root")
		}
		store, err := local.NewStore(s.Root)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("Unknown backend %s", s.Backend)
}

// Environments returns the configured gateway environments. No file means no environments.
func (s *Settings) Environments() (model.Environments, error) {
	if s.EnvironmentsFile == "" {
		return model.Environments{}, nil
	}
	return model.ParseEnvironmentsFile(s.EnvironmentsFile)
}

// plugin is a saver and retriever pair registered the way a gateway host would
type plugin struct {
	registry     *s3artifacts.Registry
	saver        artifacts.Saver
	retriever    artifacts.Retriever
	environments model.Environments
}

func openPlugin(ctx context.Context, settings *Settings) (*plugin, error) {
	store, err := settings.Store()
	if err != nil {
		return nil, err
	}

	environments, err := settings.Environments()
	if err != nil {
		return nil, err
	}

	saver := artifacts.NewSaver(store, environments)
	retriever := artifacts.NewRetriever(store, environments)

	registry := s3artifacts.NewRegistry()
	if err := registry.RegisterSaver(saver); err != nil {
		return nil, err
	}
	if err := registry.RegisterRetriever(retriever); err != nil {
		return nil, err
	}

	if err := retriever.Init(ctx); err != nil {
		return nil, fmt.Errorf("Error initializing %s: %w", retriever.Name(), err)
	}

	return &plugin{
		registry:     registry,
		saver:        registry.Saver(saver.Name()),
		retriever:    registry.Retriever(retriever.Name()),
		environments: environments,
	}, nil
}

func (p *plugin) Close() {
	if err := p.registry.Disconnect(); err != nil {
		synclog.Warningf("Error disconnecting plugin: %+v", err)
	}
}

func envOrDefault(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return defaultValue
}
