package commands

import (
	"context"
	"fmt"

	"github.com/apim-extensions/s3artifacts/synclog"
)

type setup struct{}

func (s *setup) Describe() string {
	return "Creates a bucket for every gateway environment"
}

func (s *setup) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("setup", settings)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	p, err := openPlugin(ctx, settings)
	if err != nil {
		return err
	}
	defer p.Close()

	if len(p.environments) == 0 {
		return fmt.Errorf("No environments configured, use --environments")
	}

	if err := p.saver.Init(ctx); err != nil {
		return fmt.Errorf("Error initializing %s: %w", p.saver.Name(), err)
	}

	synclog.Infof("Buckets ready for %d environments", len(p.environments))
	return nil
}
