package commands

import (
	"context"
	"fmt"

	"github.com/apim-extensions/s3artifacts/synclog"
)

type published struct{}

func (p *published) Describe() string {
	return "Prints whether an API is published in any gateway environment"
}

func (p *published) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("published", settings)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() != 1 {
		return fmt.Errorf("Expected exactly one API id")
	}

	registered, err := openPlugin(ctx, settings)
	if err != nil {
		return err
	}
	defer registered.Close()

	isPublished, err := registered.saver.IsPublished(ctx, flagSet.Arg(0))
	if err != nil {
		return err
	}

	synclog.Outputf("%t\n", isPublished)
	return nil
}
