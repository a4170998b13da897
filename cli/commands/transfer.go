package commands

import (
	"context"
	"fmt"

	"github.com/apim-extensions/s3artifacts/artifacts"
	"github.com/apim-extensions/s3artifacts/local"
	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"
)

type transfer struct{}

func (t *transfer) Describe() string {
	return "Copies the artifacts of a gateway label from a local directory into the configured store"
}

func (t *transfer) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("transfer", settings)
	label := flagSet.String("label", "", "gateway label to copy")
	fromRoot := flagSet.String("from-root", "", "root directory of the local store to copy from")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *label == "" || *fromRoot == "" {
		return fmt.Errorf("Both --label and --from-root are required")
	}

	bucket, err := model.BucketForLabel(*label)
	if err != nil {
		return err
	}

	source, err := local.NewStore(*fromRoot)
	if err != nil {
		return err
	}

	destination, err := settings.Store()
	if err != nil {
		return err
	}

	copied, err := artifacts.Transfer(ctx, source, destination, bucket)
	if err != nil {
		return err
	}

	synclog.Infof("Copied %d artifacts for %s into the %s store", copied, *label, destination.Type())
	return nil
}
