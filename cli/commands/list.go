package commands

import (
	"context"

	"github.com/apim-extensions/s3artifacts/synclog"
)

type list struct{}

func (l *list) Describe() string {
	return "Prints every artifact of a gateway label, one per line"
}

func (l *list) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("list", settings)
	label := flagSet.String("label", "", "gateway label to list")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	p, err := openPlugin(ctx, settings)
	if err != nil {
		return err
	}
	defer p.Close()

	targetLabel, err := labelOrPrompt(*label, p)
	if err != nil {
		return err
	}

	contents, err := p.retriever.RetrieveAllArtifacts(ctx, targetLabel)
	if err != nil {
		return err
	}

	for _, content := range contents {
		synclog.Outputf("%s\n", content)
	}
	synclog.Debugf("Listed %d artifacts for %s", len(contents), targetLabel)
	return nil
}
