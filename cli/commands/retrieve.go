package commands

import (
	"context"
	"fmt"

	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"
)

type retrieve struct{}

func (r *retrieve) Describe() string {
	return "Prints the artifact of an API"
}

func (r *retrieve) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("retrieve", settings)
	label := flagSet.String("label", "", "gateway label the artifact was saved for")
	instruction := flagSet.String("instruction", model.InstructionAny, "only print artifacts saved with this instruction")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() != 1 {
		return fmt.Errorf("Expected exactly one API id")
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

	content, err := p.retriever.RetrieveArtifact(ctx, flagSet.Arg(0), targetLabel, *instruction)
	if err != nil {
		return err
	}

	if content == "" {
		return fmt.Errorf("No artifact for %s in %s with instruction %s", flagSet.Arg(0), targetLabel, *instruction)
	}

	synclog.Outputf("%s\n", content)
	return nil
}
