package commands

import (
	"context"
	"fmt"

	"github.com/apim-extensions/s3artifacts/model"
	"github.com/apim-extensions/s3artifacts/synclog"
)

type save struct{}

func (s *save) Describe() string {
	return "Saves an artifact read from a file or stdin"
}

func (s *save) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("save", settings)
	label := flagSet.String("label", "", "gateway label to save the artifact for")
	instruction := flagSet.String("instruction", model.InstructionPublish, "gateway instruction, publish or remove")
	yes := flagSet.BoolP("yes", "y", false, "overwrite an existing artifact without asking")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	payload, err := readArtifact(flagSet.Arg(0))
	if err != nil {
		return fmt.Errorf("Error reading artifact: %+v", err)
	}

	artifact, err := model.ParseArtifact(payload)
	if err != nil {
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

	if !*yes {
		existing, err := p.retriever.RetrieveArtifact(ctx, artifact.APIID, targetLabel, model.InstructionAny)
		if err != nil {
			return err
		}

		if existing != "" {
			ok, err := confirm(fmt.Sprintf("Overwrite %s in %s", artifact.String(), targetLabel))
			if err != nil {
				return fmt.Errorf("Error getting confirmation: %+v", err)
			}
			if !ok {
				synclog.Infof("Leaving %s unchanged", artifact.String())
				return nil
			}
		}
	}

	if err := p.saver.SaveArtifact(ctx, payload, targetLabel, *instruction); err != nil {
		return err
	}

	synclog.Infof("Saved %s to %s with instruction %s", artifact.String(), targetLabel, *instruction)
	return nil
}
