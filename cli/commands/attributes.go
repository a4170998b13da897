package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apim-extensions/s3artifacts/synclog"
)

type attributes struct{}

func (a *attributes) Describe() string {
	return "Prints the API id and gateway label of an API given its name, version and tenant"
}

func (a *attributes) Exec(ctx context.Context, args ...string) error {
	settings := &Settings{}
	flagSet := newFlagSet("attributes", settings)
	name := flagSet.String("name", "", "API name")
	version := flagSet.String("version", "", "API version")
	tenantDomain := flagSet.String("tenant", "carbon.super", "tenant domain")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *name == "" || *version == "" {
		return fmt.Errorf("Both --name and --version are required")
	}

	p, err := openPlugin(ctx, settings)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.retriever.RetrieveAttributes(ctx, *name, *version, *tenantDomain)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("Error encoding attributes: %+v", err)
	}

	synclog.Outputf("%s\n", encoded)
	return nil
}
