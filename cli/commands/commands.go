// Package commands contains the commands of the gateway artifact CLI
package commands

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sort"

	"github.com/apim-extensions/s3artifacts/synclog"

	"github.com/manifoldco/promptui"
	"github.com/spf13/pflag"
)

var (
	// Setup is the command that creates a bucket per gateway environment
	Setup Command = &setup{}

	// Save is the command that saves an artifact
	Save Command = &save{}

	// Retrieve is the command that prints a single artifact
	Retrieve Command = &retrieve{}

	// List is the command that prints every artifact of a gateway label
	List Command = &list{}

	// Published is the command that reports whether an API is published anywhere
	Published Command = &published{}

	// Attributes is the command that looks an API up by name, version and tenant
	Attributes Command = &attributes{}

	// Transfer is the command that copies a label's artifacts from a local directory
	Transfer Command = &transfer{}

	// Known maps command names to commands
	Known = map[string]Command{
		"setup":      Setup,
		"save":       Save,
		"retrieve":   Retrieve,
		"list":       List,
		"published":  Published,
		"attributes": Attributes,
		"transfer":   Transfer,
	}

	// stdin and the prompt functions are swapped out in tests
	stdin        io.Reader = os.Stdin
	selectPrompt           = selectWithPrompt
	confirm                = getYnConfirmation
)

// Command is an interface for commands
type Command interface {
	Describe() string
	Exec(ctx context.Context, args ...string) error
}

// Names returns the sorted command names
func Names() []string {
	names := make([]string, 0, len(Known))
	for name := range Known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newFlagSet(name string, settings *Settings) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	settings.AddFlags(flagSet)
	return flagSet
}

// labelOrPrompt returns label, or asks the user to pick one of the configured environments
func labelOrPrompt(label string, p *plugin) (string, error) {
	if label != "" {
		return label, nil
	}

	labels := p.environments.Labels()
	if len(labels) == 0 {
		return "", fmt.Errorf("No --label given and no environments configured")
	}

	return selectPrompt("Gateway environment", labels)
}

func readArtifact(path string) ([]byte, error) {
	if path == "" || path == "-" {
		synclog.Debugf("Reading artifact from stdin")
		return ioutil.ReadAll(stdin)
	}

	synclog.Debugf("Reading artifact from %s", path)
	return ioutil.ReadFile(path)
}

func selectWithPrompt(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}

	_, result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("Error getting option for %s: %+v", label, err)
	}

	return result, nil
}

func getYnConfirmation(label string) (bool, error) {
	prompt := promptui.Select{
		Label: label,
		Items: []string{"Yes", "No"},
	}

	selectedIndex, _, err := prompt.Run()
	if err != nil {
		return false, err
	}

	return selectedIndex == 0, nil
}
