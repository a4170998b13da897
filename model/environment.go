package model

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/apim-extensions/s3artifacts/synclog"
	yaml "gopkg.in/yaml.v2"
)

// Environment is a gateway environment an artifact can be deployed to
type Environment struct {
	Type                string `yaml:"type"`
	Description         string `yaml:"description"`
	DisplayInAPIConsole bool   `yaml:"displayInApiConsole"`
}

// Environments maps a gateway label to its environment
type Environments map[string]Environment

// EnvironmentsFile is what an environments file is parsed into
type EnvironmentsFile struct {
	Environments Environments `yaml:"environments"`
}

// Labels returns the gateway labels in sorted order
func (e Environments) Labels() []string {
	labels := make([]string, 0, len(e))
	for label := range e {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Validate checks that every label maps to a usable bucket and that no two labels share one
func (e Environments) Validate() error {
	seen := make(map[string]string, len(e))
	for _, label := range e.Labels() {
		bucket, err := BucketForLabel(label)
		if err != nil {
			return err
		}

		if other, ok := seen[bucket]; ok {
			return fmt.Errorf("Labels %q and %q both map to bucket %s", other, label, bucket)
		}
		seen[bucket] = label
	}
	return nil
}

// ParseEnvironments parses the environments data
func ParseEnvironments(data []byte) (Environments, error) {
	environmentsFile := &EnvironmentsFile{}
	if err := yaml.UnmarshalStrict(data, environmentsFile); err != nil {
		return nil, fmt.Errorf("Error parsing environments: %+v", err)
	}

	environments := environmentsFile.Environments
	if environments == nil {
		environments = Environments{}
	}

	if err := environments.Validate(); err != nil {
		return nil, err
	}

	return environments, nil
}

// ParseEnvironmentsFile parses the environments file at the provided location
func ParseEnvironmentsFile(path string) (Environments, error) {
	synclog.Debugf("Opening environments file %s", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Error opening %s: %+v", path, err)
	}
	defer file.Close()

	synclog.Debugf("Reading environments file %s", path)
	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("Error reading %s: %+v", path, err)
	}

	synclog.Debugf("Parsing environments file %s", path)
	environments, err := ParseEnvironments(data)
	if err != nil {
		return nil, fmt.Errorf("Error parsing %s: %+v", path, err)
	}

	return environments, nil
}
