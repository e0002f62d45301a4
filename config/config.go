package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uib-ub/snomedct-transform/normalizer"
	"github.com/uib-ub/snomedct-transform/snomed"
)

// TableSpec declares one snapshot table to load: the filename pattern it is
// discovered by, its row shape, and the dataset slot it fills.
type TableSpec struct {
	Pattern string
	Family  snomed.Family
	Key     string
}

// Config is the processing configuration consumed by the pipeline.
type Config struct {
	InputDir       string
	Limit          int
	IDFilter       []string
	Validate       bool
	SafeValidation bool
	Tables         []TableSpec
	ReplaceValues  map[snomed.Family][]normalizer.Rule
}

type yamlFile struct {
	Input         string                `yaml:"input"`
	Tables        []yamlTable           `yaml:"tables"`
	ReplaceValues map[string][]yamlRule `yaml:"replace_values"`
}

type yamlTable struct {
	Pattern string `yaml:"pattern"`
	Family  string `yaml:"family"`
	Key     string `yaml:"key"`
}

type yamlRule struct {
	Column string `yaml:"column"`
	Old    string `yaml:"old"`
	New    string `yaml:"new"`
}

// Load applies overrides from a YAML file on top of the defaults. Sections
// absent from the file keep their default values.
func Load(filename string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return cfg, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	if yf.Input != "" {
		cfg.InputDir = yf.Input
	}
	if len(yf.Tables) > 0 {
		cfg.Tables = nil
		for _, t := range yf.Tables {
			cfg.Tables = append(cfg.Tables, TableSpec{
				Pattern: t.Pattern,
				Family:  snomed.Family(t.Family),
				Key:     t.Key,
			})
		}
	}
	for family, rules := range yf.ReplaceValues {
		var rs []normalizer.Rule
		for _, r := range rules {
			rs = append(rs, normalizer.Rule{Column: r.Column, Old: r.Old, New: r.New})
		}
		cfg.ReplaceValues[snomed.Family(family)] = rs
	}

	return cfg, nil
}
