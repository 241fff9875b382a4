package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kettle-rb/rbs-merge/internal/merge"
)

// Pair is one template/destination file pair to merge. Output defaults to
// the destination path when empty.
type Pair struct {
	Template    string `yaml:"template"`
	Destination string `yaml:"destination"`
	Output      string `yaml:"output,omitempty"`
}

// ProjectConfig holds project-level settings loaded from rbsmerge.yml.
type ProjectConfig struct {
	// Preference is either "template", "destination", or a per-kind map
	// carrying a "default" key.
	Preference      yaml.Node `yaml:"preference,omitempty"`
	AddTemplateOnly bool      `yaml:"addTemplateOnly,omitempty"`
	MarkerToken     string    `yaml:"markerToken,omitempty"`
	Verbose         bool      `yaml:"verbose,omitempty"`
	Pairs           []Pair    `yaml:"pairs,omitempty"`
}

// Load attempts to read rbsmerge.yml or rbsmerge.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"rbsmerge.yml", "rbsmerge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// MergePreference converts the yaml preference value to a merge.Preference.
// A scalar names a global side; a mapping assigns sides per declaration
// kind. Validation of the side values themselves happens in merge.New.
func (c *ProjectConfig) MergePreference() (merge.Preference, error) {
	switch c.Preference.Kind {
	case 0: // absent
		return merge.Preference{}, nil
	case yaml.ScalarNode:
		return merge.GlobalPreference(merge.Side(c.Preference.Value)), nil
	case yaml.MappingNode:
		perKind := make(map[string]merge.Side)
		if err := c.Preference.Decode(&perKind); err != nil {
			return merge.Preference{}, fmt.Errorf("parse preference map: %w", err)
		}
		return merge.KindPreference(perKind), nil
	default:
		return merge.Preference{}, fmt.Errorf("preference must be a string or a mapping")
	}
}
