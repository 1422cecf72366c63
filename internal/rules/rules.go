// Package rules loads the optional YAML rules file: extra sources, URL
// quality keywords, rename rules and classification toggles. A missing file
// yields zero-value rules so the CLI works with flags alone.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/m3umerge/m3u-merge/internal/classify"
	"github.com/m3umerge/m3u-merge/internal/rename"
)

// Rules is the parsed rules file.
type Rules struct {
	// Sources are additional inputs (file paths or http(s) URLs), merged
	// after the CLI-supplied ones in listed order.
	Sources []string `yaml:"sources"`

	// Quality keywords rank a channel's URLs best-first (see internal/rank).
	Quality []string `yaml:"quality"`

	Rename []rename.Rule `yaml:"rename"`

	// Classify switches on bucket arrangement; Labels override the bucket
	// group-titles.
	Classify bool            `yaml:"classify"`
	Labels   classify.Labels `yaml:"labels"`
}

// Load reads path. A missing file (or empty path) returns empty rules; a file
// that exists but does not parse is an error.
func Load(path string) (*Rules, error) {
	if path == "" {
		return &Rules{}, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if os.IsNotExist(err) {
		return &Rules{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", path, err)
	}
	return &r, nil
}
