package data

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tags.yaml
var tagCatalog []byte

type catalog struct {
	Tags []string `yaml:"tags"`
}

// DefaultTags returns the tag names seeded into a fresh database.
func DefaultTags() ([]string, error) {
	var c catalog
	if err := yaml.Unmarshal(tagCatalog, &c); err != nil {
		return nil, fmt.Errorf("failed to parse tag catalog: %w", err)
	}
	return c.Tags, nil
}
