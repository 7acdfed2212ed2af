// Package core composes the URI resolver, structural parser, schema
// fetcher/resolver/validator, registry, modeline detector and
// diagnostics reporter into the single edit -> diagnostics pipeline an
// editor integration drives.
package core

import (
	"bytes"
	"fmt"

	goyaml "github.com/goccy/go-yaml"
	"github.com/yamlls/core/registry"
)

// Config is the editor-supplied configuration payload. It decodes from
// either JSON or YAML bytes through one YAML decode (see LoadConfig);
// the format is not sniffed.
type Config struct {
	// Validate, Hover, Completion and Format are accepted and stored
	// verbatim even though hover/completion/formatting are out of scope
	// collaborators here — editor configuration arrives as one blob and
	// this module must round-trip the fields it does not itself act on.
	Validate   bool `json:"validate" yaml:"validate"`
	Hover      bool `json:"hover" yaml:"hover"`
	Completion bool `json:"completion" yaml:"completion"`
	Format     bool `json:"format" yaml:"format"`

	Schemas      []registry.Association `json:"schemas" yaml:"schemas"`
	CustomTags   []string                `json:"customTags" yaml:"customTags"`
	IsKubernetes bool                    `json:"kubernetes" yaml:"kubernetes"`
	YAMLVersion  string                  `json:"yamlVersion" yaml:"yamlVersion"`

	FlowMapping  string `json:"flowMapping" yaml:"flowMapping"`
	FlowSequence string `json:"flowSequence" yaml:"flowSequence"`
}

// DefaultConfig returns the configuration a session starts with absent
// any editor-supplied payload: validation on, everything else off.
func DefaultConfig() *Config {
	return &Config{Validate: true}
}

// LoadConfig decodes a configuration payload. JSON is valid YAML, so a
// single goccy/go-yaml Unmarshal handles both wire formats editor
// configuration arrives in.
func LoadConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := goyaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("core: decode config: %w", err)
	}
	return cfg, nil
}
