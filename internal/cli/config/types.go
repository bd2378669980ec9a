// Package config provides configuration management for the layerlint CLI.
//
// Configuration is layered with koanf: defaults, then layerlint.yaml, then
// LAYERLINT_ environment variables, then explicitly set flags.
package config

import (
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// Default configuration values.
const (
	DefaultDir    = "."
	DefaultLoader = "parser"
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{"layerlint.yaml", "layerlint.yml"}

// Config holds all CLI configuration options.
type Config struct {
	Dir          string   `koanf:"dir"`
	Root         string   `koanf:"root"`
	Loader       string   `koanf:"loader"`
	Workers      int      `koanf:"workers"`
	IncludeTests bool     `koanf:"include_tests"`
	Strict       bool     `koanf:"strict"`
	Exclude      []string `koanf:"exclude"`
	Verbose      bool     `koanf:"verbose"`
	OutputFormat string   `koanf:"output"`

	// Tags adds or replaces classifier tags. Tags not listed keep their
	// default patterns.
	Tags map[string][]string `koanf:"tags"`

	// Rules are checked in addition to the built-in rules.
	Rules []RuleConfig `koanf:"rules"`

	// Disabled lists rule IDs to skip.
	Disabled []string `koanf:"disabled"`

	// Severity overrides the default severity of rules by ID.
	Severity map[string]layering.Severity `koanf:"severity"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when there is none. Relative Dir values resolve against it.
	ProjectRoot string `koanf:"-"`
}

// RuleConfig declares a rule in the config file.
type RuleConfig struct {
	ID       string            `koanf:"id" yaml:"id"`
	Name     string            `koanf:"name" yaml:"name,omitempty"`
	Because  string            `koanf:"because" yaml:"because,omitempty"`
	From     []string          `koanf:"from" yaml:"from"`
	To       []string          `koanf:"to" yaml:"to"`
	Severity layering.Severity `koanf:"severity" yaml:"severity,omitempty"`
}

// RuleDef converts the declaration into a rule.
func (r RuleConfig) RuleDef() layering.RuleDef {
	return layering.RuleDef{
		ID:       r.ID,
		Name:     r.Name,
		Because:  r.Because,
		From:     toTags(r.From),
		To:       toTags(r.To),
		Severity: r.Severity,
	}
}

func toTags(names []string) []layering.Tag {
	tags := make([]layering.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, layering.Tag(n))
	}
	return tags
}

// Default returns the configuration used when none has been loaded.
func Default() *Config {
	return &Config{
		Dir:          DefaultDir,
		Loader:       DefaultLoader,
		OutputFormat: DefaultOutput,
	}
}
