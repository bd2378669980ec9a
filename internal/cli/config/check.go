package config

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/layerlint/pkg/archcheck"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	_ "github.com/leapstack-labs/layerlint/pkg/layering/rules" // register built-in rules
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

// Classifier builds the classifier: the default tag table with configured
// tags added or replaced.
func (c *Config) Classifier() (*layering.Classifier, error) {
	if len(c.Tags) == 0 {
		return layering.DefaultClassifier(), nil
	}
	table := layering.DefaultTagPatterns()
	for tag, patterns := range c.Tags {
		table[layering.Tag(tag)] = patterns
	}
	return layering.NewClassifier(table)
}

// RuleDefs returns the built-in rules followed by the configured ones.
func (c *Config) RuleDefs() ([]layering.RuleDef, error) {
	rules := layering.GetAll()
	seen := make(map[string]bool, len(rules)+len(c.Rules))
	for _, r := range rules {
		seen[r.ID] = true
	}
	for _, rc := range c.Rules {
		rule := rc.RuleDef()
		if err := rule.Validate(nil); err != nil {
			return nil, err
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("%w: duplicate rule id %s", layering.ErrInvalidRule, rule.ID)
		}
		seen[rule.ID] = true
		rules = append(rules, rule)
	}
	return rules, nil
}

// CheckerConfig returns the disabled rules and severity overrides.
func (c *Config) CheckerConfig() *layering.CheckerConfig {
	cc := layering.NewCheckerConfig()
	for _, id := range c.Disabled {
		cc.DisabledRules[id] = true
	}
	for id, sev := range c.Severity {
		cc.SeverityOverrides[id] = sev
	}
	return cc
}

// ScanOptions returns the scan options for dir. An empty dir uses c.Dir.
func (c *Config) ScanOptions(dir string, logger *slog.Logger) scan.Options {
	if dir == "" {
		dir = c.Dir
	}
	return scan.Options{
		Dir:          dir,
		Root:         c.Root,
		IncludeTests: c.IncludeTests,
		Exclude:      c.Exclude,
		Workers:      c.Workers,
		Strict:       c.Strict,
		Logger:       logger,
	}
}

// CheckOptions assembles everything a check of dir needs.
func (c *Config) CheckOptions(dir string, logger *slog.Logger) (archcheck.Options, error) {
	loader, err := scan.LoaderFor(c.Loader)
	if err != nil {
		return archcheck.Options{}, err
	}
	classifier, err := c.Classifier()
	if err != nil {
		return archcheck.Options{}, fmt.Errorf("tags: %w", err)
	}
	rules, err := c.RuleDefs()
	if err != nil {
		return archcheck.Options{}, err
	}
	return archcheck.Options{
		Scan:       c.ScanOptions(dir, logger),
		Loader:     loader,
		Classifier: classifier,
		Rules:      rules,
		Checker:    c.CheckerConfig(),
		Logger:     logger,
	}, nil
}
