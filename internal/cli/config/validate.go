package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := scan.LoaderFor(c.Loader); err != nil {
		return err
	}

	mode := strings.ToLower(strings.TrimSpace(c.OutputFormat))
	if mode != "" && mode != string(output.ModeAuto) && output.Mode(mode) == output.ModeAuto {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.OutputFormat, strings.Join(output.ValidModes(), ", "))
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	for _, p := range c.Exclude {
		if _, err := layering.ParsePattern(p); err != nil {
			return fmt.Errorf("exclude: %w", err)
		}
	}

	classifier, err := c.Classifier()
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}

	rules, err := c.RuleDefs()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.Validate(classifier); err != nil {
			return err
		}
		known[r.ID] = true
	}

	for _, id := range c.Disabled {
		if !known[id] {
			return fmt.Errorf("disabled: unknown rule %q", id)
		}
	}
	for id := range c.Severity {
		if !known[id] {
			return fmt.Errorf("severity: unknown rule %q", id)
		}
	}
	return nil
}
