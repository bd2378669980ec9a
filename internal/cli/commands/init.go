package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/layerlint/internal/cli/config"
	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

const starterHeader = `# layerlint configuration.
#
# Packages are tagged when their import path matches a pattern. ".." matches
# any number of path elements, "*" matches within one element.
# Rules forbid units tagged "from" to depend on units tagged "to".
# The built-in rule LY01 keeps service and repository off web.
`

// starterConfig is the layout of a generated layerlint.yaml.
type starterConfig struct {
	Root         string              `yaml:"root,omitempty"`
	Loader       string              `yaml:"loader"`
	IncludeTests bool                `yaml:"include_tests"`
	Exclude      []string            `yaml:"exclude"`
	Tags         map[string][]string `yaml:"tags"`
	Rules        []config.RuleConfig `yaml:"rules"`
	Disabled     []string            `yaml:"disabled"`
	Severity     map[string]string   `yaml:"severity"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter layerlint.yaml",
		Long: `Write a layerlint.yaml with the default tags and an empty rule list.

The root namespace is taken from the go.mod of the directory when there is
one.`,
		Example: `  # Initialize in current directory
  layerlint init

  # Initialize another module
  layerlint init ./services/billing

  # Force overwrite existing config
  layerlint init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			format, _ := cmd.Flags().GetString("output")
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	configPath := filepath.Join(dir, config.FileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.FileNames[0])
	}

	data, err := starterYAML(dir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]string{"created": configPath})
	}
	r.Success("Created " + configPath)
	r.Println("")
	r.Println("Next: run " + output.FormatCode("layerlint check") + " to check the module.")
	return nil
}

// starterYAML renders the starter config for the module in dir.
func starterYAML(dir string) ([]byte, error) {
	_, modulePath, found, err := scan.FindModule(dir)
	if err != nil {
		return nil, err
	}

	cfg := starterConfig{
		Loader:   config.DefaultLoader,
		Exclude:  []string{},
		Tags:     make(map[string][]string),
		Rules:    []config.RuleConfig{},
		Disabled: []string{},
		Severity: map[string]string{},
	}
	if found {
		cfg.Root = modulePath
	}
	for tag, patterns := range layering.DefaultTagPatterns() {
		cfg.Tags[string(tag)] = patterns
	}

	var buf bytes.Buffer
	buf.WriteString(starterHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
