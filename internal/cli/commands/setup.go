package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/cli/config"
	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/archcheck"
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Dir returns the directory to operate on: the first argument, or the
// configured dir.
func (c *CommandContext) Dir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return c.Cfg.Dir
}

// Check runs a full layering check of dir.
func (c *CommandContext) Check(ctx context.Context, dir string) (*archcheck.Outcome, error) {
	opts, err := c.Cfg.CheckOptions(dir, c.Logger)
	if err != nil {
		return nil, err
	}
	return archcheck.Run(ctx, opts)
}

// Scan loads the units of dir with the configured loader.
func (c *CommandContext) Scan(ctx context.Context, dir string) ([]layering.Unit, *layering.Classifier, error) {
	opts, err := c.Cfg.CheckOptions(dir, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	units, err := opts.Loader.Load(ctx, opts.Scan)
	if err != nil {
		return nil, nil, err
	}
	return units, opts.Classifier, nil
}

// getConfig returns the current configuration, or the defaults when none
// has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
