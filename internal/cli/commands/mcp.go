package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/mcpserver"
	"github.com/leapstack-labs/layerlint/pkg/archcheck"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve layering checks over the Model Context Protocol",
		Long: `Run an MCP server on stdin and stdout.

The server exposes three tools:
  - check_layering: check a module and return the violations as JSON
  - list_units: list the scanned units with their tags
  - list_rules: list the rules and tag patterns in effect

Tool calls use the loaded configuration. A dir argument overrides the
configured directory for one call.`,
		Example: `  # Register with an MCP client
  layerlint mcp

  # Serve with a specific configuration
  layerlint mcp --config ./layerlint.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx := NewCommandContext(cmd)
			options := func(dir string) (archcheck.Options, error) {
				if dir == "" {
					dir = cctx.Cfg.Dir
				}
				return cctx.Cfg.CheckOptions(dir, cctx.Logger)
			}

			s := mcpserver.New(version, options, cctx.Logger)
			cctx.Logger.Debug("serving mcp on stdio")
			return s.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	return cmd
}
