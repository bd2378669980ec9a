package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{
			cmd:   NewCheckCommand(),
			use:   "check [dir]",
			flags: []string{"root", "loader", "include-tests", "exclude", "strict", "workers", "disable", "severity", "format", "watch", "debounce"},
		},
		{
			cmd:   NewUnitsCommand(),
			use:   "units [dir]",
			flags: []string{"root", "loader", "include-tests", "exclude", "tag", "tagged"},
		},
		{
			cmd:   NewGraphCommand(),
			use:   "graph [dir]",
			flags: []string{"root", "loader", "dot", "external", "tagged"},
		},
		{
			cmd:   NewRulesCommand(),
			use:   "rules [rule-id]",
			flags: []string{"format"},
		},
		{
			cmd:   NewInitCommand(),
			use:   "init [directory]",
			flags: []string{"force"},
		},
		{
			cmd: NewMCPCommand("test"),
			use: "mcp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestCheckCommandShorthands(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "w", cmd.Flags().Lookup("watch").Shorthand)
	assert.Equal(t, "f", cmd.Flags().Lookup("format").Shorthand)
	assert.Equal(t, "200ms", cmd.Flags().Lookup("debounce").DefValue)
}
