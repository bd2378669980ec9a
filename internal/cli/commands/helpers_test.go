package commands

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/cli/config"
	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/internal/testutil"
)

// executeCommand runs sub under a root command that loads configuration the
// way the CLI does, and returns stdout and stderr.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	root := &cobra.Command{
		Use:           "layerlint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			var startDir string
			if len(args) > 0 {
				if _, err := os.Stat(args[0]); err == nil {
					startDir = args[0]
				}
			}
			_, err := config.LoadConfig("", startDir, cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), testutil.NewTestLogger(t)))
			return nil
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	root.PersistentFlags().StringP("output", "o", "", "Output format")
	root.AddCommand(sub)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestCommandContext returns a CommandContext with default configuration
// rendering to r.
func newTestCommandContext(t *testing.T, r *output.Renderer) *CommandContext {
	t.Helper()
	return &CommandContext{
		Cfg:      config.Default(),
		Logger:   testutil.NewTestLogger(t),
		Renderer: r,
	}
}
