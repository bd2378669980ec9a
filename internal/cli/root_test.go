package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/internal/cli/config"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"version", "check", "units", "graph", "rules", "init", "mcp", "completion"}, names)

	for _, flag := range []string{"config", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestGetConfig(t *testing.T) {
	assert.Equal(t, config.Default(), GetConfig(context.Background()))

	cfg := config.Default()
	cfg.Root = "example.com/shop"
	ctx := context.WithValue(context.Background(), configKey{}, cfg)
	assert.Same(t, cfg, GetConfig(ctx))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet", verbose: false, wantDebug: false},
		{name: "verbose", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.verbose)
			logger.Debug("scanning")
			logger.Warn("skipped file")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("scanning")))
			assert.Contains(t, buf.String(), "skipped file")
		})
	}
}

func TestPersistentPreRun_StoresConfig(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"rules", "-o", "json"})
	require.NoError(t, cmd.Execute())

	cfg := config.GetCurrentConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "json", cfg.OutputFormat)
}
