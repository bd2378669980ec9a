package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	clitestutil "github.com/leapstack-labs/layerlint/internal/cli/testutil"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

func TestCheckCommand(t *testing.T) {
	shop := clitestutil.SetupTestProject(t, "")
	clean := clitestutil.SetupCleanProject(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		contains    []string
		notContains []string
	}{
		{
			name:    "violation fails",
			args:    []string{shop},
			wantErr: true,
			contains: []string{
				"# Layering Check",
				"- **Result:** FAIL",
				"- **Errors:** 1",
				"## Report",
				"example.com/shop/service.OrderService depends on example.com/shop/web.OrderController in service/order.go:10",
			},
		},
		{
			name:     "clean module passes",
			args:     []string{clean},
			contains: []string{"- **Result:** PASS", "- **Units:** 2"},
			notContains: []string{
				"## Report",
			},
		},
		{
			name:     "severity override to warning",
			args:     []string{shop, "--severity", "LY01=warning"},
			contains: []string{"- **Result:** PASS", "- **Warnings:** 1"},
		},
		{
			name:     "disabled rule",
			args:     []string{shop, "--disable", "LY01"},
			contains: []string{"- **Result:** PASS", "- **Errors:** 0"},
		},
		{
			name:     "excluded service packages",
			args:     []string{shop, "--exclude", "..service.."},
			contains: []string{"- **Result:** PASS"},
		},
		{
			name:     "test files included",
			args:     []string{shop, "--include-tests"},
			wantErr:  true,
			contains: []string{"- **Errors:** 2", "TestOrders"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, NewCheckCommand(), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, layering.ErrViolations)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.contains {
				assert.Contains(t, stdout, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, stdout, unwanted)
			}
		})
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	shop := clitestutil.SetupTestProject(t, "")

	for _, args := range [][]string{
		{shop, "--output", "json"},
		{shop, "--format", "json"},
	} {
		stdout, _, err := executeCommand(t, NewCheckCommand(), args...)
		require.ErrorIs(t, err, layering.ErrViolations)

		var out output.CheckOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
		assert.NotEmpty(t, out.RunID)
		assert.Equal(t, shop, out.Dir)
		assert.False(t, out.Passed)
		assert.Equal(t, 7, out.Units)
		assert.Equal(t, []string{"LY01"}, out.Rules)
		require.Len(t, out.Violations, 1)
		assert.Equal(t, "service/order.go", out.Violations[0].Pos.File)
	}
}

func TestCheckCommand_ConfigFile(t *testing.T) {
	dir := clitestutil.SetupTestProject(t, `
rules:
  - id: DOM01
    name: domain stays pure
    from: [domain]
    to: [service]
tags:
  domain: ["..domain.."]
severity:
  LY01: warning
`)

	stdout, _, err := executeCommand(t, NewCheckCommand(), dir, "-o", "json")
	require.NoError(t, err)

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Passed)
	assert.Equal(t, []string{"LY01", "DOM01"}, out.Rules)
	assert.Equal(t, 1, out.Warnings)
}

func TestCheckCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing directory",
			args:    []string{"/nonexistent/layerlint/module"},
			wantErr: "/nonexistent/layerlint/module",
		},
		{
			name:    "unknown loader",
			args:    []string{".", "--loader", "ast"},
			wantErr: "ast",
		},
		{
			name:    "bad severity",
			args:    []string{".", "--severity", "LY01=fatal"},
			wantErr: "fatal",
		},
		{
			name:    "unknown disabled rule",
			args:    []string{".", "--disable", "NOPE"},
			wantErr: "NOPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, NewCheckCommand(), tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, layering.ErrViolations)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRenderCheckText(t *testing.T) {
	shop := clitestutil.SetupTestProject(t, "")
	r := clitestutil.NewTestRendererText()

	cctx := newTestCommandContext(t, r.Renderer)
	out, err := cctx.Check(t.Context(), shop)
	require.NoError(t, err)
	require.NoError(t, renderCheck(cctx, shop, out))

	clitestutil.AssertContains(t, r.Output(), "Rule '")
	clitestutil.AssertContains(t, r.Output(), "7 units checked against LY01: 1 errors, 0 warnings, 0 overlaps")
}

func TestCheckCommand_MissingDirIsScanError(t *testing.T) {
	_, _, err := executeCommand(t, NewCheckCommand(), "/nonexistent/layerlint/module")
	assert.ErrorIs(t, err, scan.ErrScan)
}

func TestCheckFailure(t *testing.T) {
	assert.NoError(t, checkFailure(layering.Result{Passed: true, Warnings: 3}))

	err := checkFailure(layering.Result{Errors: 2, Warnings: 1})
	require.ErrorIs(t, err, layering.ErrViolations)
	assert.Contains(t, err.Error(), "(2 errors, 1 warnings)")
}
