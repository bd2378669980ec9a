package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	clitestutil "github.com/leapstack-labs/layerlint/internal/cli/testutil"
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

const rulesConfig = `
tags:
  domain: ["..domain.."]
rules:
  - id: DOM01
    name: domain stays pure
    because: entities carry no behaviour
    from: [domain]
    to: [service, repository, web]
severity:
  LY01: warning
disabled:
  - DOM01
`

func TestRulesCommand_List(t *testing.T) {
	dir := clitestutil.SetupTestProject(t, rulesConfig)
	t.Chdir(dir)

	stdout, _, err := executeCommand(t, NewRulesCommand(), "-o", "json")
	require.NoError(t, err)

	var out output.RulesOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
	require.Len(t, out.Rules, 2)

	assert.Equal(t, "LY01", out.Rules[0].ID)
	assert.Equal(t, layering.SeverityWarning, out.Rules[0].Severity)
	assert.True(t, out.Rules[0].Enabled)

	assert.Equal(t, "DOM01", out.Rules[1].ID)
	assert.Equal(t, "entities carry no behaviour", out.Rules[1].Because)
	assert.False(t, out.Rules[1].Enabled)

	tags := make([]layering.Tag, 0, len(out.Tags))
	for _, tag := range out.Tags {
		tags = append(tags, tag.Tag)
	}
	assert.Equal(t, []layering.Tag{"domain", "repository", "service", "web"}, tags)
}

func TestRulesCommand_Markdown(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := executeCommand(t, NewRulesCommand())
	require.NoError(t, err)

	clitestutil.AssertNoANSI(t, stdout)
	assert.Contains(t, stdout, "# Layering Rules")
	assert.Contains(t, stdout, "| ID | Name | From | Must not use | Severity | Status |")
	assert.Contains(t, stdout, "LY01")
	assert.Contains(t, stdout, "## Tags")
	assert.Contains(t, stdout, "Repository")
}

func TestRulesCommand_Show(t *testing.T) {
	dir := clitestutil.SetupTestProject(t, rulesConfig)
	t.Chdir(dir)

	tests := []struct {
		name     string
		args     []string
		wantErr  string
		contains []string
	}{
		{
			name: "builtin rule",
			args: []string{"LY01"},
			contains: []string{
				"# LY01",
				"- **From:** service,repository",
				"- **Must not use:** web",
				"- **Severity:** warning",
				"- **Enabled:** true",
			},
		},
		{
			name: "configured rule",
			args: []string{"DOM01"},
			contains: []string{
				"# DOM01 domain stays pure",
				"- **Enabled:** false",
				"entities carry no behaviour",
			},
		},
		{
			name:    "unknown rule",
			args:    []string{"NOPE"},
			wantErr: `rule "NOPE" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, NewRulesCommand(), tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, stdout, want)
			}
		})
	}
}
