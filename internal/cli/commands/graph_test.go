package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	clitestutil "github.com/leapstack-labs/layerlint/internal/cli/testutil"
)

func TestGraphCommand_JSON(t *testing.T) {
	shop := clitestutil.SetupTestProject(t, "")

	tests := []struct {
		name      string
		args      []string
		wantNodes []string
		wantCycle bool
	}{
		{
			name: "module packages",
			args: []string{shop},
			wantNodes: []string{
				"example.com/shop/domain",
				"example.com/shop/repository",
				"example.com/shop/service",
				"example.com/shop/web",
			},
			wantCycle: true,
		},
		{
			name: "tagged only",
			args: []string{shop, "--tagged"},
			wantNodes: []string{
				"example.com/shop/repository",
				"example.com/shop/service",
				"example.com/shop/web",
			},
			wantCycle: true,
		},
		{
			name:      "clean module",
			args:      []string{clitestutil.SetupCleanProject(t)},
			wantNodes: []string{"example.com/shop/service", "example.com/shop/web"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, NewGraphCommand(), append(tt.args, "-o", "json")...)
			require.NoError(t, err)

			var out output.GraphOutput
			require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
			ids := make([]string, 0, len(out.Nodes))
			for _, n := range out.Nodes {
				ids = append(ids, n.ID)
			}
			assert.ElementsMatch(t, tt.wantNodes, ids)
			assert.Equal(t, tt.wantCycle, len(out.Cycle) > 0)
		})
	}
}

func TestGraphCommand_External(t *testing.T) {
	shop := clitestutil.SetupTestProject(t, "")

	stdout, _, err := executeCommand(t, NewGraphCommand(), shop, "--external", "-o", "json")
	require.NoError(t, err)
	var out output.GraphOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	ids := make([]string, 0, len(out.Nodes))
	for _, n := range out.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, "fmt")
}

func TestGraphCommand_Markdown(t *testing.T) {
	stdout, _, err := executeCommand(t, NewGraphCommand(), clitestutil.SetupCleanProject(t))
	require.NoError(t, err)

	clitestutil.AssertValidMarkdown(t, stdout)
	assert.Contains(t, stdout, "# Package Graph")
	assert.Contains(t, stdout, "- `example.com/shop/web` [web]")
	assert.Contains(t, stdout, "  - depends on: example.com/shop/service")
	assert.Contains(t, stdout, "- **Total Packages:** 2")
	assert.Contains(t, stdout, "- **Total Dependencies:** 1")
	assert.NotContains(t, stdout, "Cycle")

	// dependencies first
	assert.Less(t, strings.Index(stdout, "`example.com/shop/service`"), strings.Index(stdout, "`example.com/shop/web`"))
}

func TestGraphCommand_DOT(t *testing.T) {
	stdout, _, err := executeCommand(t, NewGraphCommand(), clitestutil.SetupCleanProject(t), "--dot")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "digraph packages {"), stdout)
	assert.Contains(t, stdout, `"example.com/shop/web" -> "example.com/shop/service"`)
	assert.True(t, strings.HasSuffix(stdout, "}\n"))
}
