package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerators(t *testing.T) {
	tests := []struct {
		name     string
		run      func(string) error
		file     string
		contains []string
	}{
		{
			name: "cli",
			run:  generateCLIDocs,
			file: "index.md",
			contains: []string{
				"# CLI Reference",
				"[`check`](/cli/check)",
				"`LAYERLINT_ROOT`",
			},
		},
		{
			name: "cli command page",
			run:  generateCLIDocs,
			file: "check.md",
			contains: []string{
				"# check",
				"layerlint check [dir]",
				"`--include-tests`",
				"## Examples",
			},
		},
		{
			name: "rules",
			run:  generateRuleDocs,
			file: "index.md",
			contains: []string{
				"### LY01 - services-repositories-not-on-web {#LY01}",
				"**Severity:** `error`",
				"`..service..`",
			},
		},
		{
			name: "config",
			run:  generateConfigDocs,
			file: "configuration.md",
			contains: []string{
				"`include_tests`",
				"`--severity`",
				"`LAYERLINT_`",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, tt.run(dir))

			data, err := os.ReadFile(filepath.Join(dir, tt.file))
			require.NoError(t, err)
			page := string(data)

			assert.True(t, strings.HasPrefix(page, "---\n"), "page should start with frontmatter")
			assert.Contains(t, page, "DO NOT EDIT")
			assert.Equal(t, 0, strings.Count(page, "```")%2, "code fences should be balanced")
			for _, want := range tt.contains {
				assert.Contains(t, page, want)
			}
		})
	}
}

func TestCleanExample(t *testing.T) {
	in := "  # List all rules\n  layerlint rules\n\n    indented\n"
	assert.Equal(t, "# List all rules\nlayerlint rules\n\n  indented", cleanExample(in))
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "List layering rules and tags", cleanDescription("List  layering rules\nand tags."))
}
