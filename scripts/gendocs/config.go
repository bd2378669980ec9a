package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/layerlint/internal/cli/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Flag        string
	Description string
}

// getConfigSchema returns the layerlint.yaml keys, in the order of
// internal/cli/config.Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "dir", Type: "string", Default: config.DefaultDir, Description: "Module directory to scan, relative to the config file"},
		{Name: "root", Type: "string", Flag: "--root", Description: "Root namespace; defaults to the module path in go.mod"},
		{Name: "loader", Type: "string", Default: config.DefaultLoader, Flag: "--loader", Description: "parser (syntax only) or packages (type-checked)"},
		{Name: "workers", Type: "int", Default: "0", Flag: "--workers", Description: "Parallel parse workers; 0 uses GOMAXPROCS"},
		{Name: "include_tests", Type: "bool", Default: "false", Flag: "--include-tests", Description: "Scan _test.go files and external test packages"},
		{Name: "strict", Type: "bool", Default: "false", Flag: "--strict", Description: "Fail on files that do not parse instead of skipping them"},
		{Name: "exclude", Type: "[]string", Flag: "--exclude", Description: "Package patterns to skip"},
		{Name: "verbose", Type: "bool", Default: "false", Flag: "--verbose", Description: "Debug logging on stderr"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Flag: "--output", Description: "auto, text, markdown or json"},
		{Name: "tags", Type: "map[string][]string", Description: "Tag patterns; a configured tag replaces the default patterns of that tag"},
		{Name: "rules", Type: "[]rule", Description: "Rules added to the built-in set"},
		{Name: "disabled", Type: "[]string", Flag: "--disable", Description: "Rule IDs to skip"},
		{Name: "severity", Type: "map[string]string", Flag: "--severity", Description: "Severity overrides by rule ID: error, warning or info"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "layerlint configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("layerlint reads %s from the scanned directory or the nearest parent. Run %s to write a starter file.",
		InlineCode(config.FileNames[0]), InlineCode("layerlint init")))

	w.Header(2, "Keys")
	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		} else {
			defVal = InlineCode(defVal)
		}
		flagName := "-"
		if f.Flag != "" {
			flagName = InlineCode(f.Flag)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, flagName, f.Description})
	}
	w.Table([]string{"Key", "Type", "Default", "Flag", "Description"}, rows)

	w.Header(2, "Rule Entries")
	w.Table([]string{"Field", "Description"}, [][]string{
		{InlineCode("id"), "Unique rule ID"},
		{InlineCode("name"), "Short name shown in reports"},
		{InlineCode("because"), "Reason appended to violation reports"},
		{InlineCode("from"), "Tags whose units the rule constrains"},
		{InlineCode("to"), "Tags those units must not depend on"},
		{InlineCode("severity"), "error (default), warning or info"},
	})

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags that were set explicitly",
		"Environment variables prefixed " + InlineCode(config.EnvPrefix),
		"The config file",
		"Built-in defaults",
	})

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
