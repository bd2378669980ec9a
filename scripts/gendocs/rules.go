package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/layerlint/pkg/layering"
	_ "github.com/leapstack-labs/layerlint/pkg/layering/rules"
)

// generateRuleDocs generates the layering rules page.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := layering.GetAll()
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	w := NewMarkdownWriter()
	w.Frontmatter("Layering Rules", "Built-in layering rules and tags of layerlint")
	w.GeneratedMarker()

	w.Header(1, "Layering Rules")
	w.Paragraph(fmt.Sprintf("layerlint ships %d built-in rules. A rule forbids units in packages with a %s tag from depending on units in packages with a %s tag.",
		len(rules), InlineCode("from"), InlineCode("to")))

	w.Header(2, "Tags")
	w.Paragraph("Packages are tagged when their import path matches a pattern:")
	table := layering.DefaultTagPatterns()
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)
	var rows [][]string
	for _, tag := range tags {
		patterns := make([]string, 0, len(table[layering.Tag(tag)]))
		for _, p := range table[layering.Tag(tag)] {
			patterns = append(patterns, InlineCode(p))
		}
		rows = append(rows, []string{InlineCode(tag), strings.Join(patterns, ", ")})
	}
	w.Table([]string{"Tag", "Patterns"}, rows)

	w.Header(3, "Pattern Syntax")
	w.BulletList([]string{
		InlineCode("..") + " matches any number of path elements, including none",
		InlineCode("*") + " and " + InlineCode("?") + " match within a single path element",
		"Patterns match the whole import path",
	})

	w.Header(2, "Rules")
	for _, rule := range rules {
		writeRuleDoc(w, rule)
	}

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in " + InlineCode("layerlint.yaml") + ":")
	w.CodeBlock("yaml", `disabled:
  - LY01              # skip a rule
severity:
  LY01: warning       # report without failing
rules:
  - id: DOM01
    name: domain-stays-pure
    because: entities carry no behaviour
    from: [domain]
    to: [service, repository, web]
tags:
  domain: ["..domain.."]`)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule layering.RuleDef) {
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID, rule.Name, rule.ID))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(rule.Severity.String())))
	w.Newline()

	w.Paragraph(fmt.Sprintf("Units tagged %s must not depend on units tagged %s.", codeTags(rule.From), codeTags(rule.To)))

	if rule.Because != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rule.Because))
	}

	w.Line("---")
	w.Newline()
}

func codeTags(tags []layering.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = InlineCode(string(t))
	}
	return strings.Join(parts, " or ")
}
