package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List layering rules and tags",
		Long: `List the configured layering rules and the tag patterns that classify
packages.

Rules come from the built-in set plus the rules section of layerlint.yaml.
Severity shows the effective value after overrides.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules and tags
  layerlint rules

  # Show details for a specific rule
  layerlint rules LY01

  # Output as JSON
  layerlint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := NewCommandContext(cmd)
			info, err := collectRules(cctx)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				return showRule(cctx.Renderer, info, args[0])
			}
			return listRules(cctx.Renderer, info)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func collectRules(cctx *CommandContext) (output.RulesOutput, error) {
	classifier, err := cctx.Cfg.Classifier()
	if err != nil {
		return output.RulesOutput{}, fmt.Errorf("tags: %w", err)
	}
	rules, err := cctx.Cfg.RuleDefs()
	if err != nil {
		return output.RulesOutput{}, err
	}
	return output.NewRulesOutput(rules, classifier, cctx.Cfg.CheckerConfig()), nil
}

func listRules(r *output.Renderer, info output.RulesOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(info)
	}

	r.Header(1, "Layering Rules")
	rows := make([][]string, 0, len(info.Rules))
	for _, rule := range info.Rules {
		status := "enabled"
		if !rule.Enabled {
			status = "disabled"
		}
		rows = append(rows, []string{
			rule.ID,
			rule.Name,
			joinTags(rule.From),
			joinTags(rule.To),
			rule.Severity.String(),
			status,
		})
	}
	r.Table([]string{"ID", "Name", "From", "Must not use", "Severity", "Status"}, rows)
	r.Println("")

	r.Header(2, "Tags")
	rows = rows[:0]
	for _, tag := range info.Tags {
		rows = append(rows, []string{output.Title(string(tag.Tag)), strings.Join(tag.Patterns, " ")})
	}
	r.Table([]string{"Tag", "Patterns"}, rows)
	return nil
}

func showRule(r *output.Renderer, info output.RulesOutput, id string) error {
	var rule *output.RuleOutput
	for i := range info.Rules {
		if info.Rules[i].ID == id {
			rule = &info.Rules[i]
			break
		}
	}
	if rule == nil {
		return fmt.Errorf("rule %q not found", id)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rule)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, rule.ID+" "+rule.Name))
		r.Println("")
		r.Println(output.FormatKeyValue("From", joinTags(rule.From)))
		r.Println(output.FormatKeyValue("Must not use", joinTags(rule.To)))
		r.Println(output.FormatKeyValue("Severity", rule.Severity.String()))
		r.Println(output.FormatKeyValue("Enabled", fmt.Sprintf("%t", rule.Enabled)))
		if rule.Because != "" {
			r.Println("")
			r.Println(rule.Because)
		}
	default:
		styles := r.Styles()
		r.Println(styles.Header1.Render(rule.ID) + " " + styles.Bold.Render(rule.Name))
		r.Printf("  %s %s\n", styles.Muted.Render("from:        "), styles.Tag.Render(joinTags(rule.From)))
		r.Printf("  %s %s\n", styles.Muted.Render("must not use:"), styles.Tag.Render(joinTags(rule.To)))
		r.Printf("  %s %s\n", styles.Muted.Render("severity:    "), rule.Severity)
		if !rule.Enabled {
			r.Printf("  %s\n", styles.Warning.Render("disabled"))
		}
		if rule.Because != "" {
			r.Println("")
			r.Println("  " + rule.Because)
		}
	}
	return nil
}

func joinTags(tags []layering.Tag) string {
	return layering.TagSet(tags).String()
}
