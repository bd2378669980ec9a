package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/archcheck"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

// checkOptions holds flags that do not map to configuration keys.
type checkOptions struct {
	watch    bool
	debounce time.Duration
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Check the layering of a Go module",
		Long: `Scan a Go module, classify its packages and report every dependency that
breaks a layering rule.

The command exits with status 1 when a rule with error severity is violated.
Warnings are reported but do not fail the check.

Output adapts to environment:
  - Terminal (TTY): Styled text with colors
  - Piped/Agent: Markdown format
  - --output json: Machine-readable JSON with a run ID`,
		Example: `  # Check the module in the current directory
  layerlint check

  # Check another module, including test files
  layerlint check ./services/billing --include-tests

  # Report LY01 as a warning and skip generated code
  layerlint check --severity LY01=warning --exclude ..generated..

  # Re-run whenever a Go file changes
  layerlint check --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	addScanFlags(cmd)
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to skip")
	cmd.Flags().StringToString("severity", nil, "Severity overrides, e.g. LY01=warning")
	cmd.Flags().StringP("format", "f", "", "Output format (auto|text|markdown|json), overrides --output")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run the check when Go files change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 200*time.Millisecond, "Quiet period before a re-run in watch mode")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.ValidModes(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// addScanFlags registers the flags shared by commands that scan a module.
// They are read through the configuration, not bound to variables.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("root", "", "Root namespace to scan (default: module path)")
	cmd.Flags().String("loader", "", "Loader: parser (syntax only) or packages (type-checked)")
	cmd.Flags().Bool("include-tests", false, "Include _test.go files and external test packages")
	cmd.Flags().StringSlice("exclude", nil, "Package patterns to skip, e.g. ..generated..")
	cmd.Flags().Bool("strict", false, "Fail on files that do not parse")
	cmd.Flags().Int("workers", 0, "Parallel parse workers (default: GOMAXPROCS)")

	_ = cmd.RegisterFlagCompletionFunc("loader", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{scan.LoaderParser, scan.LoaderPackages}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	cctx := NewCommandContext(cmd)
	dir := cctx.Dir(args)

	if opts.watch {
		return watchCheck(cmd.Context(), cctx, dir, opts.debounce)
	}

	out, err := cctx.Check(cmd.Context(), dir)
	if err != nil {
		return err
	}
	if err := renderCheck(cctx, dir, out); err != nil {
		return err
	}
	return checkFailure(out.Result)
}

// checkFailure returns an error wrapping layering.ErrViolations when the
// check failed.
func checkFailure(res layering.Result) error {
	if res.Passed {
		return nil
	}
	return fmt.Errorf("%w (%d errors, %d warnings)", layering.ErrViolations, res.Errors, res.Warnings)
}

func renderCheck(cctx *CommandContext, dir string, out *archcheck.Outcome) error {
	r := cctx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.NewCheckOutput(dir, cctx.Cfg.Root, out))
	case output.ModeMarkdown:
		renderCheckMarkdown(r, dir, out)
	default:
		renderCheckText(r, out)
	}
	return nil
}

func renderCheckMarkdown(r *output.Renderer, dir string, out *archcheck.Outcome) {
	res := out.Result

	r.Println(output.FormatHeader(1, "Layering Check"))
	r.Println("")
	r.Println(output.FormatKeyValue("Directory", output.FormatCode(dir)))
	r.Println(output.FormatKeyValue("Units", fmt.Sprintf("%d", len(out.Units))))
	r.Println(output.FormatKeyValue("Rules", ruleIDs(out.Rules)))
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}
	r.Println(output.FormatKeyValue("Result", status))
	r.Println(output.FormatKeyValue("Errors", fmt.Sprintf("%d", res.Errors)))
	r.Println(output.FormatKeyValue("Warnings", fmt.Sprintf("%d", res.Warnings)))

	if res.Message != "" {
		r.Println("")
		r.Println(output.FormatHeader(2, "Report"))
		r.Println("")
		r.Println("```")
		r.Println(res.Message)
		r.Println("```")
	}
}

func renderCheckText(r *output.Renderer, out *archcheck.Outcome) {
	res := out.Result
	styles := r.Styles()

	summary := fmt.Sprintf("%d units checked against %s", len(out.Units), ruleIDs(out.Rules))

	if res.Message == "" {
		r.Success(summary + ", no violations")
		return
	}

	for _, line := range strings.Split(res.Message, "\n") {
		switch {
		case strings.HasPrefix(line, "Rule "), strings.HasPrefix(line, "Ambiguous "):
			r.Println(styles.Bold.Render(line))
		default:
			r.Println(line)
		}
	}
	r.Println("")

	detail := fmt.Sprintf("%s: %d errors, %d warnings, %d overlaps", summary, res.Errors, res.Warnings, len(res.Overlaps))
	if res.Passed {
		r.Warning(detail)
		return
	}
	r.Println(styles.Error.Render("✗ " + detail))
}

func ruleIDs(rules []layering.RuleDef) string {
	if len(rules) == 0 {
		return "no rules"
	}
	ids := make([]string, len(rules))
	for i, rule := range rules {
		ids[i] = rule.ID
	}
	return strings.Join(ids, ", ")
}
