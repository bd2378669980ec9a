package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// unitsOptions holds options for the units command.
type unitsOptions struct {
	tag    string
	tagged bool
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand() *cobra.Command {
	opts := &unitsOptions{}

	cmd := &cobra.Command{
		Use:   "units [dir]",
		Short: "List scanned units and their tags",
		Long: `List every unit the scanner found: package-level types, functions,
variables and constants, with the tags of their package and the number of
distinct targets they depend on.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Agent: Markdown table
  - JSON: Machine-readable format including dependency targets`,
		Example: `  # List all units
  layerlint units

  # Only units in service packages
  layerlint units --tag service

  # Machine-readable
  layerlint units -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(cmd, args, opts)
		},
	}

	addScanFlags(cmd)
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Only list units with this tag")
	cmd.Flags().BoolVar(&opts.tagged, "tagged", false, "Only list units with at least one tag")

	return cmd
}

func runUnits(cmd *cobra.Command, args []string, opts *unitsOptions) error {
	cctx := NewCommandContext(cmd)
	r := cctx.Renderer

	units, classifier, err := cctx.Scan(cmd.Context(), cctx.Dir(args))
	if err != nil {
		return err
	}

	if opts.tag != "" && !classifier.HasTag(layering.Tag(opts.tag)) {
		return fmt.Errorf("%w %q", layering.ErrUnknownTag, opts.tag)
	}
	units = filterUnits(units, classifier, opts)

	data := output.NewUnitsOutput(units, classifier)
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(data)
	}

	r.Header(1, fmt.Sprintf("Units (%d)", data.Count))
	rows := make([][]string, 0, len(data.Units))
	for _, u := range data.Units {
		rows = append(rows, []string{
			u.Package + "." + u.Name,
			string(u.Kind),
			layering.TagSet(u.Tags).String(),
			fmt.Sprintf("%d", len(u.Dependencies)),
			u.Pos.String(),
		})
	}
	r.Table([]string{"Unit", "Kind", "Tags", "Deps", "Position"}, rows)
	return nil
}

func filterUnits(units []layering.Unit, c *layering.Classifier, opts *unitsOptions) []layering.Unit {
	if opts.tag == "" && !opts.tagged {
		return units
	}
	out := units[:0:0]
	for _, u := range units {
		tags := c.ClassifyUnit(u)
		if opts.tag != "" && !tags.Has(layering.Tag(opts.tag)) {
			continue
		}
		if opts.tagged && len(tags) == 0 {
			continue
		}
		out = append(out, u)
	}
	return out
}
