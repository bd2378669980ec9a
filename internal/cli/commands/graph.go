package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/internal/graph"
)

// graphOptions holds options for the graph command.
type graphOptions struct {
	dot      bool
	external bool
	tagged   bool
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Show the package dependency graph",
		Long: `Display the dependency graph between the scanned packages, with the tags
of each package.

Packages are listed dependencies first. A dependency cycle between packages
is reported instead of an order.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)
  - --dot: Graphviz DOT`,
		Example: `  # Show the graph
  layerlint graph

  # Only tagged packages, rendered with Graphviz
  layerlint graph --tagged --dot | dot -Tsvg > layers.svg

  # Include standard library and third-party packages
  layerlint graph --external -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args, opts)
		},
	}

	addScanFlags(cmd)
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "Write Graphviz DOT")
	cmd.Flags().BoolVar(&opts.external, "external", false, "Include packages outside the scanned module")
	cmd.Flags().BoolVar(&opts.tagged, "tagged", false, "Only show tagged packages")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string, opts *graphOptions) error {
	cctx := NewCommandContext(cmd)
	r := cctx.Renderer

	units, classifier, err := cctx.Scan(cmd.Context(), cctx.Dir(args))
	if err != nil {
		return err
	}

	g := graph.Build(units, classifier, graph.BuildOptions{External: opts.external})
	if opts.tagged {
		g = g.Filter(func(n *graph.Node) bool { return len(n.Tags) > 0 })
	}

	if opts.dot {
		return g.WriteDOT(r.Writer())
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.NewGraphOutput(g))
	case output.ModeMarkdown:
		return graphMarkdown(r, g)
	default:
		return graphText(r, g)
	}
}

// orderedNodes returns nodes dependencies first, or sorted by ID with the
// cycle when the graph is cyclic.
func orderedNodes(g *graph.Graph) ([]*graph.Node, []string) {
	nodes, err := g.TopologicalSort()
	if err == nil {
		return nodes, nil
	}
	_, cycle := g.HasCycle()
	return g.Nodes(), cycle
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, g *graph.Graph) error {
	styles := r.Styles()

	r.Header(1, "Package Graph")

	nodes, cycle := orderedNodes(g)
	for _, n := range nodes {
		line := "  " + styles.UnitPath.Render(n.ID)
		if len(n.Tags) > 0 {
			line += " " + styles.Tag.Render("["+n.Tags.String()+"]")
		}
		r.Println(line)
		if deps := g.Dependencies(n.ID); len(deps) > 0 {
			r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
		}
		if users := g.Dependents(n.ID); len(users) > 0 {
			r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(users, ", "))
		}
	}
	r.Println("")

	if len(cycle) > 0 {
		r.Warning("cycle: " + strings.Join(cycle, " -> "))
	}
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d packages, %d dependencies", g.NodeCount(), g.EdgeCount())))

	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, g *graph.Graph) error {
	r.Println(output.FormatHeader(1, "Package Graph"))
	r.Println("")

	nodes, cycle := orderedNodes(g)
	for _, n := range nodes {
		line := "- " + output.FormatCode(n.ID)
		if len(n.Tags) > 0 {
			line += " [" + n.Tags.String() + "]"
		}
		r.Println(line)
		if deps := g.Dependencies(n.ID); len(deps) > 0 {
			r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
		}
		if users := g.Dependents(n.ID); len(users) > 0 {
			r.Printf("  - used by: %s\n", strings.Join(users, ", "))
		}
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Packages", fmt.Sprintf("%d", g.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", g.EdgeCount())))
	if len(cycle) > 0 {
		r.Println(output.FormatKeyValue("Cycle", strings.Join(cycle, " -> ")))
	}

	return nil
}
