package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/layerlint/internal/graph"
	"github.com/leapstack-labs/layerlint/pkg/archcheck"
	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// CheckOutput is the JSON form of a check.
type CheckOutput struct {
	RunID      string               `json:"run_id"`
	Dir        string               `json:"dir"`
	Root       string               `json:"root,omitempty"`
	Passed     bool                 `json:"passed"`
	Units      int                  `json:"units"`
	Rules      []string             `json:"rules"`
	Errors     int                  `json:"errors"`
	Warnings   int                  `json:"warnings"`
	Violations []layering.Violation `json:"violations"`
	Overlaps   []layering.Overlap   `json:"overlaps,omitempty"`
	Message    string               `json:"message,omitempty"`
	DurationMS int64                `json:"duration_ms"`
}

// NewCheckOutput converts a check outcome, assigning a fresh run ID.
func NewCheckOutput(dir, root string, out *archcheck.Outcome) CheckOutput {
	rules := make([]string, len(out.Rules))
	for i, r := range out.Rules {
		rules[i] = r.ID
	}
	return CheckOutput{
		RunID:      uuid.NewString(),
		Dir:        dir,
		Root:       root,
		Passed:     out.Result.Passed,
		Units:      len(out.Units),
		Rules:      rules,
		Errors:     out.Result.Errors,
		Warnings:   out.Result.Warnings,
		Violations: out.Result.Violations,
		Overlaps:   out.Result.Overlaps,
		Message:    out.Result.Message,
		DurationMS: out.Duration.Round(time.Millisecond).Milliseconds(),
	}
}

// UnitOutput is the JSON form of a scanned unit.
type UnitOutput struct {
	Package      string            `json:"package"`
	Name         string            `json:"name"`
	Kind         layering.Kind     `json:"kind"`
	Pos          layering.Position `json:"pos"`
	Tags         []layering.Tag    `json:"tags"`
	Dependencies []string          `json:"dependencies"`
}

// UnitsOutput is the JSON form of the units command.
type UnitsOutput struct {
	Units []UnitOutput `json:"units"`
	Count int          `json:"count"`
}

// NewUnitsOutput converts units, tagging each with c.
func NewUnitsOutput(units []layering.Unit, c *layering.Classifier) UnitsOutput {
	out := UnitsOutput{Units: make([]UnitOutput, 0, len(units)), Count: len(units)}
	for _, u := range units {
		deps := make([]string, len(u.Dependencies))
		for i, d := range u.Dependencies {
			deps[i] = d.Target.QualifiedName()
		}
		tags := c.ClassifyUnit(u)
		if tags == nil {
			tags = layering.TagSet{}
		}
		out.Units = append(out.Units, UnitOutput{
			Package:      u.Package,
			Name:         u.Name,
			Kind:         u.Kind,
			Pos:          u.Pos,
			Tags:         tags,
			Dependencies: deps,
		})
	}
	return out
}

// RuleOutput is the JSON form of a rule.
type RuleOutput struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Because  string            `json:"because,omitempty"`
	From     []layering.Tag    `json:"from"`
	To       []layering.Tag    `json:"to"`
	Severity layering.Severity `json:"severity"`
	Enabled  bool              `json:"enabled"`
}

// TagOutput is the JSON form of a classifier tag.
type TagOutput struct {
	Tag      layering.Tag `json:"tag"`
	Patterns []string     `json:"patterns"`
}

// RulesOutput is the JSON form of the rules command.
type RulesOutput struct {
	Rules []RuleOutput `json:"rules"`
	Tags  []TagOutput  `json:"tags"`
}

// GraphNodeOutput is the JSON form of a graph node.
type GraphNodeOutput struct {
	ID           string         `json:"id"`
	Tags         []layering.Tag `json:"tags"`
	Units        int            `json:"units"`
	Dependencies []string       `json:"dependencies"`
	Dependents   []string       `json:"dependents"`
}

// GraphOutput is the JSON form of the graph command.
type GraphOutput struct {
	Nodes []GraphNodeOutput `json:"nodes"`
	Edges []graph.Edge      `json:"edges"`
	Cycle []string          `json:"cycle,omitempty"`
}

// NewGraphOutput converts g.
func NewGraphOutput(g *graph.Graph) GraphOutput {
	out := GraphOutput{Edges: g.Edges()}
	for _, n := range g.Nodes() {
		tags := n.Tags
		if tags == nil {
			tags = layering.TagSet{}
		}
		out.Nodes = append(out.Nodes, GraphNodeOutput{
			ID:           n.ID,
			Tags:         tags,
			Units:        n.Units,
			Dependencies: g.Dependencies(n.ID),
			Dependents:   g.Dependents(n.ID),
		})
	}
	if hasCycle, path := g.HasCycle(); hasCycle {
		out.Cycle = path
	}
	return out
}

// NewRulesOutput lists rules with their effective severity, and the tags of c.
// A nil cc reports every rule enabled at its default severity.
func NewRulesOutput(rules []layering.RuleDef, c *layering.Classifier, cc *layering.CheckerConfig) RulesOutput {
	out := RulesOutput{Rules: []RuleOutput{}, Tags: []TagOutput{}}
	for _, rule := range rules {
		sev := rule.Severity
		enabled := true
		if cc != nil {
			if override, ok := cc.SeverityOverrides[rule.ID]; ok {
				sev = override
			}
			enabled = !cc.DisabledRules[rule.ID]
		}
		out.Rules = append(out.Rules, RuleOutput{
			ID:       rule.ID,
			Name:     rule.Name,
			Because:  rule.Because,
			From:     rule.From,
			To:       rule.To,
			Severity: sev,
			Enabled:  enabled,
		})
	}
	for _, tag := range c.Tags() {
		out.Tags = append(out.Tags, TagOutput{Tag: tag, Patterns: c.Patterns(tag)})
	}
	return out
}
