package layering

import (
	"fmt"
	"sort"
	"strings"
)

// Result is the pass/fail outcome of a check.
type Result struct {
	Passed     bool        `json:"passed"`
	Message    string      `json:"message,omitempty"`
	Violations []Violation `json:"violations"`
	Overlaps   []Overlap   `json:"overlaps,omitempty"`
	Errors     int         `json:"errors"`
	Warnings   int         `json:"warnings"`
}

// Report turns findings into a Result. The check fails when at least one
// violation has SeverityError. A clean check has an empty message.
func Report(findings Findings, rules []RuleDef) Result {
	res := Result{
		Violations: findings.Violations,
		Overlaps:   findings.Overlaps,
	}
	if res.Violations == nil {
		res.Violations = []Violation{}
	}

	for _, v := range findings.Violations {
		if v.Severity == SeverityError {
			res.Errors++
		} else {
			res.Warnings++
		}
	}
	res.Passed = res.Errors == 0

	if len(findings.Violations) == 0 && len(findings.Overlaps) == 0 {
		return res
	}

	byRule := make(map[string][]Violation)
	for _, v := range findings.Violations {
		byRule[v.RuleID] = append(byRule[v.RuleID], v)
	}

	var sb strings.Builder
	known := make(map[string]bool, len(rules))
	for _, rule := range rules {
		known[rule.ID] = true
		writeRuleSection(&sb, rule, byRule[rule.ID])
	}
	var unknown []string
	for id := range byRule {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		writeRuleSection(&sb, RuleDef{ID: id}, byRule[id])
	}

	if len(findings.Overlaps) > 0 {
		fmt.Fprintf(&sb, "Ambiguous classification (%d units):\n", len(findings.Overlaps))
		for _, o := range findings.Overlaps {
			fmt.Fprintf(&sb, "  %s is tagged %s under rule %s (%s)\n",
				o.Unit.QualifiedName(), o.Tags, o.RuleID, o.Pos)
		}
	}

	res.Message = strings.TrimRight(sb.String(), "\n")
	return res
}

func writeRuleSection(sb *strings.Builder, rule RuleDef, violations []Violation) {
	if len(violations) == 0 {
		return
	}
	fmt.Fprintf(sb, "Rule '%s' was violated (%d times)", rule.Describe(), len(violations))
	if rule.Because != "" {
		fmt.Fprintf(sb, ", because %s", rule.Because)
	}
	sb.WriteString(":\n")
	for _, v := range violations {
		fmt.Fprintf(sb, "  %s depends on %s in %s\n",
			v.Offender.QualifiedName(), v.Target.QualifiedName(), v.Pos)
	}
}

// Err returns a *ViolationError when the check failed, nil otherwise.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	return &ViolationError{Count: r.Errors, Message: r.Message}
}
