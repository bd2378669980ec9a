package layering

import (
	"log/slog"
	"sort"
)

// Violation is a dependency edge that breaks a rule.
type Violation struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Offender UnitRef  `json:"offender"`
	Target   UnitRef  `json:"target"`
	Pos      Position `json:"pos"`
}

func (v Violation) key() string {
	return v.RuleID + "\x00" + v.Offender.QualifiedName() + "\x00" + v.Target.QualifiedName()
}

// Overlap is a unit tagged on both sides of a rule. Such units are still
// checked; overlaps are reported so the classification can be tightened.
type Overlap struct {
	RuleID string   `json:"rule_id"`
	Unit   UnitRef  `json:"unit"`
	Tags   TagSet   `json:"tags"`
	Pos    Position `json:"pos"`
}

// Findings is the outcome of a check.
type Findings struct {
	Violations []Violation `json:"violations"`
	Overlaps   []Overlap   `json:"overlaps,omitempty"`
}

// CheckerConfig holds configuration for the checker.
type CheckerConfig struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]Severity
}

// NewCheckerConfig creates a default configuration.
func NewCheckerConfig() *CheckerConfig {
	return &CheckerConfig{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]Severity),
	}
}

// Checker evaluates rules over a set of units.
type Checker struct {
	classifier *Classifier
	rules      []RuleDef
	config     *CheckerConfig
	logger     *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithConfig sets disabled rules and severity overrides.
func WithConfig(cfg *CheckerConfig) Option {
	return func(c *Checker) {
		if cfg != nil {
			c.config = cfg
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a checker. A nil classifier uses DefaultClassifier.
func NewChecker(classifier *Classifier, rules []RuleDef, opts ...Option) *Checker {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	c := &Checker{
		classifier: classifier,
		rules:      append([]RuleDef(nil), rules...),
		config:     NewCheckerConfig(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the enabled rules with severity overrides applied.
func (c *Checker) Rules() []RuleDef {
	var out []RuleDef
	for _, rule := range c.rules {
		if c.config.DisabledRules[rule.ID] {
			continue
		}
		rule.Severity = c.severity(rule)
		out = append(out, rule)
	}
	return out
}

// Classifier returns the classifier used by the checker.
func (c *Checker) Classifier() *Classifier {
	return c.classifier
}

func (c *Checker) severity(rule RuleDef) Severity {
	if sev, ok := c.config.SeverityOverrides[rule.ID]; ok {
		return sev
	}
	return rule.Severity
}

// Check returns every dependency that breaks an enabled rule. All violations
// are collected; the result is deduplicated and sorted, so it does not depend
// on the order of units.
func (c *Checker) Check(units []Unit) Findings {
	violations := make(map[string]Violation)
	overlaps := make(map[string]Overlap)

	for _, rule := range c.Rules() {
		for _, u := range units {
			tags := c.classifier.ClassifyUnit(u)
			if !tags.Intersects(rule.From) {
				continue
			}

			if tags.Intersects(rule.To) {
				key := rule.ID + "\x00" + u.QualifiedName()
				if _, seen := overlaps[key]; !seen {
					c.logger.Debug("unit matches both sides of rule",
						slog.String("rule", rule.ID),
						slog.String("unit", u.QualifiedName()),
						slog.String("tags", tags.String()))
					overlaps[key] = Overlap{RuleID: rule.ID, Unit: u.Ref(), Tags: tags, Pos: u.Pos}
				}
			}

			for _, dep := range u.Dependencies {
				if !c.classifier.ClassifyRef(dep.Target).Intersects(rule.To) {
					continue
				}
				v := Violation{
					RuleID:   rule.ID,
					Severity: rule.Severity,
					Offender: u.Ref(),
					Target:   dep.Target,
					Pos:      dep.Pos,
				}
				if existing, ok := violations[v.key()]; ok && !v.Pos.Before(existing.Pos) {
					continue
				}
				violations[v.key()] = v
			}
		}
	}

	findings := Findings{
		Violations: make([]Violation, 0, len(violations)),
	}
	for _, v := range violations {
		findings.Violations = append(findings.Violations, v)
	}
	for _, o := range overlaps {
		findings.Overlaps = append(findings.Overlaps, o)
	}

	sort.Slice(findings.Violations, func(i, j int) bool {
		return findings.Violations[i].key() < findings.Violations[j].key()
	})
	sort.Slice(findings.Overlaps, func(i, j int) bool {
		a, b := findings.Overlaps[i], findings.Overlaps[j]
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Unit.QualifiedName() < b.Unit.QualifiedName()
	})

	c.logger.Debug("check complete",
		slog.Int("units", len(units)),
		slog.Int("violations", len(findings.Violations)),
		slog.Int("overlaps", len(findings.Overlaps)))

	return findings
}
