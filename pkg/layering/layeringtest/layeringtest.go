// Package layeringtest checks layering rules from a Go test.
//
//	func TestLayering(t *testing.T) {
//		layeringtest.AssertLayering(t, "../..", "")
//	}
//
// The test fails with one line per violation and the reason of the broken
// rule. A module that cannot be scanned fails the test as well; an empty or
// missing namespace never passes.
package layeringtest

import (
	"context"
	"testing"

	"github.com/leapstack-labs/layerlint/pkg/archcheck"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

type config struct {
	opts archcheck.Options
}

// Option configures an assertion.
type Option func(*config)

// WithRules replaces the registered rules.
func WithRules(rules ...layering.RuleDef) Option {
	return func(c *config) { c.opts.Rules = rules }
}

// WithClassifier replaces the default tag table.
func WithClassifier(classifier *layering.Classifier) Option {
	return func(c *config) { c.opts.Classifier = classifier }
}

// WithExclude skips packages matching the patterns.
func WithExclude(patterns ...string) Option {
	return func(c *config) { c.opts.Scan.Exclude = append(c.opts.Scan.Exclude, patterns...) }
}

// WithTests includes _test.go files and external test packages.
func WithTests() Option {
	return func(c *config) { c.opts.Scan.IncludeTests = true }
}

// WithLoader selects the loader, see scan.LoaderFor.
func WithLoader(loader scan.Loader) Option {
	return func(c *config) { c.opts.Loader = loader }
}

// AssertLayering scans dir under the root namespace and fails t for every
// violation of an error-severity rule. An empty root uses the module path.
// It returns the outcome, or nil when the scan failed.
func AssertLayering(t testing.TB, dir, root string, opts ...Option) *archcheck.Outcome {
	t.Helper()

	cfg := config{opts: archcheck.Options{
		Scan: scan.Options{Dir: dir, Root: root},
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	out, err := archcheck.Run(context.Background(), cfg.opts)
	if err != nil {
		t.Fatalf("layering check: %v", err)
		return nil
	}
	if !out.Result.Passed {
		t.Errorf("Architecture Violation:\n%s", out.Result.Message)
	}
	return out
}

// AssertNoViolations checks units that were built or scanned by the caller.
func AssertNoViolations(t testing.TB, units []layering.Unit, opts ...Option) layering.Result {
	t.Helper()

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	rules := cfg.opts.Rules
	if rules == nil {
		rules = layering.GetAll()
	}

	checker := layering.NewChecker(cfg.opts.Classifier, rules)
	res := layering.Report(checker.Check(units), checker.Rules())
	if !res.Passed {
		t.Errorf("Architecture Violation:\n%s", res.Message)
	}
	return res
}
