// Package archcheck runs a complete layering check: scan, classify, check
// and report. It is what the CLI, the MCP server and the test helpers call.
package archcheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/layerlint/pkg/layering"
	_ "github.com/leapstack-labs/layerlint/pkg/layering/rules" // register built-in rules
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

// Options configures a Run.
type Options struct {
	Scan scan.Options

	// Loader defaults to scan.ParserLoader.
	Loader scan.Loader

	// Classifier defaults to layering.DefaultClassifier.
	Classifier *layering.Classifier

	// Rules defaults to every registered rule.
	Rules []layering.RuleDef

	// Checker holds disabled rules and severity overrides.
	Checker *layering.CheckerConfig

	Logger *slog.Logger
}

// Outcome is the result of a Run along with the scanned units.
type Outcome struct {
	Result   layering.Result
	Units    []layering.Unit
	Rules    []layering.RuleDef
	Duration time.Duration
}

// Run scans the module and checks it. A scan failure is returned as an error
// and no check runs; violations are reported in the Outcome, not as an error.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	start := time.Now()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Scan.Logger == nil {
		opts.Scan.Logger = logger
	}

	loader := opts.Loader
	if loader == nil {
		loader = scan.ParserLoader{}
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = layering.DefaultClassifier()
	}
	rules := opts.Rules
	if rules == nil {
		rules = layering.GetAll()
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules configured", layering.ErrInvalidRule)
	}
	for _, rule := range rules {
		if err := rule.Validate(classifier); err != nil {
			return nil, err
		}
	}

	units, err := loader.Load(ctx, opts.Scan)
	if err != nil {
		return nil, err
	}

	checker := layering.NewChecker(classifier, rules,
		layering.WithConfig(opts.Checker),
		layering.WithLogger(logger))
	findings := checker.Check(units)
	enabled := checker.Rules()

	out := &Outcome{
		Result:   layering.Report(findings, enabled),
		Units:    units,
		Rules:    enabled,
		Duration: time.Since(start),
	}

	logger.Debug("layering check finished",
		slog.Int("units", len(units)),
		slog.Int("rules", len(enabled)),
		slog.Int("violations", len(out.Result.Violations)),
		slog.Bool("passed", out.Result.Passed),
		slog.Duration("duration", out.Duration))

	return out, nil
}
