package layering_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/internal/testutil"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/layering/rules"
)

func pos(file string, line int) layering.Position {
	return layering.Position{File: file, Line: line, Column: 2}
}

func unit(pkg, name string, deps ...layering.Dependency) layering.Unit {
	return layering.Unit{
		Package:      pkg,
		Name:         name,
		Kind:         layering.KindType,
		Pos:          pos(name+".go", 1),
		Dependencies: deps,
	}
}

func dep(pkg, name string, line int) layering.Dependency {
	return layering.Dependency{
		Target: layering.UnitRef{Package: pkg, Name: name},
		Pos:    pos("src.go", line),
	}
}

func newChecker(t *testing.T, opts ...layering.Option) *layering.Checker {
	t.Helper()
	opts = append([]layering.Option{layering.WithLogger(testutil.NewTestLogger(t))}, opts...)
	return layering.NewChecker(nil, []layering.RuleDef{rules.WebLayer}, opts...)
}

func TestChecker_ServiceDependsOnWeb(t *testing.T) {
	units := []layering.Unit{
		unit("com.example.service", "OrderService",
			dep("com.example.web", "OrderController", 7)),
		unit("com.example.web", "OrderController"),
	}

	findings := newChecker(t).Check(units)

	require.Len(t, findings.Violations, 1)
	v := findings.Violations[0]
	assert.Equal(t, rules.WebLayerRuleID, v.RuleID)
	assert.Equal(t, layering.SeverityError, v.Severity)
	assert.Equal(t, "com.example.service.OrderService", v.Offender.QualifiedName())
	assert.Equal(t, "com.example.web.OrderController", v.Target.QualifiedName())
	assert.Equal(t, 7, v.Pos.Line)
	assert.Empty(t, findings.Overlaps)
}

func TestChecker_WebDependsOnService(t *testing.T) {
	units := []layering.Unit{
		unit("com.example.web", "OrderController",
			dep("com.example.service", "OrderService", 3)),
		unit("com.example.service", "OrderService"),
	}

	findings := newChecker(t).Check(units)

	assert.Empty(t, findings.Violations)
	res := layering.Report(findings, []layering.RuleDef{rules.WebLayer})
	assert.True(t, res.Passed)
	assert.Empty(t, res.Message)
	assert.NoError(t, res.Err())
}

func TestChecker_RepositoryDependsOnWeb(t *testing.T) {
	units := []layering.Unit{
		unit("example.com/shop/repository", "UserRepository",
			dep("example.com/shop/web/api", "Session", 12)),
	}

	findings := newChecker(t).Check(units)

	require.Len(t, findings.Violations, 1)
	assert.Equal(t, "example.com/shop/web/api.Session", findings.Violations[0].Target.QualifiedName())
}

func TestChecker_UnclassifiedUnitsAreIgnored(t *testing.T) {
	units := []layering.Unit{
		unit("example.com/shop/domain", "Order",
			dep("example.com/shop/web", "Handler", 4)),
		unit("example.com/shop/service", "Orders",
			dep("example.com/shop/domain", "Order", 5)),
	}

	findings := newChecker(t).Check(units)
	assert.Empty(t, findings.Violations)
}

func TestChecker_PackageLevelTarget(t *testing.T) {
	units := []layering.Unit{
		unit("example.com/shop/service", layering.PackageUnitName,
			layering.Dependency{
				Target: layering.UnitRef{Package: "example.com/shop/web"},
				Pos:    pos("init.go", 3),
			}),
	}

	findings := newChecker(t).Check(units)
	require.Len(t, findings.Violations, 1)
	assert.Equal(t, "example.com/shop/web", findings.Violations[0].Target.QualifiedName())
}

func TestChecker_AllViolationsCollected(t *testing.T) {
	units := []layering.Unit{
		unit("example.com/shop/service", "A",
			dep("example.com/shop/web", "H1", 1),
			dep("example.com/shop/web", "H2", 2)),
		unit("example.com/shop/service", "B",
			dep("example.com/shop/web", "H1", 9)),
		unit("example.com/shop/repository", "R",
			dep("example.com/shop/web", "H3", 4)),
	}

	findings := newChecker(t).Check(units)
	require.Len(t, findings.Violations, 4)

	var got []string
	for _, v := range findings.Violations {
		got = append(got, v.Offender.Name+"->"+v.Target.Name)
	}
	assert.Equal(t, []string{"R->H3", "A->H1", "A->H2", "B->H1"}, got)
}

func TestChecker_DuplicateEdgesKeepEarliestPosition(t *testing.T) {
	units := []layering.Unit{
		unit("example.com/shop/service", "A", dep("example.com/shop/web", "H", 20)),
		unit("example.com/shop/service", "A", dep("example.com/shop/web", "H", 8)),
	}

	findings := newChecker(t).Check(units)
	require.Len(t, findings.Violations, 1)
	assert.Equal(t, 8, findings.Violations[0].Pos.Line)
}

func TestChecker_Idempotent(t *testing.T) {
	units := fixtureUnits()
	c := newChecker(t)

	first := c.Check(units)
	second := c.Check(units)
	assert.Equal(t, first, second)
}

func TestChecker_OrderIndependent(t *testing.T) {
	units := fixtureUnits()
	want := newChecker(t).Check(units)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]layering.Unit(nil), units...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, newChecker(t).Check(shuffled))
	}
}

func TestChecker_Overlap(t *testing.T) {
	units := []layering.Unit{
		unit("example.com/shop/web/service", "Bridge",
			dep("example.com/shop/web", "Handler", 2)),
	}

	findings := newChecker(t).Check(units)

	require.Len(t, findings.Overlaps, 1)
	o := findings.Overlaps[0]
	assert.Equal(t, rules.WebLayerRuleID, o.RuleID)
	assert.Equal(t, "example.com/shop/web/service.Bridge", o.Unit.QualifiedName())
	assert.Equal(t, layering.TagSet{layering.TagService, layering.TagWeb}, o.Tags)

	// The unit is still checked.
	require.Len(t, findings.Violations, 1)
}

func TestChecker_DisabledRule(t *testing.T) {
	cfg := layering.NewCheckerConfig()
	cfg.DisabledRules[rules.WebLayerRuleID] = true

	c := newChecker(t, layering.WithConfig(cfg))
	assert.Empty(t, c.Rules())
	assert.Empty(t, c.Check(fixtureUnits()).Violations)
}

func TestChecker_SeverityOverride(t *testing.T) {
	cfg := layering.NewCheckerConfig()
	cfg.SeverityOverrides[rules.WebLayerRuleID] = layering.SeverityWarning

	c := newChecker(t, layering.WithConfig(cfg))
	findings := c.Check(fixtureUnits())
	require.NotEmpty(t, findings.Violations)
	for _, v := range findings.Violations {
		assert.Equal(t, layering.SeverityWarning, v.Severity)
	}

	res := layering.Report(findings, c.Rules())
	assert.True(t, res.Passed)
	assert.Equal(t, 0, res.Errors)
	assert.Equal(t, len(findings.Violations), res.Warnings)
	assert.NotEmpty(t, res.Message)
}

func TestChecker_CustomRule(t *testing.T) {
	classifier, err := layering.NewClassifier(map[layering.Tag][]string{
		"domain": {"..domain.."},
		"infra":  {"..infra.."},
	})
	require.NoError(t, err)

	rule := layering.RuleDef{
		ID:       "DOM01",
		From:     []layering.Tag{"domain"},
		To:       []layering.Tag{"infra"},
		Severity: layering.SeverityError,
	}
	require.NoError(t, rule.Validate(classifier))

	c := layering.NewChecker(classifier, []layering.RuleDef{rule})
	assert.Same(t, classifier, c.Classifier())

	findings := c.Check([]layering.Unit{
		unit("example.com/app/domain", "Order", dep("example.com/app/infra/db", "Conn", 3)),
		unit("example.com/app/infra/db", "Conn", dep("example.com/app/domain", "Order", 5)),
	})
	require.Len(t, findings.Violations, 1)
	assert.Equal(t, "DOM01", findings.Violations[0].RuleID)
}

func fixtureUnits() []layering.Unit {
	return []layering.Unit{
		unit("example.com/shop/service", "Orders",
			dep("example.com/shop/web", "Handler", 3),
			dep("example.com/shop/domain", "Order", 4)),
		unit("example.com/shop/service", "Payments",
			dep("example.com/shop/web/api", "Client", 9)),
		unit("example.com/shop/repository", "Users",
			dep("example.com/shop/web", "Session", 11)),
		unit("example.com/shop/web", "Handler",
			dep("example.com/shop/service", "Orders", 2)),
		unit("example.com/shop/web/service", "Bridge",
			dep("example.com/shop/web", "Handler", 6)),
		unit("example.com/shop/domain", "Order"),
	}
}
