package layering_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/layering/rules"
)

func TestReport_Empty(t *testing.T) {
	res := layering.Report(layering.Findings{}, []layering.RuleDef{rules.WebLayer})

	assert.True(t, res.Passed)
	assert.Empty(t, res.Message)
	assert.NotNil(t, res.Violations)
	assert.Empty(t, res.Violations)
	assert.NoError(t, res.Err())
}

func TestReport_Message(t *testing.T) {
	units := []layering.Unit{
		unit("com.example.service", "OrderService",
			dep("com.example.web", "OrderController", 7)),
		unit("com.example.repository", "UserRepository",
			dep("com.example.web", "Session", 3)),
	}
	findings := newChecker(t).Check(units)

	res := layering.Report(findings, []layering.RuleDef{rules.WebLayer})

	assert.False(t, res.Passed)
	assert.Equal(t, 2, res.Errors)
	assert.Equal(t, 0, res.Warnings)
	assert.Equal(t, "Rule 'LY01 services-repositories-not-on-web' was violated (2 times), "+
		"because Services and repositories should not depend on web layer.:\n"+
		"  com.example.repository.UserRepository depends on com.example.web.Session in src.go:3\n"+
		"  com.example.service.OrderService depends on com.example.web.OrderController in src.go:7",
		res.Message)

	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, layering.ErrViolations))
	assert.Equal(t, res.Message, err.Error())

	var verr *layering.ViolationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2, verr.Count)
}

func TestReport_UnknownRuleAndOverlap(t *testing.T) {
	findings := layering.Findings{
		Violations: []layering.Violation{
			{
				RuleID:   "ZZ9",
				Severity: layering.SeverityWarning,
				Offender: layering.UnitRef{Package: "a/service", Name: "S"},
				Target:   layering.UnitRef{Package: "a/web"},
				Pos:      pos("s.go", 4),
			},
		},
		Overlaps: []layering.Overlap{
			{
				RuleID: rules.WebLayerRuleID,
				Unit:   layering.UnitRef{Package: "a/web/service", Name: "B"},
				Tags:   layering.TagSet{layering.TagService, layering.TagWeb},
				Pos:    pos("b.go", 1),
			},
		},
	}

	res := layering.Report(findings, []layering.RuleDef{rules.WebLayer})

	assert.True(t, res.Passed)
	assert.Equal(t, 1, res.Warnings)
	assert.Equal(t, "Rule 'ZZ9' was violated (1 times):\n"+
		"  a/service.S depends on a/web in s.go:4\n"+
		"Ambiguous classification (1 units):\n"+
		"  a/web/service.B is tagged service,web under rule LY01 (b.go:1)",
		res.Message)
}

func TestViolationError(t *testing.T) {
	err := &layering.ViolationError{Count: 3}
	assert.Equal(t, "3 layering violations found", err.Error())
	assert.True(t, errors.Is(err, layering.ErrViolations))
}
