// Package rules registers the built-in layering rules.
// Import this package to register them with the global registry.
package rules

import "github.com/leapstack-labs/layerlint/pkg/layering"

// WebLayerRuleID identifies the rule keeping services and repositories off the web layer.
const WebLayerRuleID = "LY01"

// WebLayerReason is the reason reported when WebLayerRuleID fails.
const WebLayerReason = "Services and repositories should not depend on web layer."

// WebLayer is the default rule: units in service or repository packages must
// not reference units in web packages.
var WebLayer = layering.RuleDef{
	ID:       WebLayerRuleID,
	Name:     "services-repositories-not-on-web",
	Because:  WebLayerReason,
	From:     []layering.Tag{layering.TagService, layering.TagRepository},
	To:       []layering.Tag{layering.TagWeb},
	Severity: layering.SeverityError,
}

func init() {
	layering.Register(WebLayer)
}
