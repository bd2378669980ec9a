// Package layering checks layer boundaries between the declarations of a Go module.
//
// # Model
//
// A Unit is a package-level declaration (type, func, var, const) together with
// the declarations of other packages it references. Units are classified by
// their package path using a Classifier, a table that maps tags such as
// "service" or "web" to package patterns:
//
//	..service..           any package with a "service" segment
//	com.example.web..     com.example.web and all of its sub-packages
//	..repository          packages whose last segment is "repository"
//
// Path segments are split on both "/" and ".", so Go import paths and dotted
// namespaces are matched the same way.
//
// # Rules
//
// A RuleDef forbids dependencies from units tagged with any of its From tags
// to units tagged with any of its To tags. Built-in rules are registered from
// init() functions:
//
//	import _ "github.com/leapstack-labs/layerlint/pkg/layering/rules"
//
// # Usage
//
//	classifier := layering.DefaultClassifier()
//	checker := layering.NewChecker(classifier, layering.GetAll())
//	findings := checker.Check(units)
//	result := layering.Report(findings, checker.Rules())
//	if err := result.Err(); err != nil {
//		// err wraps layering.ErrViolations
//	}
package layering
