package layering

import (
	"fmt"
	"sort"
	"sync"
)

// globalRegistry is the single global registry for built-in layering rules.
var globalRegistry = &Registry{
	rules: make(map[string]RuleDef),
}

// Registry stores registered layering rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// RuleDef forbids dependencies from units tagged with any From tag to units
// tagged with any To tag.
type RuleDef struct {
	ID       string   `json:"id"`       // Unique identifier, e.g., "LY01"
	Name     string   `json:"name"`     // Human-readable name
	Because  string   `json:"because"`  // Reason shown when the rule fails
	From     []Tag    `json:"from"`     // Tags of the constrained units
	To       []Tag    `json:"to"`       // Tags the constrained units must not reference
	Severity Severity `json:"severity"` // Default severity
}

// Describe returns "<ID> <name>".
func (r RuleDef) Describe() string {
	if r.Name == "" {
		return r.ID
	}
	return r.ID + " " + r.Name
}

// Validate checks the rule against a classifier. A nil classifier only checks
// the rule's own fields.
func (r RuleDef) Validate(c *Classifier) error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRule)
	}
	if len(r.From) == 0 {
		return fmt.Errorf("%w: %s has no from tags", ErrInvalidRule, r.ID)
	}
	if len(r.To) == 0 {
		return fmt.Errorf("%w: %s has no to tags", ErrInvalidRule, r.ID)
	}
	if c == nil {
		return nil
	}
	for _, tags := range [][]Tag{r.From, r.To} {
		for _, t := range tags {
			if !c.HasTag(t) {
				return fmt.Errorf("rule %s: %w %q", r.ID, ErrUnknownTag, t)
			}
		}
	}
	return nil
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule
}

// GetAll returns all registered rules ordered by ID.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})
	return rules
}

// GetByID returns a rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]RuleDef)
}
