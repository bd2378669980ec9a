package layering

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tag is a classification label such as "service" or "web".
type Tag string

// Built-in tags.
const (
	TagService    Tag = "service"
	TagRepository Tag = "repository"
	TagWeb        Tag = "web"
)

// TagSet is a sorted set of tags.
type TagSet []Tag

// Has reports whether the set contains tag.
func (s TagSet) Has(tag Tag) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// Intersects reports whether the set shares at least one tag with tags.
func (s TagSet) Intersects(tags []Tag) bool {
	for _, t := range tags {
		if s.Has(t) {
			return true
		}
	}
	return false
}

func (s TagSet) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// DefaultTagPatterns is the classification table used when none is configured.
func DefaultTagPatterns() map[Tag][]string {
	return map[Tag][]string{
		TagService:    {"..service.."},
		TagRepository: {"..repository.."},
		TagWeb:        {"..web.."},
	}
}

type tagPatterns struct {
	tag      Tag
	patterns []Pattern
}

// Classifier maps package paths to tags. It is safe for concurrent use.
type Classifier struct {
	table []tagPatterns

	mu    sync.Mutex
	cache map[string]TagSet
}

// NewClassifier compiles a classification table.
func NewClassifier(table map[Tag][]string) (*Classifier, error) {
	c := &Classifier{cache: make(map[string]TagSet)}

	for tag, raw := range table {
		if tag == "" {
			return nil, fmt.Errorf("%w: empty tag name", ErrInvalidPattern)
		}
		entry := tagPatterns{tag: tag}
		for _, s := range raw {
			p, err := ParsePattern(s)
			if err != nil {
				return nil, fmt.Errorf("tag %s: %w", tag, err)
			}
			entry.patterns = append(entry.patterns, p)
		}
		c.table = append(c.table, entry)
	}

	sort.Slice(c.table, func(i, j int) bool {
		return c.table[i].tag < c.table[j].tag
	})
	return c, nil
}

// DefaultClassifier returns a classifier for the service, repository and web tags.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultTagPatterns())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the tags whose patterns match the namespace.
func (c *Classifier) Classify(namespace string) TagSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tags, ok := c.cache[namespace]; ok {
		return tags
	}

	var tags TagSet
	for _, entry := range c.table {
		for _, p := range entry.patterns {
			if p.Match(namespace) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	c.cache[namespace] = tags
	return tags
}

// ClassifyUnit classifies a unit by its namespace.
func (c *Classifier) ClassifyUnit(u Unit) TagSet {
	return c.Classify(u.Namespace())
}

// ClassifyRef classifies a dependency target by its package path.
func (c *Classifier) ClassifyRef(r UnitRef) TagSet {
	return c.Classify(r.Package)
}

// Tags returns the configured tags in sorted order.
func (c *Classifier) Tags() []Tag {
	tags := make([]Tag, len(c.table))
	for i, entry := range c.table {
		tags[i] = entry.tag
	}
	return tags
}

// HasTag reports whether the classifier defines tag.
func (c *Classifier) HasTag(tag Tag) bool {
	for _, entry := range c.table {
		if entry.tag == tag {
			return true
		}
	}
	return false
}

// Patterns returns the patterns configured for tag.
func (c *Classifier) Patterns(tag Tag) []string {
	for _, entry := range c.table {
		if entry.tag != tag {
			continue
		}
		out := make([]string, len(entry.patterns))
		for i, p := range entry.patterns {
			out[i] = p.String()
		}
		return out
	}
	return nil
}
