package layering

import (
	"fmt"
	"path"
	"strings"
)

// Pattern is a compiled package pattern.
//
// ".." matches any number of whole segments, including none. Every other
// segment is matched with path.Match, so "*" matches within a single segment.
type Pattern struct {
	raw   string
	elems []patternElem
}

type patternElem struct {
	gap     bool
	segment string
}

// ParsePattern compiles a package pattern such as "..service.." or
// "example.com/shop/web..". The form "...service.." is accepted too.
func ParsePattern(s string) (Pattern, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	normalized := strings.ReplaceAll(raw, "/", ".")
	// A leading or trailing "..." reads as "..".
	if strings.HasPrefix(normalized, "...") {
		normalized = normalized[1:]
	}
	if strings.HasSuffix(normalized, "...") && len(normalized) > 3 {
		normalized = normalized[:len(normalized)-1]
	}
	pieces := strings.Split(normalized, "..")

	p := Pattern{raw: raw}
	for i, piece := range pieces {
		if i > 0 {
			p.elems = append(p.elems, patternElem{gap: true})
		}
		if piece == "" {
			continue
		}
		for _, seg := range strings.Split(piece, ".") {
			if seg == "" {
				return Pattern{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, raw)
			}
			if _, err := path.Match(seg, ""); err != nil {
				return Pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, raw, err)
			}
			p.elems = append(p.elems, patternElem{segment: seg})
		}
	}

	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether the namespace matches the pattern.
func (p Pattern) Match(namespace string) bool {
	return matchElems(p.elems, Segments(namespace))
}

func matchElems(elems []patternElem, segs []string) bool {
	if len(elems) == 0 {
		return len(segs) == 0
	}

	e := elems[0]
	if e.gap {
		for i := 0; i <= len(segs); i++ {
			if matchElems(elems[1:], segs[i:]) {
				return true
			}
		}
		return false
	}

	if len(segs) == 0 {
		return false
	}
	if ok, _ := path.Match(e.segment, segs[0]); !ok {
		return false
	}
	return matchElems(elems[1:], segs[1:])
}

// Segments splits a namespace into its path segments.
// Both "/" and "." separate segments.
func Segments(namespace string) []string {
	return strings.FieldsFunc(namespace, func(r rune) bool {
		return r == '/' || r == '.'
	})
}

// HasNamespacePrefix reports whether namespace equals root or lies below it.
// The comparison is segment-wise: "example.com/shopping" is not under
// "example.com/shop".
func HasNamespacePrefix(namespace, root string) bool {
	rootSegs := Segments(root)
	nsSegs := Segments(namespace)
	if len(rootSegs) == 0 || len(nsSegs) < len(rootSegs) {
		return false
	}
	for i, seg := range rootSegs {
		if nsSegs[i] != seg {
			return false
		}
	}
	return true
}
