package layering

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the declaration kind of a unit.
type Kind string

// Unit kinds.
const (
	KindType  Kind = "type"
	KindFunc  Kind = "func"
	KindVar   Kind = "var"
	KindConst Kind = "const"
	// KindPackage holds package-scope references that belong to no declaration,
	// such as blank and dot imports.
	KindPackage Kind = "package"
)

// PackageUnitName is the name of the synthetic package-scope unit.
// It is a Go keyword, so it never collides with a declared identifier.
const PackageUnitName = "package"

// Position is a location in a source file.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// IsValid reports whether the position carries a file.
func (p Position) IsValid() bool {
	return p.File != ""
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Before orders positions by file, line and column.
func (p Position) Before(other Position) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// UnitRef identifies a dependency target. The target does not have to be part
// of the scanned units; an empty Name refers to the package as a whole.
type UnitRef struct {
	Package string `json:"package"`
	Name    string `json:"name,omitempty"`
}

// QualifiedName returns "<package>.<name>", or the package path for package refs.
func (r UnitRef) QualifiedName() string {
	if r.Name == "" {
		return r.Package
	}
	return r.Package + "." + r.Name
}

func (r UnitRef) String() string {
	return r.QualifiedName()
}

// Dependency is a direct reference from a unit to a target.
// Pos is the first place the target is referenced.
type Dependency struct {
	Target UnitRef  `json:"target"`
	Pos    Position `json:"pos"`
}

// Unit is a package-level declaration and its direct dependencies.
type Unit struct {
	Package      string       `json:"package"`
	PackageName  string       `json:"package_name"`
	Name         string       `json:"name"`
	Kind         Kind         `json:"kind"`
	Pos          Position     `json:"pos"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// QualifiedName returns "<package>.<name>".
func (u Unit) QualifiedName() string {
	return u.Package + "." + u.Name
}

// Namespace returns the package path the unit is classified under. Units of
// an external test package belong to the package they test.
func (u Unit) Namespace() string {
	if strings.HasSuffix(u.PackageName, "_test") {
		return strings.TrimSuffix(u.Package, "_test")
	}
	return u.Package
}

// Ref returns a reference to the unit.
func (u Unit) Ref() UnitRef {
	return UnitRef{Package: u.Package, Name: u.Name}
}

// SortUnits orders units by qualified name, in place.
func SortUnits(units []Unit) {
	sort.Slice(units, func(i, j int) bool {
		return units[i].QualifiedName() < units[j].QualifiedName()
	})
}

// DependencySet collects the dependencies of one unit, keeping the earliest
// position per target.
type DependencySet struct {
	deps map[string]Dependency
}

// NewDependencySet creates an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{deps: make(map[string]Dependency)}
}

// Add records a reference to target at pos.
func (s *DependencySet) Add(target UnitRef, pos Position) {
	key := target.QualifiedName()
	if existing, ok := s.deps[key]; ok && !pos.Before(existing.Pos) {
		return
	}
	s.deps[key] = Dependency{Target: target, Pos: pos}
}

// Len returns the number of distinct targets.
func (s *DependencySet) Len() int {
	return len(s.deps)
}

// Sorted returns the dependencies ordered by target qualified name.
func (s *DependencySet) Sorted() []Dependency {
	if len(s.deps) == 0 {
		return nil
	}
	out := make([]Dependency, 0, len(s.deps))
	for _, d := range s.deps {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Target.QualifiedName() < out[j].Target.QualifiedName()
	})
	return out
}
