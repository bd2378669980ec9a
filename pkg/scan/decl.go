package scan

import (
	"go/ast"
	"go/build/constraint"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// refCollector reports every cross-package reference inside node.
type refCollector func(node ast.Node, emit func(target layering.UnitRef, at token.Pos))

type pendingUnit struct {
	unit     layering.Unit
	declared bool
	deps     *layering.DependencySet
}

// unitBuilder accumulates the units of one package. It is not safe for
// concurrent use; each package gets its own builder.
type unitBuilder struct {
	pkgPath string
	pkgName string
	fset    *token.FileSet
	rel     func(string) string
	units   map[string]*pendingUnit
}

func newUnitBuilder(pkgPath, pkgName string, fset *token.FileSet, rel func(string) string) *unitBuilder {
	return &unitBuilder{
		pkgPath: pkgPath,
		pkgName: pkgName,
		fset:    fset,
		rel:     rel,
		units:   make(map[string]*pendingUnit),
	}
}

func (b *unitBuilder) position(p token.Pos) layering.Position {
	pos := b.fset.Position(p)
	return layering.Position{File: b.rel(pos.Filename), Line: pos.Line, Column: pos.Column}
}

// declare returns the unit for name, creating it if needed. A method's
// receiver may be seen before its type declaration; the declaration then
// takes over the unit's kind and position.
func (b *unitBuilder) declare(name string, kind layering.Kind, at token.Pos, fromMethod bool) *pendingUnit {
	pu, ok := b.units[name]
	if !ok {
		pu = &pendingUnit{
			unit: layering.Unit{
				Package:     b.pkgPath,
				PackageName: b.pkgName,
				Name:        name,
				Kind:        kind,
				Pos:         b.position(at),
			},
			deps: layering.NewDependencySet(),
		}
		b.units[name] = pu
	}
	if !fromMethod && !pu.declared {
		pu.unit.Kind = kind
		pu.unit.Pos = b.position(at)
		pu.declared = true
	}
	return pu
}

func (b *unitBuilder) packageUnit(at token.Pos) *pendingUnit {
	return b.declare(layering.PackageUnitName, layering.KindPackage, at, false)
}

func (b *unitBuilder) collect(pu *pendingUnit, node ast.Node, refs refCollector) {
	if node == nil {
		return
	}
	refs(node, func(target layering.UnitRef, at token.Pos) {
		if target.Package == b.pkgPath {
			return
		}
		pu.deps.Add(target, b.position(at))
	})
}

// addFile records the declarations of one file.
func (b *unitBuilder) addFile(file *ast.File, refs refCollector) {
	for _, spec := range file.Imports {
		if spec.Name == nil || (spec.Name.Name != "_" && spec.Name.Name != ".") {
			continue
		}
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		pu := b.packageUnit(spec.Pos())
		pu.deps.Add(layering.UnitRef{Package: path}, b.position(spec.Pos()))
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			b.addFunc(d, refs)
		case *ast.GenDecl:
			b.addGen(d, refs)
		}
	}
}

func (b *unitBuilder) addFunc(fn *ast.FuncDecl, refs refCollector) {
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		name := receiverName(fn.Recv.List[0].Type)
		if name == "" {
			return
		}
		pu := b.declare(name, layering.KindType, fn.Name.Pos(), true)
		b.collect(pu, fn, refs)
		return
	}

	name := fn.Name.Name
	if name == "_" {
		b.collect(b.packageUnit(fn.Pos()), fn, refs)
		return
	}
	pu := b.declare(name, layering.KindFunc, fn.Name.Pos(), false)
	b.collect(pu, fn, refs)
}

func (b *unitBuilder) addGen(gd *ast.GenDecl, refs refCollector) {
	switch gd.Tok {
	case token.TYPE:
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			pu := b.declare(ts.Name.Name, layering.KindType, ts.Name.Pos(), false)
			if ts.TypeParams != nil {
				b.collect(pu, ts.TypeParams, refs)
			}
			b.collect(pu, ts.Type, refs)
		}

	case token.VAR, token.CONST:
		kind := layering.KindVar
		if gd.Tok == token.CONST {
			kind = layering.KindConst
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, ident := range vs.Names {
				var pu *pendingUnit
				if ident.Name == "_" {
					pu = b.packageUnit(ident.Pos())
				} else {
					pu = b.declare(ident.Name, kind, ident.Pos(), false)
				}
				if vs.Type != nil {
					b.collect(pu, vs.Type, refs)
				}
				for _, v := range vs.Values {
					b.collect(pu, v, refs)
				}
			}
		}
	}
}

// build returns the package's units ordered by name.
func (b *unitBuilder) build() []layering.Unit {
	out := make([]layering.Unit, 0, len(b.units))
	for _, pu := range b.units {
		u := pu.unit
		u.Dependencies = pu.deps.Sorted()
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// receiverName returns the type name of a method receiver, without pointer
// or type parameters.
func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.ParenExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	default:
		return ""
	}
}

// ignoredByBuild reports whether the file opts out of every build with
// "//go:build ignore", as generator scripts do.
func ignoredByBuild(file *ast.File) bool {
	for _, cg := range file.Comments {
		if cg.Pos() >= file.Package {
			break
		}
		for _, c := range cg.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				continue
			}
			if tag, ok := expr.(*constraint.TagExpr); ok && tag.Tag == "ignore" {
				return true
			}
		}
	}
	return false
}

// packageKey returns the import path a file's package is recorded under.
// External test packages get a "_test" suffix so they never merge with the
// package they test.
func packageKey(importPath, pkgName string) string {
	if strings.HasSuffix(pkgName, "_test") {
		return importPath + "_test"
	}
	return importPath
}
