package scan

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// PackagesLoader loads the module with the go command and resolves references
// with type information. Methods resolve to their receiver type and
// identifiers from dot imports resolve to their declaration.
type PackagesLoader struct {
	// BuildFlags are passed through to the go command.
	BuildFlags []string
}

const packagesLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// Load implements Loader.
func (p PackagesLoader) Load(ctx context.Context, opts Options) ([]layering.Unit, error) {
	l, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Context:    ctx,
		Mode:       packagesLoadMode,
		Dir:        l.dir,
		Tests:      opts.IncludeTests,
		BuildFlags: p.BuildFlags,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, l.fail("loading packages", err)
	}

	var units []layering.Unit
	for _, pkg := range selectPackages(pkgs) {
		if !l.keep(pkg.PkgPath) {
			continue
		}
		if len(pkg.Errors) > 0 {
			if l.opts.Strict {
				return nil, l.fail("package errors in "+pkg.PkgPath, pkg.Errors[0])
			}
			for _, e := range pkg.Errors {
				l.logger.Warn("package error",
					slog.String("package", pkg.PkgPath),
					slog.String("error", e.Error()))
			}
		}
		if pkg.TypesInfo == nil || pkg.Types == nil {
			continue
		}

		b := newUnitBuilder(pkg.PkgPath, pkg.Name, pkg.Fset, l.relFile)
		refs := typedRefs(pkg.TypesInfo, pkg.Types)
		for _, file := range pkg.Syntax {
			if underTestdata(pkg.Fset.Position(file.Package).Filename) || ignoredByBuild(file) {
				continue
			}
			b.addFile(file, refs)
		}
		units = append(units, b.build()...)
	}

	return l.finish(units)
}

// selectPackages drops test binaries and, when a package also has a test
// variant, keeps only the variant since it holds a superset of the files.
func selectPackages(pkgs []*packages.Package) []*packages.Package {
	byPath := make(map[string]*packages.Package)
	var order []string
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		existing, ok := byPath[pkg.PkgPath]
		if !ok {
			order = append(order, pkg.PkgPath)
			byPath[pkg.PkgPath] = pkg
			continue
		}
		if !isTestVariant(existing) && isTestVariant(pkg) {
			byPath[pkg.PkgPath] = pkg
		}
	}

	out := make([]*packages.Package, 0, len(order))
	for _, path := range order {
		out = append(out, byPath[path])
	}
	return out
}

func isTestVariant(pkg *packages.Package) bool {
	return strings.Contains(pkg.ID, " [")
}

func underTestdata(filename string) bool {
	return strings.Contains(filename, "/testdata/")
}

// typedRefs resolves every identifier through the type checker.
func typedRefs(info *types.Info, self *types.Package) refCollector {
	return func(node ast.Node, emit func(layering.UnitRef, token.Pos)) {
		ast.Inspect(node, func(n ast.Node) bool {
			id, ok := n.(*ast.Ident)
			if !ok {
				return true
			}
			if ref, ok := unitRefOf(info.Uses[id], self); ok {
				emit(ref, id.Pos())
			}
			return true
		})
	}
}

// unitRefOf maps a used object to the package-level declaration that owns it.
func unitRefOf(obj types.Object, self *types.Package) (layering.UnitRef, bool) {
	if obj == nil || obj.Pkg() == nil || obj.Pkg() == self {
		return layering.UnitRef{}, false
	}

	switch o := obj.(type) {
	case *types.PkgName:
		return layering.UnitRef{}, false
	case *types.Var:
		if o.IsField() {
			return layering.UnitRef{}, false
		}
	case *types.Func:
		sig, ok := o.Type().(*types.Signature)
		if ok && sig.Recv() != nil {
			named := namedType(sig.Recv().Type())
			if named == nil || named.Obj().Pkg() == nil || named.Obj().Pkg() == self {
				return layering.UnitRef{}, false
			}
			return layering.UnitRef{Package: named.Obj().Pkg().Path(), Name: named.Obj().Name()}, true
		}
	}

	if obj.Parent() != obj.Pkg().Scope() {
		return layering.UnitRef{}, false
	}
	return layering.UnitRef{Package: obj.Pkg().Path(), Name: obj.Name()}, true
}

func namedType(t types.Type) *types.Named {
	t = types.Unalias(t)
	if ptr, ok := t.(*types.Pointer); ok {
		t = types.Unalias(ptr.Elem())
	}
	named, _ := t.(*types.Named)
	return named
}
