package scan

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// ParserLoader parses source files without type checking. A reference is a
// selector "x.Name" whose x names an import of the file; x is matched against
// the import alias, the declared name of in-module packages, or ImportName.
type ParserLoader struct{}

// parsedPackage is one package of a directory after parsing.
type parsedPackage struct {
	importPath string
	name       string
	files      []*ast.File
}

// Load implements Loader.
func (ParserLoader) Load(ctx context.Context, opts Options) ([]layering.Unit, error) {
	l, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	dirs, err := l.collectDirs(ctx)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, l.fail("no Go packages under root namespace", nil)
	}

	// token.FileSet is safe for concurrent use.
	fset := token.NewFileSet()

	perDir := make([][]parsedPackage, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, d := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pkgs, err := l.parseDir(fset, d)
			if err != nil {
				return err
			}
			perDir[i] = pkgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names, err := l.packageNames(ctx)
	if err != nil {
		return nil, err
	}

	var pkgs []parsedPackage
	for _, dirPkgs := range perDir {
		for _, p := range dirPkgs {
			pkgs = append(pkgs, p)
			if _, seen := names[p.importPath]; !seen && p.importPath == packageKey(p.importPath, p.name) {
				names[p.importPath] = p.name
			}
		}
	}

	var (
		mu    sync.Mutex
		units []layering.Unit
	)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, p := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := newUnitBuilder(p.importPath, p.name, fset, l.relFile)
			for _, f := range p.files {
				b.addFile(f, importRefs(fileImports(f, names)))
			}
			built := b.build()

			mu.Lock()
			units = append(units, built...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return l.finish(units)
}

// parseDir parses the files of one directory and groups them by package.
func (l *layout) parseDir(fset *token.FileSet, d sourceDir) ([]parsedPackage, error) {
	byKey := make(map[string]*parsedPackage)

	for _, path := range d.files {
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			if l.opts.Strict {
				return nil, l.fail("parse error", err)
			}
			l.logger.Warn("skipping file with parse error",
				slog.String("file", l.relFile(path)),
				slog.String("error", err.Error()))
			continue
		}
		if ignoredByBuild(file) {
			continue
		}

		name := file.Name.Name
		key := packageKey(d.importPath, name)
		p, ok := byKey[key]
		if !ok {
			p = &parsedPackage{importPath: key, name: name}
			byKey[key] = p
		} else if p.name != name {
			l.logger.Warn("mixed package names in directory",
				slog.String("dir", l.relFile(d.dir)),
				slog.String("package", p.name),
				slog.String("other", name))
		}
		p.files = append(p.files, file)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]parsedPackage, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out, nil
}

// fileImports maps the local names of a file's imports to their paths.
// Blank and dot imports are left out; they carry no selector.
func fileImports(file *ast.File, names map[string]string) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var local string
		switch {
		case spec.Name != nil:
			local = spec.Name.Name
			if local == "_" || local == "." {
				continue
			}
		case names[path] != "":
			local = names[path]
		default:
			local = ImportName(path)
		}
		imports[local] = path
	}
	return imports
}

// importRefs resolves selectors against a file's imports. Identifiers bound
// by a local declaration carry an object and are never taken for a package.
func importRefs(imports map[string]string) refCollector {
	return func(node ast.Node, emit func(layering.UnitRef, token.Pos)) {
		ast.Inspect(node, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			x, ok := sel.X.(*ast.Ident)
			if !ok || x.Obj != nil {
				return true
			}
			path, ok := imports[x.Name]
			if !ok {
				return true
			}
			emit(layering.UnitRef{Package: path, Name: sel.Sel.Name}, sel.Pos())
			return false
		})
	}
}
