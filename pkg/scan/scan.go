// Package scan builds the set of units of a Go module: every package-level
// declaration under a root namespace together with its direct references to
// declarations in other packages.
//
// Two loaders are available. ParserLoader parses source files with go/parser
// and resolves references through the file's imports; it needs nothing but the
// source tree. PackagesLoader uses golang.org/x/tools/go/packages with full
// type information and resolves every identifier precisely, at the cost of a
// working build.
package scan

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/leapstack-labs/layerlint/pkg/layering"
)

// Loader names accepted by LoaderFor.
const (
	LoaderParser   = "parser"
	LoaderPackages = "packages"
)

// Options controls a scan.
type Options struct {
	// Dir is the directory to scan. Defaults to ".".
	Dir string

	// Root is the namespace to scan. Only packages whose import path lies
	// under Root are kept. Defaults to the module path of the enclosing
	// go.mod. Without a go.mod, Root is also used as the import path of Dir.
	Root string

	// IncludeTests keeps _test.go files and external test packages.
	IncludeTests bool

	// Exclude lists package patterns to skip.
	Exclude []string

	// Workers bounds parallel parsing. Defaults to GOMAXPROCS.
	Workers int

	// Strict turns per-file parse errors into a ScanError.
	Strict bool

	Logger *slog.Logger
}

// Loader turns a source tree into units.
type Loader interface {
	Load(ctx context.Context, opts Options) ([]layering.Unit, error)
}

// LoaderFor returns the loader registered under name. An empty name selects
// the parser loader.
func LoaderFor(name string) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LoaderParser:
		return ParserLoader{}, nil
	case LoaderPackages:
		return PackagesLoader{}, nil
	default:
		return nil, fmt.Errorf("unknown loader %q (want %s or %s)", name, LoaderParser, LoaderPackages)
	}
}

// Scan loads units with the parser loader.
func Scan(ctx context.Context, opts Options) ([]layering.Unit, error) {
	return ParserLoader{}.Load(ctx, opts)
}

// layout is a validated scan request.
type layout struct {
	opts       Options
	dir        string // absolute
	moduleDir  string
	modulePath string
	root       string
	exclude    []layering.Pattern
	logger     *slog.Logger
	workers    int
}

func prepare(opts Options) (*layout, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}

	l := &layout{
		opts:    opts,
		root:    strings.TrimSpace(opts.Root),
		logger:  opts.Logger,
		workers: opts.Workers,
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.workers <= 0 {
		l.workers = runtime.GOMAXPROCS(0)
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, l.fail("invalid directory", err)
	}
	l.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, l.fail("directory not found", nil)
		}
		return nil, l.fail("directory unreadable", err)
	}
	if !info.IsDir() {
		return nil, l.fail("not a directory", nil)
	}

	moduleDir, modulePath, found, err := FindModule(dir)
	if err != nil {
		return nil, l.fail("reading go.mod", err)
	}
	if found {
		l.moduleDir = moduleDir
		l.modulePath = modulePath
	} else {
		if l.root == "" {
			return nil, l.fail("no go.mod found and no root namespace given", nil)
		}
		l.moduleDir = dir
		l.modulePath = l.root
	}
	if l.root == "" {
		l.root = l.modulePath
	}

	for _, raw := range opts.Exclude {
		p, err := layering.ParsePattern(raw)
		if err != nil {
			return nil, fmt.Errorf("exclude: %w", err)
		}
		l.exclude = append(l.exclude, p)
	}

	l.logger.Debug("scan prepared",
		slog.String("dir", l.dir),
		slog.String("module", l.modulePath),
		slog.String("root", l.root),
		slog.Int("workers", l.workers))

	return l, nil
}

func (l *layout) fail(reason string, err error) *ScanError {
	dir := l.dir
	if dir == "" {
		dir = l.opts.Dir
	}
	return &ScanError{Dir: dir, Root: l.root, Reason: reason, Err: err}
}

// importPath derives the import path of a directory inside the module.
func (l *layout) importPath(dir string) string {
	rel, err := filepath.Rel(l.moduleDir, dir)
	if err != nil || rel == "." {
		return l.modulePath
	}
	return l.modulePath + "/" + filepath.ToSlash(rel)
}

// keep reports whether a package belongs to the scan.
func (l *layout) keep(pkgPath string) bool {
	if !layering.HasNamespacePrefix(pkgPath, l.root) {
		return false
	}
	for _, p := range l.exclude {
		if p.Match(pkgPath) {
			return false
		}
	}
	return true
}

// relFile returns a slash-separated path relative to the scanned directory.
func (l *layout) relFile(path string) string {
	if rel, err := filepath.Rel(l.dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// sourceDir is a directory holding Go files.
type sourceDir struct {
	dir        string
	importPath string
	files      []string
}

// collectDirs walks the tree and returns the directories with Go files whose
// import path is kept, ordered by directory.
func (l *layout) collectDirs(ctx context.Context) ([]sourceDir, error) {
	byDir := make(map[string][]string)

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.dir {
				return err
			}
			l.logger.Warn("skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path == l.dir {
				return nil
			}
			if SkipDir(d.Name()) || hasGoMod(path) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, ".go") {
			return nil
		}
		if strings.HasSuffix(name, "_test.go") && !l.opts.IncludeTests {
			return nil
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], path)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, l.fail("directory unreadable", err)
	}

	dirs := make([]sourceDir, 0, len(byDir))
	for dir, files := range byDir {
		importPath := l.importPath(dir)
		if !l.keep(importPath) {
			continue
		}
		sort.Strings(files)
		dirs = append(dirs, sourceDir{dir: dir, importPath: importPath, files: files})
	}
	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].dir < dirs[j].dir
	})
	return dirs, nil
}

// packageNames maps the import path of every package in the module to its
// declared name. It reads package clauses only and ignores Root, Exclude and
// Dir, so selectors into packages outside the scan still resolve.
func (l *layout) packageNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	fset := token.NewFileSet()

	err := filepath.WalkDir(l.moduleDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.moduleDir {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != l.moduleDir && (SkipDir(d.Name()) || hasGoMod(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		importPath := l.importPath(filepath.Dir(path))
		if _, seen := names[importPath]; seen {
			return nil
		}
		file, err := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly|parser.ParseComments)
		if err != nil || ignoredByBuild(file) {
			return nil
		}
		names[importPath] = file.Name.Name
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, l.fail("directory unreadable", err)
	}
	return names, nil
}

// SkipDir reports whether a directory is never scanned: vendor, testdata and
// names starting with "." or "_".
func SkipDir(name string) bool {
	switch name {
	case "vendor", "testdata":
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// hasGoMod reports whether dir is the root of a nested module.
func hasGoMod(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "go.mod"))
	return err == nil
}

// finish sorts units and rejects an empty result.
func (l *layout) finish(units []layering.Unit) ([]layering.Unit, error) {
	if len(units) == 0 {
		return nil, l.fail("no units under root namespace", nil)
	}
	layering.SortUnits(units)
	l.logger.Debug("scan complete", slog.Int("units", len(units)))
	return units, nil
}
