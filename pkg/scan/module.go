package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ReadModulePath returns the module path declared in dir/go.mod.
// found is false when dir has no go.mod.
func ReadModulePath(dir string) (modulePath string, found bool, err error) {
	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", gomod, err)
	}

	modulePath = modfile.ModulePath(data)
	if modulePath == "" {
		return "", true, fmt.Errorf("%s: missing module directive", gomod)
	}
	return modulePath, true, nil
}

// FindModule searches dir and its parents for a go.mod and returns the
// directory holding it along with the module path.
func FindModule(dir string) (moduleDir, modulePath string, found bool, err error) {
	current := dir
	for {
		modulePath, found, err = ReadModulePath(current)
		if err != nil || found {
			return current, modulePath, found, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", "", false, nil
		}
		current = parent
	}
}

// ImportName guesses the package name an import path declares when the
// declaration itself is not available: "gopkg.in/yaml.v3" is yaml,
// "github.com/go-viper/mapstructure/v2" is mapstructure and
// "github.com/mattn/go-sqlite3" is sqlite3.
func ImportName(importPath string) string {
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]

	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	name = strings.TrimSuffix(name, ".go")
	return strings.ReplaceAll(name, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
