// Package workspace resolves the registry root once and carries it as an
// immutable value through every component call.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dazzle-labs/dazzlecmd/internal/branding"
	"github.com/dazzle-labs/dazzlecmd/internal/config"
)

// Directory names that make up a registry root.
const (
	ProjectsDirName = "projects"
	KitsDirName     = "kits"

	// maxWalkDepth bounds the upward search from the working directory.
	maxWalkDepth = 8
)

// Workspace is the resolved registry root. Built once at startup, never
// mutated afterwards.
type Workspace struct {
	Root        string
	ProjectsDir string
	KitsDir     string
}

// At builds a Workspace rooted at the given directory without checking
// whether it is a valid registry. Used by tests and by callers that already
// validated the root.
func At(root string) Workspace {
	return Workspace{
		Root:        root,
		ProjectsDir: filepath.Join(root, ProjectsDirName),
		KitsDir:     filepath.Join(root, KitsDirName),
	}
}

// Resolve locates the registry root, checking (in order):
// 1. DZ_ROOT env var
// 2. config key "root"
// 3. upward walk from the working directory looking for projects/ and kits/
func Resolve() (Workspace, error) {
	if v := os.Getenv(branding.EnvVar("ROOT")); v != "" {
		return validated(v)
	}

	if v := config.Get(config.KeyRoot); v != "" {
		return validated(v)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, fmt.Errorf("resolving working directory: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		if isRegistryRoot(dir) {
			return At(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return Workspace{}, fmt.Errorf(
		"no registry root found from %s: expected a directory containing %s/ and %s/ (set %s or run inside a registry checkout)",
		cwd, ProjectsDirName, KitsDirName, branding.EnvVar("ROOT"))
}

// validated turns an explicitly configured root into a Workspace, rejecting
// directories that are not registry roots.
func validated(root string) (Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolving registry root %s: %w", root, err)
	}
	if !isRegistryRoot(abs) {
		return Workspace{}, fmt.Errorf(
			"configured registry root %s has no %s/ and %s/ directories", abs, ProjectsDirName, KitsDirName)
	}
	return At(abs), nil
}

// isRegistryRoot reports whether dir contains both projects/ and kits/.
func isRegistryRoot(dir string) bool {
	for _, sub := range []string{ProjectsDirName, KitsDirName} {
		fi, err := os.Stat(filepath.Join(dir, sub))
		if err != nil || !fi.IsDir() {
			return false
		}
	}
	return true
}
