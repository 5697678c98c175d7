// Package gitmodules derives the submodule mapping from a registry's
// .gitmodules file. The mapping is recomputed on every query — it can change
// between invocations — and only entries under the two-level
// projects/<namespace>/<name> layout are recognized.
package gitmodules

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Entry is one recognized submodule declaration.
type Entry struct {
	Path      string // relative path, e.g. "projects/core/listall"
	URL       string
	Namespace string
	ToolName  string
}

// Mapping indexes recognized submodule entries by relative path.
type Mapping map[string]Entry

// QualifiedName returns the "namespace:name" key for the entry.
func (e Entry) QualifiedName() string {
	return e.Namespace + ":" + e.ToolName
}

// IsLocalURL reports whether the entry's URL is a local filesystem path
// rather than a remote locator.
func (e Entry) IsLocalURL() bool {
	for _, prefix := range []string{"http://", "https://", "git@", "ssh://"} {
		if strings.HasPrefix(e.URL, prefix) {
			return false
		}
	}
	return e.URL != ""
}

// LocalPath normalizes the entry's URL into a local filesystem path.
// MSYS-style "/c/path" spellings become "C:\path" on Windows.
func (e Entry) LocalPath() string {
	p := e.URL
	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == '/' {
		drive := strings.ToUpper(p[1:2])
		return drive + ":" + strings.ReplaceAll(p[2:], "/", "\\")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// Parse reads <root>/.gitmodules and returns the recognized mapping. A
// missing or unreadable file yields an empty mapping; submodules outside
// projects/ are ignored entirely.
func Parse(root string) Mapping {
	mapping := Mapping{}

	path := filepath.Join(root, ".gitmodules")
	if _, err := os.Stat(path); err != nil {
		return mapping
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return mapping
	}

	for _, section := range cfg.Sections() {
		if !strings.HasPrefix(section.Name(), "submodule") {
			continue
		}

		relPath := section.Key("path").String()
		url := section.Key("url").String()

		entry, ok := entryForPath(relPath, url)
		if !ok {
			continue
		}
		mapping[relPath] = entry
	}

	return mapping
}

// entryForPath validates a submodule path against projects/<ns>/<name>.
func entryForPath(relPath, url string) (Entry, bool) {
	if !strings.HasPrefix(relPath, "projects/") {
		return Entry{}, false
	}
	parts := strings.Split(relPath, "/")
	if len(parts) != 3 {
		return Entry{}, false
	}
	return Entry{
		Path:      relPath,
		URL:       url,
		Namespace: parts[1],
		ToolName:  parts[2],
	}, true
}

// SubmodulePath converts an absolute tool directory into the relative
// submodule key, e.g. /repo/projects/core/listall -> projects/core/listall.
// Returns "" when the directory is not under a projects/ tree.
func SubmodulePath(toolDir string) string {
	norm := strings.ReplaceAll(toolDir, "\\", "/")
	idx := strings.LastIndex(norm, "projects/")
	if idx < 0 {
		return ""
	}
	return norm[idx:]
}

// ByQualifiedName finds the entry for a qualified "namespace:name", if any.
func (m Mapping) ByQualifiedName(qualified string) (Entry, bool) {
	for _, e := range m {
		if e.QualifiedName() == qualified {
			return e, true
		}
	}
	return Entry{}, false
}
