package registry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dazzle-labs/dazzlecmd/internal/kit"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/dazzle-labs/dazzlecmd/internal/overrides"
	"github.com/dazzle-labs/dazzlecmd/internal/workspace"
)

// DiscoverProjects walks projects/<namespace>/<tool> in sorted order and
// returns the normalized project list.
//
// A tool directory is recognized when it carries an on-disk manifest, or when
// the override store holds a cached manifest for its qualified name;
// otherwise it is silently skipped. When activeKits is non-nil, projects not
// referenced by any active kit are dropped; nil means no filtering.
// Per-project failures are reported on warnWriter and never abort the scan.
func DiscoverProjects(ws workspace.Workspace, activeKits []kit.Kit, store *overrides.Store, warnWriter io.Writer) []*manifest.Project {
	var projects []*manifest.Project

	var kitTools map[string]bool
	if activeKits != nil {
		kitTools = kit.ToolSet(activeKits)
	}

	for _, namespace := range sortedSubdirs(ws.ProjectsDir) {
		nsDir := filepath.Join(ws.ProjectsDir, namespace)

		for _, toolName := range sortedSubdirs(nsDir) {
			toolDir := filepath.Join(nsDir, toolName)

			project, err := loadProject(store, namespace, toolName, toolDir)
			if err != nil {
				fmt.Fprintf(warnWriter, "Warning: Could not load project %s/%s: %v\n", namespace, toolName, err)
				continue
			}
			if project == nil {
				continue // not a recognized project yet
			}

			if kitTools != nil && !kitTools[project.QualifiedName()] {
				continue
			}

			projects = append(projects, project)
		}
	}

	return projects
}

// loadProject loads one tool directory: on-disk manifest first, cached
// snapshot second, nil when neither exists.
func loadProject(store *overrides.Store, namespace, toolName, toolDir string) (*manifest.Project, error) {
	if path := manifest.Find(toolDir); path != "" {
		p, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		if err := manifest.Normalize(p, namespace, toolDir, path); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return p, nil
	}

	cached, ok := store.CachedManifest(namespace + ":" + toolName)
	if !ok {
		return nil, nil
	}
	if err := manifest.Normalize(cached, namespace, toolDir, ""); err != nil {
		return nil, err
	}
	return cached, nil
}

// MergeUndiscovered appends minimal entries for tool directories that
// discovery skipped, so mode status can report every directory under
// projects/ regardless of manifest availability.
func MergeUndiscovered(ws workspace.Workspace, store *overrides.Store, projects []*manifest.Project) []*manifest.Project {
	merged := make([]*manifest.Project, len(projects))
	copy(merged, projects)

	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		known[p.QualifiedName()] = true
	}

	for _, namespace := range sortedSubdirs(ws.ProjectsDir) {
		nsDir := filepath.Join(ws.ProjectsDir, namespace)
		for _, toolName := range sortedSubdirs(nsDir) {
			qualified := namespace + ":" + toolName
			if known[qualified] {
				continue
			}
			known[qualified] = true

			toolDir := filepath.Join(nsDir, toolName)
			if cached, ok := store.CachedManifest(qualified); ok {
				if err := manifest.Normalize(cached, namespace, toolDir, ""); err == nil {
					merged = append(merged, cached)
					continue
				}
			}
			merged = append(merged, &manifest.Project{
				Name:        toolName,
				Namespace:   namespace,
				Description: "(no manifest)",
				Dir:         toolDir,
			})
		}
	}

	return merged
}

// FindTool locates a tool by bare name for mode commands, even when
// discovery missed it: first a directory scan across namespaces, then a
// cached-manifest match (the directory may have been removed entirely).
// Returns nil when the tool is unknown.
func FindTool(ws workspace.Workspace, store *overrides.Store, toolName string) *manifest.Project {
	for _, namespace := range sortedSubdirs(ws.ProjectsDir) {
		toolDir := filepath.Join(ws.ProjectsDir, namespace, toolName)
		if _, err := os.Lstat(toolDir); err != nil {
			continue
		}

		qualified := namespace + ":" + toolName
		if cached, ok := store.CachedManifest(qualified); ok {
			if err := manifest.Normalize(cached, namespace, toolDir, ""); err == nil {
				return cached
			}
		}
		return &manifest.Project{
			Name:      toolName,
			Namespace: namespace,
			Dir:       toolDir,
		}
	}

	// The tool directory may be gone (state "missing"); a cached manifest
	// still identifies it.
	doc := store.Load()
	names := make([]string, 0, len(doc.CachedManifests))
	for qn := range doc.CachedManifests {
		names = append(names, qn)
	}
	sort.Strings(names)

	for _, qn := range names {
		ns, name := splitQualified(qn)
		if name != toolName {
			continue
		}
		cached := doc.CachedManifests[qn]
		toolDir := filepath.Join(ws.ProjectsDir, ns, name)
		if err := manifest.Normalize(&cached, ns, toolDir, ""); err != nil {
			continue
		}
		return &cached
	}

	return nil
}

// FindProject returns the discovered project with the given bare name, or
// nil. Namespaces are searched in discovery order, so the first match wins.
func FindProject(projects []*manifest.Project, name string) *manifest.Project {
	for _, p := range projects {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// sortedSubdirs lists non-hidden subdirectories of dir in sorted order.
// Symlinked directories count: a dev-mode tool is a symlink.
func sortedSubdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			names = append(names, name)
			continue
		}
		// os.ReadDir does not follow symlinks; stat to include linked dirs.
		if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && fi.IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func splitQualified(qualified string) (namespace, name string) {
	if i := strings.IndexByte(qualified, ':'); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}
