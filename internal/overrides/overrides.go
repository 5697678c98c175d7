// Package overrides persists per-registry local state that must never be
// committed: developer path overrides for dev-mode tools, and cached manifest
// snapshots for tools whose remote source predates the manifest format.
//
// The whole state is a single JSON document (mode_local.json at the registry
// root) handled with read-merge-write semantics. There is no locking; the
// registry assumes a single operator and one invocation at a time.
package overrides

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
)

// FileName is the override document's file name at the registry root.
const FileName = "mode_local.json"

// Document is the persisted override state.
type Document struct {
	// DevPaths maps qualified tool names to local working-copy paths.
	DevPaths map[string]string `json:"dev_paths"`
	// CachedManifests maps qualified tool names to manifest snapshots.
	CachedManifests map[string]manifest.Project `json:"cached_manifests"`
}

// Store reads and writes the override document for one registry root.
type Store struct {
	Root string
	// Warn receives non-fatal load/save diagnostics. Defaults to os.Stderr.
	Warn io.Writer
}

// NewStore returns a Store for the given registry root.
func NewStore(root string) *Store {
	return &Store{Root: root, Warn: os.Stderr}
}

func (s *Store) path() string {
	return filepath.Join(s.Root, FileName)
}

func (s *Store) warn() io.Writer {
	if s.Warn != nil {
		return s.Warn
	}
	return os.Stderr
}

// Load reads the override document. A missing or corrupt file yields an
// empty document; corruption is reported as a warning, never an error, so a
// broken local file cannot take the registry down.
func (s *Store) Load() *Document {
	doc := &Document{
		DevPaths:        map[string]string{},
		CachedManifests: map[string]manifest.Project{},
	}

	data, err := os.ReadFile(s.path())
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(s.warn(), "Warning: Could not load %s: %v\n", FileName, err)
		}
		return doc
	}

	if err := json.Unmarshal(data, doc); err != nil {
		fmt.Fprintf(s.warn(), "Warning: Could not load %s: %v\n", FileName, err)
		return &Document{
			DevPaths:        map[string]string{},
			CachedManifests: map[string]manifest.Project{},
		}
	}

	// Top-level keys default to empty maps when absent.
	if doc.DevPaths == nil {
		doc.DevPaths = map[string]string{}
	}
	if doc.CachedManifests == nil {
		doc.CachedManifests = map[string]manifest.Project{}
	}
	return doc
}

// Save rewrites the whole document. Created lazily on first write.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", FileName, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path(), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return nil
}

// RememberDevPath records a resolved dev path for future toggles.
// Read-merge-write against the single document.
func (s *Store) RememberDevPath(qualifiedName, path string) error {
	doc := s.Load()
	doc.DevPaths[qualifiedName] = path
	return s.Save(doc)
}

// DevPath returns the remembered dev path for a tool, if any.
func (s *Store) DevPath(qualifiedName string) (string, bool) {
	p, ok := s.Load().DevPaths[qualifiedName]
	return p, ok
}

// CacheManifest stores a manifest snapshot so the tool stays discoverable
// after switching to a remote source that lacks a manifest file.
func (s *Store) CacheManifest(qualifiedName string, p *manifest.Project) error {
	doc := s.Load()
	doc.CachedManifests[qualifiedName] = p.Snapshot()
	return s.Save(doc)
}

// CachedManifest retrieves a cached manifest snapshot, if any.
func (s *Store) CachedManifest(qualifiedName string) (*manifest.Project, bool) {
	m, ok := s.Load().CachedManifests[qualifiedName]
	if !ok {
		return nil, false
	}
	return &m, true
}
