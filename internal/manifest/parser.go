package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Manifest file names tried in order inside a tool directory. JSON is the
// canonical spelling; YAML is accepted for hand-written manifests.
var manifestNames = []string{".dazzlecmd.json", ".dazzlecmd.yaml"}

// Find returns the manifest path inside dir, or "" when none exists.
func Find(dir string) string {
	for _, name := range manifestNames {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads and parses a manifest file. The result has no defaults applied;
// callers normalize via Normalize.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var p Project
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(data, &p)
	} else {
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	return &p, nil
}

// Normalize validates the single required field and applies defaults, then
// injects the discovery-derived location fields. The manifestPath is empty
// for manifests satisfied from the override cache.
func Normalize(p *Project, namespace, dir, manifestPath string) error {
	if p.Name == "" {
		return fmt.Errorf("manifest missing required 'name' field")
	}

	p.Namespace = namespace
	p.Dir = dir
	p.ManifestPath = manifestPath
	p.Cached = manifestPath == ""

	if p.Version == "" {
		p.Version = DefaultVersion
	}
	if p.Platform == "" {
		p.Platform = DefaultPlatform
	}
	if p.Runtime.Kind == "" {
		p.Runtime.Kind = KindInProcess
	}

	return nil
}
