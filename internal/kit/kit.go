// Package kit loads kit definitions — named bundles of tools declared in
// kits/*.kit.json (or .kit.yaml) files at the registry root.
package kit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Kit is a declaratively-defined bundle of tools.
type Kit struct {
	Name         string   `json:"name" yaml:"name"`
	Version      string   `json:"version,omitempty" yaml:"version,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	AlwaysActive bool     `json:"always_active,omitempty" yaml:"always_active,omitempty"`
	Tools        []string `json:"tools,omitempty" yaml:"tools,omitempty"` // qualified "namespace:name" refs

	// SourcePath is the file the kit was loaded from. Not serialized.
	SourcePath string `json:"-" yaml:"-"`
}

// Kit file suffixes tried during discovery.
var kitSuffixes = []string{".kit.json", ".kit.yaml"}

// Discover reads all kit files from kitsDir, sorted by file name for
// deterministic ordering. A malformed kit file is reported as a warning on
// warnWriter and skipped; it never aborts discovery.
func Discover(kitsDir string, warnWriter io.Writer) []Kit {
	var kits []Kit

	entries, err := os.ReadDir(kitsDir)
	if err != nil {
		return kits
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if kitSuffix(e.Name()) != "" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(kitsDir, name)
		k, err := loadKit(path)
		if err != nil {
			fmt.Fprintf(warnWriter, "Warning: Could not load kit %s: %v\n", name, err)
			continue
		}
		kits = append(kits, *k)
	}

	return kits
}

// Active returns the kits that should participate in discovery filtering.
// Current policy: every discovered kit is active. Kept as the seam for
// user-selectable kit subsets.
func Active(kits []Kit) []Kit {
	out := make([]Kit, len(kits))
	copy(out, kits)
	return out
}

// ToolSet collects the qualified tool names referenced by any of the given
// kits.
func ToolSet(kits []Kit) map[string]bool {
	set := make(map[string]bool)
	for _, k := range kits {
		for _, ref := range k.Tools {
			set[ref] = true
		}
	}
	return set
}

// SplitRef splits a qualified "namespace:name" reference. A bare name yields
// an empty namespace.
func SplitRef(ref string) (namespace, name string) {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

func loadKit(path string) (*Kit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var k Kit
	if strings.HasSuffix(path, ".yaml") {
		err = yaml.Unmarshal(data, &k)
	} else {
		err = json.Unmarshal(data, &k)
	}
	if err != nil {
		return nil, err
	}

	if k.Name == "" {
		return nil, fmt.Errorf("kit file missing required 'name' field")
	}

	k.SourcePath = path
	return &k, nil
}

func kitSuffix(name string) string {
	for _, s := range kitSuffixes {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}
