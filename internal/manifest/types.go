package manifest

// Runtime kind values for the manifest runtime.kind field.
const (
	KindInProcess   = "in-process"
	KindInterpreter = "interpreter"
	KindShell       = "shell"
	KindBinary      = "binary"
)

// Default values applied by Normalize when a manifest omits optional fields.
const (
	DefaultVersion  = "0.0.0"
	DefaultPlatform = "cross-platform"
)

// Project is a tool manifest plus the location fields injected by discovery.
type Project struct {
	Name         string              `json:"name" yaml:"name"`
	Namespace    string              `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Version      string              `json:"version,omitempty" yaml:"version,omitempty"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	Language     string              `json:"language,omitempty" yaml:"language,omitempty"`
	Platform     string              `json:"platform,omitempty" yaml:"platform,omitempty"`
	PassThrough  bool                `json:"pass_through,omitempty" yaml:"pass_through,omitempty"`
	Runtime      Runtime             `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Taxonomy     Taxonomy            `json:"taxonomy,omitempty" yaml:"taxonomy,omitempty"`
	Dependencies map[string][]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Source       Source              `json:"source,omitempty" yaml:"source,omitempty"`
	Lifecycle    Lifecycle           `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`

	// Derived fields, set by discovery. Never serialized; the cached-manifest
	// snapshot must stay a plain manifest document.
	Dir          string `json:"-" yaml:"-"`
	ManifestPath string `json:"-" yaml:"-"` // empty when loaded from cache
	Cached       bool   `json:"-" yaml:"-"`
}

// Runtime is the tagged invocation descriptor.
type Runtime struct {
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	EntryPoint  string `json:"entry_point,omitempty" yaml:"entry_point,omitempty"`
	ScriptPath  string `json:"script_path,omitempty" yaml:"script_path,omitempty"`
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
	Shell       string `json:"shell,omitempty" yaml:"shell,omitempty"`
}

// Taxonomy categorizes a tool for listing and filtering.
type Taxonomy struct {
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Source declares where the tool's canonical repository lives.
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Lifecycle records graduation metadata for tools promoted out of the registry.
type Lifecycle struct {
	GraduatedTo string `json:"graduated_to,omitempty" yaml:"graduated_to,omitempty"`
}

// QualifiedName returns the unique "namespace:name" key used by overrides and
// submodule lookups.
func (p *Project) QualifiedName() string {
	return p.Namespace + ":" + p.Name
}

// Snapshot returns a copy of the manifest with derived fields cleared, fit
// for persisting into the cached-manifest map.
func (p *Project) Snapshot() Project {
	snap := *p
	snap.Dir = ""
	snap.ManifestPath = ""
	snap.Cached = false
	return snap
}
