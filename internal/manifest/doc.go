// Package manifest defines the per-tool manifest document, its parsing and
// defaulting rules, and JSON Schema validation. A manifest lives at the top
// of a tool directory as .dazzlecmd.json (or .dazzlecmd.yaml) and declares
// how the tool is identified, categorized, and invoked.
package manifest
