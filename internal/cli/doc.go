// Package cli wires the dz command surface: the meta-commands (list, info,
// kit, mode, config, version) and one dynamic command per discovered tool,
// which forwards its arguments verbatim to the tool's resolved entry point.
package cli
