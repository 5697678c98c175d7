// Package registry discovers projects in the two-level projects/<namespace>/<tool>
// tree. It loads on-disk manifests, falls back to cached manifest snapshots from
// the local override store, applies kit-membership filtering, and locates tools
// that discovery missed so mode commands can still operate on them.
package registry
