// Package mode implements the dual-mode registry core: classifying each
// tool's storage state from ground truth (filesystem plus submodule mapping)
// and driving safe transitions between dev mode (a directory link into a
// local working copy) and publish mode (a git submodule checkout).
//
// State is always recomputed, never cached. Transitions are idempotent when
// the tool is already in the requested mode, refuse to guess when the
// current state is ambiguous about operator intent, and support a dry-run
// that narrates every mutation without performing any.
package mode
