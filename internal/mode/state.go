package mode

import (
	"os"

	"github.com/dazzle-labs/dazzlecmd/internal/gitmodules"
	"github.com/dazzle-labs/dazzlecmd/internal/platform"
)

// State classifies a tool directory's storage strategy.
type State string

const (
	// StateSymlink is dev mode: a link to a local repo, with a submodule
	// registered to restore to.
	StateSymlink State = "symlink"
	// StateSubmodule is publish mode: a git submodule checkout.
	StateSubmodule State = "submodule"
	// StateEmbedded is a plain directory with no submodule registered.
	StateEmbedded State = "embedded"
	// StateMissing means the path does not exist on disk.
	StateMissing State = "missing"
	// StateLocalOnly is a link with no submodule registered.
	StateLocalOnly State = "local-only"
)

// Label returns the operator-facing description of a state.
func (s State) Label() string {
	switch s {
	case StateSymlink:
		return "DEV (symlink)"
	case StateSubmodule:
		return "PUBLISH (submodule)"
	case StateEmbedded:
		return "EMBEDDED"
	case StateMissing:
		return "MISSING"
	case StateLocalOnly:
		return "LOCAL-ONLY (symlink, no submodule)"
	default:
		return string(s)
	}
}

// Target is a transition direction.
type Target string

const (
	TargetDev     Target = "dev"
	TargetPublish Target = "publish"
)

// Label returns the operator-facing description of a target mode.
func (t Target) Label() string {
	if t == TargetDev {
		return "DEV (symlink)"
	}
	return "PUBLISH (submodule)"
}

// Detect classifies a tool directory. It is a pure function of the
// directory's existence, link-ness, and submodule-mapping membership, and is
// recomputed on every query so it always reflects ground truth.
func Detect(toolDir string, mapping gitmodules.Mapping) State {
	relKey := gitmodules.SubmodulePath(toolDir)
	_, hasSubmodule := mapping[relKey]

	// Lstat so a dangling link still counts as present.
	if _, err := os.Lstat(toolDir); err != nil {
		return StateMissing
	}

	if platform.IsLinked(toolDir) {
		if hasSubmodule {
			return StateSymlink
		}
		return StateLocalOnly
	}

	fi, err := os.Stat(toolDir)
	if err != nil || !fi.IsDir() {
		return StateMissing
	}
	if hasSubmodule {
		return StateSubmodule
	}
	return StateEmbedded
}

// DetermineTarget returns the automatic toggle direction for a state.
// Embedded, missing, and local-only tools have no automatic target: those
// states are ambiguous about operator intent, and a wrong guess is
// destructive, so the operator must force a direction explicitly.
func DetermineTarget(s State) (Target, bool) {
	switch s {
	case StateSymlink:
		return TargetPublish, true
	case StateSubmodule:
		return TargetDev, true
	default:
		return "", false
	}
}
