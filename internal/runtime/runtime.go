// Package runtime maps a project's declared runtime descriptor to an
// invocation strategy: an in-process registered command, an interpreter
// subprocess, a shell invocation, or a direct binary exec. The Resolve
// function selects the strategy; every strategy satisfies the same Runner
// contract so the dispatcher never cares which one it got.
package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
)

// Runner executes a tool with forwarded arguments and yields its exit code.
type Runner interface {
	Invoke(ctx context.Context, args []string) (int, error)
}

// CommandFunc is an in-process command. The returned exit code is reported
// as-is; commands signal failure through the code, not through panics.
type CommandFunc func(ctx context.Context, args []string) int

var (
	commandsMu sync.RWMutex
	commands   = map[string]CommandFunc{}
)

// Register adds an in-process command under a lookup key — either a
// qualified "namespace:name" or a bare entry-point symbol. Registration
// replaces the origin system's dynamic module loading with an explicit map.
func Register(key string, fn CommandFunc) {
	commandsMu.Lock()
	defer commandsMu.Unlock()
	commands[key] = fn
}

// RegisteredCommands returns the sorted lookup keys, for diagnostics.
func RegisteredCommands() []string {
	commandsMu.RLock()
	defer commandsMu.RUnlock()
	keys := make([]string, 0, len(commands))
	for k := range commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lookupCommand(keys ...string) (CommandFunc, bool) {
	commandsMu.RLock()
	defer commandsMu.RUnlock()
	for _, k := range keys {
		if k == "" {
			continue
		}
		if fn, ok := commands[k]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Resolve maps a project's runtime descriptor to an invocation strategy.
// An unrecognized kind yields an error the caller reports; it never crashes
// the process. pass_through forces the interpreter strategy even for
// in-process-capable projects.
func Resolve(project *manifest.Project) (Runner, error) {
	rt := project.Runtime
	kind := rt.Kind
	if kind == "" {
		kind = manifest.KindInProcess
	}

	switch kind {
	case manifest.KindInProcess:
		if project.PassThrough {
			return newInterpreterRunner(project)
		}
		if fn, ok := lookupCommand(project.QualifiedName(), rt.EntryPoint); ok {
			return &inProcessRunner{name: project.Name, fn: fn}, nil
		}
		// Not registered in this binary; the declared script is still
		// invocable through an interpreter.
		if rt.ScriptPath != "" {
			return newInterpreterRunner(project)
		}
		return nil, fmt.Errorf("no in-process command registered for '%s' and no script_path declared", project.QualifiedName())

	case manifest.KindInterpreter:
		return newInterpreterRunner(project)

	case manifest.KindShell:
		return newShellRunner(project)

	case manifest.KindBinary:
		return newBinaryRunner(project)

	default:
		return nil, fmt.Errorf("unknown runtime kind %q for %s", kind, project.Name)
	}
}

// inProcessRunner invokes a registered command directly.
type inProcessRunner struct {
	name string
	fn   CommandFunc
}

func (r *inProcessRunner) Invoke(ctx context.Context, args []string) (int, error) {
	return r.fn(ctx, args), nil
}
