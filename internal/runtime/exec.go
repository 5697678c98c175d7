package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
)

// Fallback program names when the runtime descriptor omits them.
const (
	defaultInterpreter = "python3"
	defaultShell       = "bash"
)

// execRunner invokes an external process with the child inheriting stdio,
// propagating the child's exit code.
type execRunner struct {
	name   string   // tool name, for error messages
	argv   []string // program + fixed arguments; forwarded args appended
	script string   // script/binary path checked before invocation
}

func (r *execRunner) Invoke(ctx context.Context, args []string) (int, error) {
	if fi, err := os.Stat(r.script); err != nil || fi.IsDir() {
		return 1, fmt.Errorf("script not found for '%s': %s", r.name, r.script)
	}

	argv := append(append([]string{}, r.argv...), args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("running '%s': %w", r.name, err)
}

// newInterpreterRunner builds the subprocess-interpreter strategy: the
// declared interpreter invoked on the script path.
func newInterpreterRunner(project *manifest.Project) (Runner, error) {
	script, err := scriptPath(project)
	if err != nil {
		return nil, err
	}

	interpreter := project.Runtime.Interpreter
	if interpreter == "" {
		interpreter = defaultInterpreter
	}

	return &execRunner{
		name:   project.Name,
		argv:   []string{interpreter, script},
		script: script,
	}, nil
}

// newShellRunner builds the shell strategy with platform-specific invocation
// syntax for cmd and PowerShell.
func newShellRunner(project *manifest.Project) (Runner, error) {
	script, err := scriptPath(project)
	if err != nil {
		return nil, err
	}

	shell := project.Runtime.Shell
	if shell == "" {
		shell = defaultShell
	}

	var argv []string
	switch shell {
	case "cmd":
		argv = []string{"cmd", "/c", script}
	case "pwsh", "powershell":
		argv = []string{shell, "-File", script}
	default:
		argv = []string{shell, script}
	}

	return &execRunner{name: project.Name, argv: argv, script: script}, nil
}

// newBinaryRunner builds the direct-exec strategy.
func newBinaryRunner(project *manifest.Project) (Runner, error) {
	bin, err := scriptPath(project)
	if err != nil {
		return nil, err
	}
	return &execRunner{name: project.Name, argv: []string{bin}, script: bin}, nil
}

// scriptPath resolves the runtime script relative to the tool directory.
func scriptPath(project *manifest.Project) (string, error) {
	if project.Runtime.ScriptPath == "" {
		return "", fmt.Errorf("no script_path declared for '%s'", project.Name)
	}
	return filepath.Join(project.Dir, project.Runtime.ScriptPath), nil
}
