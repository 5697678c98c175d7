package mode

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Timeouts for the git submodule subprocesses. A timeout fails the
// transition; it is never retried automatically.
const (
	submoduleAddTimeout    = 120 * time.Second
	submoduleUpdateTimeout = 60 * time.Second
)

// GitRunner invokes git with the repository root as working tree and returns
// combined output. Injectable so transitions are testable without a git
// binary.
type GitRunner func(ctx context.Context, root string, args ...string) (string, error)

// execGit is the default GitRunner backed by the real git binary.
func execGit(ctx context.Context, root string, args ...string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git is required but not found in PATH")
	}

	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", root}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}
