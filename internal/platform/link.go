package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// LinkMode identifies which link strategy actually succeeded, so callers can
// report what happened rather than guessing.
type LinkMode string

const (
	// LinkSymlink is a true symbolic link.
	LinkSymlink LinkMode = "symlink"
	// LinkJunction is a Windows NTFS junction, usable without elevation.
	LinkJunction LinkMode = "junction"
)

// subprocessTimeout bounds the mklink/rmdir child processes on Windows.
const subprocessTimeout = 10 * time.Second

// CreateLink creates a directory link at target pointing to source.
// It tries a true symlink first; on Windows, where symlink creation may
// require elevated privilege, it falls back to a junction. The returned
// LinkMode reports which strategy succeeded.
func CreateLink(source, target string) (LinkMode, error) {
	symlinkErr := os.Symlink(source, target)
	if symlinkErr == nil {
		return LinkSymlink, nil
	}

	if runtime.GOOS != "windows" {
		return "", fmt.Errorf("creating symlink %s -> %s: %w", target, source, symlinkErr)
	}

	// Junction fallback: no admin required.
	if err := runCmd("mklink", "/J", target, source); err != nil {
		return "", fmt.Errorf("creating link %s -> %s: symlink failed (%v); junction failed: %w",
			target, source, symlinkErr, err)
	}
	return LinkJunction, nil
}

// IsLinked reports whether path is a symlink or a junction-style reparse
// point. Plain directories and missing paths return false.
func IsLinked(path string) bool {
	fi, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return true
	}
	// Windows mount points (junctions) surface as irregular files on older
	// Go releases.
	return runtime.GOOS == "windows" && fi.Mode()&os.ModeIrregular != 0
}

// LinkTarget returns the target of a link and true, or "" and false when the
// path is not a link or its target cannot be read.
func LinkTarget(path string) (string, bool) {
	if !IsLinked(path) {
		return "", false
	}
	target, err := os.Readlink(path)
	if err != nil {
		return "", false
	}
	return target, true
}

// RemoveLink removes the link entry itself, never the directory it points to.
// It refuses (returns false) when path is not a detected link.
func RemoveLink(path string) bool {
	if !IsLinked(path) {
		return false
	}

	if runtime.GOOS == "windows" {
		// rmdir removes the junction point without following it.
		return runCmd("rmdir", path) == nil
	}

	return os.Remove(path) == nil
}

// runCmd executes a cmd.exe builtin with a bounded timeout.
func runCmd(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), subprocessTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "cmd", append([]string{"/c"}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("cmd /c %s: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
