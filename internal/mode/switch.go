package mode

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dazzle-labs/dazzlecmd/internal/gitmodules"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/dazzle-labs/dazzlecmd/internal/overrides"
	"github.com/dazzle-labs/dazzlecmd/internal/platform"
	"github.com/dazzle-labs/dazzlecmd/internal/workspace"
)

// Switcher drives mode transitions for tools in one registry.
type Switcher struct {
	Workspace workspace.Workspace
	Store     *overrides.Store
	// Out receives progress and dry-run narration. Defaults to os.Stdout.
	Out io.Writer
	// DryRun replaces every mutating step with a description of what would
	// happen.
	DryRun bool
	// Git runs the version-control subprocess. Defaults to the real binary.
	Git GitRunner
}

// SwitchOptions carries the operator's explicit overrides for one switch.
type SwitchOptions struct {
	// Path is the explicit dev source path (--path). Wins over the
	// remembered dev path and is persisted only when the switch succeeds.
	Path string
	// URL is the explicit remote locator for first-time submodule
	// registration (--url).
	URL string
}

// AmbiguousStateError reports a toggle attempted from a state with no
// automatic target, with guidance on which explicit flag resolves it.
type AmbiguousStateError struct {
	Tool  string
	State State
}

func (e *AmbiguousStateError) Error() string {
	switch e.State {
	case StateEmbedded:
		return fmt.Sprintf("'%s' is embedded (no submodule registered): this tool lives directly in the repo, no mode toggle available", e.Tool)
	case StateLocalOnly:
		return fmt.Sprintf("'%s' is a local-only symlink (no submodule registered): register a submodule first with 'git submodule add <url> projects/<ns>/%s'", e.Tool, e.Tool)
	case StateMissing:
		return fmt.Sprintf("'%s' is missing from disk: use --dev or --publish to specify which mode to restore", e.Tool)
	default:
		return fmt.Sprintf("cannot toggle '%s' (state: %s)", e.Tool, e.State)
	}
}

func (s *Switcher) out() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Switcher) git() GitRunner {
	if s.Git != nil {
		return s.Git
	}
	return execGit
}

// Switch toggles a tool between dev and publish mode. With force == "", the
// direction comes from DetermineTarget; states without an automatic target
// yield an AmbiguousStateError.
func (s *Switcher) Switch(project *manifest.Project, force Target, opts SwitchOptions) error {
	mapping := gitmodules.Parse(s.Workspace.Root)
	state := Detect(project.Dir, mapping)

	if s.DryRun {
		fmt.Fprintf(s.out(), "[DRY-RUN] No changes will be made\n\n")
	}

	target := force
	if target == "" {
		var ok bool
		target, ok = DetermineTarget(state)
		if !ok {
			return &AmbiguousStateError{Tool: project.Name, State: state}
		}
	}

	fmt.Fprintf(s.out(), "Tool:    %s\n", project.QualifiedName())
	fmt.Fprintf(s.out(), "Current: %s\n", state.Label())
	fmt.Fprintf(s.out(), "Target:  %s\n\n", target.Label())

	if target == TargetDev {
		return s.switchToDev(project, mapping, opts.Path)
	}
	return s.switchToPublish(project, mapping, opts.URL)
}

// switchToDev moves a tool from publish mode (submodule checkout) to dev
// mode (link into a local working copy).
func (s *Switcher) switchToDev(project *manifest.Project, mapping gitmodules.Mapping, explicitPath string) error {
	toolDir := project.Dir
	qualified := project.QualifiedName()

	state := Detect(toolDir, mapping)
	if state == StateSymlink || state == StateLocalOnly {
		fmt.Fprintf(s.out(), "Already in dev mode (symlink).\n")
		if target, ok := platform.LinkTarget(toolDir); ok {
			fmt.Fprintf(s.out(), "  -> %s\n", target)
		}
		return nil
	}

	devPath, err := s.resolveDevPath(qualified, mapping, explicitPath)
	if err != nil {
		return err
	}

	if s.DryRun {
		if _, err := os.Lstat(toolDir); err == nil {
			fmt.Fprintf(s.out(), "  Would remove: %s\n", toolDir)
		}
		fmt.Fprintf(s.out(), "  Would create symlink: %s -> %s\n", toolDir, devPath)
		fmt.Fprintf(s.out(), "  Would save dev path to %s: %s -> %s\n", overrides.FileName, qualified, devPath)
		return nil
	}

	// Remove the existing entry: unlink a link, delete a submodule working
	// tree. The submodule registration itself is never touched.
	if _, err := os.Lstat(toolDir); err == nil {
		if platform.IsLinked(toolDir) {
			if !platform.RemoveLink(toolDir) {
				return fmt.Errorf("could not remove link at %s", toolDir)
			}
		} else if err := os.RemoveAll(toolDir); err != nil {
			return fmt.Errorf("removing %s: %w", toolDir, err)
		}
	}

	linkMode, err := platform.CreateLink(devPath, toolDir)
	if err != nil {
		return fmt.Errorf("could not create link to %s: %w", devPath, err)
	}

	// Remember the dev path for future toggles — only after the link
	// actually exists.
	if err := s.Store.RememberDevPath(qualified, devPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	fmt.Fprintf(s.out(), "Switched to DEV mode (%s)\n", linkMode)
	fmt.Fprintf(s.out(), "  %s -> %s\n", toolDir, devPath)
	return nil
}

// switchToPublish moves a tool from dev mode (link) to publish mode
// (submodule checkout), registering the submodule first when needed.
func (s *Switcher) switchToPublish(project *manifest.Project, mapping gitmodules.Mapping, explicitURL string) error {
	toolDir := project.Dir

	state := Detect(toolDir, mapping)
	if state == StateSubmodule {
		fmt.Fprintf(s.out(), "Already in publish mode (submodule).\n")
		return nil
	}

	relKey := gitmodules.SubmodulePath(toolDir)
	if relKey == "" {
		relKey = "projects/" + project.Namespace + "/" + project.Name
	}
	_, hasSubmodule := mapping[relKey]

	if !hasSubmodule {
		return s.registerSubmodule(project, relKey, explicitURL)
	}
	return s.restoreSubmodule(project, mapping[relKey], relKey)
}

// registerSubmodule handles first-time registration: resolve a remote
// locator, remove the local entry, then git submodule add.
func (s *Switcher) registerSubmodule(project *manifest.Project, relKey, explicitURL string) error {
	toolDir := project.Dir

	// Resolve the remote before any destructive step so an unknown URL
	// leaves the filesystem untouched.
	remoteURL := resolveRemoteURL(project, explicitURL)
	if remoteURL == "" {
		return fmt.Errorf("no remote URL known for '%s': provide one with --url, or declare source.url in the manifest", project.Name)
	}

	if s.DryRun {
		s.narrateManifestCache(project)
		if platform.IsLinked(toolDir) {
			fmt.Fprintf(s.out(), "  Would remove symlink: %s\n", toolDir)
		}
		fmt.Fprintf(s.out(), "  Would run: git submodule add %s %s\n", remoteURL, relKey)
		fmt.Fprintf(s.out(), "  Note: .gitmodules will be updated (uncommitted)\n")
		return nil
	}

	// Snapshot the manifest before anything destructive: the remote source
	// may not carry a manifest file yet.
	s.cacheManifest(project)

	if platform.IsLinked(toolDir) {
		if !platform.RemoveLink(toolDir) {
			return fmt.Errorf("could not remove symlink at %s", toolDir)
		}
	} else if _, err := os.Stat(toolDir); err == nil {
		if err := os.RemoveAll(toolDir); err != nil {
			return fmt.Errorf("removing %s: %w", toolDir, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), submoduleAddTimeout)
	defer cancel()
	if _, err := s.git()(ctx, s.Workspace.Root, "submodule", "add", remoteURL, relKey); err != nil {
		return fmt.Errorf("git submodule add failed: %w", err)
	}

	fmt.Fprintf(s.out(), "Switched to PUBLISH mode (submodule - first time)\n")
	fmt.Fprintf(s.out(), "  %s\n", remoteURL)
	fmt.Fprintf(s.out(), "  Note: .gitmodules updated (uncommitted)\n")
	return nil
}

// restoreSubmodule reinitializes an already-registered submodule checkout.
func (s *Switcher) restoreSubmodule(project *manifest.Project, entry gitmodules.Entry, relKey string) error {
	toolDir := project.Dir

	if s.DryRun {
		s.narrateManifestCache(project)
		if platform.IsLinked(toolDir) {
			fmt.Fprintf(s.out(), "  Would remove symlink: %s\n", toolDir)
		}
		fmt.Fprintf(s.out(), "  Would run: git submodule update --init %s\n", relKey)
		return nil
	}

	s.cacheManifest(project)

	if platform.IsLinked(toolDir) {
		if !platform.RemoveLink(toolDir) {
			return fmt.Errorf("could not remove symlink at %s", toolDir)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), submoduleUpdateTimeout)
	defer cancel()
	if _, err := s.git()(ctx, s.Workspace.Root, "submodule", "update", "--init", relKey); err != nil {
		return fmt.Errorf("git submodule update failed: %w", err)
	}

	fmt.Fprintf(s.out(), "Switched to PUBLISH mode (submodule)\n")
	fmt.Fprintf(s.out(), "  %s\n", entry.URL)
	return nil
}

// cacheManifest snapshots the tool's manifest so it stays discoverable after
// the switch. Best-effort: a nameless placeholder entry is not worth caching.
func (s *Switcher) cacheManifest(project *manifest.Project) {
	if project.Name == "" {
		return
	}
	if err := s.Store.CacheManifest(project.QualifiedName(), project); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func (s *Switcher) narrateManifestCache(project *manifest.Project) {
	if project.Name == "" {
		return
	}
	fmt.Fprintf(s.out(), "  Would cache manifest in %s: %s\n", overrides.FileName, project.QualifiedName())
}

// resolveDevPath resolves the local dev source for a tool, in precedence
// order: explicit path argument, remembered dev path, local-filesystem
// submodule URL.
func (s *Switcher) resolveDevPath(qualified string, mapping gitmodules.Mapping, explicitPath string) (string, error) {
	if explicitPath != "" {
		abs, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf("resolving path %s: %w", explicitPath, err)
		}
		if !isDir(abs) {
			return "", fmt.Errorf("path does not exist: %s", abs)
		}
		return abs, nil
	}

	if p, ok := s.Store.DevPath(qualified); ok {
		if isDir(p) {
			return p, nil
		}
		fmt.Fprintf(os.Stderr, "Warning: Configured dev path does not exist: %s\n", p)
	}

	if entry, ok := mapping.ByQualifiedName(qualified); ok && entry.IsLocalURL() {
		if local := entry.LocalPath(); isDir(local) {
			return local, nil
		}
	}

	return "", fmt.Errorf(
		"cannot determine dev path for '%s': specify one with --path, or add it to %s under dev_paths[%q]",
		qualified, overrides.FileName, qualified)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
