package mode

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dazzle-labs/dazzlecmd/internal/gitmodules"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/dazzle-labs/dazzlecmd/internal/overrides"
	"github.com/dazzle-labs/dazzlecmd/internal/workspace"
)

type gitCall struct {
	root string
	args []string
}

type switchFixture struct {
	root     string
	toolDir  string
	switcher *Switcher
	out      *bytes.Buffer
	calls    *[]gitCall
}

func newSwitchFixture(t *testing.T) *switchFixture {
	t.Helper()
	root := t.TempDir()
	toolDir := filepath.Join(root, "projects", "core", "tool")
	if err := os.MkdirAll(filepath.Dir(toolDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "kits"), 0755); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	calls := &[]gitCall{}
	store := overrides.NewStore(root)
	store.Warn = &bytes.Buffer{}

	sw := &Switcher{
		Workspace: workspace.At(root),
		Store:     store,
		Out:       out,
		Git: func(ctx context.Context, root string, args ...string) (string, error) {
			*calls = append(*calls, gitCall{root: root, args: args})
			return "", nil
		},
	}
	return &switchFixture{root: root, toolDir: toolDir, switcher: sw, out: out, calls: calls}
}

func (f *switchFixture) project() *manifest.Project {
	return &manifest.Project{Name: "tool", Namespace: "core", Version: "1.0.0", Dir: f.toolDir}
}

func (f *switchFixture) registerSubmoduleEntry(t *testing.T, url string) {
	t.Helper()
	content := "[submodule \"projects/core/tool\"]\n\tpath = projects/core/tool\n\turl = " + url + "\n"
	if err := os.WriteFile(filepath.Join(f.root, ".gitmodules"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func (f *switchFixture) makeEmbeddedDir(t *testing.T) {
	t.Helper()
	if err := os.MkdirAll(f.toolDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.toolDir, "main.py"), []byte("print()"), 0644); err != nil {
		t.Fatal(err)
	}
}

func (f *switchFixture) makeDevSource(t *testing.T) string {
	t.Helper()
	src := filepath.Join(f.root, "work", "tool")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	return src
}

func (f *switchFixture) makeLink(t *testing.T, src string) {
	t.Helper()
	if err := os.Symlink(src, f.toolDir); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestSwitchSubmoduleToDevWithExplicitPath(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t)
	f.registerSubmoduleEntry(t, "https://example.com/tool.git")
	devSrc := f.makeDevSource(t)

	// Auto toggle: submodule state targets dev.
	if err := f.switcher.Switch(f.project(), "", SwitchOptions{Path: devSrc}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}

	fi, err := os.Lstat(f.toolDir)
	if err != nil {
		t.Fatalf("tool dir gone after switch: %v", err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Error("tool dir is not a symlink after switching to dev")
	}

	got, ok := f.switcher.Store.DevPath("core:tool")
	if !ok || got != devSrc {
		t.Errorf("remembered dev path = (%q, %v), want (%q, true)", got, ok, devSrc)
	}
	if len(*f.calls) != 0 {
		t.Errorf("git invoked %d times for a dev switch, want 0", len(*f.calls))
	}
	if !strings.Contains(f.out.String(), "Switched to DEV mode") {
		t.Errorf("output missing success line:\n%s", f.out.String())
	}
}

func TestSwitchDevToPublishRestoresSubmodule(t *testing.T) {
	f := newSwitchFixture(t)
	f.registerSubmoduleEntry(t, "https://example.com/tool.git")
	devSrc := f.makeDevSource(t)
	f.makeLink(t, devSrc)

	if err := f.switcher.Switch(f.project(), "", SwitchOptions{}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}

	if len(*f.calls) != 1 {
		t.Fatalf("git invoked %d times, want 1", len(*f.calls))
	}
	call := (*f.calls)[0]
	wantArgs := "submodule update --init projects/core/tool"
	if strings.Join(call.args, " ") != wantArgs {
		t.Errorf("git args = %q, want %q", strings.Join(call.args, " "), wantArgs)
	}
	if call.root != f.root {
		t.Errorf("git root = %q, want %q", call.root, f.root)
	}

	// The manifest was snapshotted before the link came down.
	if _, ok := f.switcher.Store.CachedManifest("core:tool"); !ok {
		t.Error("manifest not cached before restoring submodule")
	}
	// The link itself is gone (the stub git does not recreate the checkout).
	if _, err := os.Lstat(f.toolDir); !os.IsNotExist(err) {
		t.Errorf("symlink still present after switch: %v", err)
	}
}

func TestSwitchFirstTimePublishRegistersSubmodule(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t)

	opts := SwitchOptions{URL: "https://example.com/tool.git"}
	if err := f.switcher.Switch(f.project(), TargetPublish, opts); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}

	if len(*f.calls) != 1 {
		t.Fatalf("git invoked %d times, want 1", len(*f.calls))
	}
	wantArgs := "submodule add https://example.com/tool.git projects/core/tool"
	if got := strings.Join((*f.calls)[0].args, " "); got != wantArgs {
		t.Errorf("git args = %q, want %q", got, wantArgs)
	}

	if _, err := os.Lstat(f.toolDir); !os.IsNotExist(err) {
		t.Errorf("embedded dir still present before submodule add: %v", err)
	}
	if _, ok := f.switcher.Store.CachedManifest("core:tool"); !ok {
		t.Error("manifest not cached before removing the embedded dir")
	}
}

func TestSwitchPublishWithoutURLFailsCleanly(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t)

	err := f.switcher.Switch(f.project(), TargetPublish, SwitchOptions{})
	if err == nil {
		t.Fatal("Switch error = nil, want no-remote-URL error")
	}
	if !strings.Contains(err.Error(), "no remote URL known for 'tool'") {
		t.Errorf("error = %q", err)
	}

	// Nothing destructive happened: the dir and its contents survive, and
	// no override file was written.
	if _, err := os.Stat(filepath.Join(f.toolDir, "main.py")); err != nil {
		t.Errorf("embedded content lost on failed switch: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, overrides.FileName)); !os.IsNotExist(err) {
		t.Errorf("override file written on failed switch: %v", err)
	}
	if len(*f.calls) != 0 {
		t.Errorf("git invoked %d times, want 0", len(*f.calls))
	}
}

func TestSwitchPublishResolvesManifestURL(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t)

	p := f.project()
	p.Lifecycle.GraduatedTo = "https://example.com/graduated.git"
	if err := f.switcher.Switch(p, TargetPublish, SwitchOptions{}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	wantArgs := "submodule add https://example.com/graduated.git projects/core/tool"
	if got := strings.Join((*f.calls)[0].args, " "); got != wantArgs {
		t.Errorf("git args = %q, want %q", got, wantArgs)
	}
}

func TestSwitchAmbiguousState(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t) // no submodule entry: embedded

	err := f.switcher.Switch(f.project(), "", SwitchOptions{})
	var ambiguous *AmbiguousStateError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("error = %v, want AmbiguousStateError", err)
	}
	if ambiguous.State != StateEmbedded {
		t.Errorf("State = %q, want %q", ambiguous.State, StateEmbedded)
	}
	if !strings.Contains(err.Error(), "embedded") {
		t.Errorf("error lacks guidance: %q", err)
	}
}

func TestSwitchDevIdempotent(t *testing.T) {
	f := newSwitchFixture(t)
	f.registerSubmoduleEntry(t, "https://example.com/tool.git")
	devSrc := f.makeDevSource(t)
	f.makeLink(t, devSrc)

	if err := f.switcher.Switch(f.project(), TargetDev, SwitchOptions{}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "Already in dev mode") {
		t.Errorf("output = %q, want already-in-dev notice", f.out.String())
	}
	// The link is untouched and nothing was persisted.
	if fi, err := os.Lstat(f.toolDir); err != nil || fi.Mode()&os.ModeSymlink == 0 {
		t.Error("link disturbed by idempotent switch")
	}
	if _, err := os.Stat(filepath.Join(f.root, overrides.FileName)); !os.IsNotExist(err) {
		t.Error("override file written by idempotent switch")
	}
}

func TestSwitchPublishIdempotent(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t)
	f.registerSubmoduleEntry(t, "https://example.com/tool.git")

	if err := f.switcher.Switch(f.project(), TargetPublish, SwitchOptions{}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "Already in publish mode") {
		t.Errorf("output = %q, want already-in-publish notice", f.out.String())
	}
	if len(*f.calls) != 0 {
		t.Errorf("git invoked %d times, want 0", len(*f.calls))
	}
}

func TestSwitchDryRunMakesNoChanges(t *testing.T) {
	f := newSwitchFixture(t)
	f.makeEmbeddedDir(t)
	f.registerSubmoduleEntry(t, "https://example.com/tool.git")
	devSrc := f.makeDevSource(t)
	f.switcher.DryRun = true

	if err := f.switcher.Switch(f.project(), "", SwitchOptions{Path: devSrc}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}

	out := f.out.String()
	if !strings.Contains(out, "[DRY-RUN] No changes will be made") {
		t.Errorf("output missing dry-run banner:\n%s", out)
	}
	if !strings.Contains(out, "Would create symlink") {
		t.Errorf("output missing narration:\n%s", out)
	}

	// Zero mutations: the dir is still a plain dir, no git, no persistence.
	fi, err := os.Lstat(f.toolDir)
	if err != nil || fi.Mode()&os.ModeSymlink != 0 {
		t.Error("tool dir mutated during dry-run")
	}
	if _, err := os.Stat(filepath.Join(f.root, overrides.FileName)); !os.IsNotExist(err) {
		t.Error("override file written during dry-run")
	}
	if len(*f.calls) != 0 {
		t.Errorf("git invoked %d times during dry-run, want 0", len(*f.calls))
	}
}

func TestSwitchDryRunPublishNarratesGit(t *testing.T) {
	f := newSwitchFixture(t)
	f.registerSubmoduleEntry(t, "https://example.com/tool.git")
	devSrc := f.makeDevSource(t)
	f.makeLink(t, devSrc)
	f.switcher.DryRun = true

	if err := f.switcher.Switch(f.project(), "", SwitchOptions{}); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}

	out := f.out.String()
	if !strings.Contains(out, "Would run: git submodule update --init projects/core/tool") {
		t.Errorf("output missing git narration:\n%s", out)
	}
	if !strings.Contains(out, "Would cache manifest") {
		t.Errorf("output missing cache narration:\n%s", out)
	}
	if fi, err := os.Lstat(f.toolDir); err != nil || fi.Mode()&os.ModeSymlink == 0 {
		t.Error("symlink disturbed during dry-run")
	}
	if len(*f.calls) != 0 {
		t.Errorf("git invoked %d times during dry-run, want 0", len(*f.calls))
	}
}

func TestResolveDevPathPrecedence(t *testing.T) {
	f := newSwitchFixture(t)

	remembered := filepath.Join(f.root, "remembered")
	if err := os.MkdirAll(remembered, 0755); err != nil {
		t.Fatal(err)
	}
	if err := f.switcher.Store.RememberDevPath("core:tool", remembered); err != nil {
		t.Fatal(err)
	}

	local := filepath.Join(f.root, "checkout")
	if err := os.MkdirAll(local, 0755); err != nil {
		t.Fatal(err)
	}
	f.registerSubmoduleEntry(t, local)
	mapping := gitmodules.Parse(f.root)

	explicit := f.makeDevSource(t)

	// Explicit path wins over everything.
	got, err := f.switcher.resolveDevPath("core:tool", mapping, explicit)
	if err != nil {
		t.Fatalf("resolveDevPath failed: %v", err)
	}
	if got != explicit {
		t.Errorf("resolveDevPath = %q, want explicit %q", got, explicit)
	}

	// Remembered path beats the local submodule URL.
	got, err = f.switcher.resolveDevPath("core:tool", mapping, "")
	if err != nil {
		t.Fatalf("resolveDevPath failed: %v", err)
	}
	if got != remembered {
		t.Errorf("resolveDevPath = %q, want remembered %q", got, remembered)
	}

	// With no override the local submodule URL is last.
	doc := f.switcher.Store.Load()
	delete(doc.DevPaths, "core:tool")
	if err := f.switcher.Store.Save(doc); err != nil {
		t.Fatal(err)
	}
	got, err = f.switcher.resolveDevPath("core:tool", mapping, "")
	if err != nil {
		t.Fatalf("resolveDevPath failed: %v", err)
	}
	if got != local {
		t.Errorf("resolveDevPath = %q, want local URL %q", got, local)
	}
}

func TestResolveDevPathExplicitMustExist(t *testing.T) {
	f := newSwitchFixture(t)
	_, err := f.switcher.resolveDevPath("core:tool", nil, filepath.Join(f.root, "nope"))
	if err == nil || !strings.Contains(err.Error(), "path does not exist") {
		t.Errorf("error = %v, want path-does-not-exist", err)
	}
}

func TestResolveDevPathNoSource(t *testing.T) {
	f := newSwitchFixture(t)
	_, err := f.switcher.resolveDevPath("core:tool", nil, "")
	if err == nil || !strings.Contains(err.Error(), "cannot determine dev path") {
		t.Errorf("error = %v, want cannot-determine message", err)
	}
}
