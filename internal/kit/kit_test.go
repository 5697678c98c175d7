package kit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeKit(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSortedByFileName(t *testing.T) {
	tmp := t.TempDir()
	writeKit(t, tmp, "zulu.kit.json", `{"name": "zulu", "tools": ["ops:deploy"]}`)
	writeKit(t, tmp, "alpha.kit.yaml", "name: alpha\ntools:\n  - core:hello\n")
	writeKit(t, tmp, "notes.txt", "not a kit")

	var warn bytes.Buffer
	kits := Discover(tmp, &warn)
	if len(kits) != 2 {
		t.Fatalf("len(kits) = %d, want 2", len(kits))
	}
	if kits[0].Name != "alpha" || kits[1].Name != "zulu" {
		t.Errorf("kit order = [%s %s], want [alpha zulu]", kits[0].Name, kits[1].Name)
	}
	if kits[0].SourcePath != filepath.Join(tmp, "alpha.kit.yaml") {
		t.Errorf("SourcePath = %q, want the kit file path", kits[0].SourcePath)
	}
	if warn.Len() != 0 {
		t.Errorf("unexpected warnings: %s", warn.String())
	}
}

func TestDiscoverSkipsMalformedKits(t *testing.T) {
	tmp := t.TempDir()
	writeKit(t, tmp, "broken.kit.json", `{"name": "broken"`)
	writeKit(t, tmp, "anonymous.kit.json", `{"tools": ["a:b"]}`)
	writeKit(t, tmp, "good.kit.json", `{"name": "good"}`)

	var warn bytes.Buffer
	kits := Discover(tmp, &warn)
	if len(kits) != 1 {
		t.Fatalf("len(kits) = %d, want 1", len(kits))
	}
	if kits[0].Name != "good" {
		t.Errorf("kit name = %q, want %q", kits[0].Name, "good")
	}
	if !strings.Contains(warn.String(), "broken.kit.json") {
		t.Errorf("warning does not mention broken file: %s", warn.String())
	}
	if !strings.Contains(warn.String(), "anonymous.kit.json") {
		t.Errorf("warning does not mention nameless file: %s", warn.String())
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	var warn bytes.Buffer
	kits := Discover(filepath.Join(t.TempDir(), "nope"), &warn)
	if len(kits) != 0 {
		t.Errorf("len(kits) = %d, want 0", len(kits))
	}
}

func TestToolSet(t *testing.T) {
	kits := []Kit{
		{Name: "a", Tools: []string{"core:hello", "ops:deploy"}},
		{Name: "b", Tools: []string{"core:hello", "data:etl"}},
	}
	set := ToolSet(kits)
	want := []string{"core:hello", "ops:deploy", "data:etl"}
	if len(set) != len(want) {
		t.Fatalf("len(set) = %d, want %d", len(set), len(want))
	}
	for _, ref := range want {
		if !set[ref] {
			t.Errorf("set missing %q", ref)
		}
	}
}

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref       string
		namespace string
		name      string
	}{
		{"core:hello", "core", "hello"},
		{"hello", "", "hello"},
		{"a:b:c", "a", "b:c"},
		{":name", "", "name"},
	}
	for _, tt := range tests {
		ns, name := SplitRef(tt.ref)
		if ns != tt.namespace || name != tt.name {
			t.Errorf("SplitRef(%q) = (%q, %q), want (%q, %q)", tt.ref, ns, name, tt.namespace, tt.name)
		}
	}
}
