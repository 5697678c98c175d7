package cli

import (
	"strings"
	"testing"

	"github.com/dazzle-labs/dazzlecmd/internal/kit"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
)

func resetListFlags() {
	listNamespace = ""
	listKit = ""
	listTag = ""
	listPlatform = ""
	listJSON = false
}

func sampleProjects() []*manifest.Project {
	return []*manifest.Project{
		{Name: "hello", Namespace: "core", Platform: "cross-platform", Taxonomy: manifest.Taxonomy{Tags: []string{"demo"}}},
		{Name: "deploy", Namespace: "ops", Platform: "linux"},
		{Name: "etl", Namespace: "data", Platform: "cross-platform", Taxonomy: manifest.Taxonomy{Tags: []string{"pipeline", "demo"}}},
	}
}

func TestFilterProjectsNoFilters(t *testing.T) {
	resetListFlags()
	got, err := filterProjects(sampleProjects(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestFilterProjectsByNamespace(t *testing.T) {
	resetListFlags()
	listNamespace = "ops"
	got, err := filterProjects(sampleProjects(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "deploy" {
		t.Errorf("got %+v, want just ops:deploy", got)
	}
}

func TestFilterProjectsByTagAndPlatform(t *testing.T) {
	resetListFlags()
	listTag = "demo"
	listPlatform = "cross-platform"
	got, err := filterProjects(sampleProjects(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestFilterProjectsByKit(t *testing.T) {
	resetListFlags()
	listKit = "basics"
	kits := []kit.Kit{{Name: "basics", Tools: []string{"core:hello"}}}
	got, err := filterProjects(sampleProjects(), kits)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].QualifiedName() != "core:hello" {
		t.Errorf("got %+v, want just core:hello", got)
	}
}

func TestFilterProjectsUnknownKit(t *testing.T) {
	resetListFlags()
	listKit = "missing"
	_, err := filterProjects(sampleProjects(), nil)
	if err == nil || !strings.Contains(err.Error(), "kit 'missing' not found") {
		t.Errorf("error = %v, want unknown-kit error", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
	long := strings.Repeat("x", 80)
	got := truncate(long, 60)
	if len(got) != 60 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate = %q (len %d), want 60 chars ending in ...", got, len(got))
	}
}
