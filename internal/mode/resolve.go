package mode

import "github.com/dazzle-labs/dazzlecmd/internal/manifest"

// resolveRemoteURL resolves a tool's remote locator for first-time submodule
// registration, in precedence order: explicit --url argument, manifest
// source.url, manifest lifecycle.graduated_to.
func resolveRemoteURL(project *manifest.Project, explicitURL string) string {
	if explicitURL != "" {
		return explicitURL
	}
	if project.Source.URL != "" {
		return project.Source.URL
	}
	return project.Lifecycle.GraduatedTo
}
