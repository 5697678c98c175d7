package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var infoValidate bool

var infoCmd = &cobra.Command{
	Use:   "info <tool>",
	Short: "Show detailed info about a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoValidate, "validate", false, "Validate the manifest against the schema")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := requireRegistry(); err != nil {
		return err
	}

	name := args[0]
	wantNamespace := ""
	if i := strings.IndexByte(name, ':'); i >= 0 {
		wantNamespace, name = name[:i], name[i+1:]
	}

	var matches []*manifest.Project
	for _, p := range app.Projects {
		if p.Name == name && (wantNamespace == "" || p.Namespace == wantNamespace) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		return fmt.Errorf("tool '%s' not found (use '%s list' to see available tools)", args[0], rootCmd.Name())
	}
	if len(matches) > 1 {
		var names []string
		for _, p := range matches {
			names = append(names, p.QualifiedName())
		}
		return fmt.Errorf("multiple tools named '%s': %s (use '%s info namespace:%s' to be specific)",
			name, strings.Join(names, ", "), rootCmd.Name(), name)
	}

	project := matches[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Name:        %s\n", project.Name)
	fmt.Fprintf(out, "Namespace:   %s\n", project.Namespace)
	fmt.Fprintf(out, "Version:     %s\n", project.Version)
	fmt.Fprintf(out, "Description: %s\n", project.Description)
	fmt.Fprintf(out, "Platform:    %s\n", project.Platform)
	if project.Language != "" {
		fmt.Fprintf(out, "Language:    %s\n", project.Language)
	}
	fmt.Fprintf(out, "Runtime:     %s\n", project.Runtime.Kind)
	if project.Runtime.ScriptPath != "" {
		fmt.Fprintf(out, "Script:      %s\n", project.Runtime.ScriptPath)
	}
	if project.PassThrough {
		fmt.Fprintf(out, "Pass-through: yes\n")
	}
	if project.Cached {
		fmt.Fprintf(out, "Manifest:    (cached snapshot)\n")
	}
	if project.Taxonomy.Category != "" {
		fmt.Fprintf(out, "Category:    %s\n", project.Taxonomy.Category)
	}
	if len(project.Taxonomy.Tags) > 0 {
		fmt.Fprintf(out, "Tags:        %s\n", strings.Join(project.Taxonomy.Tags, ", "))
	}
	printDependencies(cmd, project)

	if infoValidate {
		return validateManifest(cmd, project)
	}
	return nil
}

func printDependencies(cmd *cobra.Command, project *manifest.Project) {
	if len(project.Dependencies) == 0 {
		return
	}
	groups := make([]string, 0, len(project.Dependencies))
	for g := range project.Dependencies {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	titler := cases.Title(language.English)
	for _, g := range groups {
		fmt.Fprintf(cmd.OutOrStdout(), "%s deps: %s\n", titler.String(g), strings.Join(project.Dependencies[g], ", "))
	}
}

// validateManifest runs schema validation and a semver check against the
// tool's on-disk manifest.
func validateManifest(cmd *cobra.Command, project *manifest.Project) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	if project.ManifestPath == "" {
		fmt.Fprintln(out, "Validation skipped: manifest is a cached snapshot, no file on disk.")
		return nil
	}

	result, err := manifest.ValidateFile(project.ManifestPath)
	if err != nil {
		return fmt.Errorf("validating %s: %w", project.ManifestPath, err)
	}

	if err := manifest.CheckVersion(project.Version); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
	}

	if result.Valid {
		fmt.Fprintln(out, "Manifest is valid.")
		return nil
	}

	fmt.Fprintf(out, "Manifest has %d issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		loc := issue.Path
		if loc == "" {
			loc = "(root)"
		}
		fmt.Fprintf(out, "  %s: %s\n", loc, issue.Message)
	}
	return fmt.Errorf("manifest validation failed for %s", project.QualifiedName())
}
