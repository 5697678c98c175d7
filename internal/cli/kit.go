package cli

import (
	"fmt"
	"sort"

	"github.com/dazzle-labs/dazzlecmd/internal/kit"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/spf13/cobra"
)

var kitCmd = &cobra.Command{
	Use:   "kit",
	Short: "Manage kits",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare "dz kit" behaves like "dz kit list".
		return runKitList(cmd, nil)
	},
}

var kitListCmd = &cobra.Command{
	Use:   "list [<name>]",
	Short: "List available kits, or tools in a kit",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKitList,
}

var kitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active kits",
	RunE:  runKitStatus,
}

func init() {
	kitCmd.AddCommand(kitListCmd)
	kitCmd.AddCommand(kitStatusCmd)
	rootCmd.AddCommand(kitCmd)
}

func runKitList(cmd *cobra.Command, args []string) error {
	if err := requireRegistry(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(app.Kits) == 0 {
		fmt.Fprintln(out, "No kits found.")
		return nil
	}

	if len(args) == 1 {
		return printKitTools(cmd, args[0])
	}

	for _, k := range app.Kits {
		active := ""
		if k.AlwaysActive {
			active = " (always active)"
		}
		fmt.Fprintf(out, "  %-16s %d tool(s)%s\n", k.Name, len(k.Tools), active)
		if k.Description != "" {
			fmt.Fprintf(out, "    %s\n", k.Description)
		}
	}
	return nil
}

// printKitTools shows one kit's member tools, marking refs that don't
// resolve to a discovered project. Absence is reported, not fatal.
func printKitTools(cmd *cobra.Command, name string) error {
	out := cmd.OutOrStdout()

	var match *kit.Kit
	for i := range app.Kits {
		if app.Kits[i].Name == name {
			match = &app.Kits[i]
			break
		}
	}
	if match == nil {
		var names []string
		for _, k := range app.Kits {
			names = append(names, k.Name)
		}
		return fmt.Errorf("kit '%s' not found: available kits: %v", name, names)
	}

	active := ""
	if match.AlwaysActive {
		active = " (always active)"
	}
	fmt.Fprintf(out, "Kit: %s%s\n", match.Name, active)
	if match.Description != "" {
		fmt.Fprintf(out, "  %s\n", match.Description)
	}
	fmt.Fprintln(out)

	if len(match.Tools) == 0 {
		fmt.Fprintln(out, "  No tools in this kit.")
		return nil
	}

	refs := make([]string, len(match.Tools))
	copy(refs, match.Tools)
	sort.Strings(refs)

	for _, ref := range refs {
		ns, toolName := kit.SplitRef(ref)
		project := findQualified(app.Projects, ns, toolName)
		if project == nil {
			fmt.Fprintf(out, "  %-16s %-16s (not found)\n", toolName, "")
			continue
		}
		fmt.Fprintf(out, "  %-16s %-16s %s\n", toolName, project.Platform, truncate(project.Description, 55))
	}

	fmt.Fprintf(out, "\n  %d tool(s)\n", len(refs))
	return nil
}

func runKitStatus(cmd *cobra.Command, args []string) error {
	if err := requireRegistry(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	active := kit.Active(app.Kits)
	fmt.Fprintf(out, "Active kits: %d\n", len(active))
	for _, k := range active {
		fmt.Fprintf(out, "  %s: %d tool(s)\n", k.Name, len(k.Tools))
	}
	return nil
}

// findQualified locates a project by namespace and bare name; an empty
// namespace matches any.
func findQualified(projects []*manifest.Project, namespace, name string) *manifest.Project {
	for _, p := range projects {
		if p.Name == name && (namespace == "" || p.Namespace == namespace) {
			return p
		}
	}
	return nil
}
