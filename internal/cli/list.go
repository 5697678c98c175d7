package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dazzle-labs/dazzlecmd/internal/kit"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	listNamespace string
	listKit       string
	listTag       string
	listPlatform  string
	listJSON      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	Long:  `List tools discovered in the registry, optionally filtered by namespace, kit, tag, or platform.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listNamespace, "namespace", "n", "", "Filter by namespace")
	listCmd.Flags().StringVarP(&listKit, "kit", "k", "", "Filter by kit membership")
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Filter by taxonomy tag")
	listCmd.Flags().StringVarP(&listPlatform, "platform", "p", "", "Filter by platform")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if err := requireRegistry(); err != nil {
		return err
	}

	filtered, err := filterProjects(app.Projects, app.Kits)
	if err != nil {
		return err
	}

	if len(filtered) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tools found.")
		return nil
	}

	if listJSON {
		data, err := json.MarshalIndent(filtered, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNAMESPACE\tVERSION\tDESCRIPTION")
	for _, p := range filtered {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Namespace, p.Version, truncate(p.Description, 60))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d tool(s) found\n", len(filtered))
	return nil
}

// filterProjects applies the list command's filters in declaration order.
func filterProjects(projects []*manifest.Project, kits []kit.Kit) ([]*manifest.Project, error) {
	filtered := projects

	if listNamespace != "" {
		filtered = keep(filtered, func(p *manifest.Project) bool {
			return p.Namespace == listNamespace
		})
	}
	if listPlatform != "" {
		filtered = keep(filtered, func(p *manifest.Project) bool {
			return p.Platform == listPlatform
		})
	}
	if listTag != "" {
		filtered = keep(filtered, func(p *manifest.Project) bool {
			for _, tag := range p.Taxonomy.Tags {
				if tag == listTag {
					return true
				}
			}
			return false
		})
	}
	if listKit != "" {
		members, err := kitMembers(kits, listKit)
		if err != nil {
			return nil, err
		}
		filtered = keep(filtered, func(p *manifest.Project) bool {
			return members[p.QualifiedName()]
		})
	}

	return filtered, nil
}

// kitMembers returns the qualified-name set for one named kit.
func kitMembers(kits []kit.Kit, name string) (map[string]bool, error) {
	for _, k := range kits {
		if k.Name == name {
			return kit.ToolSet([]kit.Kit{k}), nil
		}
	}
	return nil, fmt.Errorf("kit '%s' not found (use '%s kit list' to see available kits)", name, rootCmd.Name())
}

func keep(projects []*manifest.Project, pred func(*manifest.Project) bool) []*manifest.Project {
	var out []*manifest.Project
	for _, p := range projects {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
