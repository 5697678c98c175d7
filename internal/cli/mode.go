package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dazzle-labs/dazzlecmd/internal/gitmodules"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/dazzle-labs/dazzlecmd/internal/mode"
	"github.com/dazzle-labs/dazzlecmd/internal/platform"
	"github.com/dazzle-labs/dazzlecmd/internal/registry"
	"github.com/spf13/cobra"
)

var (
	statusKit string

	switchDev     bool
	switchPublish bool
	switchPath    string
	switchURL     string
	switchDryRun  bool
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Inspect and switch tool storage modes",
	Long: `Each tool lives in one of two modes: dev (a link into a local working copy)
or publish (a git submodule checkout). mode status reports the current state
of every tool; mode switch toggles one tool between the modes.`,
}

var modeStatusCmd = &cobra.Command{
	Use:   "status [<tool>]",
	Short: "Show mode status for tools",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModeStatus,
}

var modeSwitchCmd = &cobra.Command{
	Use:   "switch <tool>",
	Short: "Toggle a tool between dev and publish mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runModeSwitch,
}

func init() {
	modeStatusCmd.Flags().StringVarP(&statusKit, "kit", "k", "", "Filter by kit membership")

	modeSwitchCmd.Flags().BoolVar(&switchDev, "dev", false, "Force switch to dev mode")
	modeSwitchCmd.Flags().BoolVar(&switchPublish, "publish", false, "Force switch to publish mode")
	modeSwitchCmd.Flags().StringVar(&switchPath, "path", "", "Local working-copy path for dev mode")
	modeSwitchCmd.Flags().StringVar(&switchURL, "url", "", "Remote URL for first-time submodule registration")
	modeSwitchCmd.Flags().BoolVar(&switchDryRun, "dry-run", false, "Show what would happen without doing it")

	modeCmd.AddCommand(modeStatusCmd)
	modeCmd.AddCommand(modeSwitchCmd)
	rootCmd.AddCommand(modeCmd)
}

func runModeStatus(cmd *cobra.Command, args []string) error {
	if err := requireRegistry(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Mode status reports every directory under projects/, including tools
	// discovery skipped for want of a manifest.
	all := registry.MergeUndiscovered(app.Workspace, app.Store, app.Projects)

	filtered := all
	if len(args) == 1 {
		filtered = keep(filtered, func(p *manifest.Project) bool {
			return p.Name == args[0]
		})
		if len(filtered) == 0 {
			return fmt.Errorf("tool '%s' not found (use '%s list' to see available tools)", args[0], rootCmd.Name())
		}
	}
	if statusKit != "" {
		members, err := kitMembers(app.Kits, statusKit)
		if err != nil {
			return err
		}
		filtered = keep(filtered, func(p *manifest.Project) bool {
			return members[p.QualifiedName()]
		})
	}

	if len(filtered) == 0 {
		fmt.Fprintln(out, "No tools found.")
		return nil
	}

	// Recompute the mapping per query: it can change between invocations.
	mapping := gitmodules.Parse(app.Workspace.Root)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNAMESPACE\tMODE\tDETAILS")
	for _, p := range filtered {
		state := mode.Detect(p.Dir, mapping)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Namespace, state.Label(), stateDetails(p, state, mapping))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d tool(s)\n", len(filtered))
	return nil
}

// stateDetails builds the details column: link target for linked tools,
// submodule URL for checkouts.
func stateDetails(p *manifest.Project, state mode.State, mapping gitmodules.Mapping) string {
	switch state {
	case mode.StateSymlink, mode.StateLocalOnly:
		if target, ok := platform.LinkTarget(p.Dir); ok {
			return "-> " + target
		}
	case mode.StateSubmodule:
		if entry, ok := mapping[gitmodules.SubmodulePath(p.Dir)]; ok {
			return entry.URL
		}
	}
	return ""
}

func runModeSwitch(cmd *cobra.Command, args []string) error {
	if err := requireRegistry(); err != nil {
		return err
	}
	if switchDev && switchPublish {
		return fmt.Errorf("--dev and --publish are mutually exclusive")
	}

	toolName := args[0]

	// Discovered projects first; fall back to a directory/cache scan so
	// manifest-less tools can still be switched.
	project := registry.FindProject(app.Projects, toolName)
	if project == nil {
		project = registry.FindTool(app.Workspace, app.Store, toolName)
	}
	if project == nil {
		return fmt.Errorf("tool '%s' not found (use '%s list' to see available tools)", toolName, rootCmd.Name())
	}

	var force mode.Target
	switch {
	case switchDev:
		force = mode.TargetDev
	case switchPublish:
		force = mode.TargetPublish
	}

	switcher := &mode.Switcher{
		Workspace: app.Workspace,
		Store:     app.Store,
		Out:       cmd.OutOrStdout(),
		DryRun:    switchDryRun,
	}

	return switcher.Switch(project, force, mode.SwitchOptions{
		Path: switchPath,
		URL:  switchURL,
	})
}
