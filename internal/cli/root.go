package cli

import (
	"fmt"
	"os"

	"github.com/dazzle-labs/dazzlecmd/internal/branding"
	"github.com/dazzle-labs/dazzlecmd/internal/config"
	"github.com/dazzle-labs/dazzlecmd/internal/kit"
	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/dazzle-labs/dazzlecmd/internal/overrides"
	"github.com/dazzle-labs/dazzlecmd/internal/registry"
	"github.com/dazzle-labs/dazzlecmd/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// app holds the registry context resolved once at startup and threaded
// through every command. Nothing here is mutated after Execute builds it.
type appContext struct {
	Workspace workspace.Workspace
	Store     *overrides.Store
	Kits      []kit.Kit
	Projects  []*manifest.Project

	// ResolveErr is the workspace resolution failure, deferred so commands
	// that don't need a registry (version, config) still work.
	ResolveErr error
}

var app appContext

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` aggregates independently-versioned command-line tools into kits,
and switches each tool between dev mode (a link into a local working copy)
and publish mode (a git submodule checkout).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode carries a dispatched tool's exit code out of cobra, which only
// understands errors.
var exitCode int

// requireRegistry is the prelude for commands that need a resolved registry.
func requireRegistry() error {
	if app.ResolveErr != nil {
		return app.ResolveErr
	}
	return nil
}

// Execute resolves the registry, registers dynamic tool commands, and runs
// the root command. The returned code is the process exit status.
func Execute(version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	config.Load()

	ws, err := workspace.Resolve()
	app.ResolveErr = err
	if err == nil {
		app.Workspace = ws
		app.Store = overrides.NewStore(ws.Root)
		app.Kits = kit.Discover(ws.KitsDir, os.Stderr)
		active := kit.Active(app.Kits)
		if len(active) == 0 {
			// A registry without kits is unfiltered.
			active = nil
		}
		app.Projects = registry.DiscoverProjects(ws, active, app.Store, os.Stderr)
		registerToolCommands(app.Projects)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}
