package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dazzle-labs/dazzlecmd/internal/manifest"
	"github.com/dazzle-labs/dazzlecmd/internal/runtime"
	"github.com/spf13/cobra"
)

// reservedCommands are the meta-command names that cannot be shadowed by
// tools. A discovered project colliding with one is skipped with a warning.
var reservedCommands = map[string]bool{
	"list":       true,
	"info":       true,
	"kit":        true,
	"mode":       true,
	"config":     true,
	"version":    true,
	"help":       true,
	"completion": true,
}

// registerToolCommands adds one dynamic command per discovered project.
// Flag parsing is disabled so every remaining argument reaches the tool
// verbatim, including flags the tool defines itself.
func registerToolCommands(projects []*manifest.Project) {
	for _, project := range projects {
		if reservedCommands[project.Name] {
			fmt.Fprintf(os.Stderr, "Warning: Tool '%s' conflicts with reserved command, skipping\n", project.Name)
			continue
		}

		p := project
		rootCmd.AddCommand(&cobra.Command{
			Use:                p.Name,
			Short:              p.Description,
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return dispatchTool(cmd.Context(), p, args)
			},
		})
	}
}

// dispatchTool resolves the project's entry point and runs it, recording the
// tool's exit code for the process exit status.
func dispatchTool(ctx context.Context, project *manifest.Project, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	runner, err := runtime.Resolve(project)
	if err != nil {
		return fmt.Errorf("could not resolve entry point for '%s': %w", project.Name, err)
	}

	code, err := runner.Invoke(ctx, args)
	if err != nil {
		exitCode = code
		return fmt.Errorf("running '%s': %w", project.Name, err)
	}

	exitCode = code
	return nil
}
