package cli

import (
	"encoding/json"
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
)

// buildInfo is the serializable shape behind `version --json`.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func currentBuildInfo() buildInfo {
	return buildInfo{
		Version: buildVersion,
		Commit:  buildCommit,
		Date:    buildDate,
		Go:      goruntime.Version(),
		OS:      goruntime.GOOS,
		Arch:    goruntime.GOARCH,
	}
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		info := currentBuildInfo()

		switch {
		case versionShort:
			fmt.Fprintln(out, info.Version)
		case versionJSON:
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
		default:
			fmt.Fprintf(out, "%s version %s (commit: %s, built: %s, %s %s/%s)\n",
				rootCmd.Name(), info.Version, info.Commit, info.Date, info.Go, info.OS, info.Arch)
		}
		return nil
	},
}
