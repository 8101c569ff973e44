package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "gantt",
	Short: "Gantt - interactive project timeline editor",
	Long: `Gantt edits a project timeline: tasks with start and end dates, progress,
colour and finish-to-start dependencies, organised into colour-coded groups.

Moving or resizing a task shifts every dependent task that would otherwise
start too early, after you confirm the shift. The chart can be browsed and
dragged in a terminal UI, rendered to SVG or a standalone HTML page, and
exchanged with spreadsheets through an xlsx workbook.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gantt %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
