package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/storage"
	"github.com/valter-silva-au/gantt/pkg/models"
)

var viewCmd = &cobra.Command{
	Use:       "view [day|week|month|quarter|year]",
	Short:     "Show or change the timeline zoom",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"day", "week", "month", "quarter", "year"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintln(out, Editor.Snapshot().ViewMode)
			return nil
		}
		mode, err := models.ParseViewMode(args[0])
		if err != nil {
			return err
		}
		if err := Editor.SetViewMode(mode); err != nil {
			return fmt.Errorf("setting view mode: %w", err)
		}
		fmt.Fprintf(out, "View mode set to %s\n", mode)
		return nil
	},
}

var columnCmd = &cobra.Command{
	Use:   "column [group|taskName|deps] [width]",
	Short: "Show or change the frozen column widths",
	Long: `Without arguments, print the widths of the three frozen columns. With a
column and a width in pixels, resize that column. Widths below 50 are
raised to 50.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <column> <width>, got %d argument(s)", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			w := Editor.Snapshot().Widths()
			fmt.Fprintf(out, "  %-10s %d\n", "group:", w.Group)
			fmt.Fprintf(out, "  %-10s %d\n", "taskName:", w.TaskName)
			fmt.Fprintf(out, "  %-10s %d\n", "deps:", w.Deps)
			return nil
		}
		col, err := models.ParseColumn(args[0])
		if err != nil {
			return err
		}
		width, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid width %q", args[1])
		}
		stored, err := Editor.SetColumnWidth(col, width)
		if err != nil {
			return fmt.Errorf("resizing column: %w", err)
		}
		fmt.Fprintf(out, "Column %s is now %dpx wide\n", col, stored)
		return nil
	},
}

var titleCmd = &cobra.Command{
	Use:   "title [title]",
	Short: "Show or change the project title and subtitle",
	Example: `  gantt title "Website Relaunch"
  gantt title --subtitle "Q3 delivery plan"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		subtitleSet := cmd.Flags().Changed("subtitle")
		if len(args) == 0 && !subtitleSet {
			snap := Editor.Snapshot()
			fmt.Fprintln(out, snap.ProjectTitle)
			fmt.Fprintln(out, snap.ProjectSubtitle)
			return nil
		}
		if len(args) == 1 {
			if err := Editor.SetTitle(args[0]); err != nil {
				return fmt.Errorf("setting title: %w", err)
			}
		}
		if subtitleSet {
			subtitle, _ := cmd.Flags().GetString("subtitle")
			if err := Editor.SetSubtitle(subtitle); err != nil {
				return fmt.Errorf("setting subtitle: %w", err)
			}
		}
		snap := Editor.Snapshot()
		fmt.Fprintf(out, "%s - %s\n", snap.ProjectTitle, snap.ProjectSubtitle)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Summarise the project and list its tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		snap := Editor.Snapshot()
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := storage.Encode(snap, storage.FormatJSON)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}

		fmt.Fprintf(out, "%s\n%s\n\n", snap.ProjectTitle, snap.ProjectSubtitle)
		fmt.Fprintf(out, "  %-14s %s\n", "View:", snap.ViewMode)
		fmt.Fprintf(out, "  %-14s %d\n", "Tasks:", len(snap.Tasks))
		fmt.Fprintf(out, "  %-14s %d\n", "Groups:", len(snap.ProjectGroups))

		layout := Editor.Layout(containerWidth())
		if layout.NoData {
			fmt.Fprintf(out, "  %-14s %s\n", "Timeline:", layout.Reason)
		} else {
			fmt.Fprintf(out, "  %-14s %s..%s (%d days)\n", "Timeline:", layout.ChartStart, layout.ChartEnd, layout.TotalDays)
		}
		conflicts := Editor.Conflicts()
		fmt.Fprintf(out, "  %-14s %d\n", "Conflicts:", len(conflicts))
		if Store != nil {
			fmt.Fprintf(out, "  %-14s %s\n", "File:", Store.Path())
		}
		fmt.Fprintln(out)

		printTasks(out, snap, snap.Tasks)
		if len(conflicts) > 0 {
			fmt.Fprintln(out, "\nConflicts:")
			for _, v := range conflicts {
				fmt.Fprintf(out, "  %s\n", v)
			}
		}
		return nil
	},
}

func init() {
	titleCmd.Flags().String("subtitle", "", "Project subtitle")
	showCmd.Flags().Bool("json", false, "Output the full project state as JSON")

	rootCmd.AddCommand(viewCmd, columnCmd, titleCmd, showCmd)
}
