package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage task groups",
	Long: `Groups organise tasks into colour-coded sections. Tasks without their
own colour take the colour of their group.`,
}

var groupAddCmd = &cobra.Command{
	Use:     "add <name>",
	Short:   "Add a group",
	Example: `  gantt group add Engineering --color "#3B82F6"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		color, _ := cmd.Flags().GetString("color")
		g, err := Editor.AddGroup(args[0], color)
		if err != nil {
			return fmt.Errorf("adding group: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added group %q (%s)\n", g.Name, g.Color)
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a group; its tasks become ungrouped",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		cleared, err := Editor.DeleteGroup(args[0])
		if err != nil {
			return fmt.Errorf("deleting group %q: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %q (%d task(s) ungrouped)\n", args[0], cleared)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List groups with their colours and task counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		snap := Editor.Snapshot()
		out := cmd.OutOrStdout()
		if len(snap.ProjectGroups) == 0 {
			fmt.Fprintln(out, "No groups.")
			return nil
		}
		fmt.Fprintf(out, "%-24s %-8s %s\n", "NAME", "COLOR", "TASKS")
		for _, g := range snap.ProjectGroups {
			count := 0
			for _, t := range snap.Tasks {
				if t.Group == g.Name {
					count++
				}
			}
			fmt.Fprintf(out, "%-24s %-8s %d\n", truncateText(g.Name, 24), g.Color, count)
		}
		return nil
	},
}

func init() {
	groupAddCmd.Flags().String("color", "", "Group colour as #RRGGBB")
	groupCmd.AddCommand(groupAddCmd, groupDeleteCmd, groupListCmd)
	rootCmd.AddCommand(groupCmd)
}
