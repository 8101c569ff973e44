package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Add, edit, move and delete tasks",
	Long: `Manage the tasks of the project.

Edits that would make dependent tasks start before their dependencies end
show the tasks that will shift and ask for confirmation. Pass --yes to
accept the shift without prompting.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task",
	Example: `  gantt task add --name "Design" --start 01/01/2024 --end 15/01/2024
  gantt task add --name "Build" --start 2024-01-16 --end 2024-01-31 --deps 1 --group Engineering`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		patch, _ := taskPatchFromFlags(cmd)
		draft, err := patch.Apply(models.Task{})
		if err != nil {
			return err
		}
		added, _, err := Editor.SaveTask(draft)
		if err != nil {
			return fmt.Errorf("adding task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d %q (%s..%s)\n", added.ID, added.Name, added.Start, added.End)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's fields",
	Long: `Change one or more fields of a task. Only the flags you pass are changed;
an empty --group, --deps or --color clears that field.`,
	Example: `  gantt task edit 1 --end 20/01/2024
  gantt task edit 3 --progress 50 --deps "1,2"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		patch, changed := taskPatchFromFlags(cmd)
		if !changed {
			return fmt.Errorf("nothing to change: pass at least one of --name, --group, --start, --end, --progress, --deps, --color")
		}
		current, err := Editor.Task(id)
		if err != nil {
			return fmt.Errorf("task #%d: %w", id, err)
		}
		draft, err := patch.Apply(current)
		if err != nil {
			return err
		}
		saved, pending, err := Editor.SaveTask(draft)
		if err != nil {
			return fmt.Errorf("editing task #%d: %w", id, err)
		}
		if pending != nil {
			yes, _ := cmd.Flags().GetBool("yes")
			applied, err := resolvePending(cmd, pending, yes)
			if err != nil || !applied {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d %q (%s..%s)\n", saved.ID, saved.Name, saved.Start, saved.End)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task and remove it from every dependency list",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		if err := Editor.DeleteTask(id); err != nil {
			return fmt.Errorf("deleting task #%d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks in chart order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		snap := Editor.Snapshot()
		tasks := snap.Tasks
		if group, _ := cmd.Flags().GetString("group"); group != "" {
			tasks = nil
			for _, t := range snap.Tasks {
				if strings.EqualFold(t.Group, group) {
					tasks = append(tasks, t)
				}
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if tasks == nil {
				tasks = []models.Task{}
			}
			data, err := json.MarshalIndent(tasks, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting tasks as JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		printTasks(cmd.OutOrStdout(), snap, tasks)
		return nil
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move a task by whole days, keeping its duration",
	Example: `  gantt task move 2 --days 5
  gantt task move 2 --days=-3 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShift(cmd, args[0], core.DragMove)
	},
}

var taskResizeCmd = &cobra.Command{
	Use:   "resize <id>",
	Short: "Move the start or end edge of a task by whole days",
	Example: `  gantt task resize 1 --days 5
  gantt task resize 1 --edge left --days=-2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edge, _ := cmd.Flags().GetString("edge")
		switch strings.ToLower(edge) {
		case "right", "end":
			return runShift(cmd, args[0], core.DragResizeRight)
		case "left", "start":
			return runShift(cmd, args[0], core.DragResizeLeft)
		}
		return fmt.Errorf("invalid --edge %q: use left or right", edge)
	},
}

// runShift applies the same edit a mouse drag of the given kind would.
func runShift(cmd *cobra.Command, arg string, kind core.DragKind) error {
	if err := requireEditor(); err != nil {
		return err
	}
	id, err := parseTaskID(arg)
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")
	original, err := Editor.Task(id)
	if err != nil {
		return fmt.Errorf("task #%d: %w", id, err)
	}
	out := cmd.OutOrStdout()
	if days == 0 && kind == core.DragMove {
		fmt.Fprintln(out, "Nothing to move.")
		return nil
	}

	moved := core.ShiftTask(original, kind, days)
	pending, err := Editor.ApplyOutcome(core.Outcome{
		Kind:     core.OutcomeTaskEdit,
		Drag:     kind,
		Task:     moved,
		Original: original,
		DayShift: days,
	})
	if err != nil {
		return fmt.Errorf("shifting task #%d: %w", id, err)
	}
	if pending != nil {
		yes, _ := cmd.Flags().GetBool("yes")
		applied, err := resolvePending(cmd, pending, yes)
		if err != nil || !applied {
			return err
		}
	}
	fmt.Fprintf(out, "Task #%d now runs %s..%s\n", id, moved.Start, moved.End)
	return nil
}

func init() {
	addTaskFlags(taskAddCmd)
	addTaskFlags(taskEditCmd)
	taskEditCmd.Flags().BoolP("yes", "y", false, "Shift dependent tasks without asking")

	taskListCmd.Flags().String("group", "", "Only list tasks in this group")
	taskListCmd.Flags().Bool("json", false, "Output tasks as JSON")

	for _, c := range []*cobra.Command{taskMoveCmd, taskResizeCmd} {
		c.Flags().Int("days", 0, "Number of days to shift (negative moves earlier)")
		c.Flags().BoolP("yes", "y", false, "Shift dependent tasks without asking")
	}
	taskResizeCmd.Flags().String("edge", "right", "Edge to move: left (start) or right (end)")

	taskCmd.AddCommand(taskAddCmd, taskEditCmd, taskDeleteCmd, taskListCmd, taskMoveCmd, taskResizeCmd)
	rootCmd.AddCommand(taskCmd)
}
