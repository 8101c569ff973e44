package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

var errEditorNotInitialized = errors.New("editor not initialized")

func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// addTaskFlags registers the editable task fields on cmd.
func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Task name")
	cmd.Flags().String("group", "", "Group name (empty for ungrouped)")
	cmd.Flags().String("start", "", "Start date (DD/MM/YYYY or YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (DD/MM/YYYY or YYYY-MM-DD)")
	cmd.Flags().Int("progress", 0, "Progress percentage (0-100)")
	cmd.Flags().String("deps", "", "Comma-separated ids of tasks this task depends on")
	cmd.Flags().String("color", "", "Bar colour as #RRGGBB (empty to follow the group)")
}

// taskPatchFromFlags picks up only the task flags the user actually set.
func taskPatchFromFlags(cmd *cobra.Command) (core.TaskPatch, bool) {
	var p core.TaskPatch
	changed := false
	str := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		changed = true
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	p.Name = str("name")
	p.Group = str("group")
	p.Start = str("start")
	p.End = str("end")
	p.Dependencies = str("deps")
	p.Color = str("color")
	if cmd.Flags().Changed("progress") {
		v, _ := cmd.Flags().GetInt("progress")
		p.Progress = &v
		changed = true
	}
	return p, changed
}

// resolvePending shows what a held-back edit would shift and confirms it when
// yes is set or the user agrees. It reports whether the edit was applied.
func resolvePending(cmd *cobra.Command, pending *core.PendingAction, yes bool) (bool, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, pending.Message)
	printPlan(out, pending.Plan)

	if !yes && !askYesNo(cmd.InOrStdin(), out, "Proceed? [y/N] ") {
		if err := pending.Cancel(); err != nil {
			return false, fmt.Errorf("cancelling edit: %w", err)
		}
		fmt.Fprintln(out, "Cancelled. No changes were made.")
		return false, nil
	}
	if err := pending.Confirm(); err != nil {
		return false, fmt.Errorf("confirming edit: %w", err)
	}
	return true, nil
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printPlan(out io.Writer, plan []core.PlannedUpdate) {
	for _, p := range plan {
		fmt.Fprintf(out, "  #%-4d %-24s %s..%s -> %s..%s (%+dd)\n",
			p.TaskID, truncateText(p.Name, 24), p.OldStart, p.OldEnd, p.NewStart, p.NewEnd, p.Shift())
	}
}

// printTasks lists tasks in chart row order.
func printTasks(out io.Writer, snap models.Snapshot, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	fmt.Fprintf(out, "%-5s %-16s %-28s %-10s %-10s %5s  %s\n", "ID", "GROUP", "NAME", "START", "END", "DONE", "DEPS")
	for _, row := range core.SortRows(tasks, snap.ProjectGroups) {
		t := row.Task
		group := t.Group
		if !row.Grouped {
			group = "-"
		}
		fmt.Fprintf(out, "%-5d %-16s %-28s %-10s %-10s %4d%%  %s\n",
			t.ID, truncateText(group, 16), truncateText(t.Name, 28), t.Start, t.End, t.Progress, t.Dependencies)
	}
}

func truncateText(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
