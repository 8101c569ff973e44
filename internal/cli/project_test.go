package cli

import (
	"strings"
	"testing"

	"github.com/valter-silva-au/gantt/internal/storage"
	"github.com/valter-silva-au/gantt/pkg/models"
)

func TestViewCmd(t *testing.T) {
	withEditor(t, twoTasks())

	out, err := runCmd(t, viewCmd, nil, nil, "")
	if err != nil || strings.TrimSpace(out) != "day" {
		t.Fatalf("current view: out=%q err=%v", out, err)
	}

	out, err = runCmd(t, viewCmd, []string{"Month"}, nil, "")
	if err != nil {
		t.Fatalf("set view: %v", err)
	}
	if !strings.Contains(out, "View mode set to month") {
		t.Errorf("output = %q", out)
	}
	if v := Editor.Snapshot().ViewMode; v != models.ViewMonth {
		t.Errorf("view mode = %s, want month", v)
	}

	if _, err := runCmd(t, viewCmd, []string{"fortnight"}, nil, ""); err == nil {
		t.Error("unknown view mode should fail")
	}
}

func TestColumnCmd(t *testing.T) {
	withEditor(t, twoTasks())

	out, err := runCmd(t, columnCmd, nil, nil, "")
	if err != nil {
		t.Fatalf("show widths: %v", err)
	}
	for _, want := range []string{"group:", "150", "taskName:", "250", "deps:", "100"} {
		if !strings.Contains(out, want) {
			t.Errorf("widths output missing %q: %q", want, out)
		}
	}

	tests := []struct {
		args []string
		want int
		col  models.Column
	}{
		{[]string{"group", "180"}, 180, models.ColumnGroup},
		{[]string{"task_name", "20"}, 50, models.ColumnTaskName},
		{[]string{"deps", "75"}, 75, models.ColumnDeps},
	}
	for _, tt := range tests {
		out, err := runCmd(t, columnCmd, tt.args, nil, "")
		if err != nil {
			t.Fatalf("column %v: %v", tt.args, err)
		}
		if !strings.Contains(out, "px wide") {
			t.Errorf("output = %q", out)
		}
		if got := Editor.Snapshot().Widths().Get(tt.col); got != tt.want {
			t.Errorf("column %v stored %d, want %d", tt.args, got, tt.want)
		}
	}

	if _, err := runCmd(t, columnCmd, []string{"group", "wide"}, nil, ""); err == nil {
		t.Error("non-numeric width should fail")
	}
	if _, err := runCmd(t, columnCmd, []string{"progress", "80"}, nil, ""); err == nil {
		t.Error("unknown column should fail")
	}
	if err := columnCmd.Args(columnCmd, []string{"group"}); err == nil {
		t.Error("a single argument should be rejected")
	}
}

func TestTitleCmd(t *testing.T) {
	withEditor(t, twoTasks())

	out, err := runCmd(t, titleCmd, nil, nil, "")
	if err != nil {
		t.Fatalf("show title: %v", err)
	}
	if !strings.Contains(out, models.DefaultProjectTitle) || !strings.Contains(out, models.DefaultProjectSubtitle) {
		t.Errorf("output = %q", out)
	}

	out, err = runCmd(t, titleCmd, []string{"Website Relaunch"}, map[string]string{"subtitle": "Q3 plan"}, "")
	if err != nil {
		t.Fatalf("set title: %v", err)
	}
	if strings.TrimSpace(out) != "Website Relaunch - Q3 plan" {
		t.Errorf("output = %q", out)
	}

	// Blank values fall back to the defaults.
	if _, err := runCmd(t, titleCmd, []string{"  "}, nil, ""); err != nil {
		t.Fatalf("blank title: %v", err)
	}
	snap := Editor.Snapshot()
	if snap.ProjectTitle != models.DefaultProjectTitle || snap.ProjectSubtitle != "Q3 plan" {
		t.Errorf("titles = %q / %q", snap.ProjectTitle, snap.ProjectSubtitle)
	}
}

func TestShowCmd(t *testing.T) {
	snap := twoTasks()
	snap.Tasks[1].Start = d("10/01/2024")
	withEditor(t, snap)

	out, err := runCmd(t, showCmd, nil, nil, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{
		models.DefaultProjectTitle,
		"Tasks:", "2",
		"Timeline:",
		"Conflicts:",
		"Plan", "Build",
		"#2 starts 10/01/2024 but depends on #1 which ends 15/01/2024",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestShowCmd_Empty(t *testing.T) {
	withEditor(t, models.EmptySnapshot())
	out, err := runCmd(t, showCmd, nil, nil, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "No tasks.") {
		t.Errorf("output = %q", out)
	}
}

func TestShowCmd_JSON(t *testing.T) {
	withEditor(t, twoTasks())
	out, err := runCmd(t, showCmd, nil, map[string]string{"json": "true"}, "")
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	got, err := storage.Decode([]byte(out), storage.FormatJSON)
	if err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(got.Tasks) != 2 || !got.Tasks[1].Dependencies.Contains(1) {
		t.Errorf("decoded tasks = %+v", got.Tasks)
	}
}
