package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/gantt/internal/workbook"
	"github.com/valter-silva-au/gantt/pkg/models"
)

func withBasePath(t *testing.T, dir string) {
	t.Helper()
	orig := BasePath
	BasePath = dir
	t.Cleanup(func() { BasePath = orig })
}

func groupedTasks() models.Snapshot {
	snap := twoTasks()
	snap.ProjectTitle = "Website Relaunch"
	snap.ProjectGroups = []models.Group{{Name: "Engineering", Color: "#3B82F6"}}
	snap.Tasks[1].Group = "Engineering"
	return snap
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []string{exportJSON, exportYAML, exportXLSX, exportHTML} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out", "chart."+format)

			withEditor(t, groupedTasks())
			out, err := runCmd(t, exportCmd, []string{format}, map[string]string{"out": path}, "")
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			if !strings.Contains(out, "Wrote "+path) {
				t.Errorf("export output = %q", out)
			}

			withEditor(t, models.EmptySnapshot())
			out, err = runCmd(t, importCmd, []string{path}, nil, "")
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if !strings.Contains(out, "Imported 2 task(s) and 1 group(s) from chart."+format) {
				t.Errorf("import output = %q", out)
			}

			snap := Editor.Snapshot()
			if snap.ProjectTitle != "Website Relaunch" {
				t.Errorf("title = %q", snap.ProjectTitle)
			}
			if len(snap.Tasks) != 2 {
				t.Fatalf("tasks = %+v", snap.Tasks)
			}
			build := mustTask(t, 2)
			if build.Group != "Engineering" || !build.Dependencies.Contains(1) {
				t.Errorf("task #2 = %+v", build)
			}
			if build.Start.DMY() != "16/01/2024" || build.End.DMY() != "31/01/2024" {
				t.Errorf("task #2 dates = %s..%s", build.Start, build.End)
			}
		})
	}
}

func TestExport_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	withBasePath(t, dir)
	withEditor(t, groupedTasks())

	if _, err := runCmd(t, exportCmd, []string{"JSON"}, nil, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := filepath.Join(dir, exportDir, workbook.SafeFilename("Website Relaunch")+".json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected export at %s: %v", want, err)
	}
}

func TestExport_Stdout(t *testing.T) {
	withEditor(t, groupedTasks())
	out, err := runCmd(t, exportCmd, []string{"yaml"}, map[string]string{"out": "-"}, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "project_title: Website Relaunch") {
		t.Errorf("yaml output = %q", out)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	withEditor(t, groupedTasks())
	_, err := runCmd(t, exportCmd, []string{"pdf"}, nil, "")
	if err == nil || !strings.Contains(err.Error(), "unsupported export format") {
		t.Errorf("err = %v", err)
	}
}

func TestImport_AsksBeforeReplacing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.json")
	withEditor(t, groupedTasks())
	if _, err := runCmd(t, exportCmd, []string{"json"}, map[string]string{"out": path}, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := Editor.SetTitle("Changed"); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, importCmd, []string{path}, nil, "n\n")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Replace the 2 existing task(s) with 2 imported task(s)?") || !strings.Contains(out, "Import cancelled.") {
		t.Errorf("output = %q", out)
	}
	if title := Editor.Snapshot().ProjectTitle; title != "Changed" {
		t.Errorf("declined import changed the title to %q", title)
	}

	if _, err := runCmd(t, importCmd, []string{path}, map[string]string{"yes": "true"}, ""); err != nil {
		t.Fatalf("import --yes: %v", err)
	}
	if title := Editor.Snapshot().ProjectTitle; title != "Website Relaunch" {
		t.Errorf("title after import = %q", title)
	}
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(dir, "nope.json"), "opening"},
		{"unsupported extension", write("plan.txt", "tasks: []"), "unsupported import file"},
		{"html without state", write("page.html", "<html><body>chart</body></html>"), "No embedded project state"},
		{"cyclic snapshot", write("cycle.json", `{"tasks":[
			{"id":1,"name":"A","group":"","start":"01/01/2024","end":"02/01/2024","progress":0,"dependencies":"2"},
			{"id":2,"name":"B","group":"","start":"03/01/2024","end":"04/01/2024","progress":0,"dependencies":"1"}
		],"projectGroups":[],"projectTitle":"T","projectSubtitle":"S"}`), "circular dependency"},
		{"duplicate task ids", write("dupes.json", `{"tasks":[
			{"id":1,"name":"A","group":"","start":"01/01/2024","end":"02/01/2024","progress":0,"dependencies":""},
			{"id":1,"name":"B","group":"","start":"03/01/2024","end":"04/01/2024","progress":0,"dependencies":""}
		],"projectGroups":[],"projectTitle":"T","projectSubtitle":"S"}`), "used more than once"},
		{"end before start", write("backwards.json", `{"tasks":[
			{"id":1,"name":"A","group":"","start":"10/01/2024","end":"02/01/2024","progress":0,"dependencies":""}
		],"projectGroups":[],"projectTitle":"T","projectSubtitle":"S"}`), "End date must be after start date"},
		{"not a workbook", write("book.xlsx", "plain text"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEditor(t, groupedTasks())
			before := Editor.Snapshot()

			_, err := runCmd(t, importCmd, []string{tt.path}, map[string]string{"yes": "true"}, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
			if after := Editor.Snapshot(); len(after.Tasks) != len(before.Tasks) || after.ProjectTitle != before.ProjectTitle {
				t.Error("failed import changed the project")
			}
		})
	}
}

func TestRenderCmd(t *testing.T) {
	withEditor(t, groupedTasks())

	out, err := runCmd(t, renderCmd, nil, nil, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "<svg") || !strings.Contains(out, "Build") {
		t.Errorf("render output is not an SVG chart: %.200q", out)
	}

	path := filepath.Join(t.TempDir(), "chart.svg")
	if _, err := runCmd(t, renderCmd, nil, map[string]string{"print": "true", "width": "900", "out": path}, ""); err != nil {
		t.Fatalf("render --print: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("print file = %.200q", data)
	}
}
