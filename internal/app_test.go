package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/valter-silva-au/gantt/internal/cli"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/internal/integration"
	"github.com/valter-silva-au/gantt/internal/observability"
	"github.com/valter-silva-au/gantt/internal/storage"
	"github.com/valter-silva-au/gantt/pkg/models"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, core.ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, dir string) *App {
	t.Helper()
	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_EmptyWorkspace(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp(t, dir)

	if app.Editor == nil || app.Store == nil || app.ProjectInit == nil {
		t.Fatal("core services not wired")
	}
	if cli.Editor != app.Editor || cli.Store != app.Store || cli.BasePath != dir {
		t.Error("cli package variables not wired")
	}
	if app.EventLog == nil || app.MetricsCalc == nil || app.AlertEngine == nil {
		t.Error("observability not wired")
	}
	if app.Notifier != nil || app.Webhook != nil {
		t.Error("webhook wired without host.webhook_url")
	}

	snap := app.Editor.Snapshot()
	if len(snap.Tasks) != 0 || snap.ViewMode != app.Config.DefaultViewMode {
		t.Errorf("initial snapshot = %+v", snap)
	}
	if snap.ColumnWidths == nil || *snap.ColumnWidths != app.Config.ColumnWidths {
		t.Errorf("column widths = %+v, want %+v", snap.ColumnWidths, app.Config.ColumnWidths)
	}

	for _, name := range []string{eventLogName, defaultLogName} {
		if _, err := os.Stat(filepath.Join(dir, stateDir, name)); err != nil {
			t.Errorf("expected %s under %s: %v", name, stateDir, err)
		}
	}
}

func TestNewApp_ConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `project:
  file: plan.json
defaults:
  view_mode: month
  column_widths:
    group: 140
conflicts:
  policy: block
`)
	app := newTestApp(t, dir)

	if app.Config.ProjectFile != "plan.json" {
		t.Errorf("project file = %q", app.Config.ProjectFile)
	}
	if app.Editor.Policy() != models.ConflictBlock {
		t.Errorf("policy = %q, want block", app.Editor.Policy())
	}
	snap := app.Editor.Snapshot()
	if snap.ViewMode != models.ViewMonth || snap.ColumnWidths.Group != 140 {
		t.Errorf("snapshot defaults = %s %+v", snap.ViewMode, snap.ColumnWidths)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "conflicts:\n  policy: maybe\n")

	app, err := NewApp(dir)
	if err == nil {
		_ = app.Close()
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "conflicts.policy") {
		t.Errorf("err = %v", err)
	}
}

func TestNewApp_LoadsExistingProject(t *testing.T) {
	dir := t.TempDir()
	snap := models.EmptySnapshot()
	snap.ProjectTitle = "Launch"
	snap.Tasks = []models.Task{
		{ID: 1, Name: "Plan", Start: models.MustParseDate("01/01/2024"), End: models.MustParseDate("10/01/2024")},
		{ID: 2, Name: "Ship", Start: models.MustParseDate("11/01/2024"), End: models.MustParseDate("20/01/2024"), Dependencies: models.DependencyList{1}},
	}
	if err := storage.NewSnapshotStore(filepath.Join(dir, core.DefaultGlobalConfig().ProjectFile)).Save(snap); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, dir)
	got := app.Editor.Snapshot()
	if got.ProjectTitle != "Launch" || len(got.Tasks) != 2 {
		t.Errorf("loaded snapshot = %+v", got)
	}
}

func TestNewApp_RejectsCyclicProject(t *testing.T) {
	dir := t.TempDir()
	snap := models.EmptySnapshot()
	snap.Tasks = []models.Task{
		{ID: 1, Name: "A", Start: models.MustParseDate("01/01/2024"), End: models.MustParseDate("02/01/2024"), Dependencies: models.DependencyList{2}},
		{ID: 2, Name: "B", Start: models.MustParseDate("03/01/2024"), End: models.MustParseDate("04/01/2024"), Dependencies: models.DependencyList{1}},
	}
	if err := storage.NewSnapshotStore(filepath.Join(dir, core.DefaultGlobalConfig().ProjectFile)).Save(snap); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(dir)
	if err == nil {
		_ = app.Close()
		t.Fatal("expected error for a cyclic project")
	}
	if !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("err = %v", err)
	}
}

func TestNewApp_RejectsDuplicateTaskIDs(t *testing.T) {
	dir := t.TempDir()
	snap := models.EmptySnapshot()
	snap.Tasks = []models.Task{
		{ID: 1, Name: "A", Start: models.MustParseDate("01/01/2024"), End: models.MustParseDate("02/01/2024")},
		{ID: 1, Name: "B", Start: models.MustParseDate("03/01/2024"), End: models.MustParseDate("04/01/2024")},
	}
	if err := storage.NewSnapshotStore(filepath.Join(dir, core.DefaultGlobalConfig().ProjectFile)).Save(snap); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(dir)
	if err == nil {
		_ = app.Close()
		t.Fatal("expected error for duplicate task ids")
	}
	if !strings.Contains(err.Error(), "used more than once") {
		t.Errorf("err = %v", err)
	}
}

func TestNewApp_EventsDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "events:\n  enabled: false\n")
	app := newTestApp(t, dir)

	if app.EventLog != nil || app.MetricsCalc != nil {
		t.Error("event log wired while disabled")
	}
	if cli.EventLog != nil || cli.MetricsCalc != nil {
		t.Error("cli observability variables set while disabled")
	}
	if _, _, err := app.Editor.SaveTask(models.Task{
		Name:  "Plan",
		Start: models.MustParseDate("01/01/2024"),
		End:   models.MustParseDate("05/01/2024"),
	}); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, stateDir, eventLogName)); !os.IsNotExist(err) {
		t.Errorf("event log created while disabled: %v", err)
	}
}

func TestNewApp_EditsPersistAndRecord(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp(t, dir)

	added, _, err := app.Editor.SaveTask(models.Task{
		Name:  "Design",
		Start: models.MustParseDate("01/02/2024"),
		End:   models.MustParseDate("07/02/2024"),
	})
	if err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	saved, err := storage.NewSnapshotStore(filepath.Join(dir, app.Config.ProjectFile)).Load()
	if err != nil {
		t.Fatalf("loading saved project: %v", err)
	}
	if len(saved.Tasks) != 1 || saved.Tasks[0].ID != added.ID || saved.Tasks[0].Name != "Design" {
		t.Errorf("saved tasks = %+v", saved.Tasks)
	}

	events, err := app.EventLog.Read(observability.EventFilter{Type: "task.added"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("task.added events = %d, want 1", len(events))
	}
	m, err := app.MetricsCalc.Calculate(events[0].Time.Add(-1))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if m.TasksAdded != 1 {
		t.Errorf("TasksAdded = %d, want 1", m.TasksAdded)
	}

	// A second App over the same workspace sees the edit.
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened := newTestApp(t, dir)
	if n := len(reopened.Editor.Snapshot().Tasks); n != 1 {
		t.Errorf("reopened project has %d task(s), want 1", n)
	}
}

func TestNewApp_WebhookReceivesSnapshots(t *testing.T) {
	var (
		mu     sync.Mutex
		events []integration.SnapshotEvent
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev integration.SnapshotEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeConfig(t, dir, "host:\n  webhook_url: "+srv.URL+"\n")
	app := newTestApp(t, dir)

	if app.Webhook == nil || app.Notifier == nil || cli.Notifier == nil {
		t.Fatal("webhook not wired")
	}
	if err := app.Editor.SetTitle("Hosted"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("webhook received %d event(s), want 1", len(events))
	}
	if events[0].Event != "snapshot.changed" || events[0].Snapshot.ProjectTitle != "Hosted" {
		t.Errorf("webhook event = %+v", events[0])
	}
}

func TestApp_CloseWithoutEventLog(t *testing.T) {
	app := &App{}
	if err := app.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestApp_LogPath(t *testing.T) {
	base := filepath.Join("/work", "space")
	tests := []struct {
		logFile string
		want    string
	}{
		{"", filepath.Join(base, stateDir, defaultLogName)},
		{stderrLogFile, ""},
		{"logs/gantt.log", filepath.Join(base, "logs", "gantt.log")},
		{"/var/log/gantt.log", "/var/log/gantt.log"},
	}
	for _, tt := range tests {
		t.Run(tt.logFile, func(t *testing.T) {
			app := &App{BasePath: base, Config: &models.GlobalConfig{LogFile: tt.logFile}}
			if got := app.logPath(); got != tt.want {
				t.Errorf("logPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveBasePath_Env(t *testing.T) {
	t.Setenv("GANTT_HOME", "/custom/gantt")
	if got := ResolveBasePath(); got != "/custom/gantt" {
		t.Errorf("ResolveBasePath() = %q, want /custom/gantt", got)
	}
}

func TestResolveBasePath_WalksUp(t *testing.T) {
	t.Setenv("GANTT_HOME", "")
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeConfig(t, root, "")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o750); err != nil {
		t.Fatal(err)
	}
	t.Chdir(deep)

	if got := ResolveBasePath(); got != root {
		t.Errorf("ResolveBasePath() = %q, want %q", got, root)
	}
}

func TestResolveBasePath_FallsBackToCwd(t *testing.T) {
	t.Setenv("GANTT_HOME", "")
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	got := ResolveBasePath()
	// A .ganttconfig above the temp dir would win; only assert when none exists.
	if got != dir && !fileExists(filepath.Join(got, core.ConfigFileName)) {
		t.Errorf("ResolveBasePath() = %q, want %q", got, dir)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
