package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectFile != "project.yaml" {
		t.Errorf("ProjectFile = %q, want %q", cfg.ProjectFile, "project.yaml")
	}
	if cfg.DefaultViewMode != models.ViewDay {
		t.Errorf("DefaultViewMode = %q, want day", cfg.DefaultViewMode)
	}
	if cfg.ColumnWidths != models.DefaultColumnWidths() {
		t.Errorf("ColumnWidths = %+v", cfg.ColumnWidths)
	}
	if cfg.ContainerWidth != DefaultContainerWidth {
		t.Errorf("ContainerWidth = %d", cfg.ContainerWidth)
	}
	if cfg.ConflictPolicy != models.ConflictWarn {
		t.Errorf("ConflictPolicy = %q, want warn", cfg.ConflictPolicy)
	}
	if !cfg.EventsEnabled {
		t.Error("EventsEnabled should default to true")
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalConfig_ReadsGanttconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".ganttconfig.yaml", `
project:
  file: plan.json
defaults:
  view_mode: Month
  column_widths:
    group: 120
    task_name: 300
render:
  container_width: 1600
conflicts:
  policy: block
log:
  level: debug
  file: gantt.log
events:
  enabled: false
host:
  webhook_url: http://localhost:9000/state
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ProjectFile != "plan.json" {
		t.Errorf("ProjectFile = %q", cfg.ProjectFile)
	}
	if cfg.DefaultViewMode != models.ViewMonth {
		t.Errorf("DefaultViewMode = %q, want month", cfg.DefaultViewMode)
	}
	want := models.ColumnWidths{Group: 120, TaskName: 300, Deps: 100}
	if cfg.ColumnWidths != want {
		t.Errorf("ColumnWidths = %+v, want %+v", cfg.ColumnWidths, want)
	}
	if cfg.ContainerWidth != 1600 {
		t.Errorf("ContainerWidth = %d", cfg.ContainerWidth)
	}
	if cfg.ConflictPolicy != models.ConflictBlock {
		t.Errorf("ConflictPolicy = %q", cfg.ConflictPolicy)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != "gantt.log" {
		t.Errorf("log = %q %q", cfg.LogLevel, cfg.LogFile)
	}
	if cfg.EventsEnabled {
		t.Error("EventsEnabled = true, want false")
	}
	if cfg.WebhookURL != "http://localhost:9000/state" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL)
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadGlobalConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".ganttconfig.yaml", "conflicts:\n  policy: warn\n")
	t.Setenv("GANTT_CONFLICTS_POLICY", "block")

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConflictPolicy != models.ConflictBlock {
		t.Errorf("ConflictPolicy = %q, want block from env", cfg.ConflictPolicy)
	}
}

func TestLoadGlobalConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".ganttconfig.yaml", "defaults: [unclosed\n")

	_, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), ConfigFileName) {
		t.Errorf("error should name the file: %v", err)
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.DefaultViewMode = "decade"
	cfg.ColumnWidths.Deps = 10
	cfg.ContainerWidth = 0
	cfg.ConflictPolicy = "ignore"
	cfg.LogLevel = "loud"
	cfg.WebhookURL = "ftp://example.com"

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"global config validation failed",
		"defaults.view_mode",
		"defaults.column_widths.deps must be at least 50, got 10",
		"render.container_width",
		"conflicts.policy",
		"log.level",
		"host.webhook_url",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%s", want, msg)
		}
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	if err := NewConfigurationManager("").ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
