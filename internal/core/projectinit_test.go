package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// memStore keeps the saved snapshot in memory and writes a marker file so
// Init sees the project as existing on the next run.
type memStore struct {
	path  string
	saved *models.Snapshot
}

func (m *memStore) Load() (models.Snapshot, error) {
	if m.saved == nil {
		return models.EmptySnapshot(), nil
	}
	return *m.saved, nil
}

func (m *memStore) Save(snap models.Snapshot) error {
	m.saved = &snap
	return os.WriteFile(m.path, []byte("saved\n"), 0o600)
}

func (m *memStore) Path() string { return m.path }

func newInitializer(stores *[]*memStore) ProjectInitializer {
	return NewProjectInitializer(func(path string) SnapshotStore {
		s := &memStore{path: path}
		*stores = append(*stores, s)
		return s
	})
}

func TestInit_CreatesWorkspace(t *testing.T) {
	base := filepath.Join(t.TempDir(), "ws")
	var stores []*memStore
	pi := newInitializer(&stores)

	result, err := pi.Init(InitConfig{BasePath: base, Title: "Launch", ViewMode: models.ViewWeek})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, f := range []string{ConfigFileName, ".gitignore", "project.yaml", "exports"} {
		if _, err := os.Stat(filepath.Join(base, f)); err != nil {
			t.Errorf("%s not created: %v", f, err)
		}
	}
	if len(result.Created) != 5 || len(result.Skipped) != 0 {
		t.Errorf("Created = %v, Skipped = %v", result.Created, result.Skipped)
	}

	if len(stores) != 1 || stores[0].saved == nil {
		t.Fatal("project snapshot was not saved")
	}
	snap := *stores[0].saved
	if snap.ProjectTitle != "Launch" || snap.ProjectSubtitle != models.DefaultProjectSubtitle {
		t.Errorf("titles = %q / %q", snap.ProjectTitle, snap.ProjectSubtitle)
	}
	if snap.ViewMode != models.ViewWeek || len(snap.Tasks) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}

	ignore, _ := os.ReadFile(filepath.Join(base, ".gitignore"))
	if !strings.Contains(string(ignore), "exports/") {
		t.Errorf(".gitignore = %q", ignore)
	}
}

func TestInit_ConfigTemplateLoads(t *testing.T) {
	base := t.TempDir()
	var stores []*memStore
	if _, err := newInitializer(&stores).Init(InitConfig{BasePath: base, ProjectFile: "roadmap.json", ViewMode: models.ViewQuarter}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cm := NewConfigurationManager(base)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig: %v", err)
	}
	if cfg.ProjectFile != "roadmap.json" || cfg.DefaultViewMode != models.ViewQuarter {
		t.Errorf("config = %+v", cfg)
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("generated config does not validate: %v", err)
	}
}

func TestInit_Sample(t *testing.T) {
	var stores []*memStore
	if _, err := newInitializer(&stores).Init(InitConfig{BasePath: t.TempDir(), Sample: true}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	snap := *stores[0].saved
	if len(snap.Tasks) != 5 || snap.ProjectTitle != "Software Development Project" {
		t.Errorf("sample not written: %d tasks, %q", len(snap.Tasks), snap.ProjectTitle)
	}
}

func TestInit_Idempotent(t *testing.T) {
	base := t.TempDir()
	var stores []*memStore
	pi := newInitializer(&stores)
	if _, err := pi.Init(InitConfig{BasePath: base}); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	writeFile(t, base, ConfigFileName, "conflicts:\n  policy: block\n")

	result, err := pi.Init(InitConfig{BasePath: base})
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if len(result.Created) != 0 {
		t.Errorf("second Init created %v", result.Created)
	}
	if len(stores) != 1 {
		t.Error("existing project file was overwritten")
	}
	got, _ := os.ReadFile(filepath.Join(base, ConfigFileName))
	if !strings.Contains(string(got), "block") {
		t.Error("existing config was overwritten")
	}
}

func TestSampleSnapshotIsAcyclic(t *testing.T) {
	snap := SampleSnapshot()
	if _, err := TopologicalOrder(snap.Tasks); err != nil {
		t.Fatalf("sample has a cycle: %v", err)
	}
	for _, tk := range snap.Tasks {
		if err := NewStore(snap).ValidateTask(tk, false); err != nil {
			t.Errorf("sample task #%d invalid: %v", tk.ID, err)
		}
	}
}
