package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/valter-silva-au/gantt/pkg/models"
	"pgregory.net/rapid"
)

func genSnapshot(t *rapid.T) models.Snapshot {
	base := models.MustParseDate("01/01/2020")
	n := rapid.IntRange(0, 8).Draw(t, "tasks")
	snap := models.EmptySnapshot()
	for i := 1; i <= n; i++ {
		start := models.AddDays(base, rapid.IntRange(0, 2000).Draw(t, "start"))
		var deps models.DependencyList
		for p := 1; p < i; p++ {
			if rapid.Bool().Draw(t, "dep") {
				deps = append(deps, p)
			}
		}
		snap.Tasks = append(snap.Tasks, models.Task{
			ID:           i,
			Name:         rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,15}`).Draw(t, "name"),
			Group:        rapid.SampledFrom([]string{"", "Design", "Build"}).Draw(t, "group"),
			Start:        start,
			End:          models.AddDays(start, rapid.IntRange(0, 90).Draw(t, "dur")),
			Progress:     rapid.IntRange(0, 100).Draw(t, "progress"),
			Dependencies: deps,
			Color:        rapid.SampledFrom([]string{"", "#FF6B6B", "#006152"}).Draw(t, "color"),
		})
	}
	snap.ProjectGroups = []models.Group{{Name: "Design", Color: "#25B8A3"}}
	snap.ViewMode = rapid.SampledFrom(models.ViewModes).Draw(t, "view")
	return snap
}

// Save followed by Load returns the snapshot unchanged in both formats.
func TestProperty_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		snap := genSnapshot(rt)
		name := rapid.SampledFrom([]string{"p.yaml", "p.json"}).Draw(rt, "file")
		s := NewSnapshotStore(filepath.Join(dir, name))
		if err := s.Save(snap); err != nil {
			rt.Fatalf("Save: %v", err)
		}
		got, err := s.Load()
		if err != nil {
			rt.Fatalf("Load: %v", err)
		}
		if !reflect.DeepEqual(got, snap) {
			rt.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
		}
	})
}
