package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var eventTypes = []string{
	"task.added", "task.updated", "task.move", "task.resize_left", "task.resize_right",
	"task.deleted", "group.added", "group.deleted", "view.changed", "column.resized",
	"project.retitled", "project.replaced", "project.cleared",
}

// EventCount equals the number of events written, the per-type counts sum to
// it, and CascadeShifts equals the number of shifted ids on task events.
func TestProperty_MetricsMatchWrittenEvents(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			rt.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		wantShifts := 0
		for i := 0; i < n; i++ {
			typ := rapid.SampledFrom(eventTypes).Draw(rt, fmt.Sprintf("type_%d", i))
			shifted := rapid.SliceOfN(rapid.IntRange(1, 20), 0, 4).Draw(rt, fmt.Sprintf("shifted_%d", i))
			if typ[:5] == "task." {
				wantShifts += len(shifted)
			}
			err := el.Write(Event{
				Time:  base.Add(time.Duration(i) * time.Minute),
				Level: "INFO",
				Type:  typ,
				Data:  map[string]any{"shifted": shifted},
			})
			if err != nil {
				rt.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(base)
		if err != nil {
			rt.Fatalf("calculating metrics: %v", err)
		}
		if m.EventCount != n {
			rt.Errorf("EventCount = %d, want %d", m.EventCount, n)
		}
		sum := 0
		for _, c := range m.EventsByType {
			sum += c
		}
		if sum != n {
			rt.Errorf("EventsByType sums to %d, want %d", sum, n)
		}
		if m.CascadeShifts != wantShifts {
			rt.Errorf("CascadeShifts = %d, want %d", m.CascadeShifts, wantShifts)
		}
		total := 0
		for _, tc := range m.MostShifted {
			total += tc.Count
		}
		if total != wantShifts {
			rt.Errorf("MostShifted counts sum to %d, want %d", total, wantShifts)
		}
	})
}
