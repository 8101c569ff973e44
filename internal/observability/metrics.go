package observability

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Metrics summarises editing activity derived from the event log.
type Metrics struct {
	TasksAdded    int            `json:"tasks_added"`
	TasksEdited   int            `json:"tasks_edited"`
	TasksDeleted  int            `json:"tasks_deleted"`
	DragEdits     int            `json:"drag_edits"`
	CascadeShifts int            `json:"cascade_shifts"`
	GroupsAdded   int            `json:"groups_added"`
	GroupsDeleted int            `json:"groups_deleted"`
	Imports       int            `json:"imports"`
	EventsByType  map[string]int `json:"events_by_type"`
	MostShifted   []TaskCount    `json:"most_shifted,omitempty"`
	EventCount    int            `json:"event_count"`
	OldestEvent   *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent   *time.Time     `json:"newest_event,omitempty"`
}

// TaskCount pairs a task id with how often it was moved by a cascade.
type TaskCount struct {
	TaskID int `json:"task_id"`
	Count  int `json:"count"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventsByType: make(map[string]int)}
	m.EventCount = len(events)
	shifted := make(map[int]int)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t
		m.EventsByType[event.Type]++

		switch event.Type {
		case "task.added":
			m.TasksAdded++
		case "task.updated":
			m.TasksEdited++
		case "task.move", "task.resize_left", "task.resize_right":
			m.TasksEdited++
			m.DragEdits++
		case "task.deleted":
			m.TasksDeleted++
		case "group.added":
			m.GroupsAdded++
		case "group.deleted":
			m.GroupsDeleted++
		case "project.replaced":
			m.Imports++
		}

		if strings.HasPrefix(event.Type, "task.") {
			for _, id := range ShiftedIDs(event) {
				shifted[id]++
				m.CascadeShifts++
			}
		}
	}

	for id, n := range shifted {
		m.MostShifted = append(m.MostShifted, TaskCount{TaskID: id, Count: n})
	}
	sort.Slice(m.MostShifted, func(i, j int) bool {
		a, b := m.MostShifted[i], m.MostShifted[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.TaskID < b.TaskID
	})

	return m, nil
}

// TaskID returns the task id carried by an event, if any. Ids decode from
// JSON as float64.
func TaskID(event Event) (int, bool) {
	return asInt(event.Data["task_id"])
}

// ShiftedIDs returns the dependents an edit event moved along with it.
func ShiftedIDs(event Event) []int {
	var out []int
	switch v := event.Data["shifted"].(type) {
	case []int:
		out = append(out, v...)
	case []any:
		for _, x := range v {
			if id, ok := asInt(x); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}
