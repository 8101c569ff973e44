package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultTaskColor is the bar colour used when neither the task nor its group
// supplies one.
const DefaultTaskColor = "#79D3C9"

// Task is a schedulable unit of work. ID is unique and positive; End is never
// before Start once a task is at rest in the store.
type Task struct {
	ID           int            `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Group        string         `json:"group" yaml:"group"`
	Start        Date           `json:"start" yaml:"start"`
	End          Date           `json:"end" yaml:"end"`
	Progress     int            `json:"progress" yaml:"progress"`
	Dependencies DependencyList `json:"dependencies" yaml:"dependencies"`
	Color        string         `json:"color,omitempty" yaml:"color,omitempty"`
}

// Duration returns the inclusive-exclusive day span End - Start. A one-day
// task has Duration 0.
func (t Task) Duration() int {
	return DayDiff(t.Start, t.End)
}

// DependsOn reports whether id is among t's dependencies.
func (t Task) DependsOn(id int) bool {
	return t.Dependencies.Contains(id)
}

// Clone returns a copy of t that shares no slices with it.
func (t Task) Clone() Task {
	out := t
	if t.Dependencies != nil {
		out.Dependencies = append(DependencyList(nil), t.Dependencies...)
	}
	return out
}

// Group is a named colour bucket for tasks. Names are unique ignoring case.
type Group struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// DependencyList is an ordered set of task IDs. On the wire it is a
// comma-separated string ("1,2,5"); a JSON array is accepted on input too.
type DependencyList []int

// ParseDependencyList parses a comma-separated id list. Blank entries are
// skipped; non-numeric entries are an error.
func ParseDependencyList(s string) (DependencyList, error) {
	var out DependencyList
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// Spreadsheets hand numeric cells back as "3.0" or "3".
		part = strings.TrimSuffix(part, ".0")
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid dependency id %q", part)
		}
		out = append(out, id)
	}
	return out.Normalize(0), nil
}

// Normalize drops duplicates, non-positive ids, and self (when self > 0),
// keeping first-seen order.
func (l DependencyList) Normalize(self int) DependencyList {
	if len(l) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(l))
	out := make(DependencyList, 0, len(l))
	for _, id := range l {
		if id <= 0 || (self > 0 && id == self) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Contains reports whether id is in the list.
func (l DependencyList) Contains(id int) bool {
	for _, d := range l {
		if d == id {
			return true
		}
	}
	return false
}

// Without returns the list with id removed.
func (l DependencyList) Without(id int) DependencyList {
	var out DependencyList
	for _, d := range l {
		if d != id {
			out = append(out, d)
		}
	}
	return out
}

// String renders the list in its comma-separated wire form.
func (l DependencyList) String() string {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// MarshalText implements encoding.TextMarshaler.
func (l DependencyList) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *DependencyList) UnmarshalText(text []byte) error {
	parsed, err := ParseDependencyList(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalJSON accepts "1,2", [1, 2] or null.
func (l *DependencyList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("decoding dependency array: %w", err)
		}
		*l = DependencyList(ids).Normalize(0)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Single numeric id, as spreadsheets and hand-written JSON produce.
		var id int
		if numErr := json.Unmarshal(data, &id); numErr == nil {
			*l = DependencyList{id}.Normalize(0)
			return nil
		}
		return fmt.Errorf("decoding dependencies: %w", err)
	}
	return l.UnmarshalText([]byte(s))
}

// MaxTaskID returns the largest id in tasks, or 0.
func MaxTaskID(tasks []Task) int {
	max := 0
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// NextTaskID returns max existing id + 1, or 1 for an empty set.
func NextTaskID(tasks []Task) int {
	return MaxTaskID(tasks) + 1
}

// SortTasksByID sorts tasks in place by ascending ID.
func SortTasksByID(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}
