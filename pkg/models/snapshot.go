package models

import (
	"fmt"
	"strings"
)

// ViewMode is the zoom granularity of the timeline header.
type ViewMode string

const (
	ViewDay     ViewMode = "day"
	ViewWeek    ViewMode = "week"
	ViewMonth   ViewMode = "month"
	ViewQuarter ViewMode = "quarter"
	ViewYear    ViewMode = "year"
)

// ViewModes lists every granularity from finest to coarsest.
var ViewModes = []ViewMode{ViewDay, ViewWeek, ViewMonth, ViewQuarter, ViewYear}

// Valid reports whether v is a known granularity.
func (v ViewMode) Valid() bool {
	for _, m := range ViewModes {
		if m == v {
			return true
		}
	}
	return false
}

// Next returns the following granularity, wrapping from year back to day.
func (v ViewMode) Next() ViewMode {
	for i, m := range ViewModes {
		if m == v {
			return ViewModes[(i+1)%len(ViewModes)]
		}
	}
	return ViewDay
}

// ParseViewMode converts user input to a ViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	v := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("invalid view mode %q: must be one of day, week, month, quarter, year", s)
	}
	return v, nil
}

// Column identifies one of the frozen left-hand columns.
type Column string

const (
	ColumnGroup    Column = "group"
	ColumnTaskName Column = "taskName"
	ColumnDeps     Column = "deps"
)

// ParseColumn converts user input to a Column. "task_name" and "name" are
// accepted aliases for taskName.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "group":
		return ColumnGroup, nil
	case "taskname", "task_name", "name":
		return ColumnTaskName, nil
	case "deps", "dependencies":
		return ColumnDeps, nil
	}
	return "", fmt.Errorf("invalid column %q: must be one of group, taskName, deps", s)
}

// ColumnWidths holds the pixel widths of the frozen columns.
type ColumnWidths struct {
	Group    int `json:"group" yaml:"group" mapstructure:"group"`
	TaskName int `json:"taskName" yaml:"task_name" mapstructure:"task_name"`
	Deps     int `json:"deps" yaml:"deps" mapstructure:"deps"`
}

// DefaultColumnWidths returns the widths used when none are supplied.
func DefaultColumnWidths() ColumnWidths {
	return ColumnWidths{Group: 150, TaskName: 250, Deps: 100}
}

// Total is the combined frozen width.
func (w ColumnWidths) Total() int {
	return w.Group + w.TaskName + w.Deps
}

// Get returns the width of col.
func (w ColumnWidths) Get(col Column) int {
	switch col {
	case ColumnGroup:
		return w.Group
	case ColumnTaskName:
		return w.TaskName
	case ColumnDeps:
		return w.Deps
	}
	return 0
}

// With returns a copy of w with col set to width.
func (w ColumnWidths) With(col Column, width int) ColumnWidths {
	switch col {
	case ColumnGroup:
		w.Group = width
	case ColumnTaskName:
		w.TaskName = width
	case ColumnDeps:
		w.Deps = width
	}
	return w
}

// Default project titles.
const (
	DefaultProjectTitle    = "Project Timeline"
	DefaultProjectSubtitle = "Interactive Gantt Chart"
)

// Snapshot is the complete persisted state handed to and from the host.
// Field names follow the host's JSON shape.
type Snapshot struct {
	Tasks           []Task        `json:"tasks" yaml:"tasks"`
	ProjectGroups   []Group       `json:"projectGroups" yaml:"project_groups"`
	ProjectTitle    string        `json:"projectTitle" yaml:"project_title"`
	ProjectSubtitle string        `json:"projectSubtitle" yaml:"project_subtitle"`
	ViewMode        ViewMode      `json:"viewMode,omitempty" yaml:"view_mode,omitempty"`
	ColumnWidths    *ColumnWidths `json:"columnWidths,omitempty" yaml:"column_widths,omitempty"`
}

// EmptySnapshot returns the documented defaults.
func EmptySnapshot() Snapshot {
	widths := DefaultColumnWidths()
	return Snapshot{
		Tasks:           []Task{},
		ProjectGroups:   []Group{},
		ProjectTitle:    DefaultProjectTitle,
		ProjectSubtitle: DefaultProjectSubtitle,
		ViewMode:        ViewDay,
		ColumnWidths:    &widths,
	}
}

// WithDefaults fills absent fields with the documented defaults. Zero
// individual column widths fall back one by one.
func (s Snapshot) WithDefaults() Snapshot {
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.ProjectGroups == nil {
		s.ProjectGroups = []Group{}
	}
	if s.ProjectTitle == "" {
		s.ProjectTitle = DefaultProjectTitle
	}
	if s.ProjectSubtitle == "" {
		s.ProjectSubtitle = DefaultProjectSubtitle
	}
	if !s.ViewMode.Valid() {
		s.ViewMode = ViewDay
	}
	def := DefaultColumnWidths()
	widths := def
	if s.ColumnWidths != nil {
		widths = *s.ColumnWidths
		if widths.Group <= 0 {
			widths.Group = def.Group
		}
		if widths.TaskName <= 0 {
			widths.TaskName = def.TaskName
		}
		if widths.Deps <= 0 {
			widths.Deps = def.Deps
		}
	}
	s.ColumnWidths = &widths
	return s
}

// Widths returns the column widths, defaulting when unset.
func (s Snapshot) Widths() ColumnWidths {
	if s.ColumnWidths == nil {
		return DefaultColumnWidths()
	}
	return *s.ColumnWidths
}

// Clone returns a deep copy so that callers can never alias store state.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	out.ProjectGroups = append([]Group{}, s.ProjectGroups...)
	if s.ColumnWidths != nil {
		w := *s.ColumnWidths
		out.ColumnWidths = &w
	}
	return out
}

// GroupColor returns the colour of the named group, if it exists.
func (s Snapshot) GroupColor(name string) (string, bool) {
	for _, g := range s.ProjectGroups {
		if g.Name == name {
			return g.Color, true
		}
	}
	return "", false
}

// FindTask returns the task with the given id.
func (s Snapshot) FindTask(id int) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// BarColor resolves the colour a task is drawn with: its own colour, else its
// group's colour, else DefaultTaskColor. Dangling groups count as no group.
func BarColor(t Task, groups []Group) string {
	if t.Color != "" {
		return t.Color
	}
	for _, g := range groups {
		if g.Name == t.Group && g.Color != "" {
			return g.Color
		}
	}
	return DefaultTaskColor
}
