package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// MinColumnWidth is the narrowest a frozen column may be resized to.
const MinColumnWidth = 50

// DefaultGroupColor is used when a group is added without a colour.
const DefaultGroupColor = models.DefaultTaskColor

// Store is the in-memory ordered collection of tasks and groups plus the
// project metadata. It is not safe for concurrent use; the Editor owns it.
type Store struct {
	tasks    []models.Task
	groups   []models.Group
	title    string
	subtitle string
	viewMode models.ViewMode
	widths   models.ColumnWidths
}

// NewStore creates a Store from a snapshot, filling absent fields with the
// documented defaults.
func NewStore(snap models.Snapshot) *Store {
	s := &Store{}
	s.load(snap)
	return s
}

func (s *Store) load(snap models.Snapshot) {
	snap = snap.WithDefaults().Clone()
	for i := range snap.Tasks {
		snap.Tasks[i].Dependencies = snap.Tasks[i].Dependencies.Normalize(snap.Tasks[i].ID)
	}
	s.tasks = snap.Tasks
	s.groups = snap.ProjectGroups
	s.title = snap.ProjectTitle
	s.subtitle = snap.ProjectSubtitle
	s.viewMode = snap.ViewMode
	s.widths = snap.Widths()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	widths := s.widths
	snap := models.Snapshot{
		Tasks:           s.tasks,
		ProjectGroups:   s.groups,
		ProjectTitle:    s.title,
		ProjectSubtitle: s.subtitle,
		ViewMode:        s.viewMode,
		ColumnWidths:    &widths,
	}
	return snap.Clone()
}

// Tasks returns a copy of the tasks in store order.
func (s *Store) Tasks() []models.Task {
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Groups returns a copy of the groups in store order.
func (s *Store) Groups() []models.Group {
	return append([]models.Group{}, s.groups...)
}

// Task returns the task with the given id.
func (s *Store) Task(id int) (models.Task, error) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return models.Task{}, fmt.Errorf("task #%d: %w", id, ErrTaskNotFound)
}

// NextID returns the id the next added task receives.
func (s *Store) NextID() int {
	return models.NextTaskID(s.tasks)
}

// ValidateTask checks a task draft against the store. isNew controls whether
// the id must be unused or must already exist.
func (s *Store) ValidateTask(t models.Task, isNew bool) error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("name", "Task name cannot be empty.")
	}
	if t.Start.IsZero() {
		return NewValidationError("start", "Start date is required.")
	}
	if t.End.IsZero() {
		return NewValidationError("end", "End date is required.")
	}
	if t.Start.After(t.End) {
		return NewValidationError("end", "End date must be after start date.")
	}
	if t.Progress < 0 || t.Progress > 100 {
		return NewValidationError("progress", fmt.Sprintf("Progress must be between 0 and 100, got %d.", t.Progress))
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID && !isNew {
			return NewValidationError("dependencies", "A task cannot depend on itself.")
		}
		if _, err := s.Task(dep); err != nil {
			return NewValidationError("dependencies", fmt.Sprintf("Dependency #%d does not exist.", dep))
		}
	}
	if !isNew {
		if _, err := s.Task(t.ID); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSnapshot checks the invariants a whole-state load must satisfy
// before it reaches a Store: positive unique ids, End not before Start, no
// self-dependencies and an acyclic dependency graph.
func ValidateSnapshot(snap models.Snapshot) error {
	seen := make(map[int]bool, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.ID <= 0 {
			return NewValidationError("id", fmt.Sprintf("Task %q has invalid id %d; ids must be positive.", t.Name, t.ID))
		}
		if seen[t.ID] {
			return NewValidationError("id", fmt.Sprintf("Task id %d is used more than once.", t.ID))
		}
		seen[t.ID] = true
		if t.End.Before(t.Start) {
			return NewValidationError("end", fmt.Sprintf("Task #%d: End date must be after start date.", t.ID))
		}
		if t.Dependencies.Contains(t.ID) {
			return NewValidationError("dependencies", fmt.Sprintf("Task #%d cannot depend on itself.", t.ID))
		}
	}
	if _, err := TopologicalOrder(snap.Tasks); err != nil {
		return err
	}
	return nil
}

// AddTask appends t with the next free id and returns the stored task.
func (s *Store) AddTask(t models.Task) models.Task {
	t = t.Clone()
	t.ID = s.NextID()
	t.Dependencies = t.Dependencies.Normalize(t.ID)
	s.tasks = append(s.tasks, t)
	return t.Clone()
}

// SetTasks replaces the whole task list, keeping the caller's order.
func (s *Store) SetTasks(tasks []models.Task) {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
		out[i].Dependencies = out[i].Dependencies.Normalize(t.ID)
	}
	s.tasks = out
}

// DeleteTask removes the task and strips its id from every dependency list.
func (s *Store) DeleteTask(id int) error {
	idx := -1
	for i, t := range s.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("deleting task #%d: %w", id, ErrTaskNotFound)
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	for i := range s.tasks {
		s.tasks[i].Dependencies = s.tasks[i].Dependencies.Without(id)
	}
	return nil
}

// AddGroup creates a group. Names are trimmed and must be unique ignoring case.
func (s *Store) AddGroup(name, color string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, NewValidationError("name", "Group name cannot be empty.")
	}
	for _, g := range s.groups {
		if strings.EqualFold(g.Name, name) {
			return models.Group{}, NewValidationError("name", "A group with this name already exists.")
		}
	}
	if strings.TrimSpace(color) == "" {
		color = DefaultGroupColor
	}
	g := models.Group{Name: name, Color: color}
	s.groups = append(s.groups, g)
	return g, nil
}

// DeleteGroup removes the group and clears the group field of every task
// that references it by exact name. It returns the number of tasks cleared.
func (s *Store) DeleteGroup(name string) (int, error) {
	idx := -1
	for i, g := range s.groups {
		if g.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("deleting group %q: %w", name, ErrGroupNotFound)
	}
	s.groups = append(s.groups[:idx], s.groups[idx+1:]...)
	cleared := 0
	for i := range s.tasks {
		if s.tasks[i].Group == name {
			s.tasks[i].Group = ""
			cleared++
		}
	}
	return cleared, nil
}

// SetViewMode changes the zoom granularity.
func (s *Store) SetViewMode(v models.ViewMode) error {
	if !v.Valid() {
		return NewValidationError("viewMode", fmt.Sprintf("Unknown view mode %q.", v))
	}
	s.viewMode = v
	return nil
}

// ViewMode returns the active zoom granularity.
func (s *Store) ViewMode() models.ViewMode {
	return s.viewMode
}

// SetColumnWidth sets a frozen column width, clamped to MinColumnWidth. It
// returns the width actually stored.
func (s *Store) SetColumnWidth(col models.Column, width int) (int, error) {
	switch col {
	case models.ColumnGroup, models.ColumnTaskName, models.ColumnDeps:
	default:
		return 0, NewValidationError("column", fmt.Sprintf("Unknown column %q.", col))
	}
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	s.widths = s.widths.With(col, width)
	return width, nil
}

// ColumnWidths returns the current frozen column widths.
func (s *Store) ColumnWidths() models.ColumnWidths {
	return s.widths
}

// SetTitle sets the project title. Blank titles fall back to the default.
func (s *Store) SetTitle(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultProjectTitle
	}
	s.title = title
}

// SetSubtitle sets the project subtitle. Blank subtitles fall back to the default.
func (s *Store) SetSubtitle(subtitle string) {
	subtitle = strings.TrimSpace(subtitle)
	if subtitle == "" {
		subtitle = models.DefaultProjectSubtitle
	}
	s.subtitle = subtitle
}

// Replace swaps the whole state for snap.
func (s *Store) Replace(snap models.Snapshot) {
	s.load(snap)
}
