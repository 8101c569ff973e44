package core

import (
	"fmt"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// PlannedUpdate is one entry of an update plan: a task other than the one
// under direct edit whose dates must move to respect its dependencies.
type PlannedUpdate struct {
	TaskID   int         `json:"id"`
	Name     string      `json:"name"`
	OldStart models.Date `json:"oldStart"`
	OldEnd   models.Date `json:"oldEnd"`
	NewStart models.Date `json:"start"`
	NewEnd   models.Date `json:"end"`
}

// Shift returns the number of days the task moves.
func (p PlannedUpdate) Shift() int {
	return models.DayDiff(p.OldStart, p.NewStart)
}

// Violation is a dependency edge whose child starts on or before the day its
// parent ends.
type Violation struct {
	ParentID   int         `json:"parentId"`
	ChildID    int         `json:"childId"`
	ParentEnd  models.Date `json:"parentEnd"`
	ChildStart models.Date `json:"childStart"`
}

func (v Violation) String() string {
	return fmt.Sprintf("#%d starts %s but depends on #%d which ends %s",
		v.ChildID, v.ChildStart.DMY(), v.ParentID, v.ParentEnd.DMY())
}

// TopologicalOrder returns task ids ordered so that every task follows the
// tasks it depends on. Tasks with no pending dependencies are emitted in
// input order, which keeps the result deterministic. Dependency ids that do
// not name a task in the set are ignored. A cycle yields a
// *CircularDependencyError listing the ids that could not be ordered.
func TopologicalOrder(tasks []models.Task) ([]int, error) {
	index := make(map[int]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	children := make([][]int, len(tasks))
	inDegree := make([]int, len(tasks))
	for i, t := range tasks {
		for _, parent := range t.Dependencies.Normalize(t.ID) {
			p, ok := index[parent]
			if !ok {
				continue
			}
			children[p] = append(children[p], i)
			inDegree[i]++
		}
	}

	queue := make([]int, 0, len(tasks))
	for i := range tasks {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, len(tasks))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, tasks[u].ID)
		for _, v := range children[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(order) != len(tasks) {
		var stuck []int
		for i, t := range tasks {
			if inDegree[i] > 0 {
				stuck = append(stuck, t.ID)
			}
		}
		return nil, &CircularDependencyError{TaskIDs: stuck}
	}
	return order, nil
}

// PlanUpdate computes the update plan for replacing the task with
// proposed.ID by proposed. Every other task whose start falls before the day
// after its latest dependency end is shifted forward by whole days, keeping
// its duration. The proposed task is pinned: it is never moved by the plan
// and never appears in it. Entries are returned in input order.
//
// The input slice is not modified.
func PlanUpdate(tasks []models.Task, proposed models.Task) ([]PlannedUpdate, error) {
	working := make([]models.Task, len(tasks))
	byID := make(map[int]int, len(tasks))
	found := false
	for i, t := range tasks {
		if t.ID == proposed.ID {
			working[i] = proposed.Clone()
			found = true
		} else {
			working[i] = t.Clone()
		}
		byID[t.ID] = i
	}
	if !found {
		return nil, fmt.Errorf("planning update for task #%d: %w", proposed.ID, ErrTaskNotFound)
	}

	order, err := TopologicalOrder(working)
	if err != nil {
		return nil, err
	}

	for _, id := range order {
		if id == proposed.ID {
			continue
		}
		i := byID[id]
		t := working[i]
		if t.Start.IsZero() {
			continue
		}

		var latest models.Date
		for _, dep := range t.Dependencies {
			p, ok := byID[dep]
			if !ok || dep == t.ID {
				continue
			}
			if end := working[p].End; !end.IsZero() && (latest.IsZero() || end.After(latest)) {
				latest = end
			}
		}
		if latest.IsZero() {
			continue
		}

		required := models.AddDays(latest, 1)
		if required.After(t.Start) {
			shift := models.DayDiff(t.Start, required)
			t.Start = required
			t.End = models.AddDays(t.End, shift)
			working[i] = t
		}
	}

	var plan []PlannedUpdate
	for i, orig := range tasks {
		if orig.ID == proposed.ID {
			continue
		}
		next := working[i]
		if next.Start.Equal(orig.Start) && next.End.Equal(orig.End) {
			continue
		}
		plan = append(plan, PlannedUpdate{
			TaskID:   orig.ID,
			Name:     orig.Name,
			OldStart: orig.Start,
			OldEnd:   orig.End,
			NewStart: next.Start,
			NewEnd:   next.End,
		})
	}
	return plan, nil
}

// ApplyPlan returns a copy of tasks with proposed swapped in and every plan
// entry applied.
func ApplyPlan(tasks []models.Task, proposed models.Task, plan []PlannedUpdate) []models.Task {
	moves := make(map[int]PlannedUpdate, len(plan))
	for _, p := range plan {
		moves[p.TaskID] = p
	}
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		switch {
		case t.ID == proposed.ID:
			out[i] = proposed.Clone()
		default:
			out[i] = t.Clone()
			if p, ok := moves[t.ID]; ok {
				out[i].Start = p.NewStart
				out[i].End = p.NewEnd
			}
		}
	}
	return out
}

// Violations lists every dependency edge whose child starts on or before the
// parent's end, in input order of the children.
func Violations(tasks []models.Task) []Violation {
	byID := make(map[int]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	var out []Violation
	for _, child := range tasks {
		if child.Start.IsZero() {
			continue
		}
		for _, dep := range child.Dependencies.Normalize(child.ID) {
			parent, ok := byID[dep]
			if !ok || parent.End.IsZero() {
				continue
			}
			if !child.Start.After(parent.End) {
				out = append(out, Violation{
					ParentID:   parent.ID,
					ChildID:    child.ID,
					ParentEnd:  parent.End,
					ChildStart: child.Start,
				})
			}
		}
	}
	return out
}

// startConflicts lists the dependencies of t (resolved against tasks) that
// end on or after t starts.
func startConflicts(tasks []models.Task, t models.Task) []Violation {
	var out []Violation
	for _, v := range Violations(replaceTask(tasks, t)) {
		if v.ChildID == t.ID {
			out = append(out, v)
		}
	}
	return out
}

func replaceTask(tasks []models.Task, t models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks)+1)
	replaced := false
	for _, existing := range tasks {
		if existing.ID == t.ID {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}
