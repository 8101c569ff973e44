package core

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// SnapshotListener receives the full state after every committed mutation.
// Listeners run while the editor is locked and must not call back into it.
type SnapshotListener interface {
	SnapshotChanged(snap models.Snapshot) error
}

// SnapshotListenerFunc adapts a function to SnapshotListener.
type SnapshotListenerFunc func(snap models.Snapshot) error

// SnapshotChanged calls f(snap).
func (f SnapshotListenerFunc) SnapshotChanged(snap models.Snapshot) error {
	return f(snap)
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithConflictPolicy sets how edits that start before a dependency ends are treated.
func WithConflictPolicy(p models.ConflictPolicy) EditorOption {
	return func(e *Editor) {
		if p == models.ConflictBlock {
			e.policy = p
		}
	}
}

// WithEventLogger records one event per committed mutation.
func WithEventLogger(l EventLogger) EditorOption {
	return func(e *Editor) { e.events = l }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithListener subscribes l from construction.
func WithListener(l SnapshotListener) EditorOption {
	return func(e *Editor) { e.listeners = append(e.listeners, l) }
}

// Editor is the single writer of a Store. Every mutation goes through it,
// and edits whose update plan is non-empty are parked as a PendingAction
// until confirmed or cancelled.
type Editor struct {
	mu        sync.Mutex
	store     *Store
	pending   *PendingAction
	listeners []SnapshotListener
	events    EventLogger
	logger    *slog.Logger
	policy    models.ConflictPolicy
}

// NewEditor creates an Editor over the given initial snapshot.
func NewEditor(snap models.Snapshot, opts ...EditorOption) *Editor {
	e := &Editor{
		store:  NewStore(snap),
		logger: slog.New(slog.DiscardHandler),
		policy: models.ConflictWarn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe adds a listener for committed snapshots.
func (e *Editor) Subscribe(l SnapshotListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Policy returns the conflict policy in force.
func (e *Editor) Policy() models.ConflictPolicy {
	return e.policy
}

// Snapshot returns a copy of the current state.
func (e *Editor) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// Task returns one task by id.
func (e *Editor) Task(id int) (models.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Task(id)
}

// Pending returns the action awaiting confirmation, or nil.
func (e *Editor) Pending() *PendingAction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Layout computes the layout of the current state for the given container width.
func (e *Editor) Layout(containerWidth int) Layout {
	return ComputeLayout(LayoutInputFor(e.Snapshot(), containerWidth))
}

// Preview computes the update plan for a draft without touching the store
// or parking a pending action.
func (e *Editor) Preview(draft models.Task) ([]PlannedUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	draft, err := e.prepareEdit(draft)
	if err != nil {
		return nil, err
	}
	return PlanUpdate(e.store.tasks, draft)
}

// SaveTask adds the draft when its ID is 0, otherwise edits the task with
// that ID. The returned task is the stored (or proposed) version. A non-nil
// PendingAction means nothing was committed yet.
func (e *Editor) SaveTask(draft models.Task) (models.Task, *PendingAction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return models.Task{}, nil, err
	}

	if draft.ID == 0 {
		draft.Dependencies = draft.Dependencies.Normalize(0)
		if err := e.store.ValidateTask(draft, true); err != nil {
			return models.Task{}, nil, err
		}
		if err := e.checkConflicts(draft); err != nil {
			return models.Task{}, nil, err
		}
		added := e.store.AddTask(draft)
		e.commit("task.added", fmt.Sprintf("added task #%d %q", added.ID, added.Name), map[string]any{
			"task_id": added.ID,
			"name":    added.Name,
		})
		return added, nil, nil
	}

	draft, err := e.prepareEdit(draft)
	if err != nil {
		return models.Task{}, nil, err
	}
	plan, err := PlanUpdate(e.store.tasks, draft)
	if err != nil {
		return models.Task{}, nil, err
	}
	if len(plan) == 0 {
		e.applyEdit(draft, nil, "task.updated")
		return draft, nil, nil
	}
	msg := fmt.Sprintf("Updating this task's dates will shift %d dependent task(s). Do you want to proceed?", len(plan))
	return draft, e.park(draft, plan, msg, "task.updated"), nil
}

// ApplyOutcome commits what a released interaction produced. Task edits with
// a non-empty plan return a PendingAction instead of committing.
func (e *Editor) ApplyOutcome(o Outcome) (*PendingAction, error) {
	switch o.Kind {
	case OutcomeNone:
		return nil, nil
	case OutcomeColumnWidth:
		_, err := e.SetColumnWidth(o.Column, o.Width)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return nil, err
	}
	draft, err := e.prepareEdit(o.Task)
	if err != nil {
		return nil, err
	}
	plan, err := PlanUpdate(e.store.tasks, draft)
	if err != nil {
		return nil, err
	}
	eventType := "task." + strings.ReplaceAll(string(o.Drag), "-", "_")
	if len(plan) == 0 {
		e.applyEdit(draft, nil, eventType)
		return nil, nil
	}
	return e.park(draft, plan, dragMessage(o, len(plan)), eventType), nil
}

func dragMessage(o Outcome, affected int) string {
	shift := models.DayDiff(o.Original.Start, o.Task.Start)
	if shift == 0 {
		shift = models.DayDiff(o.Original.End, o.Task.End)
	}
	direction := "forward"
	if shift < 0 {
		direction = "backward"
		shift = -shift
	}
	return fmt.Sprintf("Shifting this task %s by %d day(s) will also shift %d dependent task(s). Do you want to proceed?",
		direction, shift, affected)
}

// DeleteTask removes a task and strips it from every dependency list.
func (e *Editor) DeleteTask(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return err
	}
	if err := e.store.DeleteTask(id); err != nil {
		return err
	}
	e.commit("task.deleted", fmt.Sprintf("deleted task #%d", id), map[string]any{"task_id": id})
	return nil
}

// AddGroup creates a named group.
func (e *Editor) AddGroup(name, color string) (models.Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return models.Group{}, err
	}
	g, err := e.store.AddGroup(name, color)
	if err != nil {
		return models.Group{}, err
	}
	e.commit("group.added", fmt.Sprintf("added group %q", g.Name), map[string]any{"name": g.Name, "color": g.Color})
	return g, nil
}

// DeleteGroup removes a group and ungroups its tasks. It returns how many
// tasks were ungrouped.
func (e *Editor) DeleteGroup(name string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return 0, err
	}
	cleared, err := e.store.DeleteGroup(name)
	if err != nil {
		return 0, err
	}
	e.commit("group.deleted", fmt.Sprintf("deleted group %q", name), map[string]any{"name": name, "tasks_cleared": cleared})
	return cleared, nil
}

// SetViewMode changes the zoom granularity.
func (e *Editor) SetViewMode(v models.ViewMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return err
	}
	if err := e.store.SetViewMode(v); err != nil {
		return err
	}
	e.commit("view.changed", "view mode set to "+string(v), map[string]any{"view_mode": string(v)})
	return nil
}

// SetColumnWidth resizes a frozen column, clamped to MinColumnWidth.
func (e *Editor) SetColumnWidth(col models.Column, width int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return 0, err
	}
	stored, err := e.store.SetColumnWidth(col, width)
	if err != nil {
		return 0, err
	}
	e.commit("column.resized", fmt.Sprintf("column %s resized to %d", col, stored), map[string]any{
		"column": string(col),
		"width":  stored,
	})
	return stored, nil
}

// SetTitle sets the project title.
func (e *Editor) SetTitle(title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return err
	}
	e.store.SetTitle(title)
	e.commit("project.retitled", "project title changed", map[string]any{"title": e.store.title})
	return nil
}

// SetSubtitle sets the project subtitle.
func (e *Editor) SetSubtitle(subtitle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return err
	}
	e.store.SetSubtitle(subtitle)
	e.commit("project.retitled", "project subtitle changed", map[string]any{"subtitle": e.store.subtitle})
	return nil
}

// Replace swaps the whole state, as an import does. The incoming snapshot
// must pass ValidateSnapshot; on failure the state is untouched.
func (e *Editor) Replace(snap models.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return err
	}
	if err := ValidateSnapshot(snap); err != nil {
		return err
	}
	e.store.Replace(snap)
	e.commit("project.replaced", "project state replaced", map[string]any{
		"tasks":  len(e.store.tasks),
		"groups": len(e.store.groups),
	})
	return nil
}

// Clear resets the project to an empty default state.
func (e *Editor) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.writable(); err != nil {
		return err
	}
	e.store.Replace(models.EmptySnapshot())
	e.commit("project.cleared", "project cleared", nil)
	return nil
}

// Conflicts lists the dependency violations in the current state.
func (e *Editor) Conflicts() []Violation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Violations(e.store.tasks)
}

func (e *Editor) writable() error {
	if e.pending != nil {
		return ErrPendingConfirmation
	}
	return nil
}

// prepareEdit merges a draft over the stored task and validates it.
func (e *Editor) prepareEdit(draft models.Task) (models.Task, error) {
	if _, err := e.store.Task(draft.ID); err != nil {
		return models.Task{}, err
	}
	draft = draft.Clone()
	draft.Dependencies = draft.Dependencies.Normalize(draft.ID)
	if err := e.store.ValidateTask(draft, false); err != nil {
		return models.Task{}, err
	}
	if err := e.checkConflicts(draft); err != nil {
		return models.Task{}, err
	}
	return draft, nil
}

func (e *Editor) checkConflicts(t models.Task) error {
	if e.policy != models.ConflictBlock {
		return nil
	}
	if v := startConflicts(e.store.tasks, t); len(v) > 0 {
		return NewValidationError("start", fmt.Sprintf(
			"Task must start after dependency #%d ends on %s.", v[0].ParentID, v[0].ParentEnd.DMY()))
	}
	return nil
}

func (e *Editor) applyEdit(draft models.Task, plan []PlannedUpdate, eventType string) {
	e.store.SetTasks(ApplyPlan(e.store.tasks, draft, plan))
	data := map[string]any{
		"task_id": draft.ID,
		"start":   draft.Start.DMY(),
		"end":     draft.End.DMY(),
	}
	if len(plan) > 0 {
		shifted := make([]int, len(plan))
		for i, p := range plan {
			shifted[i] = p.TaskID
		}
		data["shifted"] = shifted
	}
	e.commit(eventType, fmt.Sprintf("updated task #%d", draft.ID), data)
}

func (e *Editor) park(draft models.Task, plan []PlannedUpdate, msg, eventType string) *PendingAction {
	p := &PendingAction{
		Task:      draft,
		Plan:      plan,
		Message:   msg,
		editor:    e,
		eventType: eventType,
	}
	e.pending = p
	e.logger.Info("edit awaiting confirmation", "task_id", draft.ID, "affected", len(plan))
	return p
}

// commit notifies listeners and the event log. Callers hold e.mu.
func (e *Editor) commit(eventType, msg string, data map[string]any) {
	snap := e.store.Snapshot()
	e.logger.Info(msg, "event", eventType)
	for _, l := range e.listeners {
		if err := l.SnapshotChanged(snap); err != nil {
			e.logger.Warn("snapshot listener failed", "event", eventType, "error", err)
		}
	}
	if e.events != nil {
		if data == nil {
			data = map[string]any{}
		}
		data["message"] = msg
		if err := e.events.LogEvent(eventType, data); err != nil {
			e.logger.Warn("event log write failed", "event", eventType, "error", err)
		}
	}
}

// PendingAction is an edit held back until the user accepts or rejects the
// shifts it implies. Exactly one of Confirm or Cancel takes effect.
type PendingAction struct {
	Task    models.Task
	Plan    []PlannedUpdate
	Message string

	editor    *Editor
	eventType string
	resolved  bool
}

// Confirm commits the edit and every planned shift.
func (p *PendingAction) Confirm() error {
	e := p.editor
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.resolved || e.pending != p {
		return ErrNoPendingAction
	}
	p.resolved = true
	e.pending = nil
	e.applyEdit(p.Task, p.Plan, p.eventType)
	return nil
}

// Cancel discards the edit. The store is left exactly as it was.
func (p *PendingAction) Cancel() error {
	e := p.editor
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.resolved || e.pending != p {
		return ErrNoPendingAction
	}
	p.resolved = true
	e.pending = nil
	e.logger.Info("edit cancelled", "task_id", p.Task.ID)
	return nil
}
