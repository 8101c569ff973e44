package core

import (
	"fmt"
	"math"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// InteractionState is the pointer state of the chart.
type InteractionState int

const (
	StateIdle InteractionState = iota
	StateDraggingMove
	StateDraggingResizeLeft
	StateDraggingResizeRight
	StateResizingColumn
)

func (s InteractionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraggingMove:
		return "dragging-move"
	case StateDraggingResizeLeft:
		return "dragging-resize-left"
	case StateDraggingResizeRight:
		return "dragging-resize-right"
	case StateResizingColumn:
		return "resizing-column"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DragKind selects which part of a bar the pointer grabbed.
type DragKind string

const (
	DragMove        DragKind = "move"
	DragResizeLeft  DragKind = "resize-left"
	DragResizeRight DragKind = "resize-right"
)

// ParseDragKind converts user input to a DragKind.
func ParseDragKind(s string) (DragKind, error) {
	switch DragKind(s) {
	case DragMove, DragResizeLeft, DragResizeRight:
		return DragKind(s), nil
	}
	return "", fmt.Errorf("invalid drag kind %q: must be move, resize-left or resize-right", s)
}

func (k DragKind) state() InteractionState {
	switch k {
	case DragResizeLeft:
		return StateDraggingResizeLeft
	case DragResizeRight:
		return StateDraggingResizeRight
	default:
		return StateDraggingMove
	}
}

// OutcomeKind classifies what a released interaction produced.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeTaskEdit
	OutcomeColumnWidth
)

// Outcome is the result of releasing the pointer. For OutcomeTaskEdit, Task
// is the candidate with new dates and Original is the task as it was when the
// drag began.
type Outcome struct {
	Kind     OutcomeKind
	Drag     DragKind
	Task     models.Task
	Original models.Task
	DayShift int
	Column   models.Column
	Width    int
}

// Feedback is the live visual state during a drag. It never reflects a
// store change.
type Feedback struct {
	State       InteractionState
	TaskID      int
	Bar         BarGeometry
	Column      models.Column
	ColumnWidth int
	DayShift    int
}

// Controller is the drag/resize state machine. The zero value is not usable;
// call NewController.
type Controller struct {
	state  InteractionState
	startX float64

	task    models.Task
	drag    DragKind
	origBar BarGeometry
	liveBar BarGeometry

	column    models.Column
	origWidth int
	liveWidth int
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{state: StateIdle}
}

// State returns the current state.
func (c *Controller) State() InteractionState {
	return c.state
}

// ActiveTask returns the id of the task being dragged, or 0.
func (c *Controller) ActiveTask() int {
	if c.state == StateIdle || c.state == StateResizingColumn {
		return 0
	}
	return c.task.ID
}

// BeginTaskDrag captures the task and its bar geometry at pointer x.
func (c *Controller) BeginTaskDrag(t models.Task, kind DragKind, x float64, bar BarGeometry) error {
	if c.state != StateIdle {
		return fmt.Errorf("starting %s on task #%d while %s: %w", kind, t.ID, c.state, ErrInteractionBusy)
	}
	if _, err := ParseDragKind(string(kind)); err != nil {
		return err
	}
	c.state = kind.state()
	c.startX = x
	c.task = t.Clone()
	c.drag = kind
	c.origBar = bar
	c.liveBar = bar
	return nil
}

// BeginColumnResize captures the column and its width at pointer x.
func (c *Controller) BeginColumnResize(col models.Column, width int, x float64) error {
	if c.state != StateIdle {
		return fmt.Errorf("resizing column %s while %s: %w", col, c.state, ErrInteractionBusy)
	}
	c.state = StateResizingColumn
	c.startX = x
	c.column = col
	c.origWidth = width
	c.liveWidth = width
	return nil
}

// Move updates the live feedback for pointer x. Bars resized below half a day
// keep their last acceptable geometry.
func (c *Controller) Move(x, pixelsPerDay float64) Feedback {
	dx := x - c.startX
	switch c.state {
	case StateDraggingMove:
		c.liveBar = BarGeometry{Left: c.origBar.Left + dx, Width: c.origBar.Width}
	case StateDraggingResizeRight:
		if w := c.origBar.Width + dx; w > pixelsPerDay/2 {
			c.liveBar = BarGeometry{Left: c.origBar.Left, Width: w}
		}
	case StateDraggingResizeLeft:
		if w := c.origBar.Width - dx; w > pixelsPerDay/2 {
			c.liveBar = BarGeometry{Left: c.origBar.Left + dx, Width: w}
		}
	case StateResizingColumn:
		c.liveWidth = clampColumnWidth(c.origWidth + int(math.Round(dx)))
	default:
		return Feedback{State: StateIdle}
	}
	return c.feedback(dayShift(dx, pixelsPerDay))
}

func (c *Controller) feedback(shift int) Feedback {
	if c.state == StateResizingColumn {
		return Feedback{State: c.state, Column: c.column, ColumnWidth: c.liveWidth}
	}
	return Feedback{State: c.state, TaskID: c.task.ID, Bar: c.liveBar, DayShift: shift}
}

// Release ends the interaction at pointer x and returns to idle. A plain move
// that rounds to zero days yields OutcomeNone.
func (c *Controller) Release(x, pixelsPerDay float64) Outcome {
	defer c.reset()
	dx := x - c.startX

	switch c.state {
	case StateResizingColumn:
		return Outcome{
			Kind:   OutcomeColumnWidth,
			Column: c.column,
			Width:  clampColumnWidth(c.origWidth + int(math.Round(dx))),
		}
	case StateDraggingMove, StateDraggingResizeLeft, StateDraggingResizeRight:
		shift := dayShift(dx, pixelsPerDay)
		if shift == 0 && c.drag == DragMove {
			return Outcome{Kind: OutcomeNone}
		}
		return Outcome{
			Kind:     OutcomeTaskEdit,
			Drag:     c.drag,
			Task:     ShiftTask(c.task, c.drag, shift),
			Original: c.task.Clone(),
			DayShift: shift,
		}
	}
	return Outcome{Kind: OutcomeNone}
}

// Abort drops any interaction in progress without producing an outcome.
func (c *Controller) Abort() {
	c.reset()
}

func (c *Controller) reset() {
	*c = Controller{state: StateIdle}
}

// ShiftTask applies a whole-day drag to t. A move keeps the duration; the
// resize kinds move one edge and clamp it against the other.
func ShiftTask(t models.Task, kind DragKind, days int) models.Task {
	out := t.Clone()
	switch kind {
	case DragMove:
		out.Start = models.AddDays(t.Start, days)
		out.End = models.AddDays(out.Start, t.Duration())
	case DragResizeRight:
		out.End = models.AddDays(t.End, days)
		if out.End.Before(out.Start) {
			out.End = out.Start
		}
	case DragResizeLeft:
		out.Start = models.AddDays(t.Start, days)
		if out.Start.After(out.End) {
			out.Start = out.End
		}
	}
	return out
}

// dayShift rounds half a day upward in both directions, so -0.5 is 0 and
// 0.5 is 1.
func dayShift(dx, pixelsPerDay float64) int {
	if pixelsPerDay <= 0 {
		return 0
	}
	return int(math.Floor(dx/pixelsPerDay + 0.5))
}

func clampColumnWidth(w int) int {
	if w < MinColumnWidth {
		return MinColumnWidth
	}
	return w
}
