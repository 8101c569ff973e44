// Package mcp provides an MCP (Model Context Protocol) server that lets a
// host inspect and edit a Gantt project through the same Editor the CLI and
// terminal UI use.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/internal/observability"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// Server exposes an Editor as MCP tools.
type Server struct {
	server         *gomcp.Server
	editor         *core.Editor
	metricsCalc    observability.MetricsCalculator
	alertEngine    observability.AlertEngine
	containerWidth int
}

// NewServer creates a new MCP server over editor. metricsCalc and
// alertEngine may be nil if the event log is disabled.
func NewServer(editor *core.Editor, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		editor:         editor,
		metricsCalc:    metricsCalc,
		alertEngine:    alertEngine,
		containerWidth: core.DefaultContainerWidth,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "gantt", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// SetContainerWidth sets the default width used by get_layout.
func (s *Server) SetContainerWidth(w int) {
	if w > 0 {
		s.containerWidth = w
	}
}

// Run serves over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type emptyInput struct{}

type taskOutput struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Group        string `json:"group"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Progress     int    `json:"progress"`
	Dependencies []int  `json:"dependencies"`
	Color        string `json:"color,omitempty"`
	BarColor     string `json:"bar_color"`
}

type groupOutput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type widthsOutput struct {
	Group    int `json:"group"`
	TaskName int `json:"task_name"`
	Deps     int `json:"deps"`
}

type snapshotOutput struct {
	Title        string        `json:"title"`
	Subtitle     string        `json:"subtitle"`
	ViewMode     string        `json:"view_mode"`
	ColumnWidths widthsOutput  `json:"column_widths"`
	Groups       []groupOutput `json:"groups"`
	Tasks        []taskOutput  `json:"tasks"`
}

type listTasksInput struct {
	Group string `json:"group,omitempty" jsonschema:"only tasks in this group (case-insensitive)"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getLayoutInput struct {
	ContainerWidth int `json:"container_width,omitempty" jsonschema:"available width in pixels. Defaults to the configured render width."`
}

type bucketOutput struct {
	Label    string `json:"label"`
	SubLabel string `json:"sub_label,omitempty"`
	Start    string `json:"start"`
	Days     int    `json:"days"`
	Weekend  bool   `json:"weekend,omitempty"`
}

type rowOutput struct {
	TaskID int     `json:"task_id"`
	Name   string  `json:"name"`
	HasBar bool    `json:"has_bar"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

type layoutOutput struct {
	NoData        bool           `json:"no_data"`
	Message       string         `json:"message,omitempty"`
	ViewMode      string         `json:"view_mode"`
	ChartStart    string         `json:"chart_start,omitempty"`
	ChartEnd      string         `json:"chart_end,omitempty"`
	TotalDays     int            `json:"total_days"`
	PixelsPerDay  float64        `json:"pixels_per_day"`
	TimelineWidth float64        `json:"timeline_width"`
	FrozenWidth   int            `json:"frozen_width"`
	Buckets       []bucketOutput `json:"buckets"`
	Rows          []rowOutput    `json:"rows"`
}

type previewInput struct {
	TaskID       int     `json:"task_id" jsonschema:"id of the task to edit"`
	Name         *string `json:"name,omitempty" jsonschema:"task name"`
	Group        *string `json:"group,omitempty" jsonschema:"group name, empty for none"`
	Start        *string `json:"start,omitempty" jsonschema:"start date, DD/MM/YYYY or YYYY-MM-DD"`
	End          *string `json:"end,omitempty" jsonschema:"end date, DD/MM/YYYY or YYYY-MM-DD"`
	Progress     *int    `json:"progress,omitempty" jsonschema:"percent complete, 0-100"`
	Dependencies *string `json:"dependencies,omitempty" jsonschema:"comma-separated ids of tasks this one depends on"`
	Color        *string `json:"color,omitempty" jsonschema:"bar colour, overrides the group colour"`
}

func (in previewInput) patch() core.TaskPatch {
	return core.TaskPatch{
		Name:         in.Name,
		Group:        in.Group,
		Start:        in.Start,
		End:          in.End,
		Progress:     in.Progress,
		Dependencies: in.Dependencies,
		Color:        in.Color,
	}
}

type updateTaskInput struct {
	TaskID       int     `json:"task_id" jsonschema:"id of the task to edit"`
	Confirm      bool    `json:"confirm,omitempty" jsonschema:"apply the edit even if it shifts dependent tasks"`
	Name         *string `json:"name,omitempty" jsonschema:"task name"`
	Group        *string `json:"group,omitempty" jsonschema:"group name, empty for none"`
	Start        *string `json:"start,omitempty" jsonschema:"start date, DD/MM/YYYY or YYYY-MM-DD"`
	End          *string `json:"end,omitempty" jsonschema:"end date, DD/MM/YYYY or YYYY-MM-DD"`
	Progress     *int    `json:"progress,omitempty" jsonschema:"percent complete, 0-100"`
	Dependencies *string `json:"dependencies,omitempty" jsonschema:"comma-separated ids of tasks this one depends on"`
	Color        *string `json:"color,omitempty" jsonschema:"bar colour, overrides the group colour"`
}

func (in updateTaskInput) patch() core.TaskPatch {
	return core.TaskPatch{
		Name:         in.Name,
		Group:        in.Group,
		Start:        in.Start,
		End:          in.End,
		Progress:     in.Progress,
		Dependencies: in.Dependencies,
		Color:        in.Color,
	}
}

type plannedOutput struct {
	TaskID   int    `json:"task_id"`
	Name     string `json:"name"`
	OldStart string `json:"old_start"`
	OldEnd   string `json:"old_end"`
	NewStart string `json:"new_start"`
	NewEnd   string `json:"new_end"`
	Shift    int    `json:"shift_days"`
}

type planOutput struct {
	Updates []plannedOutput `json:"updates"`
	Count   int             `json:"count"`
	Message string          `json:"message,omitempty"`
}

type updateTaskOutput struct {
	Applied              bool            `json:"applied"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	Message              string          `json:"message"`
	Task                 taskOutput      `json:"task"`
	Shifted              []plannedOutput `json:"shifted"`
}

type addTaskInput struct {
	Name         string `json:"name" jsonschema:"task name"`
	Group        string `json:"group,omitempty" jsonschema:"group name"`
	Start        string `json:"start" jsonschema:"start date, DD/MM/YYYY or YYYY-MM-DD"`
	End          string `json:"end" jsonschema:"end date, DD/MM/YYYY or YYYY-MM-DD"`
	Progress     int    `json:"progress,omitempty" jsonschema:"percent complete, 0-100"`
	Dependencies string `json:"dependencies,omitempty" jsonschema:"comma-separated ids of tasks this one depends on"`
	Color        string `json:"color,omitempty" jsonschema:"bar colour"`
}

type taskIDInput struct {
	TaskID int `json:"task_id" jsonschema:"id of the task"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type addGroupInput struct {
	Name  string `json:"name" jsonschema:"group name, unique case-insensitively"`
	Color string `json:"color,omitempty" jsonschema:"group colour. Defaults to #79D3C9."`
}

type deleteGroupInput struct {
	Name string `json:"name" jsonschema:"exact group name"`
}

type deleteGroupOutput struct {
	Message      string `json:"message"`
	TasksCleared int    `json:"tasks_cleared"`
}

type setViewModeInput struct {
	ViewMode string `json:"view_mode" jsonschema:"one of day, week, month, quarter, year"`
}

type resizeColumnInput struct {
	Column string `json:"column" jsonschema:"one of group, taskName, deps"`
	Width  int    `json:"width" jsonschema:"new width in pixels. Values below 50 are raised to 50."`
}

type resizeColumnOutput struct {
	Column string `json:"column"`
	Width  int    `json:"width"`
}

type setTitlesInput struct {
	Title    *string `json:"title,omitempty" jsonschema:"project title"`
	Subtitle *string `json:"subtitle,omitempty" jsonschema:"project subtitle"`
}

type conflictOutput struct {
	ParentID int    `json:"parent_id"`
	ChildID  int    `json:"child_id"`
	Message  string `json:"message"`
}

type checkConflictsOutput struct {
	Conflicts []conflictOutput `json:"conflicts"`
	Count     int              `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksAdded    int            `json:"tasks_added"`
	TasksEdited   int            `json:"tasks_edited"`
	TasksDeleted  int            `json:"tasks_deleted"`
	DragEdits     int            `json:"drag_edits"`
	CascadeShifts int            `json:"cascade_shifts"`
	GroupsAdded   int            `json:"groups_added"`
	GroupsDeleted int            `json:"groups_deleted"`
	Imports       int            `json:"imports"`
	EventsByType  map[string]int `json:"events_by_type"`
	EventCount    int            `json:"event_count"`
	OldestEvent   string         `json:"oldest_event,omitempty"`
	NewestEvent   string         `json:"newest_event,omitempty"`
}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TaskID      int    `json:"task_id,omitempty"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_snapshot",
		Description: "Get the full project: titles, view mode, column widths, groups and tasks.",
	}, s.handleGetSnapshot)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in store order with an optional group filter.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_layout",
		Description: "Compute the timeline layout: chart bounds, header buckets, pixels per day and bar geometry per row.",
	}, s.handleGetLayout)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "preview_update",
		Description: "Show which dependent tasks an edit would shift, without changing anything.",
	}, s.handlePreviewUpdate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Edit a task. If the edit shifts dependent tasks it is only applied when confirm is true; otherwise the planned shifts are returned.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Add a task. The id is assigned as the highest existing id plus one.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task and remove it from every dependency list.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_group",
		Description: "Add a project group.",
	}, s.handleAddGroup)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_group",
		Description: "Delete a group and ungroup the tasks that referenced it.",
	}, s.handleDeleteGroup)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "set_view_mode",
		Description: "Change the timeline zoom: day, week, month, quarter or year.",
	}, s.handleSetViewMode)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "resize_column",
		Description: "Set the width of a frozen column (group, taskName, deps).",
	}, s.handleResizeColumn)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "set_titles",
		Description: "Set the project title and/or subtitle.",
	}, s.handleSetTitles)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "check_conflicts",
		Description: "List dependency edges whose child starts on or before its parent ends.",
	}, s.handleCheckConflicts)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get editing activity from the event log: tasks added, edited and deleted, drag edits and cascade shifts.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate schedule alerts: dependency conflicts, overdue tasks and tasks shifted repeatedly by cascades.",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleGetSnapshot(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, snapshotOutput, error) {
	return nil, snapshotToOutput(s.editor.Snapshot()), nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	snap := s.editor.Snapshot()
	out := listTasksOutput{Tasks: []taskOutput{}}
	for _, t := range snap.Tasks {
		if input.Group != "" && !strings.EqualFold(t.Group, input.Group) {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(t, snap.ProjectGroups))
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleGetLayout(_ context.Context, _ *gomcp.CallToolRequest, input getLayoutInput) (*gomcp.CallToolResult, layoutOutput, error) {
	width := input.ContainerWidth
	if width <= 0 {
		width = s.containerWidth
	}
	return nil, layoutToOutput(s.editor.Layout(width)), nil
}

func (s *Server) handlePreviewUpdate(_ context.Context, _ *gomcp.CallToolRequest, input previewInput) (*gomcp.CallToolResult, planOutput, error) {
	draft, err := s.draft(input.TaskID, input.patch())
	if err != nil {
		return errorResult(err.Error()), planOutput{}, nil
	}
	plan, err := s.editor.Preview(draft)
	if err != nil {
		return errorResult(fmt.Sprintf("previewing task %d: %s", input.TaskID, err)), planOutput{}, nil
	}
	out := planOutput{Updates: planToOutput(plan), Count: len(plan)}
	if len(plan) > 0 {
		out.Message = fmt.Sprintf("Updating this task's dates will shift %d dependent task(s).", len(plan))
	}
	return nil, out, nil
}

func (s *Server) handleUpdateTask(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, updateTaskOutput, error) {
	draft, err := s.draft(input.TaskID, input.patch())
	if err != nil {
		return errorResult(err.Error()), updateTaskOutput{}, nil
	}
	saved, pending, err := s.editor.SaveTask(draft)
	if err != nil {
		return errorResult(fmt.Sprintf("updating task %d: %s", input.TaskID, err)), updateTaskOutput{}, nil
	}

	groups := s.editor.Snapshot().ProjectGroups
	out := updateTaskOutput{Task: taskToOutput(saved, groups), Shifted: []plannedOutput{}}
	if pending == nil {
		out.Applied = true
		out.Message = fmt.Sprintf("task %d updated", saved.ID)
		return nil, out, nil
	}

	out.Shifted = planToOutput(pending.Plan)
	if !input.Confirm {
		if err := pending.Cancel(); err != nil {
			return errorResult(fmt.Sprintf("discarding pending edit: %s", err)), updateTaskOutput{}, nil
		}
		out.RequiresConfirmation = true
		out.Message = pending.Message + " Call update_task again with confirm=true to apply."
		return nil, out, nil
	}
	if err := pending.Confirm(); err != nil {
		return errorResult(fmt.Sprintf("confirming edit: %s", err)), updateTaskOutput{}, nil
	}
	out.Applied = true
	out.Message = fmt.Sprintf("task %d updated, %d dependent task(s) shifted", saved.ID, len(pending.Plan))
	return nil, out, nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	patch := core.TaskPatch{
		Name:         &input.Name,
		Group:        &input.Group,
		Start:        &input.Start,
		End:          &input.End,
		Progress:     &input.Progress,
		Dependencies: &input.Dependencies,
		Color:        &input.Color,
	}
	draft, err := patch.Apply(models.Task{})
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	added, _, err := s.editor.SaveTask(draft)
	if err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(added, s.editor.Snapshot().ProjectGroups), nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	if err := s.editor.DeleteTask(input.TaskID); err != nil {
		return errorResult(fmt.Sprintf("deleting task %d: %s", input.TaskID, err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %d deleted", input.TaskID)}, nil
}

func (s *Server) handleAddGroup(_ context.Context, _ *gomcp.CallToolRequest, input addGroupInput) (*gomcp.CallToolResult, groupOutput, error) {
	g, err := s.editor.AddGroup(input.Name, input.Color)
	if err != nil {
		return errorResult(fmt.Sprintf("adding group: %s", err)), groupOutput{}, nil
	}
	return nil, groupOutput{Name: g.Name, Color: g.Color}, nil
}

func (s *Server) handleDeleteGroup(_ context.Context, _ *gomcp.CallToolRequest, input deleteGroupInput) (*gomcp.CallToolResult, deleteGroupOutput, error) {
	cleared, err := s.editor.DeleteGroup(input.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("deleting group %q: %s", input.Name, err)), deleteGroupOutput{}, nil
	}
	return nil, deleteGroupOutput{
		Message:      fmt.Sprintf("group %q deleted", input.Name),
		TasksCleared: cleared,
	}, nil
}

func (s *Server) handleSetViewMode(_ context.Context, _ *gomcp.CallToolRequest, input setViewModeInput) (*gomcp.CallToolResult, messageOutput, error) {
	mode, err := models.ParseViewMode(input.ViewMode)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	if err := s.editor.SetViewMode(mode); err != nil {
		return errorResult(fmt.Sprintf("setting view mode: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: "view mode set to " + string(mode)}, nil
}

func (s *Server) handleResizeColumn(_ context.Context, _ *gomcp.CallToolRequest, input resizeColumnInput) (*gomcp.CallToolResult, resizeColumnOutput, error) {
	col, err := models.ParseColumn(input.Column)
	if err != nil {
		return errorResult(err.Error()), resizeColumnOutput{}, nil
	}
	width, err := s.editor.SetColumnWidth(col, input.Width)
	if err != nil {
		return errorResult(fmt.Sprintf("resizing column: %s", err)), resizeColumnOutput{}, nil
	}
	return nil, resizeColumnOutput{Column: string(col), Width: width}, nil
}

func (s *Server) handleSetTitles(_ context.Context, _ *gomcp.CallToolRequest, input setTitlesInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.Title == nil && input.Subtitle == nil {
		return errorResult("title or subtitle is required"), messageOutput{}, nil
	}
	if input.Title != nil {
		if err := s.editor.SetTitle(*input.Title); err != nil {
			return errorResult(fmt.Sprintf("setting title: %s", err)), messageOutput{}, nil
		}
	}
	if input.Subtitle != nil {
		if err := s.editor.SetSubtitle(*input.Subtitle); err != nil {
			return errorResult(fmt.Sprintf("setting subtitle: %s", err)), messageOutput{}, nil
		}
	}
	snap := s.editor.Snapshot()
	return nil, messageOutput{Message: fmt.Sprintf("titles set to %q / %q", snap.ProjectTitle, snap.ProjectSubtitle)}, nil
}

func (s *Server) handleCheckConflicts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, checkConflictsOutput, error) {
	violations := s.editor.Conflicts()
	out := checkConflictsOutput{Conflicts: make([]conflictOutput, len(violations)), Count: len(violations)}
	for i, v := range violations {
		out.Conflicts[i] = conflictOutput{ParentID: v.ParentID, ChildID: v.ChildID, Message: v.String()}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksAdded:    metrics.TasksAdded,
		TasksEdited:   metrics.TasksEdited,
		TasksDeleted:  metrics.TasksDeleted,
		DragEdits:     metrics.DragEdits,
		CascadeShifts: metrics.CascadeShifts,
		GroupsAdded:   metrics.GroupsAdded,
		GroupsDeleted: metrics.GroupsDeleted,
		Imports:       metrics.Imports,
		EventsByType:  metrics.EventsByType,
		EventCount:    metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate(s.editor.Snapshot())
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TaskID:      a.TaskID,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// draft loads a stored task and applies the given field changes to it.
func (s *Server) draft(id int, patch core.TaskPatch) (models.Task, error) {
	current, err := s.editor.Task(id)
	if err != nil {
		if errors.Is(err, core.ErrTaskNotFound) {
			return models.Task{}, fmt.Errorf("task %d not found", id)
		}
		return models.Task{}, err
	}
	return patch.Apply(current)
}

func snapshotToOutput(snap models.Snapshot) snapshotOutput {
	w := snap.Widths()
	out := snapshotOutput{
		Title:        snap.ProjectTitle,
		Subtitle:     snap.ProjectSubtitle,
		ViewMode:     string(snap.ViewMode),
		ColumnWidths: widthsOutput{Group: w.Group, TaskName: w.TaskName, Deps: w.Deps},
		Groups:       make([]groupOutput, len(snap.ProjectGroups)),
		Tasks:        make([]taskOutput, len(snap.Tasks)),
	}
	for i, g := range snap.ProjectGroups {
		out.Groups[i] = groupOutput{Name: g.Name, Color: g.Color}
	}
	for i, t := range snap.Tasks {
		out.Tasks[i] = taskToOutput(t, snap.ProjectGroups)
	}
	return out
}

func taskToOutput(t models.Task, groups []models.Group) taskOutput {
	deps := []int(t.Dependencies)
	if deps == nil {
		deps = []int{}
	}
	return taskOutput{
		ID:           t.ID,
		Name:         t.Name,
		Group:        t.Group,
		Start:        t.Start.DMY(),
		End:          t.End.DMY(),
		Progress:     t.Progress,
		Dependencies: deps,
		Color:        t.Color,
		BarColor:     models.BarColor(t, groups),
	}
}

func layoutToOutput(l core.Layout) layoutOutput {
	out := layoutOutput{
		NoData:        l.NoData,
		Message:       l.Reason,
		ViewMode:      string(l.ViewMode),
		ChartStart:    l.ChartStart.DMY(),
		ChartEnd:      l.ChartEnd.DMY(),
		TotalDays:     l.TotalDays,
		PixelsPerDay:  l.PixelsPerDay,
		TimelineWidth: l.TimelineWidth,
		FrozenWidth:   l.FrozenWidth,
		Buckets:       make([]bucketOutput, len(l.Buckets)),
		Rows:          make([]rowOutput, len(l.Rows)),
	}
	for i, b := range l.Buckets {
		out.Buckets[i] = bucketOutput{Label: b.Label, SubLabel: b.SubLabel, Start: b.Start.DMY(), Days: b.Days, Weekend: b.Weekend}
	}
	for i, r := range l.Rows {
		out.Rows[i] = rowOutput{TaskID: r.Task.ID, Name: r.Task.Name, HasBar: r.HasBar, Left: r.Bar.Left, Width: r.Bar.Width}
	}
	return out
}

func planToOutput(plan []core.PlannedUpdate) []plannedOutput {
	out := make([]plannedOutput, len(plan))
	for i, p := range plan {
		out[i] = plannedOutput{
			TaskID:   p.TaskID,
			Name:     p.Name,
			OldStart: p.OldStart.DMY(),
			OldEnd:   p.OldEnd.DMY(),
			NewStart: p.NewStart.DMY(),
			NewEnd:   p.NewEnd.DMY(),
			Shift:    p.Shift(),
		}
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{EventsByType: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
