// Package render turns a project snapshot into a visual tree and writes it
// out as SVG, a printable page, or a standalone HTML document.
package render

import (
	"fmt"
	"strconv"

	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// Fixed chart metrics, in pixels.
const (
	RowHeight     = 40
	HeaderHeight  = 50
	ConnectorNeck = 15
)

// Colours that are not derived from tasks or groups.
const (
	ConnectorColor  = "#006152"
	ConflictColor   = "#DC2626"
	TooltipColor    = "#006152"
	barTrackOpacity = "40"
)

// ColumnCell is one frozen column header.
type ColumnCell struct {
	Column models.Column `json:"column"`
	Title  string        `json:"title"`
	X      int           `json:"x"`
	Width  int           `json:"width"`
}

// HeaderCell is one timeline bucket header.
type HeaderCell struct {
	Label    string  `json:"label"`
	SubLabel string  `json:"subLabel,omitempty"`
	X        float64 `json:"x"`
	Width    float64 `json:"width"`
	Weekend  bool    `json:"weekend,omitempty"`
}

// Bar is a task bar with its progress fill and tooltip.
type Bar struct {
	Left          float64  `json:"left"`
	Width         float64  `json:"width"`
	ProgressWidth float64  `json:"progressWidth"`
	Color         string   `json:"color"`
	TrackColor    string   `json:"trackColor"`
	Tooltip       []string `json:"tooltip"`
}

// RowView is one task line: the frozen cells plus an optional bar.
type RowView struct {
	TaskID int     `json:"taskId"`
	Y      float64 `json:"y"`
	Group  string  `json:"group"`
	Name   string  `json:"name"`
	Deps   string  `json:"deps"`
	Bar    *Bar    `json:"bar,omitempty"`
}

// Connector is a dependency arrow from a parent's right edge to a child's
// left edge. Coordinates are relative to the chart origin.
type Connector struct {
	ParentID int     `json:"parentId"`
	ChildID  int     `json:"childId"`
	StartX   float64 `json:"startX"`
	StartY   float64 `json:"startY"`
	EndX     float64 `json:"endX"`
	EndY     float64 `json:"endY"`
	Path     string  `json:"path"`
	Conflict bool    `json:"conflict"`
}

// View is the complete visual tree of one render pass.
type View struct {
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle"`
	NoData      bool            `json:"noData"`
	Message     string          `json:"message,omitempty"`
	ViewMode    models.ViewMode `json:"viewMode"`
	FrozenWidth int             `json:"frozenWidth"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Columns     []ColumnCell    `json:"columns"`
	Header      []HeaderCell    `json:"header"`
	Rows        []RowView       `json:"rows"`
	Connectors  []Connector     `json:"connectors"`
}

// Build computes the visual tree for snap at the given container width. It
// is a pure function of its inputs.
func Build(snap models.Snapshot, containerWidth int) View {
	snap = snap.WithDefaults()
	layout := core.ComputeLayout(core.LayoutInputFor(snap, containerWidth))
	widths := snap.Widths()

	v := View{
		Title:       snap.ProjectTitle,
		Subtitle:    snap.ProjectSubtitle,
		NoData:      layout.NoData,
		Message:     layout.Reason,
		ViewMode:    layout.ViewMode,
		FrozenWidth: layout.FrozenWidth,
		Columns: []ColumnCell{
			{Column: models.ColumnGroup, Title: "Group", X: 0, Width: widths.Group},
			{Column: models.ColumnTaskName, Title: "Task Name", X: widths.Group, Width: widths.TaskName},
			{Column: models.ColumnDeps, Title: "Depends On", X: widths.Group + widths.TaskName, Width: widths.Deps},
		},
	}

	frozen := float64(layout.FrozenWidth)
	x := frozen
	for _, b := range layout.Buckets {
		w := float64(b.Days) * layout.PixelsPerDay
		v.Header = append(v.Header, HeaderCell{Label: b.Label, SubLabel: b.SubLabel, X: x, Width: w, Weekend: b.Weekend})
		x += w
	}

	rowIndex := make(map[int]int, len(layout.Rows))
	for i, r := range layout.Rows {
		t := r.Task
		row := RowView{
			TaskID: t.ID,
			Y:      float64(HeaderHeight + i*RowHeight),
			Group:  t.Group,
			Name:   t.Name,
			Deps:   t.Dependencies.String(),
		}
		if r.HasBar {
			color := models.BarColor(t, snap.ProjectGroups)
			row.Bar = &Bar{
				Left:          frozen + r.Bar.Left,
				Width:         r.Bar.Width,
				ProgressWidth: r.Bar.Width * float64(t.Progress) / 100,
				Color:         color,
				TrackColor:    color + barTrackOpacity,
				Tooltip:       Tooltip(t),
			}
		}
		rowIndex[t.ID] = i
		v.Rows = append(v.Rows, row)
	}

	for _, child := range v.Rows {
		if child.Bar == nil {
			continue
		}
		task := layout.Rows[rowIndex[child.TaskID]].Task
		for _, dep := range task.Dependencies {
			pi, ok := rowIndex[dep]
			if !ok || v.Rows[pi].Bar == nil {
				continue
			}
			parent := v.Rows[pi]
			v.Connectors = append(v.Connectors, connector(parent, child))
		}
	}

	v.Width = frozen + layout.TimelineWidth
	v.Height = float64(HeaderHeight + len(v.Rows)*RowHeight)
	return v
}

func connector(parent, child RowView) Connector {
	c := Connector{
		ParentID: parent.TaskID,
		ChildID:  child.TaskID,
		StartX:   parent.Bar.Left + parent.Bar.Width,
		StartY:   parent.Y + RowHeight/2,
		EndX:     child.Bar.Left,
		EndY:     child.Y + RowHeight/2,
	}
	c.Conflict = c.EndX < c.StartX
	c.Path = fmt.Sprintf("M %s %s H %s V %s H %s",
		num(c.StartX), num(c.StartY), num(c.StartX+ConnectorNeck), num(c.EndY), num(c.EndX))
	return c
}

// Tooltip returns the hover lines shown for a task bar.
func Tooltip(t models.Task) []string {
	return []string{
		fmt.Sprintf("#%d: %s", t.ID, t.Name),
		fmt.Sprintf("%s to %s", t.Start.DMY(), t.End.DMY()),
		fmt.Sprintf("Duration: %d days", t.Duration()+1),
		fmt.Sprintf("Progress: %d%%", t.Progress),
	}
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(float64(int64(f*100+sign(f)*0.5))/100, 'f', -1, 64)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
