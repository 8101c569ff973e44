package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// DefaultContainerWidth is the visible width assumed when the caller does
// not know the real viewport.
const DefaultContainerWidth = 1200

// Reasons a layout carries no numeric range.
const (
	NoDataNoTasks = "No tasks yet."
	NoDataNoDates = "No valid dates found in tasks."
)

// Bucket is one header cell of the timeline.
type Bucket struct {
	Label    string      `json:"label"`
	SubLabel string      `json:"subLabel,omitempty"`
	Start    models.Date `json:"start"`
	Days     int         `json:"days"`
	Weekend  bool        `json:"weekend,omitempty"`
}

// End returns the last day covered by the bucket.
func (b Bucket) End() models.Date {
	return models.AddDays(b.Start, b.Days-1)
}

// BarGeometry is the horizontal placement of a task bar inside the timeline
// area, in pixels from the chart start.
type BarGeometry struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Right returns the x coordinate of the bar's right edge.
func (g BarGeometry) Right() float64 {
	return g.Left + g.Width
}

// Row is one task line of the chart in display order.
type Row struct {
	Task    models.Task `json:"task"`
	Grouped bool        `json:"grouped"`
	HasBar  bool        `json:"hasBar"`
	Bar     BarGeometry `json:"bar"`
}

// LayoutInput is everything the layout depends on.
type LayoutInput struct {
	Tasks          []models.Task
	Groups         []models.Group
	ViewMode       models.ViewMode
	ColumnWidths   models.ColumnWidths
	ContainerWidth int
}

// LayoutInputFor builds a LayoutInput from a snapshot.
func LayoutInputFor(snap models.Snapshot, containerWidth int) LayoutInput {
	return LayoutInput{
		Tasks:          snap.Tasks,
		Groups:         snap.ProjectGroups,
		ViewMode:       snap.ViewMode,
		ColumnWidths:   snap.Widths(),
		ContainerWidth: containerWidth,
	}
}

// Layout maps calendar days onto pixels for one render pass. When NoData is
// set only Reason, ViewMode, FrozenWidth and Rows are meaningful.
type Layout struct {
	NoData        bool            `json:"noData"`
	Reason        string          `json:"reason,omitempty"`
	ViewMode      models.ViewMode `json:"viewMode"`
	ChartStart    models.Date     `json:"chartStart"`
	ChartEnd      models.Date     `json:"chartEnd"`
	TotalDays     int             `json:"totalDays"`
	Buckets       []Bucket        `json:"buckets"`
	PixelsPerDay  float64         `json:"pixelsPerDay"`
	TimelineWidth float64         `json:"timelineWidth"`
	FrozenWidth   int             `json:"frozenWidth"`
	Rows          []Row           `json:"rows"`
}

// NominalBucketWidth is the minimum pixel width of one header bucket.
func NominalBucketWidth(v models.ViewMode) int {
	switch v {
	case models.ViewDay:
		return 40
	case models.ViewWeek:
		return 60
	case models.ViewMonth:
		return 80
	default:
		return 120
	}
}

// ComputeLayout derives buckets, scale and row order from the input. It is a
// pure function.
func ComputeLayout(in LayoutInput) Layout {
	mode := in.ViewMode
	if !mode.Valid() {
		mode = models.ViewDay
	}
	widths := in.ColumnWidths
	if widths.Total() == 0 {
		widths = models.DefaultColumnWidths()
	}
	container := in.ContainerWidth
	if container <= 0 {
		container = DefaultContainerWidth
	}

	l := Layout{ViewMode: mode, FrozenWidth: widths.Total()}
	rows := SortRows(in.Tasks, in.Groups)
	l.Rows = rows

	if len(in.Tasks) == 0 {
		l.NoData, l.Reason = true, NoDataNoTasks
		return l
	}
	var all []models.Date
	for _, t := range in.Tasks {
		all = append(all, t.Start, t.End)
	}
	minDate, ok := models.MinDate(all...)
	if !ok {
		l.NoData, l.Reason = true, NoDataNoDates
		return l
	}
	maxDate, _ := models.MaxDate(all...)

	start := models.AddDays(minDate, -2)
	end := models.AddDays(maxDate, 2)
	l.Buckets = buildBuckets(mode, start, end)
	l.ChartStart = l.Buckets[0].Start
	last := l.Buckets[len(l.Buckets)-1]
	l.ChartEnd = last.End()
	l.TotalDays = models.DayDiff(l.ChartStart, models.AddDays(last.Start, last.Days))

	available := float64(container - l.FrozenWidth)
	nominal := float64(len(l.Buckets) * NominalBucketWidth(mode))
	l.TimelineWidth = math.Max(available, nominal)
	l.PixelsPerDay = l.TimelineWidth / float64(l.TotalDays)

	for i := range l.Rows {
		l.Rows[i].Bar, l.Rows[i].HasBar = l.BarFor(l.Rows[i].Task)
	}
	return l
}

// BarFor places a task bar. It reports false when the task has no usable
// dates or the layout has no data.
func (l Layout) BarFor(t models.Task) (BarGeometry, bool) {
	if l.NoData || t.Start.IsZero() || t.End.IsZero() {
		return BarGeometry{}, false
	}
	return BarGeometry{
		Left:  float64(models.DayDiff(l.ChartStart, t.Start)) * l.PixelsPerDay,
		Width: float64(models.DayDiff(t.Start, t.End)+1) * l.PixelsPerDay,
	}, true
}

// XForDate returns the pixel offset of the start of day d.
func (l Layout) XForDate(d models.Date) float64 {
	return float64(models.DayDiff(l.ChartStart, d)) * l.PixelsPerDay
}

// DateAt returns the day under pixel offset x, clamped to the chart.
func (l Layout) DateAt(x float64) models.Date {
	if l.NoData || l.PixelsPerDay <= 0 {
		return models.Date{}
	}
	day := int(math.Floor(x / l.PixelsPerDay))
	if day < 0 {
		day = 0
	}
	if day >= l.TotalDays {
		day = l.TotalDays - 1
	}
	return models.AddDays(l.ChartStart, day)
}

// RowIndex returns the display index of the task, or -1.
func (l Layout) RowIndex(id int) int {
	for i, r := range l.Rows {
		if r.Task.ID == id {
			return i
		}
	}
	return -1
}

func buildBuckets(mode models.ViewMode, start, end models.Date) []Bucket {
	var out []Bucket
	if mode == models.ViewDay {
		for d := start; !d.After(end); d = models.AddDays(d, 1) {
			b := Bucket{
				Label:   strconv.Itoa(d.Day()),
				Start:   d,
				Days:    1,
				Weekend: d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			}
			if d.Day() == 1 || len(out) == 0 {
				b.SubLabel = d.Month().String()[:3]
			}
			out = append(out, b)
		}
		return out
	}

	for unit := start; !unit.After(end); {
		var b Bucket
		var unitEnd models.Date
		switch mode {
		case models.ViewWeek:
			sow := models.AddDays(unit, -int(unit.Weekday()))
			unitEnd = models.AddDays(sow, 6)
			jan1 := models.NewDate(sow.Year(), time.January, 1)
			week := int(math.Ceil(float64(models.DayDiff(jan1, sow)+1) / 7))
			b = Bucket{
				Label:    fmt.Sprintf("W%d", week),
				SubLabel: fmt.Sprintf("%d/%d", sow.Day(), int(sow.Month())),
				Start:    sow,
			}
		case models.ViewMonth:
			som := models.NewDate(unit.Year(), unit.Month(), 1)
			unitEnd = models.NewDate(unit.Year(), unit.Month()+1, 0)
			b = Bucket{Label: som.Time().Format("Jan 2006"), Start: som}
		case models.ViewQuarter:
			q := (int(unit.Month()) - 1) / 3
			soq := models.NewDate(unit.Year(), time.Month(q*3+1), 1)
			unitEnd = models.NewDate(unit.Year(), time.Month(q*3+4), 0)
			b = Bucket{Label: fmt.Sprintf("Q%d %d", q+1, unit.Year()), Start: soq}
		default:
			soy := models.NewDate(unit.Year(), time.January, 1)
			unitEnd = models.NewDate(unit.Year(), time.December, 31)
			b = Bucket{Label: strconv.Itoa(unit.Year()), Start: soy}
		}
		b.Days = models.DayDiff(b.Start, unitEnd) + 1
		out = append(out, b)
		unit = models.AddDays(unitEnd, 1)
	}
	return out
}

// SortRows orders tasks for display: named groups ascending ignoring case,
// ungrouped and dangling-group tasks last, then by start date. The sort is
// stable so equal keys keep store order.
func SortRows(tasks []models.Task, groups []models.Group) []Row {
	known := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		known[g.Name] = struct{}{}
	}
	rows := make([]Row, len(tasks))
	for i, t := range tasks {
		_, grouped := known[t.Group]
		rows[i] = Row{Task: t.Clone(), Grouped: grouped && t.Group != ""}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Grouped != b.Grouped {
			return a.Grouped
		}
		if a.Grouped {
			ga, gb := strings.ToLower(a.Task.Group), strings.ToLower(b.Task.Group)
			if ga != gb {
				return ga < gb
			}
		}
		return a.Task.Start.Before(b.Task.Start)
	})
	return rows
}
