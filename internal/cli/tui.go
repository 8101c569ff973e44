package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// cellPixels is how many layout pixels one terminal cell stands for.
const cellPixels = 8

// Screen rows above the first task row: title, summary, two header lines.
const (
	headerTop = 2
	rowTop    = 4
	footerLen = 3
)

const statusTTL = 4 * time.Second

type tuiKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	MoveLeft     key.Binding
	MoveRight    key.Binding
	ShrinkEnd    key.Binding
	GrowEnd      key.Binding
	StartEarlier key.Binding
	StartLater   key.Binding
	ScrollLeft   key.Binding
	ScrollRight  key.Binding
	View         key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.MoveLeft, k.MoveRight, k.ShrinkEnd, k.GrowEnd, k.View, k.Help, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ScrollLeft, k.ScrollRight},
		{k.MoveLeft, k.MoveRight, k.ShrinkEnd, k.GrowEnd, k.StartEarlier, k.StartLater},
		{k.View, k.Confirm, k.Cancel, k.Help, k.Quit},
	}
}

func defaultTUIKeys() tuiKeyMap {
	return tuiKeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveLeft:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move -1d")),
		MoveRight:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move +1d")),
		ShrinkEnd:    key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "end -1d")),
		GrowEnd:      key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "end +1d")),
		StartEarlier: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "start -1d")),
		StartLater:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "start +1d")),
		ScrollLeft:   key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "scroll left")),
		ScrollRight:  key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "scroll right")),
		View:         key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "zoom")),
		Confirm:      key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("#006152")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#006152"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	statusOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// clearStatusMsg expires the status line set with the same sequence number.
type clearStatusMsg struct{ seq int }

type tuiModel struct {
	editor *core.Editor
	ctrl   *core.Controller
	keys   tuiKeyMap
	help   help.Model

	width  int
	height int

	snap       models.Snapshot
	layout     core.Layout
	conflicted map[int]bool
	selectedID int
	offset     int // first visible row
	scroll     int // timeline cells scrolled off to the left

	live    core.Feedback
	pending *core.PendingAction

	status    string
	statusBad bool
	statusSeq int
}

func newTUIModel(editor *core.Editor) tuiModel {
	m := tuiModel{
		editor: editor,
		ctrl:   core.NewController(),
		keys:   defaultTUIKeys(),
		help:   help.New(),
	}
	m.refresh()
	return m
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.pending != nil {
			_ = m.pending.Cancel()
			m.pending = nil
		}
		return m, tea.Quit
	}

	if m.pending != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			shifted := len(m.pending.Plan)
			err := m.pending.Confirm()
			m.pending = nil
			m.refresh()
			if err != nil {
				return m.withStatus(err.Error(), true)
			}
			return m.withStatus(fmt.Sprintf("Saved. Shifted %d dependent task(s).", shifted), false)
		case key.Matches(msg, m.keys.Cancel):
			err := m.pending.Cancel()
			m.pending = nil
			m.refresh()
			if err != nil {
				return m.withStatus(err.Error(), true)
			}
			return m.withStatus("Cancelled. No changes were made.", false)
		}
		return m, nil
	}

	if m.ctrl.State() != core.StateIdle {
		if key.Matches(msg, m.keys.Cancel) {
			m.ctrl.Abort()
			m.live = core.Feedback{}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.ScrollLeft):
		m.scroll = max(0, m.scroll-m.timelineCells()/2)
	case key.Matches(msg, m.keys.ScrollRight):
		m.scroll = min(m.maxScroll(), m.scroll+m.timelineCells()/2)
	case key.Matches(msg, m.keys.MoveLeft):
		return m.shiftSelected(core.DragMove, -1)
	case key.Matches(msg, m.keys.MoveRight):
		return m.shiftSelected(core.DragMove, 1)
	case key.Matches(msg, m.keys.ShrinkEnd):
		return m.shiftSelected(core.DragResizeRight, -1)
	case key.Matches(msg, m.keys.GrowEnd):
		return m.shiftSelected(core.DragResizeRight, 1)
	case key.Matches(msg, m.keys.StartEarlier):
		return m.shiftSelected(core.DragResizeLeft, -1)
	case key.Matches(msg, m.keys.StartLater):
		return m.shiftSelected(core.DragResizeLeft, 1)
	case key.Matches(msg, m.keys.View):
		next := m.snap.ViewMode.Next()
		if err := m.editor.SetViewMode(next); err != nil {
			return m.withStatus(err.Error(), true)
		}
		m.scroll = 0
		m.refresh()
		return m.withStatus("View: "+string(next), false)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m tuiModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.pending != nil {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveSelection(-1)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.moveSelection(1)
			return m, nil
		case tea.MouseButtonLeft:
			return m.pressAt(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		if m.ctrl.State() != core.StateIdle {
			m.live = m.ctrl.Move(m.pointerX(msg.X), m.layout.PixelsPerDay)
		}
	case tea.MouseActionRelease:
		if m.ctrl.State() != core.StateIdle {
			out := m.ctrl.Release(m.pointerX(msg.X), m.layout.PixelsPerDay)
			return m.applyOutcome(out)
		}
	}
	return m, nil
}

// pressAt starts a column resize on a header separator or a task drag on a
// bar. Pressing anywhere else on a row only selects it.
func (m tuiModel) pressAt(x, y int) (tea.Model, tea.Cmd) {
	g, n, d := m.frozenCells()
	if y == headerTop || y == headerTop+1 {
		w := m.snap.Widths()
		var col models.Column
		switch x {
		case g - 1:
			col = models.ColumnGroup
		case g + n - 1:
			col = models.ColumnTaskName
		case g + n + d - 1:
			col = models.ColumnDeps
		default:
			return m, nil
		}
		if err := m.ctrl.BeginColumnResize(col, w.Get(col), m.pointerXFor(x, true)); err != nil {
			return m.withStatus(err.Error(), true)
		}
		m.live = core.Feedback{State: m.ctrl.State(), Column: col, ColumnWidth: w.Get(col)}
		return m, nil
	}

	idx := y - rowTop + m.offset
	if y < rowTop || idx >= len(m.layout.Rows) {
		return m, nil
	}
	row := m.layout.Rows[idx]
	m.selectedID = row.Task.ID
	frozen := g + n + d
	if x < frozen || !row.HasBar {
		return m, nil
	}

	first, last := barCells(row.Bar)
	cell := x - frozen + m.scroll
	if cell < first || cell > last {
		return m, nil
	}
	kind := core.DragMove
	if last-first >= 2 {
		switch cell {
		case first:
			kind = core.DragResizeLeft
		case last:
			kind = core.DragResizeRight
		}
	}
	if err := m.ctrl.BeginTaskDrag(row.Task, kind, m.pointerXFor(x, false), row.Bar); err != nil {
		return m.withStatus(err.Error(), true)
	}
	m.live = core.Feedback{State: m.ctrl.State(), TaskID: row.Task.ID, Bar: row.Bar}
	return m, nil
}

// shiftSelected edits the selected task the way a drag of days would.
func (m tuiModel) shiftSelected(kind core.DragKind, days int) (tea.Model, tea.Cmd) {
	t, err := m.editor.Task(m.selectedID)
	if err != nil {
		return m.withStatus("Select a task first.", true)
	}
	if t.Start.IsZero() || t.End.IsZero() {
		return m.withStatus(fmt.Sprintf("Task #%d has no dates.", t.ID), true)
	}
	return m.applyOutcome(core.Outcome{
		Kind:     core.OutcomeTaskEdit,
		Drag:     kind,
		Task:     core.ShiftTask(t, kind, days),
		Original: t,
		DayShift: days,
	})
}

func (m tuiModel) applyOutcome(out core.Outcome) (tea.Model, tea.Cmd) {
	m.live = core.Feedback{}
	pending, err := m.editor.ApplyOutcome(out)
	m.refresh()
	switch {
	case err != nil:
		return m.withStatus(err.Error(), true)
	case pending != nil:
		m.pending = pending
		return m, nil
	case out.Kind == core.OutcomeNone:
		return m, nil
	case out.Kind == core.OutcomeColumnWidth:
		return m.withStatus(fmt.Sprintf("Column %s: %dpx", out.Column, m.snap.Widths().Get(out.Column)), false)
	}
	return m.withStatus("Saved.", false)
}

func (m tuiModel) withStatus(msg string, bad bool) (tea.Model, tea.Cmd) {
	cmd := m.setStatus(msg, bad)
	return m, cmd
}

func (m *tuiModel) setStatus(msg string, bad bool) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.status = msg
	m.statusBad = bad
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

// refresh reloads the editor state and recomputes the layout for the
// current terminal width.
func (m *tuiModel) refresh() {
	m.snap = m.editor.Snapshot()
	width := core.DefaultContainerWidth
	if m.width > 0 {
		width = m.width * cellPixels
	}
	m.layout = core.ComputeLayout(core.LayoutInputFor(m.snap, width))

	m.conflicted = make(map[int]bool)
	for _, v := range core.Violations(m.snap.Tasks) {
		m.conflicted[v.ChildID] = true
	}

	if len(m.layout.Rows) == 0 {
		m.selectedID = 0
		m.offset = 0
		return
	}
	if m.layout.RowIndex(m.selectedID) < 0 {
		m.selectedID = m.layout.Rows[0].Task.ID
	}
	m.scroll = min(m.scroll, m.maxScroll())
	m.follow()
}

func (m *tuiModel) moveSelection(delta int) {
	if len(m.layout.Rows) == 0 {
		return
	}
	idx := m.layout.RowIndex(m.selectedID) + delta
	idx = max(0, min(len(m.layout.Rows)-1, idx))
	m.selectedID = m.layout.Rows[idx].Task.ID
	m.follow()
}

// follow keeps the selected row on screen and its bar start in view.
func (m *tuiModel) follow() {
	idx := m.layout.RowIndex(m.selectedID)
	if idx < 0 {
		return
	}
	if visible := m.visibleRows(); visible > 0 {
		if idx < m.offset {
			m.offset = idx
		} else if idx >= m.offset+visible {
			m.offset = idx - visible + 1
		}
	}
	row := m.layout.Rows[idx]
	if !row.HasBar || m.width == 0 {
		return
	}
	first, _ := barCells(row.Bar)
	if first < m.scroll || first >= m.scroll+m.timelineCells() {
		m.scroll = max(0, min(m.maxScroll(), first-2))
	}
}

func (m tuiModel) visibleRows() int {
	if m.height == 0 {
		return len(m.layout.Rows)
	}
	return max(1, m.height-rowTop-footerLen)
}

func (m tuiModel) frozenCells() (group, name, deps int) {
	w := m.snap.Widths()
	if m.ctrl.State() == core.StateResizingColumn {
		w = w.With(m.live.Column, m.live.ColumnWidth)
	}
	return columnCells(w.Group), columnCells(w.TaskName), columnCells(w.Deps)
}

func (m tuiModel) timelineCells() int {
	g, n, d := m.frozenCells()
	return max(0, m.width-g-n-d)
}

func (m tuiModel) maxScroll() int {
	total := int(math.Ceil(m.layout.TimelineWidth / cellPixels))
	return max(0, total-m.timelineCells())
}

// pointerX maps a screen column to the coordinate space of the active
// interaction: frozen pixels for column resizes, timeline pixels otherwise.
func (m tuiModel) pointerX(x int) float64 {
	return m.pointerXFor(x, m.ctrl.State() == core.StateResizingColumn)
}

func (m tuiModel) pointerXFor(x int, frozen bool) float64 {
	if frozen {
		return float64(x * cellPixels)
	}
	g, n, d := m.frozenCells()
	return float64((x - g - n - d + m.scroll) * cellPixels)
}

func columnCells(px int) int {
	return max(3, px/cellPixels)
}

// barCells returns the first and last timeline cells a bar covers.
func barCells(bar core.BarGeometry) (int, int) {
	first := int(math.Floor(bar.Left / cellPixels))
	last := int(math.Ceil(bar.Right()/cellPixels)) - 1
	return first, max(first, last)
}

func (m tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.snap.ProjectTitle))
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.snap.ProjectSubtitle))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("view: %s   tasks: %d   conflicts: %d",
		m.snap.ViewMode, len(m.snap.Tasks), len(m.conflicted))))
	b.WriteString("\n")

	if len(m.layout.Rows) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.layout.Reason))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	g, n, d := m.frozenCells()
	top, bottom := m.timelineHeader()
	b.WriteString(headerStyle.Render(cellText("Group", g) + cellText("Task", n) + cellText("Deps", d)))
	b.WriteString(dimStyle.Render(top))
	b.WriteString("\n")
	b.WriteString(cellText("", g) + cellText("", n) + cellText("", d))
	b.WriteString(dimStyle.Render(bottom))
	b.WriteString("\n")

	end := min(len(m.layout.Rows), m.offset+m.visibleRows())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.layout.Rows[i], g, n, d))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.pending != nil:
		b.WriteString(promptStyle.Render(m.pending.Message + " [y/n]"))
	case m.status != "" && m.statusBad:
		b.WriteString(statusErr.Render(m.status))
	case m.status != "":
		b.WriteString(statusOK.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m tuiModel) renderRow(row core.Row, g, n, d int) string {
	t := row.Task
	group := ""
	if row.Grouped {
		group = t.Group
	}
	deps := t.Dependencies.String()
	if m.conflicted[t.ID] {
		deps = "!" + deps
	}
	frozen := cellText(group, g) + cellText(fmt.Sprintf("#%d %s", t.ID, t.Name), n)
	depsCell := cellText(deps, d)
	if m.conflicted[t.ID] {
		depsCell = conflictStyle.Render(depsCell)
	}
	if t.ID == m.selectedID {
		frozen = selectedStyle.Render(frozen)
	}

	bar, hasBar := row.Bar, row.HasBar
	if m.live.TaskID == t.ID && m.ctrl.State() != core.StateIdle && m.ctrl.State() != core.StateResizingColumn {
		bar = m.live.Bar
	}
	return frozen + depsCell + m.renderBar(t, bar, hasBar)
}

// renderBar draws the visible slice of a bar: progress as solid blocks, the
// rest as shade.
func (m tuiModel) renderBar(t models.Task, bar core.BarGeometry, hasBar bool) string {
	visible := m.timelineCells()
	if !hasBar || visible == 0 {
		return ""
	}
	first, last := barCells(bar)
	first -= m.scroll
	last -= m.scroll
	done := first + int(math.Round(float64(last-first+1)*float64(t.Progress)/100))

	clip := func(from, to int) int {
		return max(0, min(visible, to)-max(0, from))
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(models.BarColor(t, m.snap.ProjectGroups)))

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", clip(0, first)))
	b.WriteString(style.Render(strings.Repeat("█", clip(first, done))))
	b.WriteString(style.Render(strings.Repeat("░", clip(done, last+1))))
	return b.String()
}

// timelineHeader lays bucket labels and sub-labels out over the visible cells.
func (m tuiModel) timelineHeader() (string, string) {
	visible := m.timelineCells()
	top := []rune(strings.Repeat(" ", visible))
	bottom := []rune(strings.Repeat(" ", visible))
	for _, bk := range m.layout.Buckets {
		x := int(math.Floor(m.layout.XForDate(bk.Start)/cellPixels)) - m.scroll
		room := int(float64(bk.Days)*m.layout.PixelsPerDay/cellPixels) - 1
		writeAt(top, x, bk.Label, room)
		writeAt(bottom, x, bk.SubLabel, room)
	}
	return string(top), string(bottom)
}

func writeAt(dst []rune, x int, s string, room int) {
	if room < 1 {
		return
	}
	r := []rune(s)
	if len(r) > room {
		r = r[:room]
	}
	for i, ch := range r {
		if p := x + i; p >= 0 && p < len(dst) {
			dst[p] = ch
		}
	}
}

// cellText pads or truncates s to width-1 cells and closes it with a separator.
func cellText(s string, width int) string {
	inner := width - 1
	return fmt.Sprintf("%-*s│", inner, truncateText(s, inner))
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal chart",
	Long: `Open the chart in the terminal.

Drag a bar with the mouse to move it, or drag its first or last cell to
change the start or end date. Drag a header separator to resize a column.
The keyboard does the same a day at a time. Edits that shift dependent
tasks ask for confirmation first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		p := tea.NewProgram(newTUIModel(Editor), tea.WithAltScreen(), tea.WithMouseCellMotion())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
