// Package workbook converts projects to and from xlsx workbooks with the
// sheets ProjectInfo, Groups and Tasks.
package workbook

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetProjectInfo = "ProjectInfo"
	SheetGroups      = "Groups"
	SheetTasks       = "Tasks"
)

// Task sheet column headers, in export order.
const (
	ColGroup        = "Group"
	ColTaskName     = "Task Name"
	ColID           = "ID"
	ColStartDate    = "Start Date"
	ColEndDate      = "End Date"
	ColProgress     = "Progress (%)"
	ColDependencies = "Dependencies"
	ColColor        = "Color"
)

var taskHeaders = []string{ColGroup, ColTaskName, ColID, ColStartDate, ColEndDate, ColProgress, ColDependencies, ColColor}

var taskColWidths = []float64{20, 40, 5, 12, 12, 12, 15, 10}

// RequiredColumns must be present in the task sheet header row.
var RequiredColumns = []string{ColTaskName, ColStartDate, ColEndDate}

const (
	infoTitle    = "Project Title"
	infoSubtitle = "Project Subtitle"
)

// Export writes snap as an xlsx workbook. The Groups sheet is only written
// when the project has groups.
func Export(snap models.Snapshot, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProjectInfo); err != nil {
		return fmt.Errorf("exporting workbook: %w", err)
	}
	info := [][]any{
		{infoTitle, snap.ProjectTitle},
		{infoSubtitle, snap.ProjectSubtitle},
	}
	for i, row := range info {
		if err := f.SetSheetRow(SheetProjectInfo, cell(1, i+1), &row); err != nil {
			return fmt.Errorf("exporting workbook: project info: %w", err)
		}
	}
	if err := setColWidths(f, SheetProjectInfo, []float64{20, 50}); err != nil {
		return err
	}

	if len(snap.ProjectGroups) > 0 {
		if _, err := f.NewSheet(SheetGroups); err != nil {
			return fmt.Errorf("exporting workbook: %w", err)
		}
		header := []any{"name", "color"}
		if err := f.SetSheetRow(SheetGroups, "A1", &header); err != nil {
			return fmt.Errorf("exporting workbook: groups: %w", err)
		}
		for i, g := range snap.ProjectGroups {
			row := []any{g.Name, g.Color}
			if err := f.SetSheetRow(SheetGroups, cell(1, i+2), &row); err != nil {
				return fmt.Errorf("exporting workbook: groups: %w", err)
			}
		}
		if err := setColWidths(f, SheetGroups, []float64{25, 10}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetTasks); err != nil {
		return fmt.Errorf("exporting workbook: %w", err)
	}
	header := make([]any, len(taskHeaders))
	for i, h := range taskHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetTasks, "A1", &header); err != nil {
		return fmt.Errorf("exporting workbook: tasks: %w", err)
	}
	for i, t := range snap.Tasks {
		row := []any{t.Group, t.Name, t.ID, t.Start.DMY(), t.End.DMY(), t.Progress, t.Dependencies.String(), t.Color}
		if err := f.SetSheetRow(SheetTasks, cell(1, i+2), &row); err != nil {
			return fmt.Errorf("exporting workbook: task #%d: %w", t.ID, err)
		}
	}
	if err := setColWidths(f, SheetTasks, taskColWidths); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("exporting workbook: %w", err)
	}
	return nil
}

// Import reads a workbook and returns the project it describes. Titles come
// from ProjectInfo when present and otherwise from current; groups and tasks
// are replaced outright; the view mode resets to day and column widths are
// kept. Rows without a name, start or end are dropped.
func Import(r io.Reader, source string, current models.Snapshot) (models.Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.Snapshot{}, &core.ImportFormatError{Source: source, Cause: fmt.Sprintf("not a readable workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	out := current.WithDefaults().Clone()
	out.ViewMode = models.ViewDay
	out.ProjectGroups = []models.Group{}

	if hasSheet(sheets, SheetProjectInfo) {
		rows, err := f.GetRows(SheetProjectInfo)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("importing %s: %w", source, err)
		}
		for _, row := range rows {
			if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
				continue
			}
			switch strings.TrimSpace(row[0]) {
			case infoTitle:
				out.ProjectTitle = row[1]
			case infoSubtitle:
				out.ProjectSubtitle = row[1]
			}
		}
	}

	if hasSheet(sheets, SheetGroups) {
		groups, err := readGroups(f)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("importing %s: %w", source, err)
		}
		out.ProjectGroups = groups
	}

	taskSheet := SheetTasks
	if !hasSheet(sheets, SheetTasks) {
		if len(sheets) == 0 {
			return models.Snapshot{}, &core.ImportFormatError{Source: source, Cause: "No task data sheet found."}
		}
		taskSheet = sheets[0]
	}
	tasks, err := readTasks(f, taskSheet, source)
	if err != nil {
		return models.Snapshot{}, err
	}
	out.Tasks = tasks
	return out, nil
}

func readGroups(f *excelize.File) ([]models.Group, error) {
	rows, err := f.GetRows(SheetGroups)
	if err != nil {
		return nil, err
	}
	groups := []models.Group{}
	if len(rows) == 0 {
		return groups, nil
	}
	idx := headerIndex(rows[0])
	for _, row := range rows[1:] {
		name := strings.TrimSpace(at(row, idx, "name"))
		if name == "" {
			continue
		}
		groups = append(groups, models.Group{Name: name, Color: strings.TrimSpace(at(row, idx, "color"))})
	}
	return groups, nil
}

func readTasks(f *excelize.File, sheet, source string) ([]models.Task, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("importing %s: reading sheet %s: %w", source, sheet, err)
	}
	if len(rows) == 0 {
		return nil, &core.ImportFormatError{Source: source, Cause: fmt.Sprintf("Sheet %q is empty.", sheet)}
	}
	idx := headerIndex(rows[0])
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &core.ImportFormatError{
			Source: source,
			Cause:  fmt.Sprintf("Sheet %q is missing required column(s): %s.", sheet, strings.Join(missing, ", ")),
		}
	}

	tasks := []models.Task{}
	rowOf := map[int]int{}
	for i, row := range rows[1:] {
		name := at(row, idx, ColTaskName)
		start, okStart := parseCellDate(at(row, idx, ColStartDate))
		end, okEnd := parseCellDate(at(row, idx, ColEndDate))
		if strings.TrimSpace(name) == "" || !okStart || !okEnd {
			continue
		}
		sheetRow := i + 2
		id := i + 1
		if v, err := strconv.ParseFloat(strings.TrimSpace(at(row, idx, ColID)), 64); err == nil && v >= 1 {
			id = int(v)
		}
		if prev, dup := rowOf[id]; dup {
			return nil, &core.ImportFormatError{
				Source: source,
				Cause:  fmt.Sprintf("Sheet %q rows %d and %d both use task ID %d.", sheet, prev, sheetRow, id),
			}
		}
		rowOf[id] = sheetRow
		if end.Before(start) {
			return nil, &core.ImportFormatError{
				Source: source,
				Cause:  fmt.Sprintf("Sheet %q row %d: End Date is before Start Date.", sheet, sheetRow),
			}
		}
		tasks = append(tasks, models.Task{
			ID:           id,
			Name:         name,
			Group:        at(row, idx, ColGroup),
			Start:        start,
			End:          end,
			Progress:     parseProgress(at(row, idx, ColProgress)),
			Dependencies: parseDependencies(at(row, idx, ColDependencies)),
			Color:        strings.TrimSpace(at(row, idx, ColColor)),
		})
	}
	return tasks, nil
}

// parseCellDate accepts a native spreadsheet date serial or either text form.
func parseCellDate(raw string) (models.Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Date{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return models.Date{}, false
		}
		return models.DateOf(t), true
	}
	return models.ParseDate(raw)
}

func parseProgress(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	p := int(v)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

var depToken = regexp.MustCompile(`\d+`)

// parseDependencies keeps every integer in the cell, so "1, 2", "1;2" and a
// numeric cell holding 3 all work.
func parseDependencies(raw string) models.DependencyList {
	var deps models.DependencyList
	for _, tok := range depToken.FindAllString(raw, -1) {
		if id, err := strconv.Atoi(tok); err == nil {
			deps = append(deps, id)
		}
	}
	return deps.Normalize(0)
}

// headerIndex maps lower-cased, trimmed header text to its column index.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup && key != "" {
			idx[key] = i
		}
	}
	return idx
}

func at(row []string, idx map[string]int, col string) string {
	i, ok := idx[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func hasSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setColWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("exporting workbook: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("exporting workbook: sizing %s!%s: %w", sheet, col, err)
		}
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]`)

// SafeFilename derives a file base name from a project title: every
// character outside a-z and 0-9 becomes an underscore.
func SafeFilename(title string) string {
	name := unsafeFilename.ReplaceAllString(strings.ToLower(title), "_")
	if name == "" {
		return "gantt_chart"
	}
	return name
}
