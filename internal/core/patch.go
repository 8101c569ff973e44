package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// TaskPatch is a partial task edit as it arrives from a front-end: nil
// fields are left alone, dates and dependency lists are raw text.
type TaskPatch struct {
	Name         *string
	Group        *string
	Start        *string
	End          *string
	Progress     *int
	Dependencies *string
	Color        *string
}

// Apply returns t with the patch applied. An empty date string clears the
// date; unparseable dates or dependency lists yield a ValidationError.
func (p TaskPatch) Apply(t models.Task) (models.Task, error) {
	t = t.Clone()
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Group != nil {
		t.Group = strings.TrimSpace(*p.Group)
	}
	if p.Start != nil {
		d, err := parsePatchDate("start", "Start", *p.Start)
		if err != nil {
			return models.Task{}, err
		}
		t.Start = d
	}
	if p.End != nil {
		d, err := parsePatchDate("end", "End", *p.End)
		if err != nil {
			return models.Task{}, err
		}
		t.End = d
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Dependencies != nil {
		deps, err := models.ParseDependencyList(*p.Dependencies)
		if err != nil {
			return models.Task{}, NewValidationError("dependencies", fmt.Sprintf("Dependencies must be comma-separated task ids: %s.", err))
		}
		t.Dependencies = deps
	}
	if p.Color != nil {
		t.Color = strings.TrimSpace(*p.Color)
	}
	return t, nil
}

func parsePatchDate(field, label, text string) (models.Date, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Date{}, nil
	}
	d, ok := models.ParseDate(text)
	if !ok {
		return models.Date{}, NewValidationError(field, fmt.Sprintf("%s date %q must be DD/MM/YYYY or YYYY-MM-DD.", label, text))
	}
	return d, nil
}
