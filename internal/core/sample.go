package core

import "github.com/valter-silva-au/gantt/pkg/models"

// SampleSnapshot returns a small five-phase project used by `gantt init --sample`
// and the terminal UI's demo key.
func SampleSnapshot() models.Snapshot {
	d := models.MustParseDate
	widths := models.DefaultColumnWidths()
	return models.Snapshot{
		Tasks: []models.Task{
			{ID: 1, Name: "Project Planning", Group: "Planning", Start: d("01/01/2024"), End: d("15/01/2024"), Progress: 100, Color: "#79D3C9"},
			{ID: 2, Name: "Design Phase", Group: "Design", Start: d("16/01/2024"), End: d("31/01/2024"), Progress: 75, Dependencies: models.DependencyList{1}, Color: "#25B8A3"},
			{ID: 3, Name: "Development", Group: "Development", Start: d("01/02/2024"), End: d("29/02/2024"), Progress: 50, Dependencies: models.DependencyList{2}, Color: "#006152"},
			{ID: 4, Name: "Testing", Group: "Testing", Start: d("01/03/2024"), End: d("15/03/2024"), Progress: 25, Dependencies: models.DependencyList{3}, Color: "#FF6B6B"},
			{ID: 5, Name: "Deployment", Group: "Deployment", Start: d("16/03/2024"), End: d("31/03/2024"), Progress: 0, Dependencies: models.DependencyList{4}, Color: "#4ECDC4"},
		},
		ProjectGroups: []models.Group{
			{Name: "Planning", Color: "#79D3C9"},
			{Name: "Design", Color: "#25B8A3"},
			{Name: "Development", Color: "#006152"},
			{Name: "Testing", Color: "#FF6B6B"},
			{Name: "Deployment", Color: "#4ECDC4"},
		},
		ProjectTitle:    "Software Development Project",
		ProjectSubtitle: "Q1 2024 Timeline",
		ViewMode:        models.ViewDay,
		ColumnWidths:    &widths,
	}
}
