package cli

import (
	"log/slog"

	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/internal/observability"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// Editor service instances, set during app initialization in app.go.
var (
	// Editor owns the project state. Every mutating command goes through it.
	Editor *core.Editor
	// Store is the project file the editor saves to on every commit.
	Store core.SnapshotStore
	// Config is the loaded .ganttconfig.
	Config *models.GlobalConfig
	// BasePath is the workspace root holding .ganttconfig.
	BasePath string
	// Logger receives command diagnostics.
	Logger *slog.Logger
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)

// containerWidth is the layout width used by show, render and the MCP server.
func containerWidth() int {
	if Config != nil && Config.ContainerWidth > 0 {
		return Config.ContainerWidth
	}
	return core.DefaultContainerWidth
}

func requireEditor() error {
	if Editor == nil {
		return errEditorNotInitialized
	}
	return nil
}

func logger() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}
