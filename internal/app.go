// Package internal provides the App struct that wires all components of the
// Gantt editor together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/gantt/internal/cli"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/internal/integration"
	"github.com/valter-silva-au/gantt/internal/logging"
	"github.com/valter-silva-au/gantt/internal/observability"
	"github.com/valter-silva-au/gantt/internal/storage"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// Workspace-local state lives under stateDir, which "gantt init" ignores in git.
const (
	stateDir       = ".gantt"
	eventLogName   = "events.jsonl"
	defaultLogName = "gantt.log"

	// stderrLogFile in log.file sends diagnostics to stderr instead of a file.
	stderrLogFile = "-"
)

// App holds all service dependencies of the Gantt editor.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	Logger *logging.Logger

	// Storage layer
	Store core.SnapshotStore

	// Core services
	Editor      *core.Editor
	ProjectInit core.ProjectInitializer

	// Integration services
	Webhook *integration.SnapshotPoster

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the Gantt editor. basePath is
// the workspace root holding .ganttconfig and the project file.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, cfgErr := app.ConfigMgr.LoadGlobalConfig()
	if cfgErr != nil {
		// Use defaults if the config file can't be read.
		cfg = core.DefaultGlobalConfig()
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Logging ---
	var err error
	app.Logger, err = logging.New(app.logPath(), cfg.LogLevel, os.Stderr)
	if err != nil {
		// Non-fatal: fall back to stderr if the log file can't be opened.
		app.Logger, _ = logging.New("", cfg.LogLevel, os.Stderr)
	}
	log := app.Logger.Component("app")
	if cfgErr != nil {
		log.Warn("using default configuration", "error", cfgErr)
	}

	// --- Storage layer ---
	projectPath := cfg.ProjectFile
	if !filepath.IsAbs(projectPath) {
		projectPath = filepath.Join(basePath, projectPath)
	}
	app.Store = storage.NewSnapshotStore(projectPath)
	snap, err := app.loadProject(projectPath)
	if err != nil {
		_ = app.Logger.Close()
		return nil, err
	}

	// --- Observability ---
	if cfg.EventsEnabled {
		eventLogPath := filepath.Join(basePath, stateDir, eventLogName)
		err := os.MkdirAll(filepath.Dir(eventLogPath), 0o750)
		if err == nil {
			app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		}
		if err != nil {
			// Non-fatal: disable observability if log can't be created.
			log.Warn("event log disabled", "path", eventLogPath, "error", err)
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	app.AlertEngine = observability.NewAlertEngine(app.EventLog, observability.DefaultAlertThresholds())
	if cfg.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.WebhookURL)
	}

	// --- Core services ---
	opts := []core.EditorOption{
		core.WithConflictPolicy(cfg.ConflictPolicy),
		core.WithLogger(app.Logger.Component("editor")),
		core.WithListener(core.StoreListener(app.Store)),
	}
	if app.EventLog != nil {
		opts = append(opts, core.WithEventLogger(observability.NewRecorder(app.EventLog)))
	}

	// --- Integration services ---
	if cfg.WebhookURL != "" {
		app.Webhook = integration.NewSnapshotPoster(cfg.WebhookURL)
		opts = append(opts, core.WithListener(app.Webhook))
	}

	app.Editor = core.NewEditor(snap, opts...)
	app.ProjectInit = core.NewProjectInitializer(func(path string) core.SnapshotStore {
		return storage.NewSnapshotStore(path)
	})

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Logger = app.Logger.Component("cli")
	cli.Store = app.Store
	cli.Editor = app.Editor
	cli.ProjectInit = app.ProjectInit

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	log.Debug("app initialized", "base_path", basePath, "project", projectPath, "tasks", len(snap.Tasks))
	return app, nil
}

// loadProject reads the project file. A workspace without one starts empty,
// using the configured view mode and column widths.
func (a *App) loadProject(path string) (models.Snapshot, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		snap := models.EmptySnapshot()
		snap.ViewMode = a.Config.DefaultViewMode
		widths := a.Config.ColumnWidths
		snap.ColumnWidths = &widths
		return snap, nil
	}
	snap, err := a.Store.Load()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("opening project: %w", err)
	}
	if err := core.ValidateSnapshot(snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("opening project %s: %w", path, err)
	}
	return snap, nil
}

func (a *App) logPath() string {
	switch a.Config.LogFile {
	case stderrLogFile:
		return ""
	case "":
		return filepath.Join(a.BasePath, stateDir, defaultLogName)
	}
	if filepath.IsAbs(a.Config.LogFile) {
		return a.Config.LogFile
	}
	return filepath.Join(a.BasePath, a.Config.LogFile)
}

// Close releases resources held by the App: the event log and the log file.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	var errs []error
	if a.EventLog != nil {
		errs = append(errs, a.EventLog.Close())
	}
	if a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the workspace root. It checks the GANTT_HOME
// env var, then looks for .ganttconfig in the current directory tree, and
// falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("GANTT_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
