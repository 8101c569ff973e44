// Package core contains the scheduling engine of the Gantt editor: the task
// store, dependency propagation, timeline layout, the drag/resize state
// machine, and the Editor that ties them together. It also loads the
// global configuration.
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// ConfigFileName is the base name of the global configuration file.
const ConfigFileName = ".ganttconfig"

// ConfigurationManager loads and validates the .ganttconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

type viperConfigManager struct {
	// basePath is the root directory where .ganttconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		ProjectFile:     "project.yaml",
		DefaultViewMode: models.ViewDay,
		ColumnWidths:    models.DefaultColumnWidths(),
		ContainerWidth:  DefaultContainerWidth,
		ConflictPolicy:  models.ConflictWarn,
		LogLevel:        "info",
		EventsEnabled:   true,
	}
}

// LoadGlobalConfig reads .ganttconfig from the base path. Missing files yield
// defaults; GANTT_* environment variables override file values
// (GANTT_CONFLICTS_POLICY overrides conflicts.policy, and so on).
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("GANTT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("project.file", cfg.ProjectFile)
	v.SetDefault("defaults.view_mode", string(cfg.DefaultViewMode))
	v.SetDefault("defaults.column_widths.group", cfg.ColumnWidths.Group)
	v.SetDefault("defaults.column_widths.task_name", cfg.ColumnWidths.TaskName)
	v.SetDefault("defaults.column_widths.deps", cfg.ColumnWidths.Deps)
	v.SetDefault("render.container_width", cfg.ContainerWidth)
	v.SetDefault("conflicts.policy", string(cfg.ConflictPolicy))
	v.SetDefault("log.level", cfg.LogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("host.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.ProjectFile = v.GetString("project.file")
	cfg.DefaultViewMode = models.ViewMode(strings.ToLower(v.GetString("defaults.view_mode")))
	cfg.ColumnWidths = models.ColumnWidths{
		Group:    v.GetInt("defaults.column_widths.group"),
		TaskName: v.GetInt("defaults.column_widths.task_name"),
		Deps:     v.GetInt("defaults.column_widths.deps"),
	}
	cfg.ContainerWidth = v.GetInt("render.container_width")
	cfg.ConflictPolicy = models.ConflictPolicy(strings.ToLower(v.GetString("conflicts.policy")))
	cfg.LogLevel = v.GetString("log.level")
	cfg.LogFile = v.GetString("log.file")
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.WebhookURL = v.GetString("host.webhook_url")

	return cfg, nil
}

// ValidateConfig checks the configuration and reports every problem at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.ProjectFile) == "" {
		errs = append(errs, "project.file must not be empty")
	}
	if !cfg.DefaultViewMode.Valid() {
		errs = append(errs, fmt.Sprintf(
			"defaults.view_mode %q is invalid, must be one of: day, week, month, quarter, year",
			cfg.DefaultViewMode,
		))
	}
	for _, c := range []struct {
		key   string
		width int
	}{
		{"defaults.column_widths.group", cfg.ColumnWidths.Group},
		{"defaults.column_widths.task_name", cfg.ColumnWidths.TaskName},
		{"defaults.column_widths.deps", cfg.ColumnWidths.Deps},
	} {
		if c.width < MinColumnWidth {
			errs = append(errs, fmt.Sprintf("%s must be at least %d, got %d", c.key, MinColumnWidth, c.width))
		}
	}
	if cfg.ContainerWidth <= 0 {
		errs = append(errs, fmt.Sprintf("render.container_width must be positive, got %d", cfg.ContainerWidth))
	}
	switch cfg.ConflictPolicy {
	case models.ConflictWarn, models.ConflictBlock:
	default:
		errs = append(errs, fmt.Sprintf("conflicts.policy %q is invalid, must be one of: warn, block", cfg.ConflictPolicy))
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is invalid, must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.WebhookURL != "" {
		u, err := url.Parse(cfg.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("host.webhook_url %q must be an absolute http(s) URL", cfg.WebhookURL))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("global config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
