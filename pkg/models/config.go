package models

// ConflictPolicy decides what happens when an edit leaves a task starting
// before one of its dependencies ends.
type ConflictPolicy string

const (
	// ConflictWarn commits the edit and flags the connector as a conflict.
	ConflictWarn ConflictPolicy = "warn"
	// ConflictBlock rejects the edit with a validation error.
	ConflictBlock ConflictPolicy = "block"
)

// GlobalConfig holds system-wide settings read from .ganttconfig via Viper.
type GlobalConfig struct {
	ProjectFile     string         `yaml:"project_file" mapstructure:"project_file"`
	DefaultViewMode ViewMode       `yaml:"default_view_mode" mapstructure:"default_view_mode"`
	ColumnWidths    ColumnWidths   `yaml:"column_widths" mapstructure:"column_widths"`
	ContainerWidth  int            `yaml:"container_width" mapstructure:"container_width"`
	ConflictPolicy  ConflictPolicy `yaml:"conflict_policy" mapstructure:"conflict_policy"`
	LogLevel        string         `yaml:"log_level" mapstructure:"log_level"`
	LogFile         string         `yaml:"log_file,omitempty" mapstructure:"log_file"`
	EventsEnabled   bool           `yaml:"events_enabled" mapstructure:"events_enabled"`
	WebhookURL      string         `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
}
