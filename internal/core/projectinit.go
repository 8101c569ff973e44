package core

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/valter-silva-au/gantt/pkg/models"
)

//go:embed templates
var templateFS embed.FS

// InitConfig holds the parameters for initializing a Gantt workspace.
type InitConfig struct {
	BasePath    string
	ProjectFile string
	Title       string
	Subtitle    string
	ViewMode    models.ViewMode
	Sample      bool
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer sets up a workspace: configuration, ignore file,
// export directory and an initial project file.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct {
	newStore func(path string) SnapshotStore
}

// NewProjectInitializer creates a ProjectInitializer that writes the
// initial project through stores built by newStore.
func NewProjectInitializer(newStore func(path string) SnapshotStore) ProjectInitializer {
	return &projectInitializer{newStore: newStore}
}

// Init is safe to run on existing workspaces: files and directories that
// already exist are skipped and not overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if config.ProjectFile == "" {
		config.ProjectFile = "project.yaml"
	}
	if config.Title == "" {
		config.Title = models.DefaultProjectTitle
	}
	if config.Subtitle == "" {
		config.Subtitle = models.DefaultProjectSubtitle
	}
	if !config.ViewMode.Valid() {
		config.ViewMode = models.ViewDay
	}

	for _, dir := range []string{
		config.BasePath,
		filepath.Join(config.BasePath, "exports"),
	} {
		created, err := ensureDir(dir)
		if err != nil {
			return nil, fmt.Errorf("initializing workspace: creating directory %s: %w", dir, err)
		}
		if created {
			result.Created = append(result.Created, dir)
		} else {
			result.Skipped = append(result.Skipped, dir)
		}
	}

	configPath := filepath.Join(config.BasePath, ConfigFileName)
	if err := writeFileIfNotExists(configPath, func() ([]byte, error) {
		return renderTemplate("ganttconfig.yaml", config)
	}, result); err != nil {
		return nil, err
	}

	ignorePath := filepath.Join(config.BasePath, ".gitignore")
	if err := writeFileIfNotExists(ignorePath, func() ([]byte, error) {
		return templateFS.ReadFile("templates/gitignore")
	}, result); err != nil {
		return nil, err
	}

	projectPath := config.ProjectFile
	if !filepath.IsAbs(projectPath) {
		projectPath = filepath.Join(config.BasePath, projectPath)
	}
	if _, err := os.Stat(projectPath); err == nil {
		result.Skipped = append(result.Skipped, projectPath)
		return result, nil
	}

	snap := models.EmptySnapshot()
	if config.Sample {
		snap = SampleSnapshot()
	} else {
		snap.ProjectTitle = config.Title
		snap.ProjectSubtitle = config.Subtitle
	}
	snap.ViewMode = config.ViewMode
	if err := pi.newStore(projectPath).Save(snap); err != nil {
		return nil, fmt.Errorf("initializing workspace: writing project: %w", err)
	}
	result.Created = append(result.Created, projectPath)

	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}

func renderTemplate(name string, data any) ([]byte, error) {
	raw, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
