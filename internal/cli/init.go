package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a Gantt workspace",
	Long: `Initialize a new or existing directory as a Gantt workspace: a
.ganttconfig file, an exports directory, a .gitignore and the project file.

Safe to run on existing workspaces -- files and directories that already
exist are skipped and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		title, _ := cmd.Flags().GetString("title")
		subtitle, _ := cmd.Flags().GetString("subtitle")
		file, _ := cmd.Flags().GetString("file")
		sample, _ := cmd.Flags().GetBool("sample")
		view, _ := cmd.Flags().GetString("view")
		mode, err := models.ParseViewMode(view)
		if err != nil {
			return err
		}

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath:    absPath,
			ProjectFile: file,
			Title:       title,
			Subtitle:    subtitle,
			ViewMode:    mode,
			Sample:      sample,
		})
		if err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Created) > 0 {
			fmt.Fprintln(out, "Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(out, "Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(out, "  %s\n", rel)
			}
		}

		fmt.Fprintf(out, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().String("title", models.DefaultProjectTitle, "Project title")
	initCmd.Flags().String("subtitle", models.DefaultProjectSubtitle, "Project subtitle")
	initCmd.Flags().String("file", "project.yaml", "Project file name (.yaml or .json)")
	initCmd.Flags().String("view", string(models.ViewDay), "Initial view mode")
	initCmd.Flags().Bool("sample", false, "Start from a small sample project")
	rootCmd.AddCommand(initCmd)
}
