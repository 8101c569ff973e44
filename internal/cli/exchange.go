package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/render"
	"github.com/valter-silva-au/gantt/internal/storage"
	"github.com/valter-silva-au/gantt/internal/workbook"
	"github.com/valter-silva-au/gantt/pkg/models"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the chart as SVG",
	Long: `Render the chart as an SVG document. With --print the chart is laid out on
an A4 landscape page without drag handles or column resizers.`,
	Example: `  gantt render --out chart.svg
  gantt render --print --out chart-print.svg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")
		if width <= 0 {
			width = containerWidth()
		}
		printLayout, _ := cmd.Flags().GetBool("print")
		view := render.Build(Editor.Snapshot(), width)

		var buf bytes.Buffer
		if err := render.SVG(&buf, view, render.Options{Print: printLayout}); err != nil {
			return err
		}
		outPath, _ := cmd.Flags().GetString("out")
		return writeOutput(cmd, outPath, buf.Bytes())
	},
}

// exportDir is the workspace directory "gantt init" creates for exports.
const exportDir = "exports"

// Export formats.
const (
	exportXLSX = "xlsx"
	exportHTML = "html"
	exportJSON = "json"
	exportYAML = "yaml"
)

var exportCmd = &cobra.Command{
	Use:   "export <xlsx|html|json|yaml>",
	Short: "Export the project to a workbook, HTML page or snapshot file",
	Long: `Export the project.

  xlsx  workbook with ProjectInfo, Groups and Tasks sheets
  html  standalone page with the chart and the embedded project state
  json  snapshot file
  yaml  snapshot file

Unless --out is given, the file is written to the workspace exports
directory and named after the project title.
Use --out - to write to stdout.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{exportXLSX, exportHTML, exportJSON, exportYAML},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		format := strings.ToLower(args[0])
		snap := Editor.Snapshot()

		var buf bytes.Buffer
		switch format {
		case exportXLSX:
			if err := workbook.Export(snap, &buf); err != nil {
				return err
			}
		case exportHTML:
			if err := render.HTML(&buf, snap, containerWidth()); err != nil {
				return err
			}
		case exportJSON, exportYAML:
			data, err := storage.Encode(snap, storage.Format(format))
			if err != nil {
				return err
			}
			buf.Write(data)
		default:
			return fmt.Errorf("unsupported export format %q: use xlsx, html, json or yaml", args[0])
		}

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			outPath = filepath.Join(BasePath, exportDir, workbook.SafeFilename(snap.ProjectTitle)+"."+format)
		}
		return writeOutput(cmd, outPath, buf.Bytes())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the project with the contents of a workbook, page or snapshot",
	Long: `Replace the whole project with the contents of a file. The format is picked
from the extension: .xlsx workbooks, .html pages exported by "gantt export
html", and .json or .yaml snapshots.

Nothing changes if the file cannot be read or fails validation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		path := args[0]
		current := Editor.Snapshot()
		snap, err := readImport(path, current)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(current.Tasks) > 0 {
			yes, _ := cmd.Flags().GetBool("yes")
			prompt := fmt.Sprintf("Replace the %d existing task(s) with %d imported task(s)? [y/N] ", len(current.Tasks), len(snap.Tasks))
			if !yes && !askYesNo(cmd.InOrStdin(), out, prompt) {
				fmt.Fprintln(out, "Import cancelled.")
				return nil
			}
		}
		if err := Editor.Replace(snap); err != nil {
			return fmt.Errorf("importing %s: %w", filepath.Base(path), err)
		}
		fmt.Fprintf(out, "Imported %d task(s) and %d group(s) from %s\n", len(snap.Tasks), len(snap.ProjectGroups), filepath.Base(path))
		return nil
	},
}

// readImport decodes an import file according to its extension.
func readImport(path string, current models.Snapshot) (models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	source := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return workbook.Import(f, source, current)
	case ".html", ".htm":
		state, err := render.ExtractState(f, source)
		if err != nil {
			return models.Snapshot{}, err
		}
		return storage.Decode(state, storage.FormatJSON)
	case ".json", ".yaml", ".yml":
		data, err := io.ReadAll(f)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("reading %s: %w", source, err)
		}
		return storage.Decode(data, storage.FormatFor(path))
	}
	return models.Snapshot{}, fmt.Errorf("unsupported import file %q: use .xlsx, .html, .json or .yaml", source)
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().Bool("print", false, "Use the A4 landscape print layout")
	renderCmd.Flags().Int("width", 0, "Container width in pixels (default from config)")

	exportCmd.Flags().StringP("out", "o", "", "Output file (default exports/<title>.<format>)")

	importCmd.Flags().BoolP("yes", "y", false, "Replace existing tasks without asking")

	rootCmd.AddCommand(renderCmd, exportCmd, importCmd)
}
