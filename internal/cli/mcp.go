package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	ganttmcp "github.com/valter-silva-au/gantt/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the gantt MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gantt MCP server on stdio",
	Long: `Start the gantt MCP server on stdio transport.

The server exposes the editor as MCP tools that hosts can call: reading the
snapshot and layout, previewing and applying task edits, managing groups,
view mode, column widths and titles, and checking conflicts, metrics and
alerts. Every edit is saved to the project file as it is applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}

		srv := ganttmcp.NewServer(Editor, MetricsCalc, AlertEngine, appVersion)
		srv.SetContainerWidth(containerWidth())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger().Info("mcp server starting", "version", appVersion)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
