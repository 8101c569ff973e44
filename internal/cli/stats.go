package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	ganttmcp "github.com/valter-silva-au/gantt/internal/mcp"
)

var (
	statsJSON  bool
	statsSince string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display editing statistics",
	Long: `Display statistics derived from the event log.

Statistics include tasks added, edited and deleted, drag edits, how many
tasks were shifted by dependency cascades and which tasks were shifted most.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (events may be disabled)")
		}

		sinceTime, err := parseSinceDuration(statsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		// Table format.
		fmt.Fprintf(out, "Statistics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks added:", metrics.TasksAdded)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks edited:", metrics.TasksEdited)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Drag edits:", metrics.DragEdits)
		fmt.Fprintf(out, "  %-24s %d\n", "Cascade shifts:", metrics.CascadeShifts)
		fmt.Fprintf(out, "  %-24s %d\n", "Groups added:", metrics.GroupsAdded)
		fmt.Fprintf(out, "  %-24s %d\n", "Groups deleted:", metrics.GroupsDeleted)
		fmt.Fprintf(out, "  %-24s %d\n", "Imports:", metrics.Imports)

		if len(metrics.EventsByType) > 0 {
			fmt.Fprintln(out, "\n  Events by type:")
			types := make([]string, 0, len(metrics.EventsByType))
			for eventType := range metrics.EventsByType {
				types = append(types, eventType)
			}
			sort.Strings(types)
			for _, eventType := range types {
				fmt.Fprintf(out, "    %-20s %d\n", eventType+":", metrics.EventsByType[eventType])
			}
		}

		if len(metrics.MostShifted) > 0 {
			fmt.Fprintln(out, "\n  Most shifted tasks:")
			for _, tc := range metrics.MostShifted {
				fmt.Fprintf(out, "    %-20s %d\n", fmt.Sprintf("#%d:", tc.TaskID), tc.Count)
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past. Empty means 7d.
func parseSinceDuration(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "7d"
	}
	return ganttmcp.ParseSince(s, time.Now().UTC())
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
	statsCmd.Flags().StringVar(&statsSince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(statsCmd)
}
