package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/internal/observability"
)

var planCmd = &cobra.Command{
	Use:   "plan <id>",
	Short: "Preview which dependent tasks an edit would shift",
	Long: `Compute the dependency cascade for an edit without applying it. Takes the
same field flags as "task edit".`,
	Example: `  gantt plan 1 --end 20/01/2024`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		current, err := Editor.Task(id)
		if err != nil {
			return fmt.Errorf("task #%d: %w", id, err)
		}
		patch, _ := taskPatchFromFlags(cmd)
		draft, err := patch.Apply(current)
		if err != nil {
			return err
		}
		plan, err := Editor.Preview(draft)
		if err != nil {
			return fmt.Errorf("planning edit: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(plan) == 0 {
			fmt.Fprintln(out, "No dependent tasks would move.")
			return nil
		}
		fmt.Fprintf(out, "%d dependent task(s) would shift:\n", len(plan))
		printPlan(out, plan)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report dependency conflicts and schedule alerts",
	Long: `List every dependency whose child starts on or before its parent ends,
then evaluate schedule alerts: conflicts, overdue tasks and tasks that keep
being shifted by cascades.

With --notify, the alerts are posted to the configured host webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEditor(); err != nil {
			return err
		}
		snap := Editor.Snapshot()
		out := cmd.OutOrStdout()

		conflicts := Editor.Conflicts()
		var alerts []observability.Alert
		if AlertEngine != nil {
			var err error
			alerts, err = AlertEngine.Evaluate(snap)
			if err != nil {
				return fmt.Errorf("evaluating alerts: %w", err)
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			lines := make([]string, 0, len(conflicts))
			for _, v := range conflicts {
				lines = append(lines, v.String())
			}
			if alerts == nil {
				alerts = []observability.Alert{}
			}
			data, err := json.MarshalIndent(map[string]any{
				"conflicts": lines,
				"alerts":    alerts,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting check results as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			if len(conflicts) == 0 {
				fmt.Fprintln(out, "No dependency conflicts.")
			} else {
				fmt.Fprintf(out, "%d dependency conflict(s):\n", len(conflicts))
				for _, v := range conflicts {
					fmt.Fprintf(out, "  %s\n", v)
				}
			}
			if len(alerts) > 0 {
				fmt.Fprintf(out, "\n%d alert(s):\n", len(alerts))
				for _, a := range alerts {
					fmt.Fprintf(out, "  [%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
				}
			}
		}

		if notify, _ := cmd.Flags().GetBool("notify"); notify && len(alerts) > 0 {
			if Notifier == nil {
				return fmt.Errorf("no notifier configured: set host.webhook_url in %s", core.ConfigFileName)
			}
			if err := Notifier.Notify(snap.ProjectTitle, alerts); err != nil {
				return fmt.Errorf("sending alerts: %w", err)
			}
			fmt.Fprintf(out, "\nSent %d alert(s) to the host webhook.\n", len(alerts))
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(conflicts) > 0 {
			return fmt.Errorf("%d dependency conflict(s) found", len(conflicts))
		}
		return nil
	},
}

func init() {
	addTaskFlags(planCmd)

	checkCmd.Flags().Bool("json", false, "Output conflicts and alerts as JSON")
	checkCmd.Flags().Bool("notify", false, "Post alerts to the configured host webhook")
	checkCmd.Flags().Bool("strict", false, "Exit with an error when conflicts exist")

	rootCmd.AddCommand(planCmd, checkCmd)
}
