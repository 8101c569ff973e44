package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/gantt/internal/observability"
	"github.com/valter-silva-au/gantt/pkg/models"
)

type fakeAlertEngine struct {
	alerts []observability.Alert
	err    error
}

func (f *fakeAlertEngine) Evaluate(models.Snapshot) ([]observability.Alert, error) {
	return f.alerts, f.err
}

type fakeNotifier struct {
	project string
	sent    []observability.Alert
	err     error
}

func (f *fakeNotifier) Notify(project string, alerts []observability.Alert) error {
	f.project = project
	f.sent = alerts
	return f.err
}

func withObservability(t *testing.T, engine observability.AlertEngine, notifier observability.Notifier) {
	t.Helper()
	origEngine, origNotifier := AlertEngine, Notifier
	AlertEngine, Notifier = engine, notifier
	t.Cleanup(func() { AlertEngine, Notifier = origEngine, origNotifier })
}

func conflictingTasks() models.Snapshot {
	snap := twoTasks()
	snap.Tasks[1].Start = d("12/01/2024")
	return snap
}

func TestPlanCmd(t *testing.T) {
	withEditor(t, twoTasks())

	out, err := runCmd(t, planCmd, []string{"1"}, map[string]string{"end": "20/01/2024"}, "")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "1 dependent task(s) would shift:") || !strings.Contains(out, "(+5d)") {
		t.Errorf("output = %q", out)
	}
	// Previewing never changes anything.
	if e := mustTask(t, 1).End.DMY(); e != "15/01/2024" {
		t.Errorf("task #1 end = %s after preview", e)
	}
	if Editor.Pending() != nil {
		t.Error("preview parked a pending action")
	}

	out, err = runCmd(t, planCmd, []string{"2"}, map[string]string{"end": "10/02/2024"}, "")
	if err != nil || !strings.Contains(out, "No dependent tasks would move.") {
		t.Errorf("leaf plan: out=%q err=%v", out, err)
	}

	if _, err := runCmd(t, planCmd, []string{"1"}, map[string]string{"end": "01/12/2023"}, ""); err == nil {
		t.Error("invalid draft should fail")
	}
}

func TestCheckCmd_NoConflicts(t *testing.T) {
	withEditor(t, twoTasks())
	withObservability(t, nil, nil)

	out, err := runCmd(t, checkCmd, nil, map[string]string{"strict": "true"}, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "No dependency conflicts.") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckCmd_ConflictsAndAlerts(t *testing.T) {
	withEditor(t, conflictingTasks())
	engine := &fakeAlertEngine{alerts: []observability.Alert{{
		ID:        "dependency_conflict-2",
		Condition: "dependency_conflict",
		Severity:  observability.SeverityHigh,
		Message:   "Task #2 starts before #1 ends",
		TaskID:    2,
	}}}
	withObservability(t, engine, nil)

	out, err := runCmd(t, checkCmd, nil, nil, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"1 dependency conflict(s):", "#2 starts 12/01/2024", "1 alert(s):", "[HIGH] Task #2 starts before #1 ends"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	_, err = runCmd(t, checkCmd, nil, map[string]string{"strict": "true"}, "")
	if err == nil || !strings.Contains(err.Error(), "1 dependency conflict(s) found") {
		t.Errorf("strict err = %v", err)
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	withEditor(t, conflictingTasks())
	withObservability(t, nil, nil)

	out, err := runCmd(t, checkCmd, nil, map[string]string{"json": "true"}, "")
	if err != nil {
		t.Fatalf("check --json: %v", err)
	}
	var result struct {
		Conflicts []string              `json:"conflicts"`
		Alerts    []observability.Alert `json:"alerts"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(result.Conflicts) != 1 || result.Alerts == nil || len(result.Alerts) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestCheckCmd_Notify(t *testing.T) {
	alerts := []observability.Alert{{ID: "task_overdue-1", Severity: observability.SeverityMedium, Message: "Task #1 is overdue"}}

	t.Run("sends alerts", func(t *testing.T) {
		withEditor(t, twoTasks())
		notifier := &fakeNotifier{}
		withObservability(t, &fakeAlertEngine{alerts: alerts}, notifier)

		out, err := runCmd(t, checkCmd, nil, map[string]string{"notify": "true"}, "")
		if err != nil {
			t.Fatalf("check --notify: %v", err)
		}
		if notifier.project != models.DefaultProjectTitle || len(notifier.sent) != 1 {
			t.Errorf("notifier got project=%q alerts=%v", notifier.project, notifier.sent)
		}
		if !strings.Contains(out, "Sent 1 alert(s)") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("no notifier configured", func(t *testing.T) {
		withEditor(t, twoTasks())
		withObservability(t, &fakeAlertEngine{alerts: alerts}, nil)

		_, err := runCmd(t, checkCmd, nil, map[string]string{"notify": "true"}, "")
		if err == nil || !strings.Contains(err.Error(), "no notifier configured") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("notifier failure", func(t *testing.T) {
		withEditor(t, twoTasks())
		withObservability(t, &fakeAlertEngine{alerts: alerts}, &fakeNotifier{err: errors.New("boom")})

		_, err := runCmd(t, checkCmd, nil, map[string]string{"notify": "true"}, "")
		if err == nil || !strings.Contains(err.Error(), "sending alerts") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("nothing to send", func(t *testing.T) {
		withEditor(t, twoTasks())
		notifier := &fakeNotifier{}
		withObservability(t, &fakeAlertEngine{}, notifier)

		if _, err := runCmd(t, checkCmd, nil, map[string]string{"notify": "true"}, ""); err != nil {
			t.Fatalf("check --notify: %v", err)
		}
		if notifier.sent != nil {
			t.Error("notifier called without alerts")
		}
	})
}

func TestCheckCmd_AlertEngineError(t *testing.T) {
	withEditor(t, twoTasks())
	withObservability(t, &fakeAlertEngine{err: errors.New("log unreadable")}, nil)

	_, err := runCmd(t, checkCmd, nil, nil, "")
	if err == nil || !strings.Contains(err.Error(), "evaluating alerts") {
		t.Errorf("err = %v", err)
	}
}
