package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered schedule condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TaskID      int           `json:"task_id,omitempty"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire.
type AlertThresholds struct {
	// ChurnShifts is how many cascade shifts of one task within ChurnDays
	// count as churn.
	ChurnShifts int `yaml:"churn_shifts" json:"churn_shifts"`
	ChurnDays   int `yaml:"churn_days" json:"churn_days"`
}

// DefaultAlertThresholds returns the default thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		ChurnShifts: 3,
		ChurnDays:   7,
	}
}

// AlertEngine evaluates alert conditions for a project.
type AlertEngine interface {
	Evaluate(snap models.Snapshot) ([]Alert, error)
}

type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine. eventLog may be nil, in which case
// churn is not evaluated.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Evaluate checks every condition and returns alerts ordered by severity,
// then by task id.
func (ae *alertEngine) Evaluate(snap models.Snapshot) ([]Alert, error) {
	now := ae.now().UTC()
	var alerts []Alert

	alerts = append(alerts, ae.checkConflicts(snap, now)...)
	alerts = append(alerts, ae.checkOverdue(snap, now)...)

	churn, err := ae.checkChurn(now)
	if err != nil {
		return nil, fmt.Errorf("checking schedule churn: %w", err)
	}
	alerts = append(alerts, churn...)

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank(alerts[i].Severity), severityRank(alerts[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return alerts[i].TaskID < alerts[j].TaskID
	})
	return alerts, nil
}

// checkConflicts reports tasks that start on or before a dependency ends.
func (ae *alertEngine) checkConflicts(snap models.Snapshot, now time.Time) []Alert {
	var alerts []Alert
	for _, v := range core.Violations(snap.Tasks) {
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("conflict-%d-%d", v.ParentID, v.ChildID),
			Condition:   "dependency_conflict",
			Severity:    SeverityHigh,
			Message:     v.String(),
			TaskID:      v.ChildID,
			TriggeredAt: now,
		})
	}
	return alerts
}

// checkOverdue reports unfinished tasks whose end date has passed.
func (ae *alertEngine) checkOverdue(snap models.Snapshot, now time.Time) []Alert {
	today := models.DateOf(now)
	var alerts []Alert
	for _, t := range snap.Tasks {
		if t.End.IsZero() || t.Progress >= 100 || !t.End.Before(today) {
			continue
		}
		alerts = append(alerts, Alert{
			ID:        fmt.Sprintf("overdue-%d", t.ID),
			Condition: "task_overdue",
			Severity:  SeverityMedium,
			Message: fmt.Sprintf("task #%d %q ended %s at %d%% progress",
				t.ID, t.Name, t.End.DMY(), t.Progress),
			TaskID:      t.ID,
			TriggeredAt: now,
		})
	}
	return alerts
}

// checkChurn reports tasks pushed around by cascades more often than the
// threshold within the window.
func (ae *alertEngine) checkChurn(now time.Time) ([]Alert, error) {
	if ae.eventLog == nil || ae.thresholds.ChurnShifts <= 0 {
		return nil, nil
	}
	since := now.Add(-time.Duration(ae.thresholds.ChurnDays) * 24 * time.Hour)
	events, err := ae.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for _, event := range events {
		for _, id := range ShiftedIDs(event) {
			counts[id]++
		}
	}

	var alerts []Alert
	for id, n := range counts {
		if n < ae.thresholds.ChurnShifts {
			continue
		}
		alerts = append(alerts, Alert{
			ID:        fmt.Sprintf("churn-%d", id),
			Condition: "schedule_churn",
			Severity:  SeverityLow,
			Message: fmt.Sprintf("task #%d was shifted by %d cascades in the last %d days",
				id, n, ae.thresholds.ChurnDays),
			TaskID:      id,
			TriggeredAt: now,
		})
	}
	return alerts, nil
}

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}
