package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Notifier sends alerts to the host.
type Notifier interface {
	Notify(project string, alerts []Alert) error
}

// webhookNotifier posts alerts as JSON to the host webhook.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier that posts alerts to webhookURL.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// AlertMessage is the JSON body posted for a batch of alerts.
type AlertMessage struct {
	Event   string  `json:"event"`
	Project string  `json:"project"`
	Summary string  `json:"summary"`
	Alerts  []Alert `json:"alerts"`
}

// Notify posts the alerts. It returns nil without a request when there are none.
func (n *webhookNotifier) Notify(project string, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(AlertMessage{
		Event:   "schedule.alerts",
		Project: project,
		Summary: Summarize(alerts),
		Alerts:  alerts,
	})
	if err != nil {
		return fmt.Errorf("marshalling alert message: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting alerts to webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Summarize renders alerts as one line each, e.g. "[HIGH] #2 starts ...".
func Summarize(alerts []Alert) string {
	var b strings.Builder
	for i, a := range alerts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(string(a.Severity)), a.Message)
	}
	return b.String()
}
