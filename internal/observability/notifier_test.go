package observability

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebhookNotifier_NoAlerts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Notify("Launch", nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if called {
		t.Fatal("expected no HTTP request for empty alerts")
	}
}

func TestWebhookNotifier_SendsAlerts(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	alerts := []Alert{
		{ID: "conflict-1-2", Condition: "dependency_conflict", Severity: SeverityHigh, Message: "#2 starts early", TaskID: 2, TriggeredAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{ID: "overdue-3", Condition: "task_overdue", Severity: SeverityMedium, Message: "task #3 is late", TaskID: 3},
	}
	if err := NewWebhookNotifier(srv.URL).Notify("Launch", alerts); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %s", contentType)
	}
	var msg AlertMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("unmarshalling request body: %v", err)
	}
	if msg.Event != "schedule.alerts" || msg.Project != "Launch" || len(msg.Alerts) != 2 {
		t.Errorf("message = %+v", msg)
	}
	if msg.Summary != "[HIGH] #2 starts early\n[MEDIUM] task #3 is late" {
		t.Errorf("summary = %q", msg.Summary)
	}
	if msg.Alerts[0].TaskID != 2 {
		t.Errorf("alert task id = %d", msg.Alerts[0].TaskID)
	}
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Notify("Launch", []Alert{{ID: "x", Severity: SeverityLow, Message: "m"}})
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to contain status code 500, got: %s", err)
	}
}
