// Package observability records every committed edit of a Gantt project as a
// JSON Lines event, derives activity metrics from that log on demand, and
// evaluates schedule alerts (dependency conflicts, overdue tasks, cascade
// churn) that can be posted to the host webhook.
package observability
