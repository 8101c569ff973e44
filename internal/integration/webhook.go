// Package integration connects the editor to the host application. The host
// receives the full project snapshot over HTTP after every committed edit.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/valter-silva-au/gantt/pkg/models"
)

// DefaultWebhookTimeout bounds one snapshot delivery.
const DefaultWebhookTimeout = 5 * time.Second

// SnapshotEvent is the JSON body posted to the host webhook.
type SnapshotEvent struct {
	Event    string          `json:"event"`
	Sequence int64           `json:"sequence"`
	SentAt   time.Time       `json:"sentAt"`
	Snapshot models.Snapshot `json:"snapshot"`
}

// WebhookOption configures a SnapshotPoster.
type WebhookOption func(*SnapshotPoster)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(p *SnapshotPoster) {
		if c != nil {
			p.client = c
		}
	}
}

// WithTimeout sets the per-delivery timeout.
func WithTimeout(d time.Duration) WebhookOption {
	return func(p *SnapshotPoster) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// SnapshotPoster delivers snapshots to the host. It implements
// core.SnapshotListener.
type SnapshotPoster struct {
	url     string
	client  *http.Client
	timeout time.Duration
	seq     atomic.Int64
}

// NewSnapshotPoster creates a poster for the given webhook URL.
func NewSnapshotPoster(url string, opts ...WebhookOption) *SnapshotPoster {
	p := &SnapshotPoster{
		url:     url,
		client:  &http.Client{},
		timeout: DefaultWebhookTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SnapshotChanged posts snap with the configured timeout.
func (p *SnapshotPoster) SnapshotChanged(snap models.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.Post(ctx, snap)
}

// Post sends one snapshot. Any non-2xx response is an error.
func (p *SnapshotPoster) Post(ctx context.Context, snap models.Snapshot) error {
	body, err := json.Marshal(SnapshotEvent{
		Event:    "snapshot.changed",
		Sequence: p.seq.Add(1),
		SentAt:   time.Now().UTC(),
		Snapshot: snap,
	})
	if err != nil {
		return fmt.Errorf("marshalling snapshot event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting snapshot to webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("snapshot webhook returned status %d", resp.StatusCode)
	}
	return nil
}
