package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hypersql/docpub/internal/config"
	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/pipeline"
)

// RunSummary is the message published after every run.
type RunSummary struct {
	RunID         string    `json:"run_id"`
	EventKind     string    `json:"event_kind"`
	Owner         string    `json:"owner,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	Commit        string    `json:"commit,omitempty"`
	Status        string    `json:"status"`
	Published     bool      `json:"published"`
	PublishCommit string    `json:"publish_commit,omitempty"`
	SkipReason    string    `json:"skip_reason,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	FinishedAt    time.Time `json:"finished_at"`
}

// NATSNotifier publishes run summaries to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the configured NATS server.
func NewNATSNotifier(cfg *config.NATSConfig) (*NATSNotifier, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("docpub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	slog.Info("NATS notifier connected",
		logfields.URL(cfg.URL),
		logfields.Subject(cfg.Subject))

	return &NATSNotifier{conn: conn, subject: cfg.Subject}, nil
}

// RunFinished publishes a summary for a completed run. Publish errors are
// logged, never propagated; notification is best effort.
func (n *NATSNotifier) RunFinished(ctx context.Context, result *pipeline.RunResult) {
	summary := RunSummary{
		RunID:         result.ID,
		EventKind:     string(result.Event.Kind),
		Owner:         result.Event.Owner,
		Branch:        result.Event.Branch,
		Commit:        result.Event.Commit,
		Status:        string(result.Status),
		Published:     result.Published(),
		PublishCommit: result.PublishCommit,
		DurationMS:    result.Duration().Milliseconds(),
		FinishedAt:    result.EndTime,
	}
	if !result.Decision.Publish {
		summary.SkipReason = result.Decision.Reason
	}

	data, err := json.Marshal(summary)
	if err != nil {
		slog.Warn("Failed to marshal run summary", logfields.RunID(result.ID), logfields.Error(err))
		return
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		slog.Warn("Failed to publish run summary",
			logfields.RunID(result.ID),
			logfields.Subject(n.subject),
			logfields.Error(err))
	}
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	if err := n.conn.Drain(); err != nil {
		slog.Warn("NATS drain error", logfields.Error(err))
	}
}
