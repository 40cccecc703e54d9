// Package runstore persists pipeline runs and their stage events.
package runstore

import (
	"context"
	"time"
)

// Run is the persisted record of one pipeline run.
type Run struct {
	ID         string
	EventKind  string
	Owner      string
	Branch     string
	Commit     string
	Status     string
	Reason     string // publish skip reason, when any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Event is one stage-level event within a run.
type Event struct {
	ID        int64
	RunID     string
	EventType string
	Timestamp time.Time
	Payload   []byte
}

// Store defines the interface for persisting and retrieving runs.
type Store interface {
	// SaveRun inserts or updates a run record.
	SaveRun(ctx context.Context, run Run) error

	// AppendEvent adds a stage event to a run.
	AppendEvent(ctx context.Context, runID, eventType string, payload []byte) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*Run, error)

	// RecentRuns retrieves the most recent runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// EventsForRun retrieves all events for a run in append order.
	EventsForRun(ctx context.Context, runID string) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// NoopStore discards everything; used when persistence is disabled.
type NoopStore struct{}

func (NoopStore) SaveRun(context.Context, Run) error                       { return nil }
func (NoopStore) AppendEvent(context.Context, string, string, []byte) error { return nil }
func (NoopStore) GetRun(context.Context, string) (*Run, error)             { return nil, nil }
func (NoopStore) RecentRuns(context.Context, int) ([]Run, error)           { return nil, nil }
func (NoopStore) EventsForRun(context.Context, string) ([]Event, error)    { return nil, nil }
func (NoopStore) Close() error                                             { return nil }
