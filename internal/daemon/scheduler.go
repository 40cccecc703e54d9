package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/trigger"
)

// Enqueuer accepts events for the run queue.
type Enqueuer interface {
	Enqueue(evt trigger.Event) bool
}

// Scheduler fires scheduled pipeline runs from a cron expression.
type Scheduler struct {
	scheduler gocron.Scheduler
	enqueuer  Enqueuer
}

// NewScheduler creates a scheduler that enqueues a schedule event per tick
// of the cron expression (standard five-field crontab).
func NewScheduler(crontab string, enqueuer Enqueuer) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	sched := &Scheduler{scheduler: s, enqueuer: enqueuer}

	_, err = s.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(sched.fire),
		gocron.WithName("scheduled-run"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create scheduled job for %q: %w", crontab, err)
	}

	return sched, nil
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// fire enqueues one schedule event. Schedule events build but never publish.
func (s *Scheduler) fire() {
	evt := trigger.Event{
		Kind:       trigger.KindSchedule,
		ReceivedAt: time.Now(),
	}
	if !s.enqueuer.Enqueue(evt) {
		slog.Warn("Scheduled run dropped, queue full")
		return
	}
	slog.Info("Scheduled run enqueued", logfields.EventKind(string(evt.Kind)))
}
