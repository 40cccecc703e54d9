// Package daemon runs the pipeline continuously: it accepts webhook events,
// fires scheduled runs, and serves health and metrics endpoints.
//
// Runs never overlap. Events are queued and a single worker drains the queue
// in arrival order.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hypersql/docpub/internal/config"
	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/pipeline"
	"github.com/hypersql/docpub/internal/runstore"
	"github.com/hypersql/docpub/internal/trigger"
)

const queueCapacity = 64

// PipelineRunner executes one pipeline run for an event.
type PipelineRunner interface {
	Execute(ctx context.Context, evt trigger.Event) (*pipeline.RunResult, error)
}

// Notifier receives completed run results. Implementations must not block
// for long; the worker calls them inline.
type Notifier interface {
	RunFinished(ctx context.Context, result *pipeline.RunResult)
}

// Daemon wires the event queue, scheduler, and HTTP server around a runner.
type Daemon struct {
	cfg      *config.Config
	runner   PipelineRunner
	store    runstore.Store
	notifier Notifier

	queue     chan trigger.Event
	scheduler *Scheduler
	server    *HTTPServer

	wg sync.WaitGroup
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithNotifier attaches a run-completion notifier.
func WithNotifier(n Notifier) Option {
	return func(d *Daemon) { d.notifier = n }
}

// WithStore attaches a run store used by the HTTP status endpoints.
func WithStore(s runstore.Store) Option {
	return func(d *Daemon) { d.store = s }
}

// New creates a daemon around a pipeline runner.
func New(cfg *config.Config, runner PipelineRunner, opts ...Option) *Daemon {
	d := &Daemon{
		cfg:    cfg,
		runner: runner,
		store:  runstore.NoopStore{},
		queue:  make(chan trigger.Event, queueCapacity),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue adds an event to the run queue. When the queue is full the event
// is dropped and false is returned; the caller decides how to report that.
func (d *Daemon) Enqueue(evt trigger.Event) bool {
	select {
	case d.queue <- evt:
		return true
	default:
		slog.Warn("Run queue full, dropping event",
			logfields.EventKind(string(evt.Kind)),
			logfields.Owner(evt.Owner),
			logfields.Branch(evt.Branch))
		return false
	}
}

// Run starts the worker, scheduler, and HTTP server, then blocks until the
// context is canceled. Shutdown is graceful: an in-flight run finishes.
func (d *Daemon) Run(ctx context.Context, metricsHandler MetricsHandler) error {
	if d.cfg.Daemon.Schedule != "" {
		sched, err := NewScheduler(d.cfg.Daemon.Schedule, d)
		if err != nil {
			return err
		}
		d.scheduler = sched
		d.scheduler.Start()
	}

	d.server = NewHTTPServer(d.cfg, d, d.store, metricsHandler)
	if err := d.server.Start(); err != nil {
		d.stopScheduler()
		return err
	}

	d.wg.Add(1)
	go d.worker(ctx)

	slog.Info("Daemon started",
		logfields.URL(d.cfg.Daemon.Listen),
		slog.String("schedule", d.cfg.Daemon.Schedule))

	<-ctx.Done()
	return d.shutdown()
}

// worker drains the queue one event at a time. Each run executes under a
// context detached from the shutdown signal so an in-flight run completes;
// the pipeline's own run ceiling still bounds it.
func (d *Daemon) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-d.queue:
			d.process(context.WithoutCancel(ctx), evt)
		}
	}
}

func (d *Daemon) process(ctx context.Context, evt trigger.Event) {
	result, err := d.runner.Execute(ctx, evt)
	if err != nil {
		slog.Error("Run failed",
			logfields.RunID(result.ID),
			logfields.EventKind(string(evt.Kind)),
			logfields.Error(err))
	}
	if d.notifier != nil {
		d.notifier.RunFinished(ctx, result)
	}
}

func (d *Daemon) stopScheduler() {
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
}

// shutdown stops intake first, then waits for the worker to finish.
func (d *Daemon) shutdown() error {
	slog.Info("Daemon shutting down")

	d.stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Stop(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}

	d.wg.Wait()
	return nil
}
