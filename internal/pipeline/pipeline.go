// Package pipeline orchestrates one run of the documentation pipeline:
// trigger evaluation, environment setup, site build, and conditional publish.
//
// The sequence is strictly linear with no retries. Any stage failure aborts
// the run; the publish stage only executes after a successful build and a
// positive publish decision.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/metrics"
	"github.com/hypersql/docpub/internal/publish"
	"github.com/hypersql/docpub/internal/runstore"
	"github.com/hypersql/docpub/internal/trigger"
)

// EnvProvisioner prepares the build environment.
type EnvProvisioner interface {
	Provision(ctx context.Context) error
}

// SiteBuilder produces the artifact directory.
type SiteBuilder interface {
	Build(ctx context.Context) (string, error)
}

// ArtifactPublisher pushes the artifact to the hosting branch.
type ArtifactPublisher interface {
	Publish(ctx context.Context, artifactDir, sourceCommit string) (*publish.Result, error)
}

// Runner executes pipeline runs.
type Runner struct {
	evaluator *trigger.Evaluator
	setup     EnvProvisioner
	builder   SiteBuilder
	publisher ArtifactPublisher
	recorder  metrics.Recorder
	store     runstore.Store
	timeout   time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder injects a metrics recorder (NoopRecorder by default).
func WithRecorder(r metrics.Recorder) Option {
	return func(rn *Runner) { rn.recorder = r }
}

// WithStore injects a run store (NoopStore by default).
func WithStore(s runstore.Store) Option {
	return func(rn *Runner) { rn.store = s }
}

// WithTimeout sets the wall-clock ceiling per run (0 disables the ceiling).
func WithTimeout(d time.Duration) Option {
	return func(rn *Runner) { rn.timeout = d }
}

// NewRunner creates a pipeline runner.
func NewRunner(evaluator *trigger.Evaluator, setup EnvProvisioner, builder SiteBuilder, publisher ArtifactPublisher, opts ...Option) *Runner {
	r := &Runner{
		evaluator: evaluator,
		setup:     setup,
		builder:   builder,
		publisher: publisher,
		recorder:  metrics.NoopRecorder{},
		store:     runstore.NoopStore{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the pipeline for one event. The returned RunResult is always
// non-nil; the error is the first stage failure, when any.
func (r *Runner) Execute(ctx context.Context, evt trigger.Event) (*RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result := &RunResult{
		ID:        uuid.NewString(),
		Event:     evt,
		Decision:  r.evaluator.Decide(evt),
		Status:    StatusFailed,
		StartTime: time.Now(),
	}

	slog.Info("Pipeline run started",
		logfields.RunID(result.ID),
		logfields.EventKind(string(evt.Kind)),
		logfields.Owner(evt.Owner),
		logfields.Branch(evt.Branch))

	r.recorder.RunStarted(string(evt.Kind))
	r.persistRun(ctx, result, "running")

	err := r.runStages(ctx, result)

	result.EndTime = time.Now()
	if err == nil {
		result.Status = StatusSuccess
	}

	r.recorder.RunCompleted(string(evt.Kind), string(result.Status), result.Duration())
	r.persistRun(ctx, result, string(result.Status))

	slog.Info("Pipeline run finished",
		logfields.RunID(result.ID),
		logfields.Status(string(result.Status)),
		logfields.DurationMS(float64(result.Duration().Milliseconds())))

	return result, err
}

// runStages executes setup, build, and the gated publish in order.
func (r *Runner) runStages(ctx context.Context, result *RunResult) error {
	if err := r.runStage(ctx, result, StageSetup, func(ctx context.Context) error {
		return r.setup.Provision(ctx)
	}); err != nil {
		return err
	}

	var artifactDir string
	if err := r.runStage(ctx, result, StageBuild, func(ctx context.Context) error {
		dir, err := r.builder.Build(ctx)
		if err != nil {
			return err
		}
		artifactDir = dir
		return nil
	}); err != nil {
		return err
	}
	result.ArtifactDir = artifactDir

	if !result.Decision.Publish {
		// Normal, expected behavior: the gate evaluated false.
		r.skipPublish(ctx, result)
		return nil
	}

	return r.runStage(ctx, result, StagePublish, func(ctx context.Context) error {
		res, err := r.publisher.Publish(ctx, artifactDir, result.Event.Commit)
		if err != nil {
			return err
		}
		result.PublishCommit = res.Commit
		return nil
	})
}

// runStage executes a single stage, recording its outcome everywhere.
func (r *Runner) runStage(ctx context.Context, result *RunResult, name string, fn func(context.Context) error) error {
	sr := StageResult{Name: name, StartedAt: time.Now()}
	err := fn(ctx)
	sr.Duration = time.Since(sr.StartedAt)

	if err != nil {
		sr.Status = StatusFailed
		sr.Error = err.Error()
		slog.Error("Stage failed",
			logfields.RunID(result.ID),
			logfields.Stage(name),
			logfields.Error(err))
	} else {
		sr.Status = StatusSuccess
		slog.Debug("Stage completed",
			logfields.RunID(result.ID),
			logfields.Stage(name),
			logfields.DurationMS(float64(sr.Duration.Milliseconds())))
	}

	result.Stages = append(result.Stages, sr)
	r.recorder.StageCompleted(name, string(sr.Status), sr.Duration)
	r.appendStageEvent(ctx, result.ID, sr)
	return err
}

// skipPublish records the gated-off publish stage.
func (r *Runner) skipPublish(ctx context.Context, result *RunResult) {
	sr := StageResult{
		Name:      StagePublish,
		Status:    StatusSkipped,
		Reason:    result.Decision.Reason,
		StartedAt: time.Now(),
	}
	result.Stages = append(result.Stages, sr)

	slog.Info("Publish skipped",
		logfields.RunID(result.ID),
		logfields.Reason(result.Decision.Reason))
	r.recorder.PublishSkipped(result.Decision.ReasonCode)
	r.appendStageEvent(ctx, result.ID, sr)
}

// persistRun records the run's current status. The write is detached from the
// run ceiling so a timed-out run still lands in the store as failed instead of
// staying "running" forever.
func (r *Runner) persistRun(ctx context.Context, result *RunResult, status string) {
	err := r.store.SaveRun(context.WithoutCancel(ctx), runstore.Run{
		ID:         result.ID,
		EventKind:  string(result.Event.Kind),
		Owner:      result.Event.Owner,
		Branch:     result.Event.Branch,
		Commit:     result.Event.Commit,
		Status:     status,
		Reason:     result.Decision.Reason,
		StartedAt:  result.StartTime,
		FinishedAt: result.EndTime,
	})
	if err != nil {
		slog.Warn("Failed to persist run", logfields.RunID(result.ID), logfields.Error(err))
	}
}

func (r *Runner) appendStageEvent(ctx context.Context, runID string, sr StageResult) {
	payload, err := json.Marshal(sr)
	if err != nil {
		slog.Warn("Failed to marshal stage event", logfields.RunID(runID), logfields.Error(err))
		return
	}
	eventType := sr.Name + "_" + string(sr.Status)
	if err := r.store.AppendEvent(context.WithoutCancel(ctx), runID, eventType, payload); err != nil {
		slog.Warn("Failed to append stage event", logfields.RunID(runID), logfields.Error(err))
	}
}
