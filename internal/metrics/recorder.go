// Package metrics provides pipeline observability counters.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics impose no overhead until a real implementation is
// wired in (the daemon injects PrometheusRecorder).
package metrics

import "time"

// Recorder defines all metrics operations emitted by the pipeline.
type Recorder interface {
	// RunStarted records that a pipeline run began for the given event kind.
	RunStarted(eventKind string)
	// RunCompleted records a finished run with its final status and duration.
	RunCompleted(eventKind, status string, duration time.Duration)
	// StageCompleted records one stage outcome with its duration.
	StageCompleted(stage, status string, duration time.Duration)
	// PublishSkipped counts publish gates that evaluated false.
	PublishSkipped(reason string)
}

// NoopRecorder is the default Recorder; all methods do nothing.
type NoopRecorder struct{}

func (NoopRecorder) RunStarted(string)                          {}
func (NoopRecorder) RunCompleted(string, string, time.Duration) {}
func (NoopRecorder) StageCompleted(string, string, time.Duration) {
}
func (NoopRecorder) PublishSkipped(string) {}
