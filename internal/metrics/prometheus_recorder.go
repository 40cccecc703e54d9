package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	runsStarted   *prom.CounterVec
	runOutcome    *prom.CounterVec
	runDuration   *prom.HistogramVec
	stageOutcome  *prom.CounterVec
	stageDuration *prom.HistogramVec
	publishSkips  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		registry: reg,
		runsStarted: prom.NewCounterVec(prom.CounterOpts{
			Name: "docpub_runs_started_total",
			Help: "Pipeline runs started, by trigger event kind.",
		}, []string{"event_kind"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Name: "docpub_runs_completed_total",
			Help: "Pipeline runs completed, by event kind and status.",
		}, []string{"event_kind", "status"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "docpub_run_duration_seconds",
			Help:    "Wall-clock duration of pipeline runs.",
			Buckets: prom.ExponentialBuckets(0.5, 2, 12),
		}, []string{"event_kind"}),
		stageOutcome: prom.NewCounterVec(prom.CounterOpts{
			Name: "docpub_stage_completed_total",
			Help: "Stage outcomes, by stage name and status.",
		}, []string{"stage", "status"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "docpub_stage_duration_seconds",
			Help:    "Wall-clock duration of individual stages.",
			Buckets: prom.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
		publishSkips: prom.NewCounterVec(prom.CounterOpts{
			Name: "docpub_publish_skipped_total",
			Help: "Publish gates that evaluated false, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		pr.runsStarted,
		pr.runOutcome,
		pr.runDuration,
		pr.stageOutcome,
		pr.stageDuration,
		pr.publishSkips,
	)
	return pr
}

func (pr *PrometheusRecorder) RunStarted(eventKind string) {
	pr.runsStarted.WithLabelValues(eventKind).Inc()
}

func (pr *PrometheusRecorder) RunCompleted(eventKind, status string, duration time.Duration) {
	pr.runOutcome.WithLabelValues(eventKind, status).Inc()
	pr.runDuration.WithLabelValues(eventKind).Observe(duration.Seconds())
}

func (pr *PrometheusRecorder) StageCompleted(stage, status string, duration time.Duration) {
	pr.stageOutcome.WithLabelValues(stage, status).Inc()
	pr.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (pr *PrometheusRecorder) PublishSkipped(reason string) {
	pr.publishSkips.WithLabelValues(reason).Inc()
}

// HTTPHandler returns an http.Handler serving the recorder's registry.
func (pr *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
