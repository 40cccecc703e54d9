package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.RunStarted("push")
	r.RunCompleted("push", "success", time.Second)
	r.StageCompleted("build", "success", time.Second)
	r.PublishSkipped("not_push")
}

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.RunStarted("push")
	pr.RunStarted("push")
	pr.RunStarted("schedule")
	pr.RunCompleted("push", "success", 2*time.Second)
	pr.StageCompleted("build", "failed", time.Second)
	pr.PublishSkipped("not_push")

	if got := testutil.ToFloat64(pr.runsStarted.WithLabelValues("push")); got != 2 {
		t.Fatalf("runs_started{push} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(pr.runsStarted.WithLabelValues("schedule")); got != 1 {
		t.Fatalf("runs_started{schedule} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pr.runOutcome.WithLabelValues("push", "success")); got != 1 {
		t.Fatalf("runs_completed{push,success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pr.stageOutcome.WithLabelValues("build", "failed")); got != 1 {
		t.Fatalf("stage_completed{build,failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pr.publishSkips.WithLabelValues("not_push")); got != 1 {
		t.Fatalf("publish_skipped{not_push} = %v, want 1", got)
	}
}

func TestPrometheusRecorderHTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	if pr.HTTPHandler() == nil {
		t.Fatal("expected a metrics handler")
	}
}
