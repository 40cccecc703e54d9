package pipeline

import (
	"time"

	"github.com/hypersql/docpub/internal/trigger"
)

// Status represents the outcome of a run or a stage.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Stage names. The pipeline is a fixed linear sequence.
const (
	StageSetup   = "setup"
	StageBuild   = "build"
	StagePublish = "publish"
)

// StageResult records one stage's outcome.
type StageResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Reason    string        `json:"reason,omitempty"` // why a stage was skipped
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// RunResult is the complete outcome of one pipeline run.
//
// The overall status is success only when every executed stage succeeded; a
// skipped publish does not degrade the run.
type RunResult struct {
	ID            string           `json:"id"`
	Event         trigger.Event    `json:"event"`
	Decision      trigger.Decision `json:"decision"`
	Stages        []StageResult    `json:"stages"`
	Status        Status           `json:"status"`
	ArtifactDir   string           `json:"artifact_dir,omitempty"`
	PublishCommit string           `json:"publish_commit,omitempty"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
}

// Duration returns the total wall-clock duration of the run.
func (r *RunResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Published reports whether the publish stage ran and succeeded.
func (r *RunResult) Published() bool {
	for _, s := range r.Stages {
		if s.Name == StagePublish && s.Status == StatusSuccess {
			return true
		}
	}
	return false
}
