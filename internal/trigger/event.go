// Package trigger models pipeline trigger events and the publish gate.
package trigger

import (
	"fmt"
	"strings"
	"time"
)

// Kind enumerates the event kinds that start a pipeline run.
type Kind string

const (
	// KindPush is a direct push to a branch.
	KindPush Kind = "push"
	// KindPullRequest is a code-review proposal event.
	KindPullRequest Kind = "pull_request"
	// KindSchedule is a time-based scheduled tick.
	KindSchedule Kind = "schedule"
	// KindManual is an operator-initiated run (CLI).
	KindManual Kind = "manual"
)

// ParseKind normalizes a raw event kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindPush:
		return KindPush, nil
	case KindPullRequest:
		return KindPullRequest, nil
	case KindSchedule:
		return KindSchedule, nil
	case KindManual:
		return KindManual, nil
	default:
		return "", fmt.Errorf("unknown event kind %q", raw)
	}
}

// Event carries the metadata the evaluator needs to decide build/publish.
type Event struct {
	Kind       Kind
	Owner      string // repository owner the event originated from
	Branch     string // source branch the event targets
	Ref        string // full ref when known (refs/heads/main)
	Commit     string // commit SHA when known
	ReceivedAt time.Time
}

// BranchFromRef extracts a branch name from a refs/heads/ ref.
// Returns the input unchanged when it is not a branch ref.
func BranchFromRef(ref string) string {
	if b, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return b
	}
	return ref
}
