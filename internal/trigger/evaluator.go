package trigger

import "fmt"

// Decision is the evaluator's verdict for one event.
// A false Publish is normal control flow, not an error.
type Decision struct {
	Build      bool
	Publish    bool
	Reason     string // explains a publish skip; empty when publishing
	ReasonCode string // coarse skip class, safe as a metric label
}

// Skip reason codes.
const (
	SkipDisabled       = "disabled"
	SkipNotPush        = "not_push"
	SkipOwnerMismatch  = "owner_mismatch"
	SkipBranchMismatch = "branch_mismatch"
)

// Evaluator decides whether an event builds and whether it publishes.
// Publish requires all three predicates: canonical owner, source branch,
// and a direct push.
type Evaluator struct {
	Owner          string // canonical repository owner
	SourceBranch   string // primary integration branch
	PublishEnabled bool
}

// NewEvaluator builds an evaluator from the publish configuration values.
func NewEvaluator(owner, sourceBranch string, publishEnabled bool) *Evaluator {
	return &Evaluator{
		Owner:          owner,
		SourceBranch:   sourceBranch,
		PublishEnabled: publishEnabled,
	}
}

// Decide evaluates an event. Build is true for every supported event kind;
// Publish is true only for qualifying pushes.
func (e *Evaluator) Decide(evt Event) Decision {
	d := Decision{Build: true}

	if !e.PublishEnabled {
		d.Reason = "publishing disabled in configuration"
		d.ReasonCode = SkipDisabled
		return d
	}
	if evt.Kind != KindPush {
		d.Reason = fmt.Sprintf("event kind %q is not a push", evt.Kind)
		d.ReasonCode = SkipNotPush
		return d
	}
	if evt.Owner != e.Owner {
		d.Reason = fmt.Sprintf("owner %q is not the canonical owner %q", evt.Owner, e.Owner)
		d.ReasonCode = SkipOwnerMismatch
		return d
	}
	if evt.Branch != e.SourceBranch {
		d.Reason = fmt.Sprintf("branch %q is not the source branch %q", evt.Branch, e.SourceBranch)
		d.ReasonCode = SkipBranchMismatch
		return d
	}

	d.Publish = true
	return d
}
