package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/hypersql/docpub/internal/pipeline"
	"github.com/hypersql/docpub/internal/trigger"
)

// RunCmd executes one pipeline run for a synthesized trigger event. This is
// the CI entry point: the surrounding job passes the event details as flags.
type RunCmd struct {
	Event  string `short:"e" help:"Trigger event kind (push, pull_request, schedule, manual)" default:"manual"`
	Owner  string `help:"Repository owner the event originated from"`
	Branch string `short:"b" help:"Branch the event refers to"`
	Ref    string `help:"Full git ref (refs/heads/... or refs/tags/...); overrides --branch"`
	Commit string `help:"Commit SHA the event refers to"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	kind, err := trigger.ParseKind(r.Event)
	if err != nil {
		return err
	}

	evt := trigger.Event{
		Kind:       kind,
		Owner:      r.Owner,
		Branch:     r.Branch,
		Ref:        r.Ref,
		Commit:     r.Commit,
		ReceivedAt: time.Now(),
	}
	if r.Ref != "" {
		evt.Branch = trigger.BranchFromRef(r.Ref)
	}

	store := openStore(cfg)
	defer func() { _ = store.Close() }()

	runner := newRunner(cfg, pipeline.WithStore(store))
	result, err := runner.Execute(context.Background(), evt)
	if err != nil {
		return runFailed(err)
	}

	if result.Published() {
		fmt.Printf("Published %s to %s (%s)\n", cfg.Site.Name, cfg.Publish.Branch, shortSHA(result.PublishCommit))
	} else {
		fmt.Printf("Build succeeded; publish %s\n", publishOutcome(result))
	}
	return nil
}

func publishOutcome(result *pipeline.RunResult) string {
	if result.Decision.Publish {
		return "completed"
	}
	return "skipped: " + result.Decision.Reason
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
