package trigger

import (
	"testing"
)

func TestDecide_PublishGate(t *testing.T) {
	e := NewEvaluator("hypersql", "main", true)

	tests := []struct {
		name        string
		evt         Event
		wantPublish bool
	}{
		{"qualifying push", Event{Kind: KindPush, Owner: "hypersql", Branch: "main"}, true},
		{"push from fork", Event{Kind: KindPush, Owner: "someone-else", Branch: "main"}, false},
		{"push to feature branch", Event{Kind: KindPush, Owner: "hypersql", Branch: "feature/x"}, false},
		{"pull request on main", Event{Kind: KindPullRequest, Owner: "hypersql", Branch: "main"}, false},
		{"pull request from fork", Event{Kind: KindPullRequest, Owner: "someone-else", Branch: "main"}, false},
		{"schedule tick", Event{Kind: KindSchedule, Owner: "hypersql", Branch: "main"}, false},
		{"manual run", Event{Kind: KindManual, Owner: "hypersql", Branch: "main"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Decide(tt.evt)
			if !d.Build {
				t.Fatal("every event kind must build")
			}
			if d.Publish != tt.wantPublish {
				t.Fatalf("Publish = %v, want %v (reason: %s)", d.Publish, tt.wantPublish, d.Reason)
			}
			if !d.Publish && d.Reason == "" {
				t.Fatal("skipped publish must carry a reason")
			}
			if d.Publish && d.Reason != "" {
				t.Fatalf("publishing decision should not carry a skip reason: %s", d.Reason)
			}
		})
	}
}

func TestDecide_PublishDisabled(t *testing.T) {
	e := NewEvaluator("hypersql", "main", false)
	d := e.Decide(Event{Kind: KindPush, Owner: "hypersql", Branch: "main"})
	if d.Publish {
		t.Fatal("publish must stay off when disabled in config")
	}
	if !d.Build {
		t.Fatal("build should still run with publishing disabled")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		raw     string
		want    Kind
		wantErr bool
	}{
		{"push", KindPush, false},
		{"PUSH", KindPush, false},
		{" pull_request ", KindPullRequest, false},
		{"schedule", KindSchedule, false},
		{"manual", KindManual, false},
		{"deployment", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestBranchFromRef(t *testing.T) {
	if got := BranchFromRef("refs/heads/main"); got != "main" {
		t.Fatalf("expected main, got %s", got)
	}
	if got := BranchFromRef("refs/heads/release/v2"); got != "release/v2" {
		t.Fatalf("expected release/v2, got %s", got)
	}
	if got := BranchFromRef("main"); got != "main" {
		t.Fatalf("expected passthrough, got %s", got)
	}
}
