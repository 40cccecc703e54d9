package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hypersql/docpub/internal/config"
	"github.com/hypersql/docpub/internal/pipeline"
	"github.com/hypersql/docpub/internal/trigger"
)

type fakeRunner struct {
	mu     sync.Mutex
	events []trigger.Event
	active int
	maxAct int
}

func (f *fakeRunner) Execute(ctx context.Context, evt trigger.Event) (*pipeline.RunResult, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxAct {
		f.maxAct = f.active
	}
	f.events = append(f.events, evt)
	f.mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()
	return &pipeline.RunResult{ID: "r", Event: evt, Status: pipeline.StatusSuccess}, nil
}

func (f *fakeRunner) snapshot() ([]trigger.Event, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]trigger.Event(nil), f.events...), f.maxAct
}

func TestWorkerProcessesEventsInOrderWithoutOverlap(t *testing.T) {
	cfg := &config.Config{}
	cfg.Daemon.Listen = "127.0.0.1:0"

	runner := &fakeRunner{}
	d := New(cfg, runner)

	ctx, cancel := context.WithCancel(context.Background())
	d.wg.Add(1)
	go d.worker(ctx)

	events := []trigger.Event{
		{Kind: trigger.KindPush, Branch: "main", Commit: "c1"},
		{Kind: trigger.KindPush, Branch: "main", Commit: "c2"},
		{Kind: trigger.KindSchedule},
	}
	for _, evt := range events {
		if !d.Enqueue(evt) {
			t.Fatal("enqueue failed")
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		got, _ := runner.snapshot()
		if len(got) == len(events) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d events processed", len(got), len(events))
		}
		time.Sleep(10 * time.Millisecond)
	}

	got, maxActive := runner.snapshot()
	if maxActive != 1 {
		t.Fatalf("runs overlapped: max concurrency %d", maxActive)
	}
	for i, evt := range events {
		if got[i].Commit != evt.Commit || got[i].Kind != evt.Kind {
			t.Fatalf("event %d out of order: got %+v want %+v", i, got[i], evt)
		}
	}

	cancel()
	d.wg.Wait()
}

// heldRunner blocks inside Execute until released, recording whether the run
// context was canceled underneath it.
type heldRunner struct {
	started chan struct{}
	release chan struct{}
	done    chan struct{}
	ctxErr  error
}

func newHeldRunner() *heldRunner {
	return &heldRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (h *heldRunner) Execute(ctx context.Context, evt trigger.Event) (*pipeline.RunResult, error) {
	close(h.started)
	<-h.release
	h.ctxErr = ctx.Err()
	close(h.done)
	return &pipeline.RunResult{ID: "r", Event: evt, Status: pipeline.StatusSuccess}, nil
}

func TestShutdownLetsInFlightRunFinish(t *testing.T) {
	cfg := &config.Config{}
	runner := newHeldRunner()
	d := New(cfg, runner)

	ctx, cancel := context.WithCancel(context.Background())
	d.wg.Add(1)
	go d.worker(ctx)

	if !d.Enqueue(trigger.Event{Kind: trigger.KindPush, Branch: "main"}) {
		t.Fatal("enqueue failed")
	}

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("run never started")
	}

	// Shutdown arrives while the run is in flight.
	cancel()
	close(runner.release)

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run never finished")
	}
	if runner.ctxErr != nil {
		t.Fatalf("run context canceled by shutdown: %v", runner.ctxErr)
	}

	d.wg.Wait()
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	cfg := &config.Config{}
	d := New(cfg, &fakeRunner{})

	// No worker running; fill the queue to capacity.
	for i := 0; i < queueCapacity; i++ {
		if !d.Enqueue(trigger.Event{Kind: trigger.KindPush}) {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}
	if d.Enqueue(trigger.Event{Kind: trigger.KindPush}) {
		t.Fatal("enqueue into a full queue must report a drop")
	}
}

func TestSchedulerFiresScheduleEvents(t *testing.T) {
	enq := &fakeEnqueuer{}
	s, err := NewScheduler("* * * * *", enq)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	defer func() { _ = s.Stop() }()

	// Fire the task directly rather than waiting for a cron tick.
	s.fire()
	s.fire()

	if len(enq.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(enq.events))
	}
	for _, evt := range enq.events {
		if evt.Kind != trigger.KindSchedule {
			t.Fatalf("kind = %s, want schedule", evt.Kind)
		}
	}
}

func TestSchedulerRejectsInvalidCrontab(t *testing.T) {
	if _, err := NewScheduler("not a crontab", &fakeEnqueuer{}); err == nil {
		t.Fatal("expected error for invalid crontab")
	}
}
