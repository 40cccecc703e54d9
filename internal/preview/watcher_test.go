package preview

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"docs/index.md", false},
		{"docs/.index.md.swp", true},
		{"docs/index.md~", true},
		{"docs/#index.md#", true},
		{"docs/.hidden", true},
		{"Thumbs.db", true},
		{"docs/guide.md", false},
	}
	for _, tt := range tests {
		if got := shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Home\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var builds atomic.Int32
	w := NewWatcher(dir, func(ctx context.Context) error {
		builds.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Wait for the initial build.
	waitFor(t, func() bool { return builds.Load() >= 1 })

	// A burst of writes should collapse into one debounced rebuild.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Home\nedit\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	waitFor(t, func() bool { return builds.Load() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherMissingSourceDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), func(ctx context.Context) error { return nil })
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing source dir")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
