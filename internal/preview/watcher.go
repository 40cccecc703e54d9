// Package preview watches the documentation sources and re-runs the site
// build on change. It is a local authoring aid; nothing here publishes.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hypersql/docpub/internal/logfields"
)

const debounceDelay = 300 * time.Millisecond

// BuildFunc runs one build. It is invoked once at startup and again after
// every debounced change batch.
type BuildFunc func(ctx context.Context) error

// Watcher rebuilds the site whenever files under the source tree change.
type Watcher struct {
	sourceDir string
	build     BuildFunc

	mu        sync.Mutex
	timer     *time.Timer
	rebuildCh chan struct{}
}

// NewWatcher creates a watcher over sourceDir.
func NewWatcher(sourceDir string, build BuildFunc) *Watcher {
	return &Watcher{
		sourceDir: sourceDir,
		build:     build,
		rebuildCh: make(chan struct{}, 1),
	}
}

// Run performs an initial build, then blocks handling filesystem events until
// the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	absDir, err := filepath.Abs(w.sourceDir)
	if err != nil {
		return fmt.Errorf("resolve source dir: %w", err)
	}
	if st, err := os.Stat(absDir); err != nil || !st.IsDir() {
		return fmt.Errorf("source dir not found or not a directory: %s", absDir)
	}

	if err := w.build(ctx); err != nil {
		// Keep watching; the author fixes the file and we rebuild.
		slog.Error("Initial build failed", logfields.Error(err))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := addDirsRecursive(fw, absDir); err != nil {
		return err
	}

	slog.Info("Watching for changes", logfields.Path(absDir))

	go w.rebuildLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// handleEvent filters noise and arms the debounce timer.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fw, ev.Name)
		}
	}

	slog.Debug("File change detected", logfields.Path(ev.Name))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() {
		select {
		case w.rebuildCh <- struct{}{}:
		default:
		}
	})
}

// rebuildLoop serializes rebuilds; bursts during a running build collapse
// into a single follow-up build.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.rebuildCh:
			slog.Info("Change detected; rebuilding site")
			start := time.Now()
			if err := w.build(ctx); err != nil {
				slog.Warn("Rebuild failed", logfields.Error(err))
			} else {
				slog.Info("Rebuild completed",
					logfields.DurationMS(float64(time.Since(start).Milliseconds())))
			}
		}
	}
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnore filters hidden files, editor swap files, and OS junk.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db"
}
