package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pointwatch/internal/daemon/events"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// PointFileWatcher monitors the file-backed point source and requests an
// early registry reconciliation when it changes, instead of waiting for the
// slow reconcile timer.
type PointFileWatcher struct {
	path         string
	bus          *events.Bus
	watcher      *fsnotify.Watcher
	changeChan   chan struct{}
	debounceTime time.Duration
	closeOnce    sync.Once
}

// NewPointFileWatcher creates a watcher for the given point file.
func NewPointFileWatcher(path string, bus *events.Bus) (*PointFileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Resolve absolute path for consistent watching
	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve point file path: %w", err)
	}

	return &PointFileWatcher{
		path:         absPath,
		bus:          bus,
		watcher:      watcher,
		changeChan:   make(chan struct{}, 1),
		debounceTime: 2 * time.Second, // Coalesce rapid editor write bursts
	}, nil
}

// Run watches until ctx is canceled.
//
// The directory is watched rather than the file itself so atomic
// rename-into-place saves keep working.
func (w *PointFileWatcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch point file directory %s: %w", dir, err)
	}
	defer w.Close()

	slog.Info("Watching point file", logfields.Path(w.path))

	go w.debounceLoop(ctx)

	fileName := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				slog.Debug("Point file changed", logfields.Path(event.Name))
				w.trigger()
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				slog.Warn("Point file removed", logfields.Path(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Point file watcher error", logfields.Error(err))
		}
	}
}

// Close releases the fsnotify watcher. Safe to call more than once; Run
// closes on exit and the daemon closes again on teardown paths where Run
// never started.
func (w *PointFileWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.watcher.Close() })
	return err
}

func (w *PointFileWatcher) trigger() {
	select {
	case w.changeChan <- struct{}{}:
	default:
		// A reconcile request is already pending.
	}
}

func (w *PointFileWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.changeChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				evt := events.ReconcileRequested{Reason: "point file changed", At: time.Now()}
				if err := w.bus.Publish(ctx, evt); err != nil && ctx.Err() == nil {
					slog.Warn("Failed to publish reconcile request", logfields.Error(err))
				}
			})
		}
	}
}
