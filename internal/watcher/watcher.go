package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

type implWatcher struct {
	controlDir string
	handler    EventHandler
	logger     logger.Logger
	watcher    *fsnotify.Watcher
	semaphore  chan struct{}
	wg         sync.WaitGroup
	active     atomic.Bool
}

// Start processes control-flag events until ctx is done
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Control watcher started. Monitoring: %s", w.controlDir)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info(ctx, "Control watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handle(ctx context.Context, event fsnotify.Event) {
	switch filepath.Base(event.Name) {
	case RecordingFlag:
		switch {
		case event.Has(fsnotify.Create):
			w.active.Store(true)
			w.logger.Debug(ctx, "Recording flag raised")
		case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
			w.active.Store(false)
			w.logger.Debug(ctx, "Recording flag cleared")
		}

	case StopFlag:
		if w.handler == nil {
			// observers leave the flag for the recorder
			return
		}
		if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
			return
		}
		if err := os.Remove(event.Name); err != nil {
			// already consumed by an earlier event
			return
		}
		w.logger.Info(ctx, "Stop requested via %s", event.Name)

		select {
		case w.semaphore <- struct{}{}:
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				defer func() { <-w.semaphore }()

				if err := w.handler(ctx, path); err != nil {
					w.logger.Error(ctx, "Stop handler failed: %v", err)
				}
			}(event.Name)
		default:
			w.logger.Debug(ctx, "Stop handler already running, ignoring duplicate request")
		}

	default:
		w.logger.Debug(ctx, "Ignoring control file: %s", event.Name)
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) Active() bool {
	return w.active.Load()
}
