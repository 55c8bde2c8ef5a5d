package watcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

// New creates a Watcher on controlDir. onStop may be nil when only
// Active is needed; such a watcher never consumes the stop flag. With a
// handler, a stale stop flag left from a previous run is removed.
func New(controlDir string, onStop EventHandler, log logger.Logger) (Watcher, error) {
	if err := os.MkdirAll(controlDir, 0755); err != nil {
		return nil, fmt.Errorf("create control dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(controlDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if onStop != nil {
		_ = os.Remove(filepath.Join(controlDir, StopFlag))
	}

	w := &implWatcher{
		controlDir: controlDir,
		handler:    onStop,
		logger:     log,
		watcher:    watcher,
		semaphore:  make(chan struct{}, 1),
	}
	if _, err := os.Stat(filepath.Join(controlDir, RecordingFlag)); err == nil {
		w.active.Store(true)
	}
	return w, nil
}
