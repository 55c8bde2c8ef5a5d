package watcher

import "context"

// Control file names inside the control directory.
const (
	StopFlag      = "stop_recording.flag"
	RecordingFlag = "is_recording.flag"
)

// Watcher monitors the control directory for the stop and recording flags.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
	// Active reports whether a recording session has raised its flag.
	Active() bool
}

// EventHandler is called when a stop request is observed
type EventHandler func(ctx context.Context, flagPath string) error
