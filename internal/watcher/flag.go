package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Flag is a marker file in the control directory.
type Flag struct {
	path string
}

// NewRecordingFlag returns the flag a recorder raises while capturing.
func NewRecordingFlag(controlDir string) *Flag {
	return &Flag{path: filepath.Join(controlDir, RecordingFlag)}
}

// NewStopFlag returns the flag that asks a running recorder to stop.
func NewStopFlag(controlDir string) *Flag {
	return &Flag{path: filepath.Join(controlDir, StopFlag)}
}

// Set creates the flag, recording the pid and time.
func (f *Flag) Set() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	body := strconv.Itoa(os.Getpid()) + " " + time.Now().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(f.path, []byte(body), 0644); err != nil {
		return fmt.Errorf("set flag %s: %w", f.path, err)
	}
	return nil
}

// Clear removes the flag. A missing flag is not an error.
func (f *Flag) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear flag %s: %w", f.path, err)
	}
	return nil
}

// IsSet reports whether the flag file exists.
func (f *Flag) IsSet() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *Flag) Path() string {
	return f.path
}
