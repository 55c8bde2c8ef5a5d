package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	Stream(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a running command whose stdout is consumed incrementally.
type Process interface {
	Stdout() io.Reader
	// Stop asks the process to exit and kills it if it does not.
	Stop() error
	// Wait blocks until the process exits. Safe to call more than once.
	Wait() error
}
