package poller

import (
	"context"
	"time"
)

// State is the poller state machine position.
type State string

const (
	StateIdle       State = "IDLE"
	StatePolling    State = "POLLING"
	StateNoChange   State = "NO_CHANGE"
	StateNewContent State = "NEW_CONTENT"
	StateSkipped    State = "SKIPPED"
)

// Fetcher returns the newest content of a document.
type Fetcher interface {
	FetchLatestBlock(ctx context.Context, ref string) (content string, found bool, err error)
}

// Dispatcher runs downstream analysis for new content.
type Dispatcher interface {
	Dispatch(ctx context.Context, content, fingerprint string) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, content, fingerprint string) error

func (f DispatchFunc) Dispatch(ctx context.Context, content, fingerprint string) error {
	return f(ctx, content, fingerprint)
}

// Poller periodically checks a document and dispatches each new, complete
// version at most once.
type Poller interface {
	// Start runs the tick loop until ctx is done or Stop is called.
	Start(ctx context.Context) error
	// Stop cancels the loop and waits up to the grace period for the
	// in-flight tick and dispatches. A stopped poller is not restarted.
	Stop() error
	// Tick runs one poll and returns its outcome.
	Tick(ctx context.Context) State
	// MarkProcessed records a fingerprint as already handled.
	MarkProcessed(fingerprint string) error
	Status() Status
	Wait()
}

// Status is a snapshot for diagnostics.
type Status struct {
	Running         bool
	State           State
	Reason          string
	Ticks           int
	Dispatched      int
	LastTick        time.Time
	LastFingerprint string
	LastSeen        time.Time
}
