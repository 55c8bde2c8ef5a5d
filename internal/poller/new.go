package poller

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

// Options configures a Poller.
type Options struct {
	SourceRef         string
	Interval          time.Duration
	FetchTimeout      time.Duration
	GracePeriod       time.Duration
	CompletionMarkers []string
	Retry             retry.Policy
	// Active reports a live capture session; ticks are skipped while true.
	Active func() bool
	// Fingerprint defaults to Fingerprint.
	Fingerprint func(content string) string
}

// Deps are the poller collaborators.
type Deps struct {
	Fetcher    Fetcher
	Dispatcher Dispatcher
	State      StateStore
	Sink       failure.Sink
	Logger     logger.Logger
}

type implPoller struct {
	deps Deps
	opts Options
	now  func() time.Time

	// dispatches outlive ticks; cancelled only when Stop gives up on them
	dispatchCtx    context.Context
	dispatchCancel context.CancelFunc
	dispatches     sync.WaitGroup

	// held from the fingerprint check until dispatch
	claim sync.Mutex

	mu         sync.Mutex
	running    bool
	loopCancel context.CancelFunc
	loopDone   chan struct{}
	status     Status
}

// New creates a Poller. A nil State keeps fingerprints in memory.
func New(deps Deps, opts Options) Poller {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 10 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default()
	}
	if opts.Fingerprint == nil {
		opts.Fingerprint = Fingerprint
	}
	if deps.State == nil {
		deps.State = NewMemoryStore()
	}

	p := &implPoller{
		deps: deps,
		opts: opts,
		now:  time.Now,
	}
	p.dispatchCtx, p.dispatchCancel = context.WithCancel(context.Background())
	p.status.State = StateIdle
	if rec, ok := deps.State.Last(); ok {
		p.status.LastFingerprint = rec.Fingerprint
		p.status.LastSeen = rec.SeenAt
	}
	return p
}
