package failure

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

// Failure describes one suppressed error and the unit it was contained to.
type Failure struct {
	Unit string // "chunk", "tick", "dispatch", "index", "capture", ...
	ID   string // chunk number, fingerprint, session id
	Kind Kind
	Err  error
}

// Sink receives every error that is handled instead of propagated.
type Sink interface {
	Report(ctx context.Context, f Failure)
	Counts() map[Kind]int
}

type implSink struct {
	logger logger.Logger
	mu     sync.Mutex
	counts map[Kind]int
}

// NewSink creates a Sink that logs each failure with its unit id and
// keeps per-kind counters.
func NewSink(log logger.Logger) Sink {
	return &implSink{
		logger: log,
		counts: make(map[Kind]int),
	}
}

func (s *implSink) Report(ctx context.Context, f Failure) {
	if f.Kind == "" {
		f.Kind = Classify(f.Err)
	}

	s.mu.Lock()
	s.counts[f.Kind]++
	s.mu.Unlock()

	log := s.logger.With("unit", f.Unit, "id", f.ID, "kind", string(f.Kind))
	switch f.Kind {
	case KindData:
		log.Warn(ctx, "Skipped %s %s: %v", f.Unit, f.ID, f.Err)
	case KindInvariant:
		log.Error(ctx, "Invariant violated in %s %s: %v", f.Unit, f.ID, f.Err)
	default:
		log.Error(ctx, "Failed %s %s: %v", f.Unit, f.ID, f.Err)
	}
}

func (s *implSink) Counts() map[Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Kind]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}
