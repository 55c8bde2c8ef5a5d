package analysis

import (
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/aggregate"
	"github.com/nguyentantai21042004/meeting-twin/internal/docstore"
	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

// Options configures where results go.
type Options struct {
	DocRef         string // analysis document, never the polled one
	MinutesDir     string // empty disables docx export
	AppendTimeout  time.Duration
	ExtractTimeout time.Duration // per action item extraction attempt
	Retry          retry.Policy
}

type implAnalyzer struct {
	resolver   entity.Resolver
	aggregator aggregate.Aggregator
	actions    ActionExtractor
	store      docstore.Store
	sink       failure.Sink
	logger     logger.Logger
	opts       Options
	now        func() time.Time
}

// New creates an Analyzer.
func New(resolver entity.Resolver, agg aggregate.Aggregator, actions ActionExtractor, store docstore.Store, sink failure.Sink, log logger.Logger, opts Options) Analyzer {
	if opts.AppendTimeout <= 0 {
		opts.AppendTimeout = 15 * time.Second
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = time.Minute
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default()
	}

	return &implAnalyzer{
		resolver:   resolver,
		aggregator: agg,
		actions:    actions,
		store:      store,
		sink:       sink,
		logger:     log,
		opts:       opts,
		now:        time.Now,
	}
}
