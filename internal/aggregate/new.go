package aggregate

import (
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
)

type implAggregator struct {
	summarizer      summarizer.Summarizer
	sink            failure.Sink
	logger          logger.Logger
	retry           retry.Policy
	timeout         time.Duration
	maxContextChars int
}

// New creates an Aggregator. maxContextChars bounds the text sent in one call.
func New(s summarizer.Summarizer, sink failure.Sink, log logger.Logger, policy retry.Policy, timeout time.Duration, maxContextChars int) Aggregator {
	if maxContextChars <= 0 {
		maxContextChars = 12000
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	return &implAggregator{
		summarizer:      s,
		sink:            sink,
		logger:          log,
		retry:           policy,
		timeout:         timeout,
		maxContextChars: maxContextChars,
	}
}
