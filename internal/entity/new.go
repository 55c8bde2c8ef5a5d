package entity

import (
	"sync/atomic"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

type implRegistry struct {
	current   atomic.Pointer[Index]
	logger    logger.Logger
	sink      failure.Sink
	interval  time.Duration
	threshold float64
}

// NewRegistry creates a Registry holding an empty index. interval is the
// period of Run's refresh loop; threshold is the default fuzzy threshold.
func NewRegistry(log logger.Logger, sink failure.Sink, interval time.Duration, threshold float64) Registry {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	r := &implRegistry{
		logger:    log,
		sink:      sink,
		interval:  interval,
		threshold: threshold,
	}
	r.current.Store(BuildIndex(nil, nil, nil))
	return r
}
