package session

import (
	"context"

	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
)

// Recorder runs one live meeting session from capture to final summary.
type Recorder interface {
	// Run captures until ctx is done, then drains the pipeline, aggregates
	// and writes the final blocks. Only a failure to start capture is
	// returned as an error.
	Run(ctx context.Context) (*meeting.Session, error)
}
