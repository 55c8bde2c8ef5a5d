package aggregate

import "context"

// Unavailable is the final summary stored when no summary could be produced.
const Unavailable = "summary unavailable"

// Source tells which input produced a final summary.
type Source string

const (
	SourceChunks     Source = "chunks"
	SourceTranscript Source = "transcript"
	SourceNone       Source = "none"
)

// Result is the outcome of one aggregation. It never carries an error:
// a degraded session keeps Unavailable as its summary.
type Result struct {
	Summary string
	Source  Source
	Dropped int // oldest chunk summaries cut to fit the context limit
}

// OK reports whether a real summary was produced.
func (r Result) OK() bool {
	return r.Summary != Unavailable
}

// Aggregator produces one final summary for a finished session.
type Aggregator interface {
	// Aggregate merges chunk summaries in session order. With no summaries
	// it summarizes transcript instead.
	Aggregate(ctx context.Context, summaries []string, transcript string) Result
}
