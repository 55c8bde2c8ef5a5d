package docstore

import "context"

// Markers written into documents so readers can tell where a meeting
// starts and whether it has finished.
const (
	SessionStartMarker    = "[SESSION_START]"
	MeetingCompleteMarker = "[MEETING_COMPLETE]"
	SummaryHeading        = "## Meeting summary"
)

// Store is an append-only document store keyed by a document reference.
type Store interface {
	// AppendBlock adds one block to the end of the document.
	AppendBlock(ctx context.Context, ref, text string) error
	// FetchLatestBlock returns everything since the last session start
	// marker, or the last block when the document has none.
	FetchLatestBlock(ctx context.Context, ref string) (content string, found bool, err error)
}
