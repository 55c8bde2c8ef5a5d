package analysis

import (
	"context"

	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
)

// Analyzer runs the downstream analysis for externally authored meeting
// content. It satisfies poller.Dispatcher.
type Analyzer interface {
	Dispatch(ctx context.Context, content, fingerprint string) error
}

// ActionExtractor lists the tasks agreed in meeting content.
type ActionExtractor interface {
	ActionItems(ctx context.Context, transcript string) ([]summarizer.ActionItem, error)
}
