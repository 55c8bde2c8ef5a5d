package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
)

// Summarizer asks a language model for chunk and session summaries.
type Summarizer interface {
	// Summarize condenses one transcript chunk, using the resolved
	// entities as context.
	Summarize(ctx context.Context, text string, ents entity.Resolution) (string, error)
	// Aggregate merges ordered chunk summaries into one final summary.
	Aggregate(ctx context.Context, summaries []string) (string, error)
	// SummarizeTranscript builds a final summary straight from raw text.
	SummarizeTranscript(ctx context.Context, transcript string) (string, error)
	// ActionItems lists the tasks agreed in a transcript. Assignee and
	// Deadline hold the names as spoken and may be empty.
	ActionItems(ctx context.Context, transcript string) ([]ActionItem, error)
}

// ActionItem is one task extracted from a meeting.
type ActionItem struct {
	Task     string
	Assignee string
	Deadline string
}

// Generator is a single-prompt text generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Name() string
}
