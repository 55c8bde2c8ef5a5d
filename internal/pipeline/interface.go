package pipeline

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
)

var (
	// ErrQueueFull is returned by Enqueue when the consumer is too far behind.
	ErrQueueFull = errors.New("chunk queue full")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("pipeline closed")
)

// Pipeline turns queued audio chunks into appended, entity-aware summaries.
// It has one producer and exactly one consumer, so blocks are appended in
// submission order.
type Pipeline interface {
	// Enqueue hands a chunk to the consumer without blocking.
	Enqueue(chunk *meeting.AudioChunk) error
	// Close marks the end of input. Run returns once everything queued
	// before Close has been processed.
	Close()
	// Run is the consumer loop.
	Run(ctx context.Context) error
	Stats() Stats
}

// Stats counts chunk outcomes.
type Stats struct {
	Processed  int
	Skipped    int
	Fallbacks  int // summaries replaced by a raw excerpt
	AppendErrs int
}
