package audio

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
)

// Device is an input that delivers mono float32 frames to a callback.
// The callback runs on the device's own goroutine and must not block.
type Device interface {
	Name() string
	Open(ctx context.Context, onSamples func([]float32)) (Stream, error)
}

// Stream is an open device. Close is idempotent.
type Stream interface {
	Name() string
	Close() error
}

// Mixer captures up to two devices and cuts their mix into chunks.
type Mixer interface {
	// StartCapture opens primary and, if non-nil, secondary. A primary
	// failure is fatal; a secondary failure degrades to primary only.
	StartCapture(ctx context.Context, primary, secondary Device) ([]Stream, error)
	// ExtractChunk drains d worth of audio, or returns nil when the
	// primary buffer does not hold that much yet.
	ExtractChunk(d time.Duration) *meeting.AudioChunk
	// Flush drains whatever is left, or nil if less than minFlush.
	Flush() *meeting.AudioChunk
	// StopCapture closes the given streams, tolerating ones that failed.
	StopCapture(streams []Stream) error
	Overruns() int
}
