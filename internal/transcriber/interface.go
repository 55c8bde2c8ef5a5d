package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
)

// Transcriber turns a chunk's WAV artifact into text.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk *meeting.AudioChunk) (string, error)
}
