package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
)

// Transcribe runs whisper.cpp on the chunk artifact and returns plain text.
// Empty output is a data error; a failed run is a transient upstream error.
func (t *implTranscriber) Transcribe(ctx context.Context, chunk *meeting.AudioChunk) (string, error) {
	if chunk == nil || chunk.Path == "" {
		return "", fmt.Errorf("%w: chunk has no audio artifact", failure.ErrData)
	}

	// Whisper appends .txt to the prefix
	outputPrefix := strings.TrimSuffix(chunk.Path, filepath.Ext(chunk.Path))
	txtPath := outputPrefix + ".txt"
	defer os.Remove(txtPath)

	// -otxt: plain text, no timestamps
	// -np: no progress prints on stdout
	args := []string{
		"-m", t.cfg.ModelPath,
		"-f", chunk.Path,
		"-otxt",
		"-np",
		"-l", t.cfg.Language,
		"-t", strconv.Itoa(t.cfg.Threads),
		"--output-file", outputPrefix,
	}
	if t.cfg.Prompt != "" {
		args = append(args, "--prompt", t.cfg.Prompt)
	}

	t.logger.Debug(ctx, "Transcribing chunk %d: %s", chunk.Seq, chunk.Path)

	if _, err := t.executor.Execute(ctx, t.cfg.BinaryPath, args...); err != nil {
		// a killed process reports its exit status, not the context error
		switch ctxErr := ctx.Err(); {
		case errors.Is(err, context.Canceled), errors.Is(ctxErr, context.Canceled):
			return "", fmt.Errorf("whisper chunk %d: %w", chunk.Seq, context.Canceled)
		case ctxErr != nil:
			return "", fmt.Errorf("%w: whisper chunk %d timed out: %w", failure.ErrTransientUpstream, chunk.Seq, ctxErr)
		}
		return "", fmt.Errorf("%w: whisper chunk %d: %v", failure.ErrTransientUpstream, chunk.Seq, err)
	}

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("%w: read transcript for chunk %d: %v", failure.ErrTransientUpstream, chunk.Seq, err)
	}

	text := normalize(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript for chunk %d", failure.ErrData, chunk.Seq)
	}

	t.logger.Debug(ctx, "Chunk %d transcribed (%d chars)", chunk.Seq, len([]rune(text)))
	return text, nil
}

// normalize joins whisper's segment lines into one paragraph and drops
// blank-audio markers.
func normalize(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "[BLANK_AUDIO]" {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
