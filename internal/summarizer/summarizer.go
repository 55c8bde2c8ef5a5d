package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
)

func (s *implSummarizer) Summarize(ctx context.Context, text string, ents entity.Resolution) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: nothing to summarize", failure.ErrData)
	}
	return s.generate(ctx, "chunk", buildChunkPrompt(text, ents), chunkMaxTokens)
}

func (s *implSummarizer) Aggregate(ctx context.Context, summaries []string) (string, error) {
	if len(summaries) == 0 {
		return "", fmt.Errorf("%w: no chunk summaries", failure.ErrData)
	}
	return s.generate(ctx, "final", buildFinalPrompt(summaries), finalMaxTokens)
}

func (s *implSummarizer) SummarizeTranscript(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("%w: empty transcript", failure.ErrData)
	}
	return s.generate(ctx, "transcript", buildTranscriptPrompt(transcript), finalMaxTokens)
}

func (s *implSummarizer) ActionItems(ctx context.Context, transcript string) ([]ActionItem, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("%w: empty transcript", failure.ErrData)
	}
	out, err := s.generate(ctx, "action items", buildActionPrompt(transcript), actionMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseActionItems(out), nil
}

func (s *implSummarizer) generate(ctx context.Context, kind, prompt string, maxTokens int) (string, error) {
	start := time.Now()

	out, err := s.gen.Generate(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty %s summary from %s", failure.ErrTransientUpstream, kind, s.gen.Name())
	}

	s.logger.Debug(ctx, "Generated %s summary via %s in %v (%d chars)",
		kind, s.gen.Name(), time.Since(start).Round(time.Millisecond), len([]rune(out)))
	return out, nil
}
