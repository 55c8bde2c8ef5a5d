package aggregate

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

// perChunkOverhead approximates the "Chunk N: " label and separators.
const perChunkOverhead = 12

func (a *implAggregator) Aggregate(ctx context.Context, summaries []string, transcript string) Result {
	if len(summaries) > 0 {
		kept, dropped := fitNewest(summaries, a.maxContextChars)
		if dropped > 0 {
			a.logger.Warn(ctx, "Dropped %d oldest of %d chunk summaries to fit %d chars",
				dropped, len(summaries), a.maxContextChars)
		}

		out, err := a.call(ctx, func(ctx context.Context) (string, error) {
			return a.summarizer.Aggregate(ctx, kept)
		})
		if err != nil {
			a.report(ctx, "chunks", err)
			return Result{Summary: Unavailable, Source: SourceNone, Dropped: dropped}
		}
		return Result{Summary: out, Source: SourceChunks, Dropped: dropped}
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		a.logger.Warn(ctx, "Nothing to aggregate: no chunk summaries and no transcript")
		return Result{Summary: Unavailable, Source: SourceNone}
	}

	a.logger.Info(ctx, "No chunk summaries, summarizing raw transcript (%d chars)", len([]rune(transcript)))
	input := tailRunes(transcript, a.maxContextChars)

	out, err := a.call(ctx, func(ctx context.Context) (string, error) {
		return a.summarizer.SummarizeTranscript(ctx, input)
	})
	if err != nil {
		a.report(ctx, "transcript", err)
		return Result{Summary: Unavailable, Source: SourceNone}
	}
	return Result{Summary: out, Source: SourceTranscript}
}

func (a *implAggregator) call(ctx context.Context, op func(ctx context.Context) (string, error)) (string, error) {
	return retry.Value(ctx, a.retry, func(ctx context.Context) (string, error) {
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return op(cctx)
	})
}

func (a *implAggregator) report(ctx context.Context, id string, err error) {
	a.sink.Report(ctx, failure.Failure{
		Unit: "aggregate",
		ID:   id,
		Kind: failure.Classify(err),
		Err:  err,
	})
}

// fitNewest keeps the newest summaries whose combined size fits limit and
// reports how many of the oldest were dropped. The newest summary is always
// kept, cut to its last limit runes if it alone is too long.
func fitNewest(summaries []string, limit int) ([]string, int) {
	total := 0
	start := len(summaries)
	for i := len(summaries) - 1; i >= 0; i-- {
		cost := len([]rune(summaries[i])) + perChunkOverhead
		if total+cost > limit && start < len(summaries) {
			break
		}
		total += cost
		start = i
	}

	kept := append([]string(nil), summaries[start:]...)
	if len(kept) == 1 {
		kept[0] = tailRunes(kept[0], limit)
	}
	return kept, start
}

func tailRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}
