package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

const excerptRunes = 150

func (p *implPipeline) Enqueue(chunk *meeting.AudioChunk) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- chunk:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close closes the queue; the closed channel is the end-of-input sentinel.
func (p *implPipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.queue)
	}
}

// Run consumes chunks in FIFO order until Close has been called and the
// queue is drained, or ctx is done. On ctx cancellation the remaining
// artifacts are deleted unprocessed.
func (p *implPipeline) Run(ctx context.Context) error {
	log := p.deps.Logger.With("session", p.session.ID)
	log.Info(ctx, "Chunk consumer started (queue size %d)", cap(p.queue))

	for {
		select {
		case <-ctx.Done():
			dropped := p.drainDiscard(ctx)
			log.Warn(ctx, "Chunk consumer cancelled, discarded %d queued chunks", dropped)
			return ctx.Err()

		case chunk, ok := <-p.queue:
			if !ok {
				s := p.Stats()
				log.Info(ctx, "Chunk consumer drained: %d processed, %d skipped, %d fallbacks",
					s.Processed, s.Skipped, s.Fallbacks)
				return nil
			}
			p.process(ctx, chunk)
		}
	}
}

func (p *implPipeline) drainDiscard(ctx context.Context) int {
	n := 0
	for {
		select {
		case chunk, ok := <-p.queue:
			if !ok {
				return n
			}
			p.discard(ctx, chunk)
			n++
		default:
			return n
		}
	}
}

func (p *implPipeline) process(ctx context.Context, chunk *meeting.AudioChunk) {
	defer p.discard(ctx, chunk)

	id := strconv.Itoa(chunk.Seq)
	log := p.deps.Logger.With("session", p.session.ID, "chunk", chunk.Seq)
	start := time.Now()

	tc, err := p.transcribe(ctx, chunk)
	if !tc.OK {
		p.deps.Sink.Report(ctx, failure.Failure{Unit: "chunk", ID: id, Kind: failure.Classify(err), Err: err})
		p.skip(ctx, chunk, skipReason(err), tc.Latency)
		return
	}
	text := tc.Text
	log.Info(ctx, "Chunk %d transcribed in %v (%d chars)", chunk.Seq, tc.Latency.Round(time.Millisecond), len([]rune(text)))

	res := p.deps.Resolver.Resolve(text)
	glossary := p.deps.Resolver.FindGlossaryTerms(text)
	if !res.Empty() || len(glossary) > 0 {
		log.Debug(ctx, "Chunk %d entities: %v, glossary: %v", chunk.Seq, entityNames(res), lo.Keys(glossary))
	}

	summary, err := retry.Value(ctx, p.opts.Retry, func(ctx context.Context) (string, error) {
		sctx, cancel := context.WithTimeout(ctx, p.opts.SummarizeTimeout)
		defer cancel()
		return p.deps.Summarizer.Summarize(sctx, text, res)
	})
	if err != nil {
		p.deps.Sink.Report(ctx, failure.Failure{Unit: "chunk", ID: id, Kind: failure.Classify(err), Err: err})
		summary = excerpt(text)
		p.count(func(s *Stats) { s.Fallbacks++ })
	}

	p.append(ctx, chunk.Seq, fmt.Sprintf("[chunk %d] %s\n%s", chunk.Seq, text, summary))

	p.session.Add(meeting.ChunkSummary{
		Seq:      chunk.Seq,
		Text:     text,
		Summary:  summary,
		Entities: entityNames(res),
		Latency:  time.Since(start),
	})
	p.count(func(s *Stats) { s.Processed++ })
}

// transcribe runs the transcription stage. Blank text counts as a data
// error whatever the collaborator returned.
func (p *implPipeline) transcribe(ctx context.Context, chunk *meeting.AudioChunk) (meeting.TranscribedChunk, error) {
	start := time.Now()
	text, err := retry.Value(ctx, p.opts.Retry, func(ctx context.Context) (string, error) {
		tctx, cancel := context.WithTimeout(ctx, p.opts.TranscribeTimeout)
		defer cancel()
		return p.deps.Transcriber.Transcribe(tctx, chunk)
	})

	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = fmt.Errorf("%w: empty transcript for chunk %d", failure.ErrData, chunk.Seq)
	}

	return meeting.TranscribedChunk{
		Chunk:   chunk,
		Text:    text,
		OK:      err == nil,
		Latency: time.Since(start),
	}, err
}

func (p *implPipeline) skip(ctx context.Context, chunk *meeting.AudioChunk, reason string, latency time.Duration) {
	p.append(ctx, chunk.Seq, fmt.Sprintf("[chunk %d] (skipped: %s)", chunk.Seq, reason))
	p.session.Add(meeting.ChunkSummary{
		Seq:     chunk.Seq,
		Skipped: true,
		Latency: latency,
	})
	p.count(func(s *Stats) { s.Skipped++ })
}

func (p *implPipeline) append(ctx context.Context, seq int, block string) {
	err := p.opts.Retry.Do(ctx, func(ctx context.Context) error {
		actx, cancel := context.WithTimeout(ctx, p.opts.AppendTimeout)
		defer cancel()
		return p.deps.Store.AppendBlock(actx, p.docRef, block)
	})
	if err != nil {
		p.deps.Sink.Report(ctx, failure.Failure{Unit: "append", ID: strconv.Itoa(seq), Kind: failure.Classify(err), Err: err})
		p.count(func(s *Stats) { s.AppendErrs++ })
	}
}

// discard removes the chunk's temporary artifact whatever the outcome.
func (p *implPipeline) discard(ctx context.Context, chunk *meeting.AudioChunk) {
	if chunk.Path == "" {
		return
	}
	if err := os.Remove(chunk.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.deps.Logger.Warn(ctx, "Failed to remove chunk %d artifact %s: %v", chunk.Seq, chunk.Path, err)
	}
}

func (p *implPipeline) count(fn func(s *Stats)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	fn(&p.stats)
}

func (p *implPipeline) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func skipReason(err error) string {
	if errors.Is(err, failure.ErrData) {
		return "empty transcript"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "transcription timed out"
	}
	return "transcription failed"
}

// excerpt is the fallback summary: the first runes of the raw text.
func excerpt(text string) string {
	r := []rune(text)
	if len(r) <= excerptRunes {
		return text
	}
	return string(r[:excerptRunes]) + "..."
}

func entityNames(res entity.Resolution) []string {
	all := append(append(append([]entity.MatchCandidate{}, res.People...), res.Projects...), res.Terms...)
	return lo.Uniq(lo.FilterMap(all, func(c entity.MatchCandidate, _ int) (string, bool) {
		return c.Record.Name, c.Record.Name != ""
	}))
}
