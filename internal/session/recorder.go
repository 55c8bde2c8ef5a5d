package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/meeting-twin/internal/audio"
	"github.com/nguyentantai21042004/meeting-twin/internal/docstore"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
	"github.com/nguyentantai21042004/meeting-twin/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
)

func (r *implRecorder) Run(ctx context.Context) (*meeting.Session, error) {
	session := meeting.NewSession(r.opts.Title, r.now())
	log := r.deps.Logger.With("session", session.ID)

	if err := os.MkdirAll(r.opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	streams, err := r.deps.Mixer.StartCapture(ctx, r.deps.Primary, r.deps.Secondary)
	if err != nil {
		return nil, fmt.Errorf("start capture: %w", err)
	}

	if r.deps.Flag != nil {
		if err := r.deps.Flag.Set(); err != nil {
			log.Warn(ctx, "Failed to raise recording flag: %v", err)
		}
		defer func() {
			if err := r.deps.Flag.Clear(); err != nil {
				log.Warn(context.Background(), "Failed to clear recording flag: %v", err)
			}
		}()
	}

	// Blocks written after capture stops must not see the stop signal.
	work := context.WithoutCancel(ctx)

	header := fmt.Sprintf("%s %s · %s (session %s)",
		docstore.SessionStartMarker, session.Title, session.StartedAt.Format("2006-01-02 15:04"), session.ID)
	r.appendBlock(work, session, "header", header)

	log.Info(ctx, "Recording started: %s, %v chunks", session.Title, r.opts.ChunkDuration)

	p := pipeline.New(session, r.opts.DocRef, r.deps.Pipeline, r.opts.Pipeline)

	g, gctx := errgroup.WithContext(work)
	g.Go(func() error {
		return p.Run(gctx)
	})
	g.Go(func() error {
		defer p.Close()
		r.capture(ctx, log, session, p)
		if err := r.deps.Mixer.StopCapture(streams); err != nil {
			log.Warn(work, "Stopping capture: %v", err)
		}
		if chunk := r.deps.Mixer.Flush(); chunk != nil {
			r.handoff(work, log, session, p, chunk)
		}
		session.SetStatus(meeting.StatusSummarizing)
		log.Info(work, "Capture stopped, draining queued chunks")
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error(work, "Chunk processing ended early: %v", err)
	}

	r.finish(work, log, session)
	return session, nil
}

// capture cuts chunks until ctx is done. ExtractChunk returning nil just
// means waiting for the next tick.
func (r *implRecorder) capture(ctx context.Context, log logger.Logger, session *meeting.Session, p pipeline.Pipeline) {
	interval := min(r.opts.ChunkDuration, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				chunk := r.deps.Mixer.ExtractChunk(r.opts.ChunkDuration)
				if chunk == nil {
					break
				}
				r.handoff(ctx, log, session, p, chunk)
			}
		}
	}
}

// handoff writes the chunk artifact and enqueues it. A full queue drops
// the newest chunk. Samples the mixer overwrote since the previous chunk
// are reported against this one.
func (r *implRecorder) handoff(ctx context.Context, log logger.Logger, session *meeting.Session, p pipeline.Pipeline, chunk *meeting.AudioChunk) {
	id := strconv.Itoa(chunk.Seq)
	chunk.Path = filepath.Join(r.opts.TempDir, fmt.Sprintf("%s_chunk_%04d.wav", session.ID, chunk.Seq))

	if lost := r.deps.Mixer.Overruns() - session.Overruns(); lost > 0 {
		session.AddOverruns(lost)
		r.deps.Sink.Report(ctx, failure.Failure{
			Unit: "capture",
			ID:   id,
			Kind: failure.KindData,
			Err:  fmt.Errorf("%w: %d samples overwritten before chunk %d was cut", failure.ErrData, lost, chunk.Seq),
		})
	}

	if err := audio.WriteWAV(chunk.Path, chunk.Samples, r.opts.SampleRate); err != nil {
		r.deps.Sink.Report(ctx, failure.Failure{Unit: "chunk", ID: id, Kind: failure.KindData, Err: err})
		_ = os.Remove(chunk.Path)
		return
	}
	chunk.Samples = nil

	if err := p.Enqueue(chunk); err != nil {
		_ = os.Remove(chunk.Path)
		r.deps.Sink.Report(ctx, failure.Failure{
			Unit: "chunk",
			ID:   id,
			Kind: failure.KindData,
			Err:  fmt.Errorf("%w: chunk dropped: %v", failure.ErrData, err),
		})
		return
	}
	log.Debug(ctx, "Chunk %d queued (%v)", chunk.Seq, chunk.Duration.Round(time.Millisecond))
}

func (r *implRecorder) finish(ctx context.Context, log logger.Logger, session *meeting.Session) {
	session.EndedAt = r.now()

	result := r.deps.Aggregator.Aggregate(ctx, session.SummaryTexts(), session.Transcript())
	session.SetFinalSummary(result.Summary)
	session.SetStatus(meeting.StatusAggregated)
	log.Info(ctx, "Session aggregated from %s (%d chunks, %d dropped)", result.Source, len(session.Summaries()), result.Dropped)
	if n := session.Overruns(); n > 0 {
		log.Warn(ctx, "Capture fell behind: %d samples overwritten", n)
	}

	if transcript := session.Transcript(); transcript != "" {
		r.appendBlock(ctx, session, "transcript", "### Transcript\n"+transcript)
	}
	final := fmt.Sprintf("%s\n%s\n%s", docstore.MeetingCompleteMarker, docstore.SummaryHeading, result.Summary)
	r.appendBlock(ctx, session, "final", final)

	r.markProcessed(ctx, log)

	if r.opts.MinutesDir != "" {
		path := filepath.Join(r.opts.MinutesDir, session.StartedAt.Format("2006-01-02_1504")+"_"+session.ID+".docx")
		err := docstore.ExportMinutes(path, docstore.Minutes{
			Title:      session.Title,
			Subtitle:   fmt.Sprintf("%s · %s", session.StartedAt.Format("2006-01-02 15:04"), session.EndedAt.Sub(session.StartedAt).Round(time.Second)),
			Summary:    result.Summary,
			Transcript: session.Transcript(),
		})
		if err != nil {
			r.deps.Sink.Report(ctx, failure.Failure{Unit: "minutes", ID: session.ID, Kind: failure.KindTransient, Err: err})
		} else {
			log.Info(ctx, "Minutes exported: %s", path)
		}
	}

	session.SetStatus(meeting.StatusDispatched)
	log.Info(ctx, "Session %s complete", session.ID)
}

func (r *implRecorder) appendBlock(ctx context.Context, session *meeting.Session, what, text string) {
	policy := r.opts.Pipeline.Retry
	timeout := r.opts.Pipeline.AppendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	err := policy.Do(ctx, func(ctx context.Context) error {
		actx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return r.deps.Store.AppendBlock(actx, r.opts.DocRef, text)
	})
	if err != nil {
		r.deps.Sink.Report(ctx, failure.Failure{Unit: "append", ID: session.ID + "/" + what, Kind: failure.Classify(err), Err: err})
	}
}

// markProcessed records the finished session's fingerprint so a poller
// sharing the state store skips content this recorder already summarized.
func (r *implRecorder) markProcessed(ctx context.Context, log logger.Logger) {
	if r.deps.Processed == nil {
		return
	}

	content, found, err := r.deps.Store.FetchLatestBlock(ctx, r.opts.DocRef)
	if err != nil || !found {
		if err == nil {
			err = errors.New("session document is empty")
		}
		log.Warn(ctx, "Cannot fingerprint finished session: %v", err)
		return
	}

	fp := poller.Fingerprint(content)
	if err := r.deps.Processed.Save(poller.Record{Fingerprint: fp, SeenAt: r.now()}); err != nil {
		log.Warn(ctx, "Failed to record session fingerprint %s: %v", fp, err)
		return
	}
	log.Debug(ctx, "Session fingerprint %s recorded", fp)
}
