package poller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

// ErrRunning is returned by Start when the loop is already running.
var ErrRunning = errors.New("poller already running")

func (p *implPoller) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrRunning
	}
	p.running = true
	p.loopCancel = cancel
	p.loopDone = make(chan struct{})
	done := p.loopDone
	p.status.Running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.status.Running = false
		p.mu.Unlock()
		close(done)
	}()

	p.deps.Logger.Info(ctx, "Poller started: %s every %v", p.opts.SourceRef, p.opts.Interval)

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.deps.Logger.Info(ctx, "Poller stopped")
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

func (p *implPoller) Stop() error {
	p.mu.Lock()
	cancel, done := p.loopCancel, p.loopDone
	p.mu.Unlock()

	deadline := time.NewTimer(p.opts.GracePeriod)
	defer deadline.Stop()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-deadline.C:
			p.dispatchCancel()
			return fmt.Errorf("poller tick did not finish within %v", p.opts.GracePeriod)
		}
	}

	finished := make(chan struct{})
	go func() {
		p.dispatches.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.dispatchCancel()
		return nil
	case <-deadline.C:
		p.dispatchCancel()
		p.deps.Logger.Warn(context.Background(), "Abandoning in-flight dispatches after %v", p.opts.GracePeriod)
		return nil
	}
}

// Wait blocks until every dispatched analysis has returned.
func (p *implPoller) Wait() {
	p.dispatches.Wait()
}

func (p *implPoller) Tick(ctx context.Context) State {
	p.mu.Lock()
	p.status.Ticks++
	tick := p.status.Ticks
	p.status.State = StatePolling
	p.status.LastTick = p.now()
	p.mu.Unlock()

	state, reason := p.poll(ctx, tick)

	p.mu.Lock()
	p.status.State = state
	p.status.Reason = reason
	p.mu.Unlock()

	p.deps.Logger.Debug(ctx, "Tick %d: %s %s", tick, state, reason)
	return state
}

func (p *implPoller) poll(ctx context.Context, tick int) (State, string) {
	if p.opts.Active != nil && p.opts.Active() {
		return StateSkipped, "live capture session active"
	}

	res, err := retry.Value(ctx, p.opts.Retry, func(ctx context.Context) (fetched, error) {
		fctx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
		c, ok, err := p.deps.Fetcher.FetchLatestBlock(fctx, p.opts.SourceRef)
		return fetched{c, ok}, err
	})
	if err != nil {
		p.deps.Sink.Report(ctx, failure.Failure{
			Unit: "tick",
			ID:   strconv.Itoa(tick),
			Kind: failure.Classify(err),
			Err:  err,
		})
		return StateSkipped, "fetch failed"
	}
	if !res.found {
		return StateNoChange, "no content"
	}

	content := res.content
	fp := p.opts.Fingerprint(content)

	if ok, why := complete(content, p.opts.CompletionMarkers); !ok {
		return StateSkipped, why + " (" + fp + ")"
	}

	p.claim.Lock()
	defer p.claim.Unlock()

	if last, ok := p.deps.State.Last(); ok && last.Fingerprint == fp {
		return StateNoChange, fp
	}

	// record before dispatch so a duplicate tick or crash cannot
	// process the same content twice
	if err := p.MarkProcessed(fp); err != nil {
		p.deps.Sink.Report(ctx, failure.Failure{Unit: "tick", ID: fp, Kind: failure.KindTransient, Err: err})
	}

	p.dispatch(content, fp)
	return StateNewContent, fp
}

func (p *implPoller) MarkProcessed(fingerprint string) error {
	rec := Record{Fingerprint: fingerprint, SeenAt: p.now()}
	err := p.deps.State.Save(rec)

	p.mu.Lock()
	p.status.LastFingerprint = rec.Fingerprint
	p.status.LastSeen = rec.SeenAt
	p.mu.Unlock()
	return err
}

func (p *implPoller) dispatch(content, fp string) {
	p.mu.Lock()
	p.status.Dispatched++
	p.mu.Unlock()

	log := p.deps.Logger.With("fingerprint", fp)
	log.Info(p.dispatchCtx, "New content %s, dispatching analysis", fp)

	p.dispatches.Add(1)
	go func() {
		defer p.dispatches.Done()

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: dispatch panicked: %v", failure.ErrInvariant, r)
				}
			}()
			return p.deps.Dispatcher.Dispatch(p.dispatchCtx, content, fp)
		}()

		if err != nil {
			log.Error(p.dispatchCtx, "Analysis for %s failed: %v", fp, err)
			p.deps.Sink.Report(p.dispatchCtx, failure.Failure{
				Unit: "dispatch",
				ID:   fp,
				Kind: failure.Classify(err),
				Err:  err,
			})
		}
	}()
}

func (p *implPoller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

type fetched struct {
	content string
	found   bool
}
