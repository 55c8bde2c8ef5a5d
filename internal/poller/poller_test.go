package poller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
)

const marker = "[MEETING_COMPLETE]"

type fakeFetcher struct {
	mu      sync.Mutex
	content string
	found   bool
	err     error
	calls   int
}

func (f *fakeFetcher) set(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content, f.found = content, true
}

func (f *fakeFetcher) FetchLatestBlock(context.Context, string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.content, f.found, f.err
}

type recorder struct {
	mu           sync.Mutex
	fingerprints []string
	err          error
}

func (r *recorder) Dispatch(_ context.Context, _ string, fp string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fingerprints = append(r.fingerprints, fp)
	return r.err
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fingerprints...)
}

func newTestPoller(fetcher Fetcher, d Dispatcher, opts Options) (Poller, failure.Sink) {
	sink := failure.NewSink(logger.Nop())
	opts.SourceRef = "meetings"
	opts.CompletionMarkers = []string{marker, "## Meeting summary"}
	opts.Retry = retry.None()
	if opts.GracePeriod == 0 {
		opts.GracePeriod = time.Second
	}
	return New(Deps{
		Fetcher:    fetcher,
		Dispatcher: d,
		Sink:       sink,
		Logger:     logger.Nop(),
	}, opts), sink
}

func TestSameFingerprintDispatchesOnce(t *testing.T) {
	f := &fakeFetcher{}
	d := &recorder{}
	p, _ := newTestPoller(f, d, Options{})
	ctx := context.Background()

	first := marker + " standup: обсудили Phoenix"
	f.set(first)
	assert.Equal(t, StateNewContent, p.Tick(ctx))
	assert.Equal(t, StateNoChange, p.Tick(ctx))

	second := marker + " retro: обсудили OKR"
	f.set(second)
	assert.Equal(t, StateNewContent, p.Tick(ctx))
	assert.Equal(t, StateNoChange, p.Tick(ctx))

	p.Wait()
	assert.Equal(t, []string{Fingerprint(first), Fingerprint(second)}, d.got())
	assert.Equal(t, 2, p.Status().Dispatched)
}

func TestProcessedFingerprintScenario(t *testing.T) {
	old := marker + " old meeting content"
	f := &fakeFetcher{}
	d := &recorder{}
	p, _ := newTestPoller(f, d, Options{
		Fingerprint: func(content string) string {
			if content == old {
				return "deadbeef"
			}
			return Fingerprint(content)
		},
	})
	ctx := context.Background()

	require.NoError(t, p.MarkProcessed("deadbeef"))

	f.set(old)
	assert.Equal(t, StateNoChange, p.Tick(ctx))
	p.Wait()
	assert.Empty(t, d.got())

	changed := marker + " new meeting content"
	f.set(changed)
	assert.Equal(t, StateNewContent, p.Tick(ctx))
	p.Wait()

	want := Fingerprint(changed)
	assert.Equal(t, []string{want}, d.got())
	assert.Equal(t, want, p.Status().LastFingerprint)
}

func TestGating(t *testing.T) {
	tests := []struct {
		name    string
		content string
		found   bool
		active  bool
		want    State
	}{
		{"live session", marker + " finished meeting", true, true, StateSkipped},
		{"nothing fetched", "", false, false, StateNoChange},
		{"in progress", "[chunk 3] still talking about the release", true, false, StateSkipped},
		{"too short", marker[:9], true, false, StateSkipped},
		{"summary heading", "## Meeting summary\nwe agreed on dates", true, false, StateNewContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{content: tt.content, found: tt.found}
			d := &recorder{}
			p, _ := newTestPoller(f, d, Options{Active: func() bool { return tt.active }})

			assert.Equal(t, tt.want, p.Tick(context.Background()))
			p.Wait()

			if tt.want == StateNewContent {
				assert.Len(t, d.got(), 1)
			} else {
				assert.Empty(t, d.got())
				assert.Empty(t, p.Status().LastFingerprint, "skipped content must not be recorded")
			}
			if tt.active {
				assert.Zero(t, f.calls, "no fetch while a session is live")
			}
		})
	}
}

func TestIncompleteThenCompleteDispatches(t *testing.T) {
	f := &fakeFetcher{}
	d := &recorder{}
	p, _ := newTestPoller(f, d, Options{})
	ctx := context.Background()

	f.set("[chunk 1] first words of the meeting")
	assert.Equal(t, StateSkipped, p.Tick(ctx))

	f.set("[chunk 1] first words of the meeting\n" + marker)
	assert.Equal(t, StateNewContent, p.Tick(ctx))
	p.Wait()
	assert.Len(t, d.got(), 1)
}

func TestFetchErrorSkipsTick(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("%w: timeout", failure.ErrTransientUpstream)}
	p, sink := newTestPoller(f, &recorder{}, Options{})

	assert.Equal(t, StateSkipped, p.Tick(context.Background()))
	assert.Equal(t, 1, sink.Counts()[failure.KindTransient])
	assert.Equal(t, "fetch failed", p.Status().Reason)
}

func TestDispatchFailureIsReportedNotRetried(t *testing.T) {
	f := &fakeFetcher{}
	d := &recorder{err: errors.New("analysis exploded")}
	p, sink := newTestPoller(f, d, Options{})
	ctx := context.Background()

	f.set(marker + " meeting that fails analysis")
	assert.Equal(t, StateNewContent, p.Tick(ctx))
	p.Wait()
	assert.Equal(t, 1, sink.Counts()[failure.KindTransient])

	// the fingerprint stays processed
	assert.Equal(t, StateNoChange, p.Tick(ctx))
	p.Wait()
	assert.Len(t, d.got(), 1)
}

func TestDispatchPanicIsContained(t *testing.T) {
	f := &fakeFetcher{}
	f.set(marker + " meeting that panics")
	d := DispatchFunc(func(context.Context, string, string) error { panic("boom") })
	p, sink := newTestPoller(f, d, Options{})

	assert.Equal(t, StateNewContent, p.Tick(context.Background()))
	p.Wait()
	assert.Equal(t, 1, sink.Counts()[failure.KindInvariant])
}

func TestFileStorePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "poller.yaml")
	content := marker + " persisted meeting"
	ctx := context.Background()

	store, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	f := &fakeFetcher{}
	f.set(content)
	d := &recorder{}
	p := New(Deps{Fetcher: f, Dispatcher: d, State: store, Sink: failure.NewSink(logger.Nop()), Logger: logger.Nop()},
		Options{CompletionMarkers: []string{marker}, Retry: retry.None()})
	assert.Equal(t, StateNewContent, p.Tick(ctx))
	p.Wait()

	reloaded, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	rec, ok := reloaded.Last()
	require.True(t, ok)
	assert.Equal(t, Fingerprint(content), rec.Fingerprint)

	restarted := New(Deps{Fetcher: f, Dispatcher: d, State: reloaded, Sink: failure.NewSink(logger.Nop()), Logger: logger.Nop()},
		Options{CompletionMarkers: []string{marker}, Retry: retry.None()})
	assert.Equal(t, StateNoChange, restarted.Tick(ctx))
	restarted.Wait()
	assert.Len(t, d.got(), 1)
}

func TestFileStoreSeesOtherWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poller.yaml")

	reader, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	_, ok := reader.Last()
	assert.False(t, ok)

	writer, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, writer.Save(Record{Fingerprint: "first", SeenAt: time.Now()}))

	rec, ok := reader.Last()
	require.True(t, ok)
	assert.Equal(t, "first", rec.Fingerprint)

	require.NoError(t, writer.Save(Record{Fingerprint: "second", SeenAt: time.Now()}))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	rec, ok = reader.Last()
	require.True(t, ok)
	assert.Equal(t, "second", rec.Fingerprint)
}

func TestFileStoreLogsUnreadableVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poller.yaml")
	var text bytes.Buffer
	log := logger.NewWithWriters("info", &text, io.Discard)

	store, err := NewFileStore(path, log)
	require.NoError(t, err)
	require.NoError(t, store.Save(Record{Fingerprint: "good", SeenAt: time.Now()}))

	require.NoError(t, os.WriteFile(path, []byte("fingerprint: [unterminated"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	rec, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, "good", rec.Fingerprint)
	assert.Contains(t, text.String(), "parse poller state")

	_, _ = store.Last()
	assert.Equal(t, 1, strings.Count(text.String(), "parse poller state"))
}

// slowStore widens the gap between reading and saving the fingerprint.
type slowStore struct {
	*MemoryStore
}

func (s slowStore) Last() (Record, bool) {
	time.Sleep(20 * time.Millisecond)
	return s.MemoryStore.Last()
}

func TestConcurrentTicksDispatchOnce(t *testing.T) {
	f := &fakeFetcher{}
	f.set(marker + " shared meeting")
	d := &recorder{}
	p := New(Deps{Fetcher: f, Dispatcher: d, State: slowStore{NewMemoryStore()}, Sink: failure.NewSink(logger.Nop()), Logger: logger.Nop()},
		Options{SourceRef: "meetings", CompletionMarkers: []string{marker}, Retry: retry.None()})

	var wg sync.WaitGroup
	states := make([]State, 4)
	for i := range states {
		wg.Add(1)
		go func() {
			defer wg.Done()
			states[i] = p.Tick(context.Background())
		}()
	}
	wg.Wait()
	p.Wait()

	assert.Len(t, d.got(), 1)
	var fresh int
	for _, st := range states {
		if st == StateNewContent {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
}

func TestStartStop(t *testing.T) {
	f := &fakeFetcher{}
	p, _ := newTestPoller(f, &recorder{}, Options{Interval: 5 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return p.Status().Ticks >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, p.Status().Running)

	require.NoError(t, p.Stop())
	require.NoError(t, <-done)
	assert.False(t, p.Status().Running)
}

func TestStopAbandonsSlowDispatch(t *testing.T) {
	f := &fakeFetcher{}
	f.set(marker + " slow analysis")
	var cancelled atomic.Bool
	d := DispatchFunc(func(ctx context.Context, _, _ string) error {
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	p, _ := newTestPoller(f, d, Options{GracePeriod: 20 * time.Millisecond})

	assert.Equal(t, StateNewContent, p.Tick(context.Background()))

	start := time.Now()
	require.NoError(t, p.Stop())
	assert.Less(t, time.Since(start), time.Second)

	p.Wait()
	assert.True(t, cancelled.Load())
}
