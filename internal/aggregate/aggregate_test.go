package aggregate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
)

type fakeSummarizer struct {
	err         error
	calls       int
	aggregated  [][]string
	transcripts []string
}

func (f *fakeSummarizer) Summarize(context.Context, string, entity.Resolution) (string, error) {
	return "", nil
}

func (f *fakeSummarizer) Aggregate(_ context.Context, summaries []string) (string, error) {
	f.calls++
	f.aggregated = append(f.aggregated, summaries)
	if f.err != nil {
		return "", f.err
	}
	return "final from chunks", nil
}

func (f *fakeSummarizer) SummarizeTranscript(_ context.Context, transcript string) (string, error) {
	f.calls++
	f.transcripts = append(f.transcripts, transcript)
	if f.err != nil {
		return "", f.err
	}
	return "final from transcript", nil
}

func (f *fakeSummarizer) ActionItems(context.Context, string) ([]summarizer.ActionItem, error) {
	return nil, nil
}

func newTestAggregator(s *fakeSummarizer, maxChars int) (Aggregator, failure.Sink) {
	sink := failure.NewSink(logger.Nop())
	policy := retry.Policy{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	return New(s, sink, logger.Nop(), policy, time.Second, maxChars), sink
}

func TestAggregateChunks(t *testing.T) {
	s := &fakeSummarizer{}
	a, _ := newTestAggregator(s, 1000)

	res := a.Aggregate(context.Background(), []string{"a", "b", "c"}, "ignored")

	assert.True(t, res.OK())
	assert.Equal(t, "final from chunks", res.Summary)
	assert.Equal(t, SourceChunks, res.Source)
	assert.Equal(t, 0, res.Dropped)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, s.aggregated)
	assert.Empty(t, s.transcripts)
}

func TestAggregateEmptyFallsBackToTranscript(t *testing.T) {
	s := &fakeSummarizer{}
	a, _ := newTestAggregator(s, 1000)

	res := a.Aggregate(context.Background(), nil, "  сырой текст встречи  ")

	assert.True(t, res.OK())
	assert.Equal(t, "final from transcript", res.Summary)
	assert.Equal(t, SourceTranscript, res.Source)
	assert.Equal(t, []string{"сырой текст встречи"}, s.transcripts)
}

func TestAggregateEmptyWithoutTranscript(t *testing.T) {
	s := &fakeSummarizer{}
	a, _ := newTestAggregator(s, 1000)

	res := a.Aggregate(context.Background(), []string{}, "")

	assert.False(t, res.OK())
	assert.Equal(t, Unavailable, res.Summary)
	assert.Equal(t, SourceNone, res.Source)
	assert.Zero(t, s.calls)
}

func TestAggregateFailureReturnsSentinel(t *testing.T) {
	s := &fakeSummarizer{err: errors.New("model offline")}
	a, sink := newTestAggregator(s, 1000)

	res := a.Aggregate(context.Background(), []string{"a"}, "")

	assert.Equal(t, Unavailable, res.Summary)
	assert.Equal(t, 2, s.calls, "retried per policy")
	assert.Equal(t, 1, sink.Counts()[failure.KindTransient])

	res = a.Aggregate(context.Background(), nil, "transcript")
	assert.Equal(t, Unavailable, res.Summary)
}

func TestAggregateDropsOldestChunksFirst(t *testing.T) {
	s := &fakeSummarizer{}
	// each summary costs 10 + overhead
	a, _ := newTestAggregator(s, 2*(10+perChunkOverhead))

	summaries := []string{
		strings.Repeat("1", 10),
		strings.Repeat("2", 10),
		strings.Repeat("3", 10),
		strings.Repeat("4", 10),
	}
	res := a.Aggregate(context.Background(), summaries, "")

	assert.Equal(t, 2, res.Dropped)
	require.Len(t, s.aggregated, 1)
	assert.Equal(t, summaries[2:], s.aggregated[0])
}

func TestFitNewestOversizedSingleSummary(t *testing.T) {
	kept, dropped := fitNewest([]string{"old", "abcdefghij"}, 4)

	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"ghij"}, kept)
}

func TestAggregateTranscriptKeepsTail(t *testing.T) {
	s := &fakeSummarizer{}
	a, _ := newTestAggregator(s, 5)

	a.Aggregate(context.Background(), nil, "начало-конец")

	require.Len(t, s.transcripts, 1)
	assert.Equal(t, "конец", s.transcripts[0])
}
