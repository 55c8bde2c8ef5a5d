package meeting

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AudioChunk is one fixed-duration slice of mixed mono samples.
// Path is set once the samples have been written to a temporary WAV
// artifact; the pipeline deletes it after processing.
type AudioChunk struct {
	Seq      int
	Samples  []float32
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Path     string
}

// TranscribedChunk is the outcome of the transcription stage.
type TranscribedChunk struct {
	Chunk   *AudioChunk
	Text    string
	OK      bool
	Latency time.Duration
}

// ChunkSummary is the per-chunk summary with the entities it mentions.
type ChunkSummary struct {
	Seq      int
	Text     string
	Summary  string
	Entities []string
	Skipped  bool
	Latency  time.Duration
}

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusCapturing   Status = "capturing"
	StatusSummarizing Status = "summarizing"
	StatusAggregated  Status = "aggregated"
	StatusDispatched  Status = "dispatched"
)

// Session collects chunk summaries in submission order.
type Session struct {
	ID        string
	Title     string
	StartedAt time.Time
	EndedAt   time.Time

	mu           sync.Mutex
	status       Status
	summaries    []ChunkSummary
	finalSummary string
	overruns     int
}

// NewSession creates a capturing session.
func NewSession(title string, now time.Time) *Session {
	return &Session{
		ID:        uuid.New().String()[:8], // Short ID for document names
		Title:     title,
		StartedAt: now,
		status:    StatusCapturing,
	}
}

func (s *Session) Add(cs ChunkSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, cs)
}

// Summaries returns a copy of the recorded chunk summaries in order.
func (s *Session) Summaries() []ChunkSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChunkSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// SummaryTexts returns the summaries of non-skipped chunks in order.
func (s *Session) SummaryTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, cs := range s.summaries {
		if !cs.Skipped && cs.Summary != "" {
			out = append(out, cs.Summary)
		}
	}
	return out
}

// Transcript joins the raw text of every transcribed chunk.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var parts []string
	for _, cs := range s.summaries {
		if !cs.Skipped && cs.Text != "" {
			parts = append(parts, cs.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (s *Session) SetStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) SetFinalSummary(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalSummary = text
}

func (s *Session) FinalSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalSummary
}

// AddOverruns records samples the capture buffers dropped before they
// were cut into a chunk.
func (s *Session) AddOverruns(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overruns += n
}

// Overruns returns the total samples dropped during capture.
func (s *Session) Overruns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overruns
}
