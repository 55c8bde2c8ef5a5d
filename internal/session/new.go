package session

import (
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/aggregate"
	"github.com/nguyentantai21042004/meeting-twin/internal/audio"
	"github.com/nguyentantai21042004/meeting-twin/internal/docstore"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
	"github.com/nguyentantai21042004/meeting-twin/internal/watcher"
)

// Deps are the collaborators of a Recorder.
type Deps struct {
	Mixer      audio.Mixer
	Primary    audio.Device
	Secondary  audio.Device // optional
	Pipeline   pipeline.Deps
	Aggregator aggregate.Aggregator
	Store      docstore.Store
	Sink       failure.Sink
	Logger     logger.Logger
	// Flag is raised while capturing so pollers skip live sessions.
	Flag *watcher.Flag
	// Processed, when set, receives the fingerprint of the finished
	// session so a poller sharing the store does not analyze it again.
	Processed poller.StateStore
}

// Options configures a Recorder.
type Options struct {
	Title         string
	DocRef        string
	ChunkDuration time.Duration
	SampleRate    int
	TempDir       string
	MinutesDir    string // empty disables docx export
	Pipeline      pipeline.Options
}

type implRecorder struct {
	deps Deps
	opts Options
	now  func() time.Time
}

// New creates a Recorder.
func New(deps Deps, opts Options) Recorder {
	if opts.ChunkDuration <= 0 {
		opts.ChunkDuration = 30 * time.Second
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.Title == "" {
		opts.Title = "Meeting"
	}

	return &implRecorder{
		deps: deps,
		opts: opts,
		now:  time.Now,
	}
}
