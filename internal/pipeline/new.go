package pipeline

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/docstore"
	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-twin/internal/transcriber"
)

// Options bound the queue and every collaborator call.
type Options struct {
	QueueSize         int
	TranscribeTimeout time.Duration
	SummarizeTimeout  time.Duration
	AppendTimeout     time.Duration
	Retry             retry.Policy
}

// Deps are the collaborators a pipeline calls for each chunk.
type Deps struct {
	Transcriber transcriber.Transcriber
	Resolver    entity.Resolver
	Summarizer  summarizer.Summarizer
	Store       docstore.Store
	Sink        failure.Sink
	Logger      logger.Logger
}

type implPipeline struct {
	deps    Deps
	opts    Options
	session *meeting.Session
	docRef  string

	mu     sync.Mutex
	queue  chan *meeting.AudioChunk
	closed bool

	statsMu sync.Mutex
	stats   Stats
}

// New creates a pipeline serving one session. Blocks are appended to docRef.
func New(session *meeting.Session, docRef string, deps Deps, opts Options) Pipeline {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.TranscribeTimeout <= 0 {
		opts.TranscribeTimeout = 2 * time.Minute
	}
	if opts.SummarizeTimeout <= 0 {
		opts.SummarizeTimeout = time.Minute
	}
	if opts.AppendTimeout <= 0 {
		opts.AppendTimeout = 15 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default()
	}

	return &implPipeline{
		deps:    deps,
		opts:    opts,
		session: session,
		docRef:  docRef,
		queue:   make(chan *meeting.AudioChunk, opts.QueueSize),
	}
}
