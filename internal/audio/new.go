package audio

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

const minFlush = time.Second

// Options configures a Mixer.
type Options struct {
	SampleRate       int
	BufferDuration   time.Duration
	SilenceThreshold float32
	SilenceChunks    int
}

type implMixer struct {
	logger logger.Logger
	sink   failure.Sink
	opts   Options
	now    func() time.Time

	primary   *RingBuffer
	secondary *RingBuffer

	mu              sync.Mutex
	secondaryActive bool
	seq             int
	silentStreak    int
	silenceWarned   bool
}

// New creates a Mixer with preallocated buffers for both devices.
func New(log logger.Logger, sink failure.Sink, opts Options) Mixer {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.BufferDuration <= 0 {
		opts.BufferDuration = 2 * time.Minute
	}
	if opts.SilenceChunks <= 0 {
		opts.SilenceChunks = 3
	}

	capacity := samplesFor(opts.BufferDuration, opts.SampleRate)
	return &implMixer{
		logger:    log,
		sink:      sink,
		opts:      opts,
		now:       time.Now,
		primary:   NewRingBuffer(capacity),
		secondary: NewRingBuffer(capacity),
	}
}

func samplesFor(d time.Duration, rate int) int {
	return int(d.Seconds() * float64(rate))
}
