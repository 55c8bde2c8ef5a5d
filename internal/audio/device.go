package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/pkg/executor"
)

const (
	frameSamples = 1024
	openTimeout  = 2 * time.Second
)

// FFmpegDevice captures one input through an ffmpeg subprocess that
// writes raw little-endian float32 mono samples to stdout.
type FFmpegDevice struct {
	Executor   executor.Executor
	Logger     logger.Logger
	Binary     string // ffmpeg
	Format     string // avfoundation, pulse, dshow
	Input      string // e.g. ":0", ":BlackHole 2ch", "default"
	SampleRate int
}

func (d *FFmpegDevice) Name() string {
	return d.Format + ":" + d.Input
}

func (d *FFmpegDevice) args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", d.Format,
		"-i", d.Input,
		"-ac", "1",
		"-ar", strconv.Itoa(d.SampleRate),
		"-f", "f32le",
		"-",
	}
}

// Open starts ffmpeg and waits until it either produces audio, exits, or
// stays quiet for openTimeout. A process that exits before producing
// anything is reported as a device error.
func (d *FFmpegDevice) Open(ctx context.Context, onSamples func([]float32)) (Stream, error) {
	proc, err := d.Executor.Stream(ctx, d.Binary, d.args()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", failure.ErrDevice, d.Name(), err)
	}

	s := &ffmpegStream{
		name:  d.Name(),
		proc:  proc,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.pump(onSamples)

	select {
	case <-s.ready:
	case <-s.done:
		return nil, fmt.Errorf("%w: %s exited before producing audio: %v", failure.ErrDevice, d.Name(), s.err)
	case <-time.After(openTimeout):
		if d.Logger != nil {
			d.Logger.Warn(ctx, "Device %s produced no audio in %v, keeping it open", d.Name(), openTimeout)
		}
	case <-ctx.Done():
		_ = s.Close()
		return nil, ctx.Err()
	}

	return s, nil
}

type ffmpegStream struct {
	name string
	proc executor.Process

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}
	err       error

	closeOnce sync.Once
	closeErr  error
}

func (s *ffmpegStream) Name() string {
	return s.name
}

// pump is the device callback thread: it reuses one byte and one sample
// buffer for the lifetime of the stream.
func (s *ffmpegStream) pump(onSamples func([]float32)) {
	defer close(s.done)

	raw := make([]byte, frameSamples*4)
	samples := make([]float32, frameSamples)
	out := s.proc.Stdout()

	for {
		n, err := io.ReadFull(out, raw)
		if count := n / 4; count > 0 {
			for i := 0; i < count; i++ {
				samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
			}
			s.readyOnce.Do(func() { close(s.ready) })
			onSamples(samples[:count])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.err = err
			} else if werr := s.proc.Wait(); werr != nil {
				s.err = werr
			}
			return
		}
	}
}

func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.proc.Stop()
	})
	return s.closeErr
}
