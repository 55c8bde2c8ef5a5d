package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
)

func (m *implMixer) StartCapture(ctx context.Context, primary, secondary Device) ([]Stream, error) {
	m.primary.Reset()
	m.secondary.Reset()

	ps, err := primary.Open(ctx, m.primary.Write)
	if err != nil {
		if !errors.Is(err, failure.ErrDevice) {
			err = fmt.Errorf("%w: %v", failure.ErrDevice, err)
		}
		return nil, fmt.Errorf("open primary device %s: %w", primary.Name(), err)
	}
	streams := []Stream{ps}
	m.logger.Info(ctx, "Capturing primary device: %s", primary.Name())

	if secondary == nil {
		m.logger.Info(ctx, "No secondary device configured, capturing primary only")
		return streams, nil
	}

	ss, err := secondary.Open(ctx, m.secondary.Write)
	if err != nil {
		m.sink.Report(ctx, failure.Failure{
			Unit: "capture",
			ID:   secondary.Name(),
			Kind: failure.KindDevice,
			Err:  err,
		})
		m.logger.Warn(ctx, "Secondary device %s unavailable, continuing with primary only", secondary.Name())
		return streams, nil
	}

	m.mu.Lock()
	m.secondaryActive = true
	m.mu.Unlock()

	m.logger.Info(ctx, "Capturing secondary device: %s", secondary.Name())
	return append(streams, ss), nil
}

func (m *implMixer) ExtractChunk(d time.Duration) *meeting.AudioChunk {
	need := samplesFor(d, m.opts.SampleRate)
	if need <= 0 || m.primary.Len() < need {
		return nil
	}
	return m.extract(need)
}

func (m *implMixer) Flush() *meeting.AudioChunk {
	available := m.primary.Len()
	if available < samplesFor(minFlush, m.opts.SampleRate) {
		return nil
	}
	return m.extract(available)
}

func (m *implMixer) extract(need int) *meeting.AudioChunk {
	primary := make([]float32, need)
	n := m.primary.Read(primary)
	primary = primary[:n]

	m.mu.Lock()
	defer m.mu.Unlock()

	var secondary []float32
	if m.secondaryActive {
		if m.secondary.Len() > 0 {
			secondary = make([]float32, need)
			secondary = secondary[:m.secondary.Read(secondary)]
		}
		// an open device that delivers nothing counts as silent
		m.checkSilence(secondary)
	}

	mixed := Mix(primary, secondary)
	m.seq++

	duration := time.Duration(float64(len(mixed)) / float64(m.opts.SampleRate) * float64(time.Second))
	end := m.now()
	return &meeting.AudioChunk{
		Seq:      m.seq,
		Samples:  mixed,
		Start:    end.Add(-duration),
		End:      end,
		Duration: duration,
	}
}

// checkSilence warns once per run of silent secondary chunks. Caller holds mu.
func (m *implMixer) checkSilence(secondary []float32) {
	if Peak(secondary) >= m.opts.SilenceThreshold {
		m.silentStreak = 0
		m.silenceWarned = false
		return
	}

	m.silentStreak++
	if m.silentStreak >= m.opts.SilenceChunks && !m.silenceWarned {
		m.silenceWarned = true
		m.logger.Warn(context.Background(),
			"Secondary device silent for %d consecutive chunks, check the loopback routing",
			m.silentStreak)
	}
}

func (m *implMixer) StopCapture(streams []Stream) error {
	var errs []error
	for i, s := range streams {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream %d (%s): %w", i, s.Name(), err))
		}
	}

	m.mu.Lock()
	m.secondaryActive = false
	m.mu.Unlock()

	return errors.Join(errs...)
}

func (m *implMixer) Overruns() int {
	return m.primary.Overruns() + m.secondary.Overruns()
}
