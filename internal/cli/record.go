package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-twin/internal/audio"
	"github.com/nguyentantai21042004/meeting-twin/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
	"github.com/nguyentantai21042004/meeting-twin/internal/session"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-twin/internal/transcriber"
	"github.com/nguyentantai21042004/meeting-twin/internal/watcher"
	"github.com/nguyentantai21042004/meeting-twin/pkg/executor"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture a live meeting and summarize it chunk by chunk",
		Long: "Capture microphone and system audio, transcribe and summarize every chunk into the " +
			"meeting document, and write the final summary when the recording stops. " +
			"Stop with Ctrl+C or `twin stop`.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd.Context(), deps, title)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "meeting title")

	return cmd
}

func runRecord(ctx context.Context, deps *Dependencies, title string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := loadApp(ctx, deps.ConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := watcher.New(cfg.Paths.Control, func(ctx context.Context, flagPath string) error {
		cancel()
		return nil
	}, a.log)
	if err != nil {
		return fmt.Errorf("creating control watcher: %w", err)
	}
	defer w.Stop()
	go func() {
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error(ctx, "Control watcher error: %v", err)
		}
	}()
	a.refreshEntities(ctx)

	s, err := summarizer.New(cfg.LLM, a.log)
	if err != nil {
		return fmt.Errorf("creating summarizer: %w", err)
	}

	exec := executor.New()
	primary := &audio.FFmpegDevice{
		Executor:   exec,
		Logger:     a.log,
		Binary:     cfg.Audio.FFmpegPath,
		Format:     cfg.Audio.InputFormat,
		Input:      cfg.Audio.PrimaryDevice,
		SampleRate: cfg.Audio.SampleRate,
	}
	var secondary audio.Device
	if cfg.Audio.SecondaryDevice != "" {
		secondary = &audio.FFmpegDevice{
			Executor:   exec,
			Logger:     a.log,
			Binary:     cfg.Audio.FFmpegPath,
			Format:     cfg.Audio.InputFormat,
			Input:      cfg.Audio.SecondaryDevice,
			SampleRate: cfg.Audio.SampleRate,
		}
	}

	mixer := audio.New(a.log, a.sink, audio.Options{
		SampleRate:       cfg.Audio.SampleRate,
		BufferDuration:   time.Duration(cfg.Audio.BufferSeconds) * time.Second,
		SilenceThreshold: cfg.Audio.SilenceThreshold,
		SilenceChunks:    cfg.Audio.SilenceChunks,
	})

	var processed poller.StateStore
	if st, persistent, err := a.stateStore(); err != nil {
		return err
	} else if persistent {
		processed = st
	}

	rec := session.New(session.Deps{
		Mixer:     mixer,
		Primary:   primary,
		Secondary: secondary,
		Pipeline: pipeline.Deps{
			Transcriber: transcriber.New(cfg.Whisper, exec, a.log),
			Resolver:    a.registry,
			Summarizer:  s,
			Store:       a.store,
			Sink:        a.sink,
			Logger:      a.log,
		},
		Aggregator: a.aggregator(s),
		Store:      a.store,
		Sink:       a.sink,
		Logger:     a.log,
		Flag:       watcher.NewRecordingFlag(cfg.Paths.Control),
		Processed:  processed,
	}, session.Options{
		Title:         title,
		DocRef:        cfg.Poller.SourceRef,
		ChunkDuration: cfg.ChunkDuration(),
		SampleRate:    cfg.Audio.SampleRate,
		TempDir:       cfg.Pipeline.TempDir,
		MinutesDir:    cfg.Paths.Minutes,
		Pipeline: pipeline.Options{
			QueueSize:         cfg.Pipeline.QueueSize,
			TranscribeTimeout: cfg.Pipeline.TranscribeTimeout,
			SummarizeTimeout:  cfg.Pipeline.SummarizeTimeout,
			AppendTimeout:     cfg.Pipeline.AppendTimeout,
			Retry:             cfg.Retry,
		},
	})

	a.banner(ctx, "Meeting Twin: recording",
		fmt.Sprintf("Primary: %s", primary.Name()),
		fmt.Sprintf("Secondary: %s", deviceName(secondary)),
		fmt.Sprintf("Chunk: %v, LLM: %s/%s", cfg.ChunkDuration(), cfg.LLM.Provider, cfg.LLM.Model),
		fmt.Sprintf("Document: %s", cfg.Poller.SourceRef),
		"Press Ctrl+C or run `twin stop` to finish",
	)

	sess, err := rec.Run(ctx)
	if err != nil {
		return fmt.Errorf("recording: %w", err)
	}

	out := newFormatter(os.Stdout)
	out.SessionFinished(sess, a.sink.Counts())
	return nil
}

func deviceName(d audio.Device) string {
	if d == nil {
		return "(none)"
	}
	return d.Name()
}
