package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-twin/internal/analysis"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-twin/internal/watcher"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the meeting document and analyze each finished meeting once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), deps, once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single poll and wait for its analysis")

	return cmd
}

func runWatch(ctx context.Context, deps *Dependencies, once bool) error {
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

	s, err := summarizer.New(cfg.LLM, a.log)
	if err != nil {
		return fmt.Errorf("creating summarizer: %w", err)
	}

	state, _, err := a.stateStore()
	if err != nil {
		return err
	}

	w, err := watcher.New(cfg.Paths.Control, nil, a.log)
	if err != nil {
		return fmt.Errorf("creating control watcher: %w", err)
	}
	defer w.Stop()

	analyzer := analysis.New(a.registry, a.aggregator(s), s, a.store, a.sink, a.log, analysis.Options{
		DocRef:         cfg.Poller.AnalysisRef,
		MinutesDir:     cfg.Paths.Minutes,
		AppendTimeout:  cfg.Pipeline.AppendTimeout,
		ExtractTimeout: cfg.Pipeline.SummarizeTimeout,
		Retry:          cfg.Retry,
	})

	p := poller.New(poller.Deps{
		Fetcher:    a.store,
		Dispatcher: analyzer,
		State:      state,
		Sink:       a.sink,
		Logger:     a.log,
	}, poller.Options{
		SourceRef:         cfg.Poller.SourceRef,
		Interval:          cfg.Poller.Interval,
		FetchTimeout:      cfg.Poller.FetchTimeout,
		GracePeriod:       cfg.Poller.GracePeriod,
		CompletionMarkers: cfg.Poller.CompletionMarkers,
		Retry:             cfg.Retry,
		Active:            w.Active,
	})

	out := newFormatter(os.Stdout)

	if once {
		st := p.Tick(ctx)
		p.Wait()
		out.PollerStatus(p.Status(), st)
		return nil
	}

	go func() {
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error(ctx, "Control watcher error: %v", err)
		}
	}()
	a.refreshEntities(ctx)

	a.banner(ctx, "Meeting Twin: watching",
		fmt.Sprintf("Source: %s every %v", cfg.Poller.SourceRef, cfg.Poller.Interval),
		fmt.Sprintf("Analysis: %s", cfg.Poller.AnalysisRef),
		fmt.Sprintf("State: %s", stateDescription(cfg.Poller.StateFile)),
		"Press Ctrl+C to stop",
	)

	if err := p.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("poller: %w", err)
	}

	a.log.Info(context.Background(), "Shutting down gracefully...")
	if err := p.Stop(); err != nil {
		a.log.Warn(context.Background(), "Poller stop: %v", err)
	}

	out.PollerStatus(p.Status(), p.Status().State)
	return nil
}

func stateDescription(path string) string {
	if path == "" {
		return "in memory"
	}
	return path
}
