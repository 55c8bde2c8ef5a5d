package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/aggregate"
	"github.com/nguyentantai21042004/meeting-twin/internal/config"
	"github.com/nguyentantai21042004/meeting-twin/internal/docstore"
	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
)

// app holds the components every long-running command needs.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	closeLog func() error
	sink     failure.Sink
	store    docstore.Store
	registry entity.Registry
	source   entity.FileSource
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	log, closeLog := logger.NewWithFile(cfg.Logging.Level, cfg.Logging.File)
	sink := failure.NewSink(log)

	store, err := docstore.New(cfg.Paths.Documents, log)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	src := entity.FileSource{
		PeopleFile:   cfg.Entities.PeopleFile,
		ProjectsFile: cfg.Entities.ProjectsFile,
		GlossaryFile: cfg.Entities.GlossaryFile,
	}
	registry := entity.NewRegistry(log, sink, cfg.Entities.RefreshInterval, cfg.Entities.FuzzyThreshold)
	if err := registry.Reload(ctx, src); err != nil {
		log.Warn(ctx, "Failed to load entities, starting with an empty index: %v", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		sink:     sink,
		store:    store,
		registry: registry,
		source:   src,
	}, nil
}

func (a *app) Close() error {
	return a.closeLog()
}

func (a *app) aggregator(s summarizer.Summarizer) aggregate.Aggregator {
	return aggregate.New(s, a.sink, a.log, a.cfg.Retry, a.cfg.Pipeline.AggregateTimeout, a.cfg.LLM.MaxContextChars)
}

// stateStore returns the persistent store when poller.state_file is set.
// The second result is false for the in-memory fallback.
func (a *app) stateStore() (poller.StateStore, bool, error) {
	if a.cfg.Poller.StateFile == "" {
		return poller.NewMemoryStore(), false, nil
	}
	st, err := poller.NewFileStore(a.cfg.Poller.StateFile, a.log)
	if err != nil {
		return nil, false, fmt.Errorf("opening poller state: %w", err)
	}
	return st, true, nil
}

// refreshEntities keeps the entity index current until ctx is done.
func (a *app) refreshEntities(ctx context.Context) {
	go func() {
		if err := a.registry.Run(ctx, a.source); err != nil && ctx.Err() == nil {
			a.log.Error(ctx, "Entity refresh stopped: %v", err)
		}
	}()
}

func (a *app) banner(ctx context.Context, title string, lines ...string) {
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "%s", title)
	a.log.Info(ctx, "========================================")
	for _, l := range lines {
		a.log.Info(ctx, "%s", l)
	}
	a.log.Info(ctx, "Started at %s", time.Now().Format(time.RFC3339))
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Documents,
		cfg.Paths.Minutes,
		cfg.Paths.Control,
		cfg.Pipeline.TempDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
