package summarizer

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/meeting-twin/internal/config"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

type implSummarizer struct {
	gen    Generator
	logger logger.Logger
}

// New creates a Summarizer for the configured provider.
func New(cfg config.LLMConfig, log logger.Logger) (Summarizer, error) {
	var gen Generator
	var err error

	switch cfg.Provider {
	case config.ProviderOllama:
		gen, err = NewOllama(cfg.Model, cfg.Host)
		if err != nil {
			return nil, err
		}
	case config.ProviderGemini:
		gen, err = NewGemini(cfg.APIKeys, cfg.Model, log)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	log.Info(context.Background(), "Summarizer ready: %s (%s)", gen.Name(), cfg.Model)
	return NewWithGenerator(gen, log), nil
}

// NewWithGenerator wraps an existing backend.
func NewWithGenerator(gen Generator, log logger.Logger) Summarizer {
	return &implSummarizer{
		gen:    gen,
		logger: log,
	}
}
