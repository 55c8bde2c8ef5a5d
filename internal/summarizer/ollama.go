package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
)

const temperature = 0.5

type ollamaGenerator struct {
	llm   llms.Model
	model string
}

// NewOllama creates a Generator backed by a local Ollama server.
func NewOllama(model, host string) (Generator, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}

	return &ollamaGenerator{llm: llm, model: model}, nil
}

func (g *ollamaGenerator) Name() string {
	return "ollama/" + g.model
}

func (g *ollamaGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: ollama generate: %v", failure.ErrTransientUpstream, err)
	}
	return response, nil
}
