package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

// callFunc performs one request with one API key.
type callFunc func(ctx context.Context, key, model, prompt string, maxTokens int) (string, error)

type geminiGenerator struct {
	apiKeys []string
	model   string
	logger  logger.Logger
	call    callFunc

	mu         sync.Mutex
	currentKey int
}

// NewGemini creates a Generator that rotates through the supplied Gemini API keys.
func NewGemini(apiKeys []string, model string, log logger.Logger) (Generator, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("gemini: no API keys")
	}

	return &geminiGenerator{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
		call:    callGemini,
	}, nil
}

func (g *geminiGenerator) Name() string {
	return "gemini/" + g.model
}

// Generate sends the prompt to Gemini. Rotates API keys on 429 / quota errors.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		idx, key := g.key()

		text, err := g.call(ctx, key, g.model, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, context.Canceled) {
			return "", err
		}

		if isRateLimited(err) {
			g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
			g.rotateKey(idx)
			lastErr = err
			continue
		}
		return "", fmt.Errorf("%w: gemini generate: %v", failure.ErrTransientUpstream, err)
	}

	return "", fmt.Errorf("%w: all API keys exhausted: %v", failure.ErrTransientUpstream, lastErr)
}

func (g *geminiGenerator) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey advances past idx unless another caller already did.
func (g *geminiGenerator) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func callGemini(ctx context.Context, key, model, prompt string, maxTokens int) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
