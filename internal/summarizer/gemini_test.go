package summarizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

func newTestGemini(t *testing.T, keys []string, call callFunc) *geminiGenerator {
	t.Helper()
	gen, err := NewGemini(keys, "gemini-2.5-flash", logger.Nop())
	require.NoError(t, err)
	g := gen.(*geminiGenerator)
	g.call = call
	return g
}

func TestGeminiRotatesOnRateLimit(t *testing.T) {
	var used []string
	g := newTestGemini(t, []string{"k1", "k2", "k3"}, func(_ context.Context, key, _, _ string, _ int) (string, error) {
		used = append(used, key)
		if key == "k3" {
			return "summary", nil
		}
		return "", errors.New("Error 429, RESOURCE_EXHAUSTED")
	})

	got, err := g.Generate(context.Background(), "prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, "summary", got)
	assert.Equal(t, []string{"k1", "k2", "k3"}, used)

	// the working key stays current
	used = nil
	_, err = g.Generate(context.Background(), "prompt", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"k3"}, used)
}

func TestGeminiAllKeysExhausted(t *testing.T) {
	calls := 0
	g := newTestGemini(t, []string{"k1", "k2"}, func(context.Context, string, string, string, int) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	})

	_, err := g.Generate(context.Background(), "prompt", 100)
	assert.ErrorIs(t, err, failure.ErrTransientUpstream)
	assert.Contains(t, err.Error(), "all API keys exhausted")
	assert.Equal(t, 2, calls)
}

func TestGeminiOtherErrorsDoNotRotate(t *testing.T) {
	calls := 0
	g := newTestGemini(t, []string{"k1", "k2"}, func(context.Context, string, string, string, int) (string, error) {
		calls++
		return "", errors.New("invalid argument")
	})

	_, err := g.Generate(context.Background(), "prompt", 100)
	assert.ErrorIs(t, err, failure.ErrTransientUpstream)
	assert.Equal(t, 1, calls)
}
