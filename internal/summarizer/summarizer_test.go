package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-twin/internal/config"
	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

type fakeGenerator struct {
	out       string
	err       error
	prompts   []string
	maxTokens []int
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.maxTokens = append(g.maxTokens, maxTokens)
	return g.out, g.err
}

func person(name string) entity.MatchCandidate {
	return entity.MatchCandidate{Record: &entity.Record{Kind: entity.KindPerson, Name: name}, Score: 1}
}

func TestSummarizeBuildsEntityContext(t *testing.T) {
	gen := &fakeGenerator{out: "  Обсудили релиз Phoenix.  "}
	s := NewWithGenerator(gen, logger.Nop())

	ents := entity.Resolution{
		People: []entity.MatchCandidate{person("Иван"), person("Мария"), person("Олег"), person("Анна")},
		Projects: []entity.MatchCandidate{{
			Record: &entity.Record{Kind: entity.KindProject, Name: "Phoenix"}, Score: 1,
		}},
	}

	got, err := s.Summarize(context.Background(), "текст чанка", ents)
	require.NoError(t, err)
	assert.Equal(t, "Обсудили релиз Phoenix.", got)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "- Projects: Phoenix")
	assert.Contains(t, prompt, "- Participants: Иван, Мария, Олег")
	assert.NotContains(t, prompt, "Анна")
	assert.NotContains(t, prompt, "- Terms:")
	assert.Equal(t, chunkMaxTokens, gen.maxTokens[0])
}

func TestSummarizeWithoutEntities(t *testing.T) {
	gen := &fakeGenerator{out: "ok"}
	s := NewWithGenerator(gen, logger.Nop())

	_, err := s.Summarize(context.Background(), "text", entity.Resolution{})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], noEntitiesMessage)
}

func TestSummarizeTruncatesLongChunks(t *testing.T) {
	gen := &fakeGenerator{out: "ok"}
	s := NewWithGenerator(gen, logger.Nop())

	long := strings.Repeat("я", maxChunkRunes+500)
	_, err := s.Summarize(context.Background(), long, entity.Resolution{})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], strings.Repeat("я", maxChunkRunes))
	assert.NotContains(t, gen.prompts[0], strings.Repeat("я", maxChunkRunes+1))
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		gen     *fakeGenerator
		wantErr error
	}{
		{"empty text", "  ", &fakeGenerator{out: "x"}, failure.ErrData},
		{"empty response", "text", &fakeGenerator{out: "   "}, failure.ErrTransientUpstream},
		{"backend error", "text", &fakeGenerator{err: failure.ErrTransientUpstream}, failure.ErrTransientUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWithGenerator(tt.gen, logger.Nop())
			_, err := s.Summarize(context.Background(), tt.text, entity.Resolution{})
			assert.True(t, errors.Is(err, tt.wantErr), "error = %v", err)
		})
	}
}

func TestAggregateNumbersChunks(t *testing.T) {
	gen := &fakeGenerator{out: "final"}
	s := NewWithGenerator(gen, logger.Nop())

	got, err := s.Aggregate(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, "final", got)
	assert.Contains(t, gen.prompts[0], "Chunk 1: first\n\nChunk 2: second")
	assert.Equal(t, finalMaxTokens, gen.maxTokens[0])

	_, err = s.Aggregate(context.Background(), nil)
	assert.ErrorIs(t, err, failure.ErrData)
}

func TestSummarizeTranscript(t *testing.T) {
	gen := &fakeGenerator{out: "final"}
	s := NewWithGenerator(gen, logger.Nop())

	_, err := s.SummarizeTranscript(context.Background(), "сырой текст встречи")
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "сырой текст встречи")

	_, err = s.SummarizeTranscript(context.Background(), "")
	assert.ErrorIs(t, err, failure.ErrData)
}

func TestActionItems(t *testing.T) {
	gen := &fakeGenerator{out: `Action items:
- Подготовить релиз Phoenix | Ваня | пятница
* Обновить SLA | - | -
2. Созвониться с клиентом | Мария |
- | Олег | завтра`}
	s := NewWithGenerator(gen, logger.Nop())

	items, err := s.ActionItems(context.Background(), "Ваня готовит релиз к пятнице")
	require.NoError(t, err)
	assert.Equal(t, []ActionItem{
		{Task: "Подготовить релиз Phoenix", Assignee: "Ваня", Deadline: "пятница"},
		{Task: "Обновить SLA"},
		{Task: "Созвониться с клиентом", Assignee: "Мария"},
	}, items)
	assert.Contains(t, gen.prompts[0], "Ваня готовит релиз к пятнице")
	assert.Equal(t, actionMaxTokens, gen.maxTokens[0])
}

func TestActionItemsNone(t *testing.T) {
	s := NewWithGenerator(&fakeGenerator{out: "NONE"}, logger.Nop())

	items, err := s.ActionItems(context.Background(), "обсудили погоду")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.ActionItems(context.Background(), " ")
	assert.ErrorIs(t, err, failure.ErrData)
}

func TestNewProviders(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: config.ProviderOllama, Model: "llama3", Host: "http://localhost:11434"}, logger.Nop())
	assert.NoError(t, err)

	_, err = New(config.LLMConfig{Provider: config.ProviderGemini, Model: "gemini-2.5-flash"}, logger.Nop())
	assert.Error(t, err, "gemini without keys")

	_, err = New(config.LLMConfig{Provider: "openai"}, logger.Nop())
	assert.Error(t, err)
}
