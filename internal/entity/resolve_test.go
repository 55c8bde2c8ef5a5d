package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Index {
	people := []Record{
		{Kind: KindPerson, Key: "itikhomirov", Name: "Иван Тихомиров", Role: "CTO"},
		{Kind: KindPerson, Key: "mpetrova", Name: "Мария Петрова", Aliases: []string{"Маша"}},
	}
	projects := []Record{
		{Kind: KindProject, Key: "phoenix", Name: "Phoenix", Aliases: []string{"феникс"}},
	}
	terms := []Record{
		{Kind: KindTerm, Key: "SLA", Name: "SLA", Definition: "service level agreement"},
		{Kind: KindTerm, Key: "OKR", Name: "OKR", Definition: "objectives and key results"},
		{Kind: KindTerm, Key: "AI", Name: "AI", Definition: "too short to match"},
	}
	return BuildIndex(people, projects, terms)
}

func findPerson(t *testing.T, res Resolution, key string) MatchCandidate {
	t.Helper()
	for _, c := range res.People {
		if c.Record.Key == key {
			return c
		}
	}
	t.Fatalf("person %s not resolved; got %+v", key, res.People)
	return MatchCandidate{}
}

func TestResolveExactAlias(t *testing.T) {
	res := fixture().Resolve("Вчера Иван Тихомиров рассказал про релиз")

	c := findPerson(t, res, "itikhomirov")
	assert.Equal(t, 1.0, c.Score)
	assert.True(t, c.Exact)
	assert.Equal(t, "иван тихомиров", c.Alias)
}

func TestResolvePartialName(t *testing.T) {
	res := fixture().Resolve("Ваня Тихомиров обещал прислать отчёт", WithThreshold(0.6))

	c := findPerson(t, res, "itikhomirov")
	assert.Less(t, c.Score, 1.0)
	assert.GreaterOrEqual(t, c.Score, 0.6)
}

func TestResolveMisspelling(t *testing.T) {
	res := fixture().Resolve("созвон с Тихамировым", WithThreshold(0.6))

	c := findPerson(t, res, "itikhomirov")
	assert.Less(t, c.Score, 1.0)
	assert.False(t, c.Exact)
	assert.Equal(t, "тихамировым", c.Fragment)
}

func TestResolveWithoutFuzzy(t *testing.T) {
	res := fixture().Resolve("созвон с Тихамировым", WithFuzzy(false))
	assert.Empty(t, res.People)
}

func TestResolveDeduplicatesByCanonicalID(t *testing.T) {
	res := fixture().Resolve("Маша и Мария Петрова, снова Маша")

	require.Len(t, res.People, 1)
	assert.Equal(t, 1.0, res.People[0].Score)
}

func TestResolveGroupsByKind(t *testing.T) {
	res := fixture().Resolve("Phoenix: Маша обновит SLA")

	require.Len(t, res.Projects, 1)
	assert.Equal(t, "phoenix", res.Projects[0].Record.Key)
	require.Len(t, res.People, 1)
	require.NotEmpty(t, res.Terms)
	assert.Equal(t, "SLA", res.Terms[0].Record.Name)
	assert.Equal(t, []string{"Phoenix"}, res.Names(KindProject, 3))
}

func TestResolveEmptyText(t *testing.T) {
	assert.True(t, fixture().Resolve("   ").Empty())
	assert.True(t, BuildIndex(nil, nil, nil).Resolve("Иван").Empty())
}

func TestFindGlossaryTerms(t *testing.T) {
	got := fixture().FindGlossaryTerms("Нужно пересмотреть sla и okr, AI не важен")

	assert.Equal(t, map[string]string{
		"SLA": "service level agreement",
		"OKR": "objectives and key results",
	}, got)
}

func TestFindGlossaryTermsIsNotFuzzy(t *testing.T) {
	got := fixture().FindGlossaryTerms("the SL A was fine")
	assert.Empty(t, got)
}
