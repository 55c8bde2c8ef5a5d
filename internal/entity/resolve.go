package entity

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
)

const (
	// DefaultThreshold is the minimum fuzzy score kept.
	DefaultThreshold = 0.6

	// partialScore is the score of a single-word hit on a multi-word name
	// and the floor for fragment/key containment.
	partialScore = 0.8

	minFragmentLen = 3
	topPerFragment = 3
)

type resolveOptions struct {
	fuzzy     bool
	threshold float64
}

// ResolveOption tunes a Resolve call.
type ResolveOption func(*resolveOptions)

// WithFuzzy toggles the fuzzy pass.
func WithFuzzy(on bool) ResolveOption {
	return func(o *resolveOptions) { o.fuzzy = on }
}

// WithThreshold sets the minimum fuzzy score.
func WithThreshold(t float64) ResolveOption {
	return func(o *resolveOptions) {
		if t > 0 {
			o.threshold = t
		}
	}
}

// Resolve finds the entities mentioned in text.
//
// The exact pass scans every index key as a substring of the lowercased
// text: name and alias keys score 1.0, single-word keys score 0.8. The
// fuzzy pass compares every word of at least three runes against every
// key with a Ratcliff/Obershelp ratio, floors containment at 0.8 and
// keeps the top three keys per word at or above the threshold.
func (idx *Index) Resolve(text string, opts ...ResolveOption) Resolution {
	o := resolveOptions{fuzzy: true, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	lower := normalize(text)
	if lower == "" || len(idx.keys) == 0 {
		return Resolution{}
	}

	best := make(map[string]MatchCandidate)
	keep := func(c MatchCandidate) {
		id := c.Record.ID()
		prev, ok := best[id]
		if !ok || c.Score > prev.Score || (c.Score == prev.Score && c.Exact && !prev.Exact) {
			best[id] = c
		}
	}

	for _, key := range idx.keys {
		if !strings.Contains(lower, key) {
			continue
		}
		e := idx.entries[key]
		score := 1.0
		if e.kind == keyToken {
			score = partialScore
		}
		keep(MatchCandidate{Record: e.record, Score: score, Alias: key, Fragment: key, Exact: true})
	}

	if o.fuzzy {
		for _, c := range idx.fuzzy(lower, o.threshold) {
			keep(c)
		}
	}

	return group(lo.Values(best))
}

type scored struct {
	key   string
	score float64
}

func (idx *Index) fuzzy(lower string, threshold float64) []MatchCandidate {
	fragments := lo.Uniq(lo.Filter(tokenize(lower), func(f string, _ int) bool {
		return utf8.RuneCountInString(f) >= minFragmentLen
	}))
	if len(fragments) == 0 {
		return nil
	}

	fragRunes := make([][]string, len(fragments))
	for i, f := range fragments {
		fragRunes[i] = splitRunes(f)
	}

	perFragment := make([][]scored, len(fragments))
	m := difflib.NewMatcher(nil, nil)

	// seq2 caches its index, so keys go in the outer loop
	for _, key := range idx.keys {
		e := idx.entries[key]
		m.SetSeq2(e.runes)

		for i, frag := range fragments {
			m.SetSeq1(fragRunes[i])
			score := m.Ratio()
			if e.kind == keyToken {
				score *= partialScore
			}
			if strings.Contains(frag, key) || strings.Contains(key, frag) {
				score = max(score, partialScore)
			}
			if score >= threshold {
				perFragment[i] = append(perFragment[i], scored{key: key, score: score})
			}
		}
	}

	var out []MatchCandidate
	for i, hits := range perFragment {
		sort.SliceStable(hits, func(a, b int) bool {
			if hits[a].score != hits[b].score {
				return hits[a].score > hits[b].score
			}
			return hits[a].key < hits[b].key
		})
		if len(hits) > topPerFragment {
			hits = hits[:topPerFragment]
		}
		for _, h := range hits {
			out = append(out, MatchCandidate{
				Record:   idx.entries[h.key].record,
				Score:    h.score,
				Alias:    h.key,
				Fragment: fragments[i],
			})
		}
	}
	return out
}

func group(cands []MatchCandidate) Resolution {
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].Score != cands[b].Score {
			return cands[a].Score > cands[b].Score
		}
		return cands[a].Record.ID() < cands[b].Record.ID()
	})

	var res Resolution
	for _, c := range cands {
		switch c.Record.Kind {
		case KindPerson:
			res.People = append(res.People, c)
		case KindProject:
			res.Projects = append(res.Projects, c)
		case KindTerm:
			res.Terms = append(res.Terms, c)
		}
	}
	return res
}

// FindGlossaryTerms returns {term: definition} for every glossary term of
// at least three runes contained in text, case-insensitively. There is
// no fuzzy matching here.
func (idx *Index) FindGlossaryTerms(text string) map[string]string {
	found := make(map[string]string)
	if len(idx.glossary) == 0 {
		return found
	}

	lower := strings.ToLower(text)
	for _, rec := range idx.glossary {
		term := normalize(rec.Name)
		if utf8.RuneCountInString(term) < minFragmentLen {
			continue
		}
		if strings.Contains(lower, term) {
			found[rec.Name] = rec.Definition
		}
	}
	return found
}
