package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// keyKind ranks how strongly an index key identifies its record.
type keyKind int

const (
	keyToken keyKind = iota // one word of a name or alias
	keyAlias
	keyName
)

func (k keyKind) String() string {
	switch k {
	case keyName:
		return "name"
	case keyAlias:
		return "alias"
	default:
		return "token"
	}
}

type indexEntry struct {
	record *Record
	kind   keyKind
	runes  []string // key split into runes for the similarity matcher
}

// Collision records two distinct records claiming one index key.
type Collision struct {
	Key    string
	Kind   string
	Winner string
	Loser  string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s key %q: %s replaces %s", c.Kind, c.Key, c.Winner, c.Loser)
}

// Index is an immutable reverse index from lowercase alias/token to record.
type Index struct {
	entries    map[string]indexEntry
	keys       []string
	glossary   []*Record
	records    int
	collisions []Collision
	builtAt    time.Time
}

// Stats describes a built index.
type Stats struct {
	Records    int
	Keys       int
	Terms      int
	Collisions int
	BuiltAt    time.Time
}

// BuildIndex indexes the canonical name, every alias and every word
// longer than two runes of each record. People are indexed first, then
// projects, then terms.
//
// When two distinct records claim the same key, the stronger key kind
// wins (name/alias over token); between equal kinds the later record
// wins. Every such replacement is returned in Collisions.
func BuildIndex(people, projects, terms []Record) *Index {
	idx := &Index{
		entries: make(map[string]indexEntry),
		builtAt: time.Now(),
	}

	for _, group := range [][]Record{people, projects, terms} {
		for i := range group {
			rec := group[i]
			rec.Aliases = append([]string(nil), rec.Aliases...)
			idx.addRecord(&rec)
		}
	}

	idx.keys = make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		idx.keys = append(idx.keys, k)
	}
	sort.Strings(idx.keys)

	return idx
}

func (idx *Index) addRecord(rec *Record) {
	idx.records++
	if rec.Kind == KindTerm {
		idx.glossary = append(idx.glossary, rec)
	}

	idx.add(normalize(rec.Name), rec, keyName)
	for _, alias := range rec.Aliases {
		idx.add(normalize(alias), rec, keyAlias)
	}

	for _, phrase := range append([]string{rec.Name}, rec.Aliases...) {
		for _, tok := range tokenize(normalize(phrase)) {
			if utf8.RuneCountInString(tok) > 2 {
				idx.add(tok, rec, keyToken)
			}
		}
	}
}

func (idx *Index) add(key string, rec *Record, kind keyKind) {
	if key == "" {
		return
	}

	prev, ok := idx.entries[key]
	if ok {
		if prev.record.ID() == rec.ID() {
			// same record: keep the strongest key kind
			if kind <= prev.kind {
				return
			}
		} else {
			if kind < prev.kind {
				return
			}
			idx.collisions = append(idx.collisions, Collision{
				Key:    key,
				Kind:   kind.String(),
				Winner: rec.ID(),
				Loser:  prev.record.ID(),
			})
		}
	}

	idx.entries[key] = indexEntry{
		record: rec,
		kind:   kind,
		runes:  splitRunes(key),
	}
}

// Lookup returns the record stored under an exact lowercase key.
func (idx *Index) Lookup(key string) (*Record, bool) {
	e, ok := idx.entries[normalize(key)]
	if !ok {
		return nil, false
	}
	return e.record, true
}

// Collisions lists keys claimed by more than one record.
func (idx *Index) Collisions() []Collision {
	return idx.collisions
}

func (idx *Index) Stats() Stats {
	return Stats{
		Records:    idx.records,
		Keys:       len(idx.keys),
		Terms:      len(idx.glossary),
		Collisions: len(idx.collisions),
		BuiltAt:    idx.builtAt,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenize splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
