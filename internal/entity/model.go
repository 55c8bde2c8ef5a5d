// Package entity resolves free text to known people, projects and
// glossary terms using an immutable reverse index that is swapped
// atomically on refresh.
package entity

import "strings"

// Kind tags an entity record.
type Kind string

const (
	KindPerson  Kind = "person"
	KindProject Kind = "project"
	KindTerm    Kind = "term"
)

// Record is one person, project or glossary term. Records are never
// mutated after they are published in an index.
type Record struct {
	Kind       Kind
	Key        string // canonical key: username, project key or term
	Name       string // display name
	Aliases    []string
	Role       string
	Context    string
	Definition string // glossary terms only
	Source     string // provenance: file path, "notion", ...
}

// ID is the canonical identity used to deduplicate matches.
func (r *Record) ID() string {
	key := r.Key
	if key == "" {
		key = r.Name
	}
	return string(r.Kind) + ":" + strings.ToLower(key)
}

// MatchCandidate is one resolved entity with its score and the alias or
// fragment that produced it.
type MatchCandidate struct {
	Record   *Record
	Score    float64
	Alias    string // index key that matched
	Fragment string // text fragment that matched; equals Alias for exact hits
	Exact    bool
}

// Resolution groups candidates by entity kind.
type Resolution struct {
	People   []MatchCandidate
	Projects []MatchCandidate
	Terms    []MatchCandidate
}

// Empty reports whether nothing was resolved.
func (r Resolution) Empty() bool {
	return len(r.People) == 0 && len(r.Projects) == 0 && len(r.Terms) == 0
}

// Count is the total number of candidates.
func (r Resolution) Count() int {
	return len(r.People) + len(r.Projects) + len(r.Terms)
}

// Names returns display names of the first max candidates of a kind.
func (r Resolution) Names(kind Kind, max int) []string {
	var src []MatchCandidate
	switch kind {
	case KindPerson:
		src = r.People
	case KindProject:
		src = r.Projects
	case KindTerm:
		src = r.Terms
	}

	var out []string
	for _, c := range src {
		if len(out) == max {
			break
		}
		if c.Record.Name != "" {
			out = append(out, c.Record.Name)
		}
	}
	return out
}
