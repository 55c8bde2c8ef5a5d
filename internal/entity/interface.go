package entity

import "context"

// Resolver maps free text to known entities.
type Resolver interface {
	Resolve(text string, opts ...ResolveOption) Resolution
	FindGlossaryTerms(text string) map[string]string
}

// Registry owns the current index snapshot. Reads are lock-free and
// always see a fully built index; Refresh and Reload publish a new one
// with a single atomic swap.
type Registry interface {
	Resolver
	Refresh(ctx context.Context, people, projects, terms []Record) Stats
	Reload(ctx context.Context, src Source) error
	Run(ctx context.Context, src Source) error
	Snapshot() *Index
}

// Source loads entity records, for the initial load and every refresh.
type Source interface {
	LoadPeople(ctx context.Context) ([]Record, error)
	LoadProjects(ctx context.Context) ([]Record, error)
	LoadGlossary(ctx context.Context) ([]Record, error)
}
