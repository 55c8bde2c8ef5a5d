package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
)

func (r *implRegistry) Snapshot() *Index {
	return r.current.Load()
}

func (r *implRegistry) Resolve(text string, opts ...ResolveOption) Resolution {
	opts = append([]ResolveOption{WithThreshold(r.threshold)}, opts...)
	return r.current.Load().Resolve(text, opts...)
}

func (r *implRegistry) FindGlossaryTerms(text string) map[string]string {
	return r.current.Load().FindGlossaryTerms(text)
}

// Refresh builds a new index off to the side and swaps it in.
func (r *implRegistry) Refresh(ctx context.Context, people, projects, terms []Record) Stats {
	idx := BuildIndex(people, projects, terms)

	for _, c := range idx.Collisions() {
		if c.Kind == keyToken.String() {
			r.logger.Debug(ctx, "Shared word in index: %s", c)
			continue
		}
		r.sink.Report(ctx, failure.Failure{
			Unit: "index",
			ID:   c.Key,
			Kind: failure.KindInvariant,
			Err:  fmt.Errorf("%s: %w", c, failure.ErrInvariant),
		})
	}

	r.current.Store(idx)

	st := idx.Stats()
	r.logger.Info(ctx, "Entity index published: %d records, %d keys, %d terms, %d collisions",
		st.Records, st.Keys, st.Terms, st.Collisions)
	return st
}

// Reload loads every record set from src and publishes them. On any load
// error the current index stays in place.
func (r *implRegistry) Reload(ctx context.Context, src Source) error {
	people, err := src.LoadPeople(ctx)
	if err != nil {
		return fmt.Errorf("load people: %w", err)
	}
	projects, err := src.LoadProjects(ctx)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	terms, err := src.LoadGlossary(ctx)
	if err != nil {
		return fmt.Errorf("load glossary: %w", err)
	}

	r.Refresh(ctx, people, projects, terms)
	return nil
}

// Run reloads from src every interval until ctx is done. A failed reload
// is reported and the previous index keeps serving.
func (r *implRegistry) Run(ctx context.Context, src Source) error {
	if r.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Reload(ctx, src); err != nil {
				r.sink.Report(ctx, failure.Failure{Unit: "index", ID: "reload", Err: err})
			}
		}
	}
}
