package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/meeting-twin/internal/docstore"
	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/retry"
	"github.com/nguyentantai21042004/meeting-twin/internal/summarizer"
)

const (
	maxListed         = 5
	assigneeThreshold = 0.6
)

// actionItem is an extracted task with its assignee resolved to a known
// person where possible.
type actionItem struct {
	summarizer.ActionItem
	Resolved bool
}

// Dispatch resolves entities in content, summarizes it and appends the
// result tagged with the fingerprint. Only a failed append is returned;
// a missing summary is stored as the sentinel.
func (a *implAnalyzer) Dispatch(ctx context.Context, content, fingerprint string) error {
	log := a.logger.With("fingerprint", fingerprint)

	res := a.resolver.Resolve(content)
	glossary := a.resolver.FindGlossaryTerms(content)
	log.Info(ctx, "Analyzing %s: %d entities, %d glossary terms", fingerprint, res.Count(), len(glossary))

	result := a.aggregator.Aggregate(ctx, nil, content)
	if !result.OK() {
		log.Warn(ctx, "No summary for %s, storing degraded result", fingerprint)
	}

	items := a.actionItems(ctx, content, fingerprint)

	block := formatBlock(fingerprint, result.Summary, res, glossary, items)
	err := a.opts.Retry.Do(ctx, func(ctx context.Context) error {
		actx, cancel := context.WithTimeout(ctx, a.opts.AppendTimeout)
		defer cancel()
		return a.store.AppendBlock(actx, a.opts.DocRef, block)
	})
	if err != nil {
		return fmt.Errorf("append analysis %s: %w", fingerprint, err)
	}

	if a.opts.MinutesDir != "" {
		path := filepath.Join(a.opts.MinutesDir, "analysis-"+fingerprint+".docx")
		err := docstore.ExportMinutes(path, docstore.Minutes{
			Title:      "Meeting analysis",
			Subtitle:   a.now().Format("2006-01-02 15:04") + " · " + fingerprint,
			Summary:    block,
			Transcript: content,
		})
		if err != nil {
			a.sink.Report(ctx, failure.Failure{Unit: "minutes", ID: fingerprint, Kind: failure.KindTransient, Err: err})
		} else {
			log.Info(ctx, "Minutes exported: %s", path)
		}
	}

	return nil
}

// actionItems extracts the agreed tasks and maps each assignee to the
// registry's display name. A failed extraction is reported and yields
// no items.
func (a *implAnalyzer) actionItems(ctx context.Context, content, fingerprint string) []actionItem {
	if a.actions == nil {
		return nil
	}

	extracted, err := retry.Value(ctx, a.opts.Retry, func(ctx context.Context) ([]summarizer.ActionItem, error) {
		ectx, cancel := context.WithTimeout(ctx, a.opts.ExtractTimeout)
		defer cancel()
		return a.actions.ActionItems(ectx, content)
	})
	if err != nil {
		a.sink.Report(ctx, failure.Failure{Unit: "action-items", ID: fingerprint, Kind: failure.Classify(err), Err: err})
		return nil
	}

	items := make([]actionItem, 0, len(extracted))
	for _, it := range extracted {
		item := actionItem{ActionItem: it}
		if it.Assignee != "" {
			res := a.resolver.Resolve(it.Assignee, entity.WithFuzzy(true), entity.WithThreshold(assigneeThreshold))
			if names := res.Names(entity.KindPerson, 1); len(names) > 0 {
				item.Assignee = names[0]
				item.Resolved = true
			}
		}
		items = append(items, item)
	}
	return items
}

func formatBlock(fingerprint, summary string, res entity.Resolution, glossary map[string]string, items []actionItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[ANALYSIS %s]\n%s\n\n%s", fingerprint, docstore.SummaryHeading, summary)

	lines := []struct {
		label string
		kind  entity.Kind
	}{
		{"People", entity.KindPerson},
		{"Projects", entity.KindProject},
		{"Terms", entity.KindTerm},
	}
	for _, l := range lines {
		if names := res.Names(l.kind, maxListed); len(names) > 0 {
			fmt.Fprintf(&sb, "\n- %s: %s", l.label, strings.Join(names, ", "))
		}
	}

	if len(glossary) > 0 {
		terms := make([]string, 0, len(glossary))
		for term := range glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		sb.WriteString("\n\n### Glossary")
		for _, term := range terms {
			fmt.Fprintf(&sb, "\n- **%s**: %s", term, glossary[term])
		}
	}

	if len(items) > 0 {
		sb.WriteString("\n\n### Action items")
		for _, it := range items {
			sb.WriteString("\n- ")
			switch {
			case it.Resolved:
				fmt.Fprintf(&sb, "**%s**: ", it.Assignee)
			case it.Assignee != "":
				fmt.Fprintf(&sb, "%s (unknown): ", it.Assignee)
			}
			sb.WriteString(it.Task)
			if it.Deadline != "" {
				fmt.Fprintf(&sb, " (deadline: %s)", it.Deadline)
			}
		}
	}
	return sb.String()
}
