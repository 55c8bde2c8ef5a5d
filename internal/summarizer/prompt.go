package summarizer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
)

const (
	maxChunkRunes     = 2000
	maxEntityNames    = 3
	chunkMaxTokens    = 200
	finalMaxTokens    = 800
	actionMaxTokens   = 400
	maxActionRunes    = 16000
	noActionItems     = "NONE"
	noEntitiesMessage = "No known entities found"
)

const chunkPrompt = `Summarize the following meeting fragment in 2-3 sentences.
Answer in the language of the fragment.

Text:
%s

Known entities:
%s

Summary (brief and to the point, mention projects and participants if any):`

const finalPrompt = `Write the final meeting summary from the following chunk summaries:

%s

The summary must be:
- 7-10 sentences
- Structured: main topics, decisions, action items
- Mentioning projects and participants
- Brief and to the point
- In the language of the chunks

Final summary:`

const transcriptPrompt = `Write the final meeting summary from the raw meeting transcript below.

Transcript:
---
%s
---

The summary must be:
- 7-10 sentences
- Structured: main topics, decisions, action items
- In the language of the transcript

Final summary:`

const actionPrompt = `List the action items agreed in the meeting transcript below.

Transcript:
---
%s
---

Write one item per line in exactly this form:
- task | assignee | deadline
Write the assignee exactly as mentioned in the text. Use "-" when the
assignee or the deadline is not stated. Answer in the language of the
transcript. If nothing was assigned, answer ` + noActionItems + `.

Action items:`

func buildChunkPrompt(text string, ents entity.Resolution) string {
	return fmt.Sprintf(chunkPrompt, truncateRunes(text, maxChunkRunes), entityLines(ents))
}

func entityLines(ents entity.Resolution) string {
	groups := []struct {
		label string
		kind  entity.Kind
	}{
		{"Projects", entity.KindProject},
		{"Participants", entity.KindPerson},
		{"Terms", entity.KindTerm},
	}

	var lines []string
	for _, g := range groups {
		names := ents.Names(g.kind, maxEntityNames)
		if len(names) == 0 {
			continue
		}
		lines = append(lines, "- "+g.label+": "+strings.Join(names, ", "))
	}

	if len(lines) == 0 {
		return noEntitiesMessage
	}
	return strings.Join(lines, "\n")
}

func buildFinalPrompt(summaries []string) string {
	lines := lo.Map(summaries, func(s string, i int) string {
		return fmt.Sprintf("Chunk %d: %s", i+1, s)
	})
	return fmt.Sprintf(finalPrompt, strings.Join(lines, "\n\n"))
}

func buildTranscriptPrompt(transcript string) string {
	return fmt.Sprintf(transcriptPrompt, transcript)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func buildActionPrompt(transcript string) string {
	return fmt.Sprintf(actionPrompt, truncateRunes(transcript, maxActionRunes))
}

// parseActionItems reads "- task | assignee | deadline" lines. Lines
// without a separator or a task are ignored; "-" stands for a missing field.
func parseActionItems(out string) []ActionItem {
	var items []ActionItem
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		if i := strings.Index(line, ". "); i > 0 && i <= 3 && strings.Trim(line[:i], "0123456789") == "" {
			line = line[i+2:]
		}
		if !strings.Contains(line, "|") {
			continue
		}

		fields := strings.Split(line, "|")
		for len(fields) < 3 {
			fields = append(fields, "")
		}
		field := func(i int) string {
			f := strings.TrimSpace(fields[i])
			if strings.Trim(f, "-—") == "" {
				return ""
			}
			return f
		}

		item := ActionItem{Task: field(0), Assignee: field(1), Deadline: field(2)}
		if item.Task == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
