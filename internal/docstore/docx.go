package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	bodySize  = 12
	titleSize = 16
	textColor = "000000"
	noteColor = "555555"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reChunk   = regexp.MustCompile(`(?s)^\[chunk (\d+)\]\s*(.*)$`)
	// control markers opening a line: [SESSION_START], [MEETING_COMPLETE], [ANALYSIS <fp>]
	reMarker  = regexp.MustCompile(`^\[[A-Z_]+(\s+[0-9a-f]+)?\]`)
)

// Minutes is the content of one exported meeting record.
type Minutes struct {
	Title      string
	Subtitle   string // date, session id, fingerprint
	Summary    string // markdown
	Transcript string // plain text or chunk blocks, separated by blank lines
}

// ExportMinutes writes the minutes as a styled .docx file.
func ExportMinutes(path string, m Minutes) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create minutes dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	w := minutesWriter{doc: doc}
	w.heading(m.Title, 1)
	if m.Subtitle != "" {
		w.note(m.Subtitle)
	}
	w.markdown(m.Summary)

	if strings.TrimSpace(m.Transcript) != "" {
		w.heading("Transcript", 2)
		w.transcript(m.Transcript)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save minutes: %w", err)
	}
	return nil
}

type minutesWriter struct {
	doc *docx.RootDoc
}

func (w minutesWriter) run(p *docx.Paragraph, text string, size uint64) *docx.Run {
	return p.AddText(stripInline(text)).Font(fontName).Size(size).Color(textColor)
}

func (w minutesWriter) heading(text string, level int) {
	size := uint64(bodySize)
	if level <= 3 {
		size = uint64(titleSize + 1 - level)
	}
	w.run(w.doc.AddParagraph(""), text, size).Bold(true)
}

func (w minutesWriter) note(text string) {
	w.doc.AddParagraph("").AddText(text).Font(fontName).Size(bodySize - 2).Color(noteColor).Italic(true)
}

// rich writes one paragraph, rendering **bold** spans as bold runs.
func (w minutesWriter) rich(prefix, text string) {
	p := w.doc.AddParagraph("")
	if prefix != "" {
		w.run(p, prefix, bodySize).Bold(true)
	}

	plain := reBold.Split(text, -1)
	bold := reBold.FindAllStringSubmatch(text, -1)
	for i, part := range plain {
		if part != "" {
			w.run(p, part, bodySize)
		}
		if i < len(bold) {
			w.run(p, bold[i][1], bodySize).Bold(true)
		}
	}
}

// markdown renders the headings, bullets and paragraphs of a summary.
// Control markers are left out of the minutes.
func (w minutesWriter) markdown(md string) {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case line == "", line == "---", reMarker.MatchString(line):
		case reHeading.MatchString(line):
			m := reHeading.FindStringSubmatch(line)
			w.heading(m[2], len(m[1]))
		case reBullet.MatchString(line):
			w.rich("• ", reBullet.FindStringSubmatch(line)[1])
		default:
			w.rich("", line)
		}
	}
}

// transcript writes one paragraph per block, labelling chunk blocks and
// dropping repeated blocks, which whisper emits on silence.
func (w minutesWriter) transcript(text string) {
	seen := make(map[string]bool)
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || seen[block] {
			continue
		}
		seen[block] = true

		if reMarker.MatchString(block) {
			continue
		}
		if strings.HasPrefix(block, "#") {
			w.markdown(block)
			continue
		}
		if m := reChunk.FindStringSubmatch(block); m != nil {
			w.rich("Chunk "+m[1]+": ", strings.ReplaceAll(m[2], "\n", " "))
			continue
		}
		w.rich("", block)
	}
}

func stripInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}
