package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/meeting"
	"github.com/nguyentantai21042004/meeting-twin/internal/poller"
)

// formatter renders command results for a terminal.
type formatter struct {
	w io.Writer

	boldGreen func(a ...interface{}) string
	boldCyan  func(a ...interface{}) string
	yellow    func(a ...interface{}) string
	red       func(a ...interface{}) string
	faint     func(a ...interface{}) string
}

func newFormatter(w io.Writer) *formatter {
	return &formatter{
		w:         w,
		boldGreen: color.New(color.FgGreen, color.Bold).SprintFunc(),
		boldCyan:  color.New(color.FgCyan, color.Bold).SprintFunc(),
		yellow:    color.New(color.FgYellow).SprintFunc(),
		red:       color.New(color.FgRed).SprintFunc(),
		faint:     color.New(color.Faint).SprintFunc(),
	}
}

func (f *formatter) Success(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.boldGreen("✓"), msg)
}

func (f *formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.yellow("!"), msg)
}

func (f *formatter) Resolution(res entity.Resolution) {
	if res.Empty() {
		f.Warning("no known entities found")
		return
	}

	f.candidates("People", res.People)
	f.candidates("Projects", res.Projects)
	f.candidates("Terms", res.Terms)
}

func (f *formatter) candidates(label string, cands []entity.MatchCandidate) {
	if len(cands) == 0 {
		return
	}

	fmt.Fprintf(f.w, "%s\n", f.boldCyan(label+":"))
	for _, c := range cands {
		score := f.yellow(fmt.Sprintf("%.2f", c.Score))
		if c.Exact {
			score = f.boldGreen("exact")
		}
		fmt.Fprintf(f.w, "  %s  %s %s\n", c.Record.Name, score, f.faint("via "+strings.TrimSpace(c.Fragment)))
	}
}

func (f *formatter) Glossary(terms map[string]string) {
	if len(terms) == 0 {
		return
	}

	keys := lo.Keys(terms)
	sort.Strings(keys)

	fmt.Fprintf(f.w, "%s\n", f.boldCyan("Glossary:"))
	for _, k := range keys {
		fmt.Fprintf(f.w, "  %s: %s\n", f.boldGreen(k), terms[k])
	}
}

func (f *formatter) SessionFinished(sess *meeting.Session, counts map[failure.Kind]int) {
	fmt.Fprintf(f.w, "%s %s (%s)\n", f.boldGreen("Session finished:"), sess.Title, sess.ID)
	fmt.Fprintf(f.w, "  Status:   %s\n", sess.Status())
	fmt.Fprintf(f.w, "  Duration: %s\n", sess.EndedAt.Sub(sess.StartedAt).Round(time.Second))
	fmt.Fprintf(f.w, "  Chunks:   %d\n", len(sess.Summaries()))
	if n := sess.Overruns(); n > 0 {
		fmt.Fprintf(f.w, "  Overruns: %s\n", f.yellow(fmt.Sprintf("%d samples dropped", n)))
	}
	f.failures(counts)

	if summary := sess.FinalSummary(); summary != "" {
		fmt.Fprintf(f.w, "\n%s\n%s\n", f.boldCyan("Summary:"), summary)
	}
}

func (f *formatter) PollerStatus(st poller.Status, last poller.State) {
	fmt.Fprintf(f.w, "%s %s", f.boldCyan("Poller:"), last)
	if st.Reason != "" {
		fmt.Fprintf(f.w, " %s", f.faint("("+st.Reason+")"))
	}
	fmt.Fprintln(f.w)
	fmt.Fprintf(f.w, "  Ticks:      %d\n", st.Ticks)
	fmt.Fprintf(f.w, "  Dispatched: %d\n", st.Dispatched)
	if st.LastFingerprint != "" {
		fmt.Fprintf(f.w, "  Last:       %s at %s\n", st.LastFingerprint, st.LastSeen.Format("2006-01-02 15:04:05"))
	}
}

func (f *formatter) Status(recording bool, last *poller.Record) {
	if recording {
		fmt.Fprintf(f.w, "%s %s\n", f.boldGreen("●"), "recording in progress")
	} else {
		fmt.Fprintf(f.w, "%s %s\n", f.faint("○"), "not recording")
	}

	if last == nil {
		fmt.Fprintf(f.w, "  Last analyzed: %s\n", f.faint("unknown"))
		return
	}
	fmt.Fprintf(f.w, "  Last analyzed: %s at %s\n", last.Fingerprint, last.SeenAt.Format("2006-01-02 15:04:05"))
}

func (f *formatter) failures(counts map[failure.Kind]int) {
	if len(counts) == 0 {
		return
	}

	kinds := lo.Keys(counts)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	parts := lo.Map(kinds, func(k failure.Kind, _ int) string {
		return fmt.Sprintf("%s=%d", k, counts[k])
	})
	fmt.Fprintf(f.w, "  Failures: %s\n", f.red(strings.Join(parts, ", ")))
}
