package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

const rule = "─"

// writeQuestion prints q as plain text. When a is non-nil the learner's
// choice is marked; reveal also marks the correct one.
func writeQuestion(w io.Writer, n, total int, q quiz.Question, a *quiz.Answer, reveal bool) {
	fmt.Fprintf(w, "── %d/%d  %s ──\n", n, total, q.Topic)
	if q.ContextText != "" {
		fmt.Fprintln(w, indent(q.ContextText, "  │ "))
	}
	if q.AudioScript != "" {
		fmt.Fprintln(w, indent(q.AudioScript, "  ♪ "))
	}
	fmt.Fprintln(w, q.Text)

	switch q.Kind {
	case quiz.KindSingleChoice:
		for i, opt := range q.Choice.Options {
			mark := " "
			if a != nil && a.Index() == i {
				mark = ">"
			}
			if reveal && i == q.Choice.CorrectIndex {
				mark += "✓"
			} else {
				mark += " "
			}
			fmt.Fprintf(w, " %s %c) %s\n", mark, 'a'+i, opt)
		}
	case quiz.KindMatrix:
		fmt.Fprintf(w, "    [%s]\n", strings.Join(q.Matrix.Columns, " | "))
		var cells []int
		if a != nil {
			cells = a.Cells()
		}
		for r, row := range q.Matrix.Rows {
			var parts []string
			if r < len(cells) && cells[r] != quiz.NoChoice {
				parts = append(parts, "> "+q.Matrix.Columns[cells[r]])
			}
			if reveal {
				parts = append(parts, "✓ "+q.Matrix.Columns[q.Matrix.CorrectColumns[r]])
			}
			suffix := ""
			if len(parts) > 0 {
				suffix = "   " + strings.Join(parts, "  ")
			}
			fmt.Fprintf(w, "  %d. %s%s\n", r+1, row, suffix)
		}
	}
	if reveal && q.Explanation != "" {
		fmt.Fprintf(w, "Spiegazione: %s\n", q.Explanation)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func outcomeMark(o quiz.Outcome) string {
	switch o {
	case quiz.OutcomeCorrect:
		return "✓"
	case quiz.OutcomeSkipped:
		return "–"
	default:
		return "✗"
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
