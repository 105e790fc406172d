package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// QuestionBody renders the stimulus of q: reading passage, listening
// prompt, illustration note and the question text. The listening script
// itself is only printed when showScript is set.
func QuestionBody(q quiz.Question, width int, showScript bool) string {
	var parts []string

	if q.Topic != "" {
		parts = append(parts, theme.Hint.Render(q.Topic))
	}
	if q.ContextText != "" {
		parts = append(parts, theme.Passage.Width(width).Render(q.ContextText))
	}
	if q.AudioScript != "" {
		if showScript {
			parts = append(parts, theme.Passage.BorderForeground(theme.Accent).Width(width).
				Render("♪ "+q.AudioScript))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.Accent).
				Render("♪ "+i18n.T("ListeningAvailable")))
		}
	}
	if q.Illustration != "" {
		parts = append(parts, theme.Hint.Render("▣ "+i18n.T("IllustrationNote")))
	}
	parts = append(parts, theme.Body.Bold(true).Width(width).Render(q.Text))

	return strings.Join(parts, "\n\n")
}

// AnswerWidget renders the options or grid of q with a and, when reveal is
// set, the solution.
func AnswerWidget(q quiz.Question, a quiz.Answer, width int, reveal bool) string {
	switch q.Kind {
	case quiz.KindSingleChoice:
		o := NewOptionList(q.Choice.Options, a.Index())
		o.Cursor = -1
		if reveal {
			o.Correct = q.Choice.CorrectIndex
		}
		return o.View(width)
	case quiz.KindMatrix:
		g := NewMatrixGrid(q.Matrix.Rows, q.Matrix.Columns, a.Cells())
		g.CursorRow = -1
		if reveal {
			g.Correct = q.Matrix.CorrectColumns
		}
		return g.View(width)
	}
	return ""
}

// Explanation renders the solution note shown after an answer is checked.
func Explanation(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(i18n.T("ExplanationHeading")) +
			"\n" + theme.Body.Render(text))
}
