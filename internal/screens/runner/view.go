package runner

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

func (r *RunnerScreen) View(width, height int) string {
	if r.confirmQuit {
		return renderDialog(i18n.T("ConfirmQuit"), i18n.T("ConfirmQuitDetail"), width, height)
	}
	if r.confirmFinish {
		unanswered := r.state.Len() - r.answeredOrStarted()
		detail := i18n.T("ConfirmFinishDetail")
		if unanswered > 0 {
			detail = i18n.Tp("UnansweredLeft", unanswered)
		}
		return renderDialog(i18n.T("ConfirmFinish"), detail, width, height)
	}
	if r.saving {
		return layout.Centered("\n\n"+i18n.T("Saving"), width, theme.TextDim)
	}

	cw := components.ContentWidth(width)
	cur := r.state.Current()
	q := r.state.CurrentQuestion()

	var sections []string
	sections = append(sections, r.renderProgress(cw))
	sections = append(sections, components.QuestionBody(q, cw, false))

	switch q.Kind {
	case quiz.KindSingleChoice:
		sections = append(sections, r.options.View(cw))
	case quiz.KindMatrix:
		sections = append(sections, r.grid.View(cw))
	}

	if r.state.Feedback(cur) {
		sections = append(sections, r.renderFeedback(q, cw))
	}
	if r.speaking {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Accent).Render("♪ "+i18n.T("Speaking")))
	}
	if r.notice != "" {
		sections = append(sections, theme.Hint.Render(r.notice))
	}
	if r.jumping {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Accent).
			Render(i18n.Td("JumpPrompt", map[string]any{"Input": r.jump})+"▏"))
	}
	sections = append(sections, r.palette().View(cw))

	body := strings.Join(sections, "\n\n")
	body, r.scroll = layout.Clip(body, height, r.scroll)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(body))
}

func (r *RunnerScreen) renderProgress(cw int) string {
	label := i18n.Td("QuestionOf", map[string]any{
		"Current": r.state.Current() + 1,
		"Total":   r.state.Len(),
	})
	return components.NewProgressBar(label, r.answeredOrStarted(), r.state.Len(), cw).View()
}

func (r *RunnerScreen) renderFeedback(q quiz.Question, cw int) string {
	a := r.state.Answer(r.state.Current())
	var verdict string
	switch quiz.Classify(q, a) {
	case quiz.OutcomeCorrect:
		verdict = theme.Correct.Render("✓ " + i18n.T("FeedbackCorrect"))
	case quiz.OutcomeSkipped:
		verdict = theme.Skipped.Render("– " + i18n.T("FeedbackSkipped"))
	default:
		verdict = theme.Incorrect.Render("✗ " + i18n.T("FeedbackIncorrect"))
	}
	if exp := components.Explanation(q.Explanation, cw); exp != "" {
		return verdict + "\n" + exp
	}
	return verdict
}

// palette colours questions by state. Correctness is only shown once the
// answer has been checked.
func (r *RunnerScreen) palette() components.Palette {
	states := make([]components.CellState, r.state.Len())
	for i := range states {
		q, a := r.state.Question(i), r.state.Answer(i)
		switch {
		case r.state.Feedback(i) && quiz.Evaluate(q, a):
			states[i] = components.CellCorrect
		case r.state.Feedback(i) && !quiz.IsSkipped(a):
			states[i] = components.CellIncorrect
		case !quiz.IsSkipped(a):
			states[i] = components.CellAnswered
		}
	}
	return components.Palette{States: states, Current: r.state.Current()}
}

// answeredOrStarted counts questions with any selection, confirmed or not.
func (r *RunnerScreen) answeredOrStarted() int {
	n := 0
	for i := 0; i < r.state.Len(); i++ {
		if !quiz.IsSkipped(r.state.Answer(i)) {
			n++
		}
	}
	return n
}

func renderDialog(title, detail string, width, height int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Warning).
		Padding(1, 3).
		Render(
			lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(title) + "\n\n" +
				theme.Hint.Render(detail) + "\n\n" +
				components.NewButton("Y", i18n.T("HintYes"), true).View()+"   "+
				components.NewButton("N", i18n.T("HintNo"), false).View(),
		)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
