// Package result shows the score of a finished test and lets the student
// review every question against its solution.
package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// ResultScreen displays a history record.
type ResultScreen struct {
	deps     screen.Deps
	record   history.Record
	outcomes []quiz.Outcome
	saveErr  error

	// fromHistory is set when opened from the history list; Esc then
	// returns there instead of the home screen.
	fromHistory bool

	selected int
	expanded map[int]bool
	scroll   int
}

// RestartMsg asks for a new test with the same configuration.
type RestartMsg struct {
	Config quiz.Config
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)
var _ screen.BackHandler = (*ResultScreen)(nil)

// New shows the result of a test that just finished. saveErr is the error,
// if any, from writing it to history.
func New(deps screen.Deps, rec history.Record, saveErr error) *ResultScreen {
	return &ResultScreen{
		deps:     deps.WithDefaults(),
		record:   rec,
		outcomes: rec.Outcomes(),
		saveErr:  saveErr,
		expanded: make(map[int]bool),
	}
}

// Review shows a past record from the history list.
func Review(deps screen.Deps, rec history.Record) *ResultScreen {
	s := New(deps, rec, nil)
	s.fromHistory = true
	return s
}

func (s *ResultScreen) Init() tea.Cmd { return nil }

func (s *ResultScreen) Title() string { return i18n.T("ResultTitle") }

// HandlesBack unwinds to the home screen after a fresh test.
func (s *ResultScreen) HandlesBack() bool { return !s.fromHistory }

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: i18n.T("HintMove")},
		{Key: "Enter", Description: i18n.T("HintDetails")},
		{Key: "E", Description: i18n.T("HintExpandAll")},
		{Key: "R", Description: i18n.T("HintRestart")},
		{Key: "Esc", Description: i18n.T("HintBack")},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc", "q":
		if s.fromHistory {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.record.Questions)-1 {
			s.selected++
		}
	case "enter", "space":
		s.expanded[s.selected] = !s.expanded[s.selected]
	case "e", "E":
		all := true
		for i := range s.record.Questions {
			if !s.expanded[i] {
				all = false
			}
		}
		s.expanded = make(map[int]bool)
		if !all {
			for i := range s.record.Questions {
				s.expanded[i] = true
			}
		}
	case "r", "R":
		cfg := s.record.Config
		return s, func() tea.Msg { return RestartMsg{Config: cfg} }
	case "pgdown", "ctrl+d":
		s.scroll += 5
	case "pgup", "ctrl+u":
		s.scroll = max(0, s.scroll-5)
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	header := s.renderScore(cw)

	var list []string
	selectedLine := 0
	for i, q := range s.record.Questions {
		if i == s.selected {
			selectedLine = lipgloss.Height(strings.Join(list, "\n"))
		}
		list = append(list, s.renderItem(i, q, cw))
	}

	listHeight := height - lipgloss.Height(header) - 1
	body := strings.Join(list, "\n")
	// Keep the selected row on screen.
	if selectedLine < s.scroll {
		s.scroll = selectedLine
	} else if selectedLine >= s.scroll+listHeight && listHeight > 0 {
		s.scroll = selectedLine - listHeight + 1
	}
	body, s.scroll = layout.Clip(body, listHeight, s.scroll)

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(header+"\n"+body))
}

func (s *ResultScreen) renderScore(cw int) string {
	rec := s.record
	score := lipgloss.NewStyle().Bold(true).Foreground(theme.ScoreColor(rec.ScorePercent)).
		Render(fmt.Sprintf("%d%%", rec.ScorePercent))
	counts := theme.Body.Render(i18n.Td("ScoreLine", map[string]any{
		"Correct": rec.CorrectCount,
		"Total":   rec.TotalQuestions,
	}))

	meta := theme.Hint.Render(fmt.Sprintf("%s · %s · %s · %s",
		rec.Config.Subject,
		i18n.Td("GradeShort", map[string]any{"Grade": rec.Config.Grade.Number()}),
		modeLabel(rec.Config.Mode),
		history.FormatElapsed(rec.ElapsedSeconds),
	))

	lines := []string{
		layout.Centered(score+"  "+counts, cw, theme.Text),
		layout.Centered(verdict(rec.ScorePercent), cw, theme.ScoreColor(rec.ScorePercent)),
		layout.Centered(meta, cw, theme.TextDim),
	}
	if s.saveErr != nil {
		lines = append(lines, layout.Centered(i18n.T("SaveFailed"), cw, theme.Error))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (s *ResultScreen) renderItem(i int, q quiz.Question, cw int) string {
	var mark string
	switch s.outcomes[i] {
	case quiz.OutcomeCorrect:
		mark = theme.Correct.Render("✓")
	case quiz.OutcomeSkipped:
		mark = theme.Skipped.Render("–")
	default:
		mark = theme.Incorrect.Render("✗")
	}

	prefix := "  "
	titleStyle := theme.Body
	if i == s.selected {
		prefix = "▸ "
		titleStyle = theme.Selected
	}
	title := truncate(q.Text, cw-10)
	line := fmt.Sprintf("%s%s %2d. %s", prefix, mark, i+1, titleStyle.Render(title))
	if !s.expanded[i] {
		return line
	}

	a := quiz.UnansweredFor(q)
	if i < len(s.record.Answers) {
		a = s.record.Answers[i]
	}
	inner := cw - 4
	detail := []string{
		components.QuestionBody(q, inner, true),
		components.AnswerWidget(q, a, inner, true),
	}
	if exp := components.Explanation(q.Explanation, inner); exp != "" {
		detail = append(detail, exp)
	}
	return line + "\n" + lipgloss.NewStyle().PaddingLeft(4).Render(strings.Join(detail, "\n\n")) + "\n"
}

func verdict(percent int) string {
	switch {
	case percent >= 80:
		return i18n.T("VerdictGreat")
	case percent >= 60:
		return i18n.T("VerdictGood")
	default:
		return i18n.T("VerdictLow")
	}
}

func modeLabel(m quiz.Mode) string {
	if m == quiz.ModeExam {
		return i18n.T("ModeExam")
	}
	return i18n.T("ModeTraining")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
