// Package customtext builds a training test from a passage pasted by the
// student.
package customtext

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/runner"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

type focus int

const (
	focusText focus = iota
	focusSubject
	focusGrade
	focusCount
	numFocus
)

type questionsReadyMsg struct {
	Config    quiz.Config
	Questions []quiz.Question
	Err       error
}

// CustomTextScreen collects a passage and the test settings.
type CustomTextScreen struct {
	deps    screen.Deps
	text    components.TextArea
	cfg     quiz.Config
	focus   focus
	spinner spinner.Model

	loading bool
	cancel  context.CancelFunc
	errMsg  string
}

var _ screen.Screen = (*CustomTextScreen)(nil)
var _ screen.KeyHintProvider = (*CustomTextScreen)(nil)
var _ screen.BackHandler = (*CustomTextScreen)(nil)

// New creates the screen with text preloaded, which may be empty.
func New(deps screen.Deps, text string) *CustomTextScreen {
	ta := components.NewTextArea(i18n.T("PastePlaceholder"), 60, 10)
	if text != "" {
		ta.SetValue(text)
	}
	cfg := quiz.DefaultConfig()
	cfg.Subject = quiz.SubjectItaliano
	cfg.QuestionCount = quiz.CustomQuestionCounts[1]
	cfg.Mode = quiz.ModeTraining
	return &CustomTextScreen{
		deps:    deps.WithDefaults(),
		text:    ta,
		cfg:     cfg,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

func (s *CustomTextScreen) Init() tea.Cmd { return s.text.Init() }

func (s *CustomTextScreen) Title() string { return i18n.T("CustomTextTitle") }

// HandlesBack lets Esc cancel a running request, and leave the text area
// for the settings before leaving the screen.
func (s *CustomTextScreen) HandlesBack() bool { return s.loading || s.focus == focusText }

func (s *CustomTextScreen) KeyHints() []layout.KeyHint {
	if s.loading {
		return []layout.KeyHint{{Key: "Esc", Description: i18n.T("HintCancel")}}
	}
	if s.focus == focusText {
		return []layout.KeyHint{
			{Key: "Tab", Description: i18n.T("HintSettings")},
			{Key: "Ctrl+S", Description: i18n.T("HintGenerate")},
			{Key: "Esc", Description: i18n.T("HintSettings")},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: i18n.T("HintField")},
		{Key: "←→", Description: i18n.T("HintChange")},
		{Key: "Enter", Description: i18n.T("HintGenerate")},
		{Key: "Esc", Description: i18n.T("HintBack")},
	}
}

func (s *CustomTextScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsReadyMsg:
		return s.handleReady(msg)

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.loading {
			if msg.String() == "esc" {
				s.stopLoading()
			}
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.focus == focusText {
		var cmd tea.Cmd
		s.text, cmd = s.text.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CustomTextScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return s.start()
	case "tab":
		return s, s.setFocus((s.focus + 1) % numFocus)
	case "shift+tab":
		return s, s.setFocus((s.focus + numFocus - 1) % numFocus)
	}

	if s.focus == focusText {
		if msg.String() == "esc" {
			return s, s.setFocus(focusSubject)
		}
		var cmd tea.Cmd
		s.text, cmd = s.text.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "up", "k":
		return s, s.setFocus((s.focus + numFocus - 1) % numFocus)
	case "down", "j":
		return s, s.setFocus((s.focus + 1) % numFocus)
	case "left", "h":
		s.cycle(-1)
	case "right", "l":
		s.cycle(1)
	case "enter":
		return s.start()
	}
	return s, nil
}

func (s *CustomTextScreen) setFocus(f focus) tea.Cmd {
	s.focus = f
	if f == focusText {
		return s.text.Model.Focus()
	}
	s.text.Model.Blur()
	return nil
}

func (s *CustomTextScreen) cycle(delta int) {
	switch s.focus {
	case focusSubject:
		s.cfg.Subject = quiz.Subjects[wrap(position(quiz.Subjects, s.cfg.Subject)+delta, len(quiz.Subjects))]
	case focusGrade:
		s.cfg.Grade = quiz.Grades[wrap(position(quiz.Grades, s.cfg.Grade)+delta, len(quiz.Grades))]
	case focusCount:
		counts := quiz.CustomQuestionCounts
		s.cfg.QuestionCount = counts[wrap(position(counts, s.cfg.QuestionCount)+delta, len(counts))]
	}
}

func (s *CustomTextScreen) start() (screen.Screen, tea.Cmd) {
	if s.deps.Source == nil {
		s.errMsg = i18n.T("ErrNoSource")
		return s, nil
	}
	text := s.text.Value()
	if text == "" {
		s.errMsg = i18n.T("ErrEmptyText")
		return s, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loading = true
	s.errMsg = ""

	src, cfg := s.deps.Source, s.cfg
	fetch := func() tea.Msg {
		qs, forced, err := src.FromText(ctx, text, cfg)
		return questionsReadyMsg{Config: forced, Questions: qs, Err: err}
	}
	return s, tea.Batch(fetch, s.spinner.Tick)
}

func (s *CustomTextScreen) stopLoading() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
}

func (s *CustomTextScreen) handleReady(msg questionsReadyMsg) (screen.Screen, tea.Cmd) {
	if !s.loading {
		return s, nil
	}
	s.stopLoading()
	if msg.Err != nil {
		s.deps.Logger.Warn("generation from text failed", "error", msg.Err)
		s.errMsg = i18n.Td("ErrGeneration", map[string]any{"Error": msg.Err.Error()})
		return s, nil
	}
	run, err := runner.New(s.deps, msg.Config, msg.Questions)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: run} }
}

func (s *CustomTextScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	if s.loading {
		body := s.spinner.View() + " " + i18n.Td("Generating", map[string]any{
			"Count":   s.cfg.QuestionCount,
			"Subject": string(s.cfg.Subject),
		})
		return components.Frame(layout.Centered(body, cw, theme.Accent), width, height)
	}

	textHeight := height - 14
	if textHeight < 3 {
		textHeight = 3
	}
	s.text.Resize(cw, textHeight)

	border := theme.Border
	if s.focus == focusText {
		border = theme.Primary
	}
	area := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Render(s.text.View())

	words := len(strings.Fields(s.text.Value()))
	rows := []string{
		theme.Hint.Render(i18n.T("CustomTextIntro")),
		area,
		theme.Hint.Render(i18n.Tp("WordCount", words)),
		s.renderField(focusSubject, i18n.T("FieldSubject"), string(s.cfg.Subject)),
		s.renderField(focusGrade, i18n.T("FieldGrade"), string(s.cfg.Grade)),
		s.renderField(focusCount, i18n.T("FieldCount"), fmt.Sprint(s.cfg.QuestionCount)),
		theme.Hint.Render(i18n.T("CustomTextTrainingOnly")),
	}
	if s.errMsg != "" {
		rows = append(rows, lipgloss.NewStyle().Width(cw).Foreground(theme.Error).Render(s.errMsg))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(strings.Join(rows, "\n")))
}

func (s *CustomTextScreen) renderField(f focus, label, value string) string {
	labelStyle := lipgloss.NewStyle().Width(18).Foreground(theme.TextDim)
	valueStyle := lipgloss.NewStyle().Foreground(theme.Text)
	prefix := "  "
	if s.focus == f {
		prefix = "▸ "
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
		valueStyle = valueStyle.Foreground(theme.Accent).Bold(true)
		value = "‹ " + value + " ›"
	}
	return prefix + labelStyle.Render(label) + valueStyle.Render(value)
}

func position[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
