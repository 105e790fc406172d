// Package setup is the screen where a standard test is configured and its
// questions are fetched.
package setup

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

// MaxQuestions caps the count typed by hand.
const MaxQuestions = 60

type field int

const (
	fieldSubject field = iota
	fieldGrade
	fieldCount
	fieldMode
	fieldStart
	numFields
)

type questionsReadyMsg struct {
	Config    quiz.Config
	Questions []quiz.Question
	Err       error
}

// SetupScreen lets the student pick subject, grade, length and mode.
type SetupScreen struct {
	deps    screen.Deps
	cfg     quiz.Config
	focus   field
	count   components.NumberInput
	spinner spinner.Model

	loading   bool
	autoStart bool
	cancel    context.CancelFunc
	errMsg    string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)
var _ screen.BackHandler = (*SetupScreen)(nil)

// New creates the setup screen with the default configuration selected.
func New(deps screen.Deps) *SetupScreen {
	cfg := quiz.DefaultConfig()
	count := components.NewNumberInput("10", 2, MaxQuestions)
	count.SetNumber(cfg.QuestionCount)
	return &SetupScreen{
		deps:    deps.WithDefaults(),
		cfg:     cfg,
		count:   count,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

// Restart creates the setup screen with cfg selected and starts fetching
// questions as soon as it is shown. A failed fetch leaves the student on
// the form with cfg kept.
func Restart(deps screen.Deps, cfg quiz.Config) *SetupScreen {
	s := New(deps)
	s.cfg = cfg
	s.count.SetNumber(cfg.QuestionCount)
	s.focus = fieldStart
	s.autoStart = true
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	if !s.autoStart {
		return nil
	}
	s.autoStart = false
	_, cmd := s.start()
	return cmd
}

func (s *SetupScreen) Title() string { return i18n.T("SetupTitle") }

// HandlesBack keeps Esc on this screen while a request is running so it
// can cancel it.
func (s *SetupScreen) HandlesBack() bool { return s.loading }

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.loading {
		return []layout.KeyHint{{Key: "Esc", Description: i18n.T("HintCancel")}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: i18n.T("HintField")},
		{Key: "←→", Description: i18n.T("HintChange")},
		{Key: "Enter", Description: i18n.T("HintStart")},
		{Key: "Esc", Description: i18n.T("HintBack")},
	}
}

// Config returns the configuration currently selected.
func (s *SetupScreen) Config() quiz.Config { return s.cfg }

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
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
	return s, nil
}

func (s *SetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "shift+tab":
		s.setFocus((s.focus + numFields - 1) % numFields)
		return s, nil
	case "down", "j", "tab":
		s.setFocus((s.focus + 1) % numFields)
		return s, nil
	case "left", "h":
		s.cycle(-1)
		return s, nil
	case "right", "l":
		s.cycle(1)
		return s, nil
	case "enter":
		return s.start()
	}

	if s.focus == fieldCount {
		var cmd tea.Cmd
		s.count, cmd = s.count.Update(msg)
		if n, ok := s.count.Number(); ok {
			s.cfg.QuestionCount = n
		}
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) setFocus(f field) {
	s.focus = f
	if f == fieldCount {
		s.count.Model.Focus()
	} else {
		s.count.Model.Blur()
		s.count.SetNumber(s.cfg.QuestionCount)
	}
}

func (s *SetupScreen) cycle(delta int) {
	switch s.focus {
	case fieldSubject:
		s.cfg.Subject = quiz.Subjects[step(indexOf(quiz.Subjects, s.cfg.Subject), delta, len(quiz.Subjects))]
	case fieldGrade:
		s.cfg.Grade = quiz.Grades[step(indexOf(quiz.Grades, s.cfg.Grade), delta, len(quiz.Grades))]
	case fieldMode:
		s.cfg.Mode = quiz.Modes[step(indexOf(quiz.Modes, s.cfg.Mode), delta, len(quiz.Modes))]
	case fieldCount:
		s.cfg.QuestionCount = nextPreset(quiz.QuestionCounts, s.cfg.QuestionCount, delta)
		s.count.SetNumber(s.cfg.QuestionCount)
	}
}

func (s *SetupScreen) start() (screen.Screen, tea.Cmd) {
	if err := s.cfg.Validate(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if s.deps.Source == nil {
		s.errMsg = i18n.T("ErrNoSource")
		return s, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loading = true
	s.errMsg = ""

	src, cfg := s.deps.Source, s.cfg
	fetch := func() tea.Msg {
		qs, err := src.ForConfig(ctx, cfg)
		return questionsReadyMsg{Config: cfg, Questions: qs, Err: err}
	}
	return s, tea.Batch(fetch, s.spinner.Tick)
}

func (s *SetupScreen) stopLoading() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
}

func (s *SetupScreen) handleReady(msg questionsReadyMsg) (screen.Screen, tea.Cmd) {
	if !s.loading {
		// Cancelled while the request was in flight.
		return s, nil
	}
	s.stopLoading()
	if msg.Err != nil {
		s.deps.Logger.Warn("question fetch failed", "subject", msg.Config.Subject, "grade", msg.Config.Grade, "error", msg.Err)
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

func (s *SetupScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	if s.loading {
		body := s.spinner.View() + " " + i18n.Td("Generating", map[string]any{
			"Count":   s.cfg.QuestionCount,
			"Subject": string(s.cfg.Subject),
		})
		return components.Frame(layout.Centered(body, cw, theme.Accent), width, height)
	}

	rows := []string{
		s.renderField(fieldSubject, i18n.T("FieldSubject"), string(s.cfg.Subject), cw),
		s.renderField(fieldGrade, i18n.T("FieldGrade"), string(s.cfg.Grade), cw),
		s.renderCountField(cw),
		s.renderField(fieldMode, i18n.T("FieldMode"), modeLabel(s.cfg.Mode), cw),
		"",
		components.MenuButton(i18n.T("StartTest"), s.focus == fieldStart, cw),
	}
	if s.cfg.Mode == quiz.ModeExam {
		rows = append(rows, layout.Centered(i18n.T("ExamNotice"), cw, theme.TextDim))
	}
	if s.errMsg != "" {
		rows = append(rows, "", lipgloss.NewStyle().Width(cw).Foreground(theme.Error).Render(s.errMsg))
	}

	title := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Inherit(theme.Title).Render(i18n.T("SetupHeading"))
	return components.Frame(title+"\n\n"+strings.Join(rows, "\n"), width, height)
}

func (s *SetupScreen) renderField(f field, label, value string, cw int) string {
	labelStyle := lipgloss.NewStyle().Width(18).Foreground(theme.TextDim)
	valueStyle := lipgloss.NewStyle().Foreground(theme.Text)
	prefix := "  "
	if s.focus == f {
		prefix = "▸ "
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
		valueStyle = valueStyle.Foreground(theme.Accent).Bold(true)
		value = "‹ " + value + " ›"
	}
	return lipgloss.NewStyle().Width(cw).Render(prefix + labelStyle.Render(label) + valueStyle.Render(value))
}

func (s *SetupScreen) renderCountField(cw int) string {
	if s.focus != fieldCount {
		return s.renderField(fieldCount, i18n.T("FieldCount"), fmt.Sprint(s.cfg.QuestionCount), cw)
	}
	labelStyle := lipgloss.NewStyle().Width(18).Foreground(theme.Primary).Bold(true)
	presets := make([]string, len(quiz.QuestionCounts))
	for i, n := range quiz.QuestionCounts {
		presets[i] = fmt.Sprint(n)
	}
	hint := lipgloss.NewStyle().Foreground(theme.TextDim).Render("  (" + strings.Join(presets, " · ") + ")")
	return lipgloss.NewStyle().Width(cw).Render("▸ " + labelStyle.Render(i18n.T("FieldCount")) + s.count.View() + hint)
}

func modeLabel(m quiz.Mode) string {
	if m == quiz.ModeExam {
		return i18n.T("ModeExam")
	}
	return i18n.T("ModeTraining")
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func step(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

// nextPreset moves to the neighbouring preset, starting from the nearest
// one when the current count was typed by hand.
func nextPreset(presets []int, current, delta int) int {
	if delta > 0 {
		for _, p := range presets {
			if p > current {
				return p
			}
		}
		return presets[0]
	}
	for i := len(presets) - 1; i >= 0; i-- {
		if presets[i] < current {
			return presets[i]
		}
	}
	return presets[len(presets)-1]
}
