// Package home is the start screen: the main menu and a recap of past tests.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/customtext"
	historyscreen "github.com/VitoPalumboPodcast/Invalsi/internal/screens/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/setup"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

type recapLoadedMsg struct {
	Records []history.Record
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps   screen.Deps
	menu   components.Menu
	labels []string

	loaded  bool
	tests   int
	average int
	last    *history.Record
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps screen.Deps) *HomeScreen {
	deps = deps.WithDefaults()
	labels := []string{
		i18n.T("MenuNewTest"),
		i18n.T("MenuFromText"),
		i18n.T("MenuHistory"),
		i18n.T("MenuQuit"),
	}

	items := []components.MenuItem{
		{Label: labels[0], Action: func() tea.Cmd { return push(setup.New(deps)) }},
		{Label: labels[1], Action: func() tea.Cmd { return push(customtext.New(deps, "")) }},
		{Label: labels[2], Action: func() tea.Cmd { return push(historyscreen.New(deps)) }},
		{Label: labels[3], Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		deps:   deps,
		menu:   components.NewMenu(items),
		labels: labels,
	}
}

// Init reloads the recap. The router calls it again when the stack is
// unwound back to this screen after a test.
func (h *HomeScreen) Init() tea.Cmd {
	log := h.deps.History
	if log == nil {
		return nil
	}
	return func() tea.Msg {
		return recapLoadedMsg{Records: log.LoadAll(context.Background())}
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) Title() string {
	return i18n.T("HomeTitle")
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case recapLoadedMsg:
		h.loaded = true
		h.tests = len(msg.Records)
		h.average = 0
		h.last = nil
		if len(msg.Records) > 0 {
			total := 0
			for _, r := range msg.Records {
				total += r.ScorePercent
			}
			h.average = quiz.ScorePercent(total, 100*len(msg.Records))
			newest := history.NewestFirst(msg.Records)[0]
			h.last = &newest
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 24
	cw := components.ContentWidth(width)

	sections := []string{
		renderBanner(cw, compact),
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.TextDim).Italic(true).
			Render(i18n.T("Tagline")),
	}
	if recap := h.renderRecap(cw); recap != "" {
		sections = append(sections, recap)
	}

	var menu []string
	for i, label := range h.labels {
		menu = append(menu, components.MenuButton(label, i == h.menu.Selected, cw))
	}
	sections = append(sections, lipgloss.JoinVertical(lipgloss.Center, menu...))

	sep := "\n\n"
	if compact {
		sep = "\n"
	}
	return components.Frame(strings.Join(sections, sep), width, height)
}

func (h *HomeScreen) renderRecap(cw int) string {
	if !h.loaded {
		return ""
	}
	if h.tests == 0 {
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(i18n.T("RecapEmpty"))
	}

	line := i18n.Td("RecapStats", map[string]any{"Tests": h.tests}) + "  " +
		lipgloss.NewStyle().Foreground(theme.ScoreColor(h.average)).Bold(true).
			Render(fmt.Sprintf("%d%%", h.average))
	if h.last != nil {
		line += "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			i18n.Td("RecapLast", map[string]any{
				"Subject": string(h.last.Config.Subject),
				"Score":   h.last.ScorePercent,
			}))
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(line)
}
