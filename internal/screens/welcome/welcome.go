// Package welcome is the first-run introduction shown before the home
// screen while the history is still empty.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	// lineDelay is the time between two intro lines appearing.
	lineDelay = 400 * time.Millisecond
)

type tickMsg time.Time

// WelcomeScreen reveals the introduction line by line, then hands over to
// the screen produced by next on any key.
type WelcomeScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with next().
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func lines() []string {
	return []string{
		i18n.T("WelcomeHeading"),
		i18n.T("WelcomeTraining"),
		i18n.T("WelcomeExam"),
		i18n.T("WelcomeText"),
	}
}

// revealed is the number of intro lines visible.
func (w *WelcomeScreen) revealed() int {
	n := int(w.elapsed/lineDelay) + 1
	if total := len(lines()); n > total {
		n = total
	}
	return n
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.revealed() == len(lines()) {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		// The first key press while lines are still appearing shows them all.
		if w.revealed() < len(lines()) {
			w.elapsed = lineDelay * time.Duration(len(lines()))
			return w, nil
		}
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (w *WelcomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	all := lines()
	n := w.revealed()

	var sections []string
	for i, l := range all[:n] {
		style := theme.Body.Width(cw)
		if i == 0 {
			style = theme.Title.Width(cw)
		}
		sections = append(sections, style.Render(l))
	}
	if n == len(all) {
		sections = append(sections, theme.Hint.Width(cw).Align(lipgloss.Center).Render(i18n.T("PressAnyKey")))
	}
	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}
