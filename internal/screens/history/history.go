// Package history lists the completed tests, newest first.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	hist "github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/result"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/components"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

type historyLoadedMsg struct {
	Records []hist.Record
}

// HistoryScreen displays past tests and per-subject averages.
type HistoryScreen struct {
	deps     screen.Deps
	records  []hist.Record
	stats    []hist.SubjectStats
	selected int
	loaded   bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{deps: deps.WithDefaults()}
}

func (s *HistoryScreen) Init() tea.Cmd {
	log := s.deps.History
	return func() tea.Msg {
		if log == nil {
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{Records: log.LoadAll(context.Background())}
	}
}

func (s *HistoryScreen) Title() string {
	return i18n.T("HistoryTitle")
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: i18n.T("HintDetails")},
		{Key: "↑↓", Description: i18n.T("HintMove")},
		{Key: "Esc", Description: i18n.T("HintBack")},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.records = hist.NewestFirst(msg.Records)
		s.stats = hist.Summarize(msg.Records)
		s.loaded = true
		if s.selected >= len(s.records) {
			s.selected = 0
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.records) {
				review := result.Review(s.deps, s.records[s.selected])
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: review} }
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered("\n\n"+i18n.T("Loading"), width, theme.TextDim)
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n" + i18n.T("HistoryEmpty"))
	}

	cw := components.ContentWidth(width)
	header := s.renderStats(cw)
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	listHeight := height - lipgloss.Height(header) - 2
	start := 0
	if listHeight > 0 && s.selected >= listHeight {
		start = s.selected - listHeight + 1
	}
	for i := start; i < len(s.records); i++ {
		if listHeight > 0 && i-start >= listHeight {
			break
		}
		b.WriteString(s.renderRow(i, cw))
		b.WriteString("\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *HistoryScreen) renderStats(cw int) string {
	var cells []string
	for _, st := range s.stats {
		cells = append(cells, fmt.Sprintf("%s %s",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(string(st.Subject)),
			lipgloss.NewStyle().Foreground(theme.ScoreColor(st.Average)).Render(
				i18n.Td("SubjectAverage", map[string]any{"Average": st.Average, "Tests": st.Tests}))))
	}
	return components.Card(strings.Join(cells, "\n"), cw)
}

func (s *HistoryScreen) renderRow(i, cw int) string {
	r := s.records[i]
	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		prefix = "▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}
	left := fmt.Sprintf("%s%s  %-10s  G%-2d  %s",
		prefix,
		r.CreatedAt.Local().Format("02/01/2006 15:04"),
		r.Config.Subject,
		r.Config.Grade.Number(),
		scoreLine(r),
	)
	score := lipgloss.NewStyle().Foreground(theme.ScoreColor(r.ScorePercent)).Bold(true).
		Render(fmt.Sprintf("%3d%%", r.ScorePercent))
	gap := cw - lipgloss.Width(left) - lipgloss.Width(score)
	if gap < 1 {
		gap = 1
	}
	return style.Render(left) + strings.Repeat(" ", gap) + score
}

// scoreLine formats the score and time of a record.
func scoreLine(r hist.Record) string {
	return fmt.Sprintf("%d/%d  %s", r.CorrectCount, r.TotalQuestions, hist.FormatElapsed(r.ElapsedSeconds))
}
