package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// ProgressBar shows how many of a test's questions have been worked on.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

// NewProgressBar creates a bar for done out of total.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, Width: width}
}

// Fraction returns Done/Total clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return max(0, min(1, float64(p.Done)/float64(p.Total)))
}

// View renders "label  ████░░░░  done/total".
func (p ProgressBar) View() string {
	var left string
	if p.Label != "" {
		left = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	counter := fmt.Sprintf("  %d/%d", p.Done, p.Total)

	barWidth := max(4, p.Width-lipgloss.Width(left)-len(counter))
	filled := int(float64(barWidth) * p.Fraction())

	color := theme.Secondary
	if p.Total > 0 && p.Done >= p.Total {
		color = theme.Success
	}
	bar := lipgloss.NewStyle().Background(color).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	return left + bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter)
}
