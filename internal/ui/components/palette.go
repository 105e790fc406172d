package components

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// CellState is the display state of one question in the palette.
type CellState int

const (
	CellBlank CellState = iota
	CellAnswered
	CellCorrect
	CellIncorrect
)

// Palette is the numbered overview of every question in a test.
type Palette struct {
	States  []CellState
	Current int
}

// View renders the palette wrapped to width.
func (p Palette) View(width int) string {
	const cellWidth = 5
	perLine := width / cellWidth
	if perLine < 1 {
		perLine = 1
	}

	var b strings.Builder
	for i, st := range p.States {
		label := fmt.Sprintf("%d", i+1)
		style := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
		switch st {
		case CellAnswered:
			style = style.Foreground(theme.Secondary)
		case CellCorrect:
			style = style.Foreground(theme.Success)
		case CellIncorrect:
			style = style.Foreground(theme.Error)
		default:
			style = style.Foreground(theme.TextDim)
		}
		if i == p.Current {
			label = "[" + label + "]"
			style = style.Bold(true).Underline(true)
		}
		b.WriteString(style.Render(label))
		if (i+1)%perLine == 0 && i < len(p.States)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Target maps a typed 1-based question number to its index.
func (p Palette) Target(label string) (int, bool) {
	n, err := strconv.Atoi(label)
	if err != nil || n < 1 || n > len(p.States) {
		return 0, false
	}
	return n - 1, true
}

// Complete reports whether label already names a question and no further
// digit could name another one.
func (p Palette) Complete(label string) bool {
	n, err := strconv.Atoi(label)
	if err != nil || n < 1 {
		return false
	}
	return n*10 > len(p.States)
}
