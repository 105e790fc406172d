package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// MatrixGrid renders a matrix question: one row per statement, one radio
// per column. Cells holds the chosen column per row (-1 or nil for blank);
// Correct is nil while the solution is hidden.
type MatrixGrid struct {
	Rows      []string
	Columns   []string
	Cells     []int
	Correct   []int
	CursorRow int
	CursorCol int
}

// NewMatrixGrid creates a grid with the cursor on the first cell.
func NewMatrixGrid(rows, columns []string, cells []int) MatrixGrid {
	return MatrixGrid{Rows: rows, Columns: columns, Cells: cells}
}

// Update moves the cursor across rows and columns.
func (g MatrixGrid) Update(msg tea.Msg) (MatrixGrid, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return g, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if g.CursorRow > 0 {
			g.CursorRow--
		}
	case "down", "j":
		if g.CursorRow < len(g.Rows)-1 {
			g.CursorRow++
		}
	case "left", "h":
		if g.CursorCol > 0 {
			g.CursorCol--
		}
	case "right", "l":
		if g.CursorCol < len(g.Columns)-1 {
			g.CursorCol++
		}
	}
	return g, nil
}

func (g MatrixGrid) cell(row int) int {
	if row < len(g.Cells) {
		return g.Cells[row]
	}
	return -1
}

// View renders the grid within width.
func (g MatrixGrid) View(width int) string {
	colWidth := 4
	for _, c := range g.Columns {
		if w := lipgloss.Width(c) + 2; w > colWidth {
			colWidth = w
		}
	}
	labelWidth := width - 2 - colWidth*len(g.Columns)
	if labelWidth < 12 {
		labelWidth = 12
	}

	cellStyle := lipgloss.NewStyle().Width(colWidth).Align(lipgloss.Center)
	labelStyle := lipgloss.NewStyle().Width(labelWidth).Foreground(theme.Text)

	var b strings.Builder
	header := []string{"  ", labelStyle.Foreground(theme.TextDim).Render("")}
	for _, c := range g.Columns {
		header = append(header, cellStyle.Foreground(theme.TextDim).Bold(true).Render(c))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	revealed := g.Correct != nil
	for r, row := range g.Rows {
		prefix := "  "
		if r == g.CursorRow && !revealed {
			prefix = "▸ "
		}
		parts := []string{prefix, labelStyle.Render(row)}
		chosen := g.cell(r)
		for c := range g.Columns {
			mark := "○"
			style := cellStyle.Foreground(theme.TextDim)
			if c == chosen {
				mark = "●"
				style = cellStyle.Foreground(theme.Secondary)
			}
			switch {
			case revealed && r < len(g.Correct) && c == g.Correct[r]:
				mark = "✓"
				style = cellStyle.Inherit(theme.Correct)
			case revealed && c == chosen:
				mark = "✗"
				style = cellStyle.Inherit(theme.Incorrect)
			case !revealed && r == g.CursorRow && c == g.CursorCol:
				mark = "[" + mark + "]"
				style = cellStyle.Inherit(theme.Selected)
			}
			parts = append(parts, style.Render(mark))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
