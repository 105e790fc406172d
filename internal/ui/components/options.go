package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// OptionLabel returns the letter shown before option i ("A".."Z").
func OptionLabel(i int) string {
	if i < 0 || i > 25 {
		return "?"
	}
	return string(rune('A' + i))
}

// OptionList renders the options of a single-choice question. Chosen and
// Correct are -1 when nothing is selected or the solution is hidden.
type OptionList struct {
	Options []string
	Cursor  int
	Chosen  int
	Correct int
}

// NewOptionList creates an option list with the cursor on the chosen
// option, or the first one.
func NewOptionList(options []string, chosen int) OptionList {
	cursor := chosen
	if cursor < 0 {
		cursor = 0
	}
	return OptionList{Options: options, Cursor: cursor, Chosen: chosen, Correct: -1}
}

// Update moves the cursor.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
	}
	return o, nil
}

// Revealed reports whether the solution is shown.
func (o OptionList) Revealed() bool { return o.Correct >= 0 }

// View renders the list wrapped to width.
func (o OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range o.Options {
		mark := "( )"
		if i == o.Chosen {
			mark = "(•)"
		}
		prefix := "  "
		if i == o.Cursor && !o.Revealed() {
			prefix = "▸ "
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case o.Revealed() && i == o.Correct:
			mark = "(✓)"
			style = theme.Correct
		case o.Revealed() && i == o.Chosen:
			mark = "(✗)"
			style = theme.Incorrect
		case o.Revealed():
			style = style.Foreground(theme.TextDim)
		case i == o.Cursor:
			style = theme.Selected
		case i == o.Chosen:
			style = style.Foreground(theme.Secondary)
		}

		line := fmt.Sprintf("%s%s %s  %s", prefix, mark, OptionLabel(i), opt)
		b.WriteString(style.Width(width).Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
