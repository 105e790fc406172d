package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// NumberInput wraps bubbles/textinput for a positive integer up to Max.
// Non-digit keys are dropped before they reach the text input.
type NumberInput struct {
	Model textinput.Model
	Max   int
}

// NewNumberInput creates a blurred input accepting up to digits digits.
func NewNumberInput(placeholder string, digits, maxValue int) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = digits
	return NumberInput{Model: ti, Max: maxValue}
}

// Update forwards msg unless it is a printable non-digit key.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if key := kmsg.String(); len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return n, nil
		}
	}
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// Number returns the typed value clamped to Max. ok is false while the
// field is empty or zero.
func (n NumberInput) Number() (value int, ok bool) {
	v, err := strconv.Atoi(n.Model.Value())
	if err != nil || v <= 0 {
		return 0, false
	}
	if n.Max > 0 && v > n.Max {
		v = n.Max
	}
	return v, true
}

// SetNumber replaces the typed text with v.
func (n *NumberInput) SetNumber(v int) {
	n.Model.SetValue(strconv.Itoa(v))
	n.Model.CursorEnd()
}

// View renders the input, marking values above Max.
func (n NumberInput) View() string {
	view := n.Model.View()
	if v, err := strconv.Atoi(n.Model.Value()); err == nil && n.Max > 0 && v > n.Max {
		view += " " + lipgloss.NewStyle().Foreground(theme.Warning).Render("≤"+strconv.Itoa(n.Max))
	}
	return view
}
