package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextArea wraps bubbles/textarea for pasting long texts.
type TextArea struct {
	Model textarea.Model
}

// NewTextArea creates a focused text area.
func NewTextArea(placeholder string, width, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return TextArea{Model: ta}
}

// Init returns the focus command.
func (t TextArea) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards messages to the text area.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text area.
func (t TextArea) View() string { return t.Model.View() }

// Value returns the text with surrounding blank space removed.
func (t TextArea) Value() string { return strings.TrimSpace(t.Model.Value()) }

// SetValue replaces the content.
func (t *TextArea) SetValue(s string) { t.Model.SetValue(s) }

// Resize adapts the area to the available space.
func (t *TextArea) Resize(width, height int) {
	t.Model.SetWidth(width)
	t.Model.SetHeight(height)
}
