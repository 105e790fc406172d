package components

import (
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

// Button is a key-labelled choice shown in confirmation dialogs.
type Button struct {
	Key     string
	Label   string
	Default bool
}

// NewButton creates a button bound to key.
func NewButton(key, label string, isDefault bool) Button {
	return Button{Key: key, Label: label, Default: isDefault}
}

// View renders the button. The default choice is highlighted.
func (b Button) View() string {
	label := b.Key + " " + b.Label
	if b.Default {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
