package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestOptionList_CursorClamps(t *testing.T) {
	o := NewOptionList([]string{"a", "b", "c", "d"}, -1)
	o, _ = o.Update(key("up"))
	if o.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", o.Cursor)
	}
	for i := 0; i < 6; i++ {
		o, _ = o.Update(key("down"))
	}
	if o.Cursor != 3 {
		t.Errorf("Cursor = %d, want 3", o.Cursor)
	}
}

func TestOptionList_StartsOnChosen(t *testing.T) {
	o := NewOptionList([]string{"a", "b", "c", "d"}, 2)
	if o.Cursor != 2 || o.Revealed() {
		t.Errorf("got %+v", o)
	}
	view := o.View(40)
	for _, want := range []string{"A", "D", "(•)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestOptionList_Reveal(t *testing.T) {
	o := NewOptionList([]string{"a", "b", "c", "d"}, 1)
	o.Correct = 0
	view := o.View(40)
	if !strings.Contains(view, "(✓)") || !strings.Contains(view, "(✗)") {
		t.Errorf("revealed view should mark correct and wrong options:\n%s", view)
	}
}

func TestMatrixGrid_Navigation(t *testing.T) {
	g := NewMatrixGrid([]string{"r1", "r2"}, []string{"Vero", "Falso"}, nil)
	g, _ = g.Update(key("right"))
	g, _ = g.Update(key("right"))
	g, _ = g.Update(key("down"))
	g, _ = g.Update(key("down"))
	if g.CursorRow != 1 || g.CursorCol != 1 {
		t.Errorf("cursor = (%d,%d), want (1,1)", g.CursorRow, g.CursorCol)
	}
	g, _ = g.Update(key("h"))
	if g.CursorCol != 0 {
		t.Errorf("CursorCol = %d, want 0", g.CursorCol)
	}
	view := g.View(60)
	for _, want := range []string{"Vero", "Falso", "r1", "r2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPalette_View(t *testing.T) {
	p := Palette{States: []CellState{CellAnswered, CellBlank, CellCorrect}, Current: 1}
	view := p.View(80)
	if !strings.Contains(view, "[2]") || !strings.Contains(view, "3") {
		t.Errorf("palette view = %q", view)
	}
}

func TestOptionLabel(t *testing.T) {
	if OptionLabel(0) != "A" || OptionLabel(3) != "D" || OptionLabel(-1) != "?" {
		t.Error("unexpected labels")
	}
}

func TestButton_View(t *testing.T) {
	yes := NewButton("Y", "Sì", true).View()
	if !strings.Contains(yes, "Y") || !strings.Contains(yes, "Sì") {
		t.Errorf("View() = %q, want key and label", yes)
	}
	if no := NewButton("N", "No", false).View(); no == yes {
		t.Error("default and non-default buttons should render differently")
	}
}

func TestMenu_WrapsAndSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a", Disabled: true}, {Label: "b"}, {Label: "c"}})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item", m.Selected)
	}
	m, _ = m.Update(key("up"))
	if m.Selected != 2 {
		t.Errorf("up from the first enabled item: Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(key("down"))
	if m.Selected != 1 {
		t.Errorf("down from the last item: Selected = %d, want 1", m.Selected)
	}
}

func TestMenu_NumberShortcut(t *testing.T) {
	ran := ""
	action := func(name string) func() tea.Cmd {
		return func() tea.Cmd { ran = name; return nil }
	}
	m := NewMenu([]MenuItem{{Label: "a", Action: action("a")}, {Label: "b", Action: action("b")}})

	m, _ = m.Update(key("2"))
	if m.Selected != 1 || ran != "b" {
		t.Errorf("key 2: Selected = %d, ran %q", m.Selected, ran)
	}
	ran = ""
	m, _ = m.Update(key("9"))
	if ran != "" || m.Selected != 1 {
		t.Errorf("key 9 beyond the menu should do nothing, ran %q", ran)
	}
}

func TestProgressBar_Fraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 10, 0},
		{5, 10, 0.5},
		{12, 10, 1},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := NewProgressBar("", tt.done, tt.total, 40).Fraction(); got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
	if v := NewProgressBar("Domanda 3 di 10", 2, 10, 60).View(); !strings.Contains(v, "2/10") {
		t.Errorf("View() = %q, want the counter", v)
	}
}

func TestNumberInput(t *testing.T) {
	n := NewNumberInput("10", 2, 60)
	n.Model.Focus()
	if _, ok := n.Number(); ok {
		t.Error("empty input should not yield a number")
	}
	for _, k := range []string{"7", "x", "5"} {
		n, _ = n.Update(key(k))
	}
	if got, ok := n.Number(); !ok || got != 60 {
		t.Errorf("Number() = %d, %v; want 75 clamped to 60", got, ok)
	}
	n.SetNumber(15)
	if got, _ := n.Number(); got != 15 {
		t.Errorf("after SetNumber: %d", got)
	}
}

func TestPalette_Target(t *testing.T) {
	p := Palette{States: make([]CellState, 12)}
	tests := []struct {
		label    string
		want     int
		ok       bool
		complete bool
	}{
		{"1", 0, true, false},
		{"2", 1, true, true},
		{"12", 11, true, true},
		{"13", 0, false, true},
		{"0", 0, false, false},
		{"", 0, false, false},
		{"x", 0, false, false},
	}
	for _, tt := range tests {
		got, ok := p.Target(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Target(%q) = %d, %v; want %d, %v", tt.label, got, ok, tt.want, tt.ok)
		}
		if c := p.Complete(tt.label); c != tt.complete {
			t.Errorf("Complete(%q) = %v, want %v", tt.label, c, tt.complete)
		}
	}
}
