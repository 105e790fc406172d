package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/i18n"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/customtext"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/home"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/result"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/setup"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/welcome"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Deps screen.Deps

	// InitialText opens the custom text screen with this passage.
	InitialText string

	// Welcome shows the introduction before the home screen. When nil it
	// is shown only while the history is empty.
	Welcome *bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   screen.Deps
	width  int
	height int

	// pending is pushed over the root screen on start.
	pending screen.Screen
}

// newAppModel creates a new AppModel with the home screen at the root.
func newAppModel(opts Options) AppModel {
	deps := opts.Deps.WithDefaults()
	homeScreen := home.New(deps)
	r := router.New(homeScreen)

	if opts.InitialText != "" {
		return AppModel{router: r, deps: deps, pending: customtext.New(deps, opts.InitialText)}
	}

	showWelcome := false
	if opts.Welcome != nil {
		showWelcome = *opts.Welcome
	} else if deps.History != nil {
		showWelcome = len(deps.History.LoadAll(context.Background())) == 0
	}
	if showWelcome {
		r = router.New(welcome.New(func() screen.Screen { return home.New(deps) }))
	}
	return AppModel{router: r, deps: deps}
}

func (m AppModel) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.pending != nil {
		pending := m.pending
		return tea.Batch(cmd, func() tea.Msg { return router.PushScreenMsg{Screen: pending} })
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case result.RestartMsg:
		restart := setup.Restart(m.deps, msg.Config)
		return m, func() tea.Msg { return router.ReplaceScreenMsg{Screen: restart} }

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var status layout.Status
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: i18n.T("HintBack")},
			{Key: "Ctrl+C", Description: i18n.T("HintExit")},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: i18n.T("HintMove")},
			{Key: "Enter", Description: i18n.T("HintSelect")},
			{Key: "Ctrl+C", Description: i18n.T("HintExit")},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
