package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg goes back one screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen for Screen, e.g. a finished test
// for its result, so Esc does not lead back into the test.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg goes back to the bottom screen, re-initialising it.
type PopToRootMsg struct{}

// Router is the screen stack. The bottom screen is never removed. Screens
// implementing screen.Closer are closed when they leave the stack.
type Router struct {
	stack []screen.Screen
}

// New creates a router showing initial.
func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push opens s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen. The bottom screen stays.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.truncate(len(r.stack) - 1)
	return nil
}

// Replace closes the top screen and puts s in its place.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) <= 1 {
		if len(r.stack) == 1 {
			closeScreen(r.stack[0])
		}
		r.stack = []screen.Screen{s}
		return s.Init()
	}
	r.truncate(len(r.stack) - 1)
	return r.Push(s)
}

// PopToRoot closes everything above the bottom screen and runs its Init
// again so it can refresh.
func (r *Router) PopToRoot() tea.Cmd {
	r.truncate(1)
	return r.stack[0].Init()
}

// CloseAll closes every screen, top first. Used on quit.
func (r *Router) CloseAll() {
	for i := len(r.stack) - 1; i >= 0; i-- {
		closeScreen(r.stack[i])
	}
}

func (r *Router) truncate(depth int) {
	for i := len(r.stack) - 1; i >= depth; i-- {
		closeScreen(r.stack[i])
		r.stack[i] = nil
	}
	r.stack = r.stack[:depth]
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

// Active returns the top screen.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of open screens.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopToRootMsg:
		return r.PopToRoot()
	}

	active := r.Active()
	if active == nil {
		return nil
	}
	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
