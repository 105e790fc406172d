package home

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/customtext"
	historyscreen "github.com/VitoPalumboPodcast/Invalsi/internal/screens/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/setup"
)

func newTestHome(t *testing.T, scores ...int) *HomeScreen {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := history.NewLog(history.NewMemoryKV(), history.WithLogger(logger))
	for i, sc := range scores {
		err := log.Append(context.Background(), history.Record{
			ID:           string(rune('a' + i)),
			CreatedAt:    time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
			Config:       quiz.DefaultConfig(),
			ScorePercent: sc,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return New(screen.Deps{History: log, Logger: logger})
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestRecap(t *testing.T) {
	h := newTestHome(t, 50, 75, 100)
	h.Update(h.Init()())
	if !h.loaded || h.tests != 3 || h.average != 75 {
		t.Errorf("loaded = %v, tests = %d, average = %d", h.loaded, h.tests, h.average)
	}
	if h.last == nil || h.last.ID != "c" {
		t.Errorf("last = %+v, want newest record", h.last)
	}
}

func TestRecap_Empty(t *testing.T) {
	h := newTestHome(t)
	h.Update(h.Init()())
	if h.tests != 0 || h.last != nil {
		t.Errorf("tests = %d, last = %v", h.tests, h.last)
	}
	if h.View(100, 30) == "" {
		t.Error("empty view")
	}
}

func TestMenu_PushesScreens(t *testing.T) {
	tests := []struct {
		downs int
		check func(screen.Screen) bool
	}{
		{0, func(s screen.Screen) bool { _, ok := s.(*setup.SetupScreen); return ok }},
		{1, func(s screen.Screen) bool { _, ok := s.(*customtext.CustomTextScreen); return ok }},
		{2, func(s screen.Screen) bool { _, ok := s.(*historyscreen.HistoryScreen); return ok }},
	}
	for _, tt := range tests {
		h := newTestHome(t)
		for i := 0; i < tt.downs; i++ {
			h.Update(specialKey(tea.KeyDown))
		}
		_, cmd := h.Update(specialKey(tea.KeyEnter))
		if cmd == nil {
			t.Fatalf("item %d: no command", tt.downs)
		}
		push, ok := cmd().(router.PushScreenMsg)
		if !ok || !tt.check(push.Screen) {
			t.Errorf("item %d pushed %T", tt.downs, push.Screen)
		}
	}
}

func TestMenu_Quit(t *testing.T) {
	h := newTestHome(t)
	for i := 0; i < 3; i++ {
		h.Update(specialKey(tea.KeyDown))
	}
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("last item should quit")
	}
}
