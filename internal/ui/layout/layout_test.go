package layout

import (
	"strings"
	"testing"
	"time"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{65 * time.Second, "1:05"},
		{90 * time.Minute, "1:30:00"},
		{59*time.Minute + 59*time.Second + 900*time.Millisecond, "59:59"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.d); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader("Prova", Status{Text: "12:00"}, 80)
	for _, want := range []string{"INVALSI", "Prova", "12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(79, 24) || !IsTooSmall(80, 23) || IsTooSmall(80, 24) {
		t.Error("IsTooSmall boundaries wrong")
	}
}
