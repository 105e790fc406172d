package theme

import (
	"image/color"
	"testing"
)

func TestScoreColor(t *testing.T) {
	tests := []struct {
		percent int
		want    color.Color
	}{
		{100, Success},
		{80, Success},
		{79, Warning},
		{60, Warning},
		{59, Error},
		{0, Error},
	}
	for _, tt := range tests {
		if got := ScoreColor(tt.percent); got != tt.want {
			t.Errorf("ScoreColor(%d) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}
