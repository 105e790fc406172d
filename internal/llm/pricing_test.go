package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-3-pro-preview")
	if c == nil {
		t.Fatal("expected pricing for the default gemini model")
	}
	got := c.Cost(1_000_000, 500_000)
	if math.Abs(got-8) > 1e-9 {
		t.Errorf("Cost = %v, want 8", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Error("unknown models have no pricing")
	}
}
