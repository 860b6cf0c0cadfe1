package tuning

import (
	"math"
	"testing"
)

func TestFixedRewardPolicy(t *testing.T) {
	p := FixedRewardPolicy{}
	if got := p.Shape(0.4, 0); got != 0.4 {
		t.Fatalf("expected identity shaping, got=%v", got)
	}
	scaled := FixedRewardPolicy{Scale: 0.5}
	if got := scaled.Shape(0.4, 10); got != 0.2 {
		t.Fatalf("expected scaled reward=0.2, got=%v", got)
	}
}

func TestLinearDecayRewardPolicy(t *testing.T) {
	p := LinearDecayRewardPolicy{TotalSteps: 10}
	if got := p.Shape(1.0, 0); got != 1.0 {
		t.Fatalf("expected full reward at step 0, got=%v", got)
	}
	if got := p.Shape(1.0, 5); got != 0.5 {
		t.Fatalf("expected half reward at midpoint, got=%v", got)
	}
	if got := p.Shape(1.0, 20); got != 0 {
		t.Fatalf("expected zero reward past the end, got=%v", got)
	}

	floored := LinearDecayRewardPolicy{TotalSteps: 10, MinScale: 0.1}
	if got := floored.Shape(1.0, 20); got != 0.1 {
		t.Fatalf("expected floor scale 0.1, got=%v", got)
	}
}

func TestWindowNormalizedRewardPolicy(t *testing.T) {
	p := NewWindowNormalizedRewardPolicy(2)
	if got := p.Shape(1.0, 0); got != 1.0 {
		t.Fatalf("expected raw reward with empty window, got=%v", got)
	}
	// Baseline is now 1.0: a repeat of the same reward shapes to zero.
	if got := p.Shape(1.0, 1); got != 0 {
		t.Fatalf("expected zero advantage, got=%v", got)
	}
	// Baseline avg(1,1)=1: regression shapes negative.
	if got := p.Shape(0.5, 2); got != -0.5 {
		t.Fatalf("expected negative advantage, got=%v", got)
	}
	// Window is 2: baseline avg(1,0.5)=0.75.
	if got := p.Shape(1.0, 3); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("expected advantage 0.25, got=%v", got)
	}
}

func TestRewardPolicyFromConfig(t *testing.T) {
	for _, name := range []string{"", "fixed", "linear_decay", "window_normalized"} {
		if _, err := RewardPolicyFromConfig(name, 10); err != nil {
			t.Fatalf("policy %q: %v", name, err)
		}
	}
	if _, err := RewardPolicyFromConfig("unknown", 0); err == nil {
		t.Fatal("expected unknown policy error")
	}
}
