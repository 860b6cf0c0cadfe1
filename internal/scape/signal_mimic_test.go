package scape

import (
	"context"
	"math"
	"testing"
)

func TestSignalMimicPerfectTracker(t *testing.T) {
	// An oracle that predicts the next sample exactly earns reward 1 on every
	// step after the first.
	freq := 1.0
	step := 0
	oracle := &stubController{
		id: "oracle",
		act: func(obs []float64, _, dt float64) []float64 {
			phase := freq * float64(step) * dt
			step++
			return []float64{math.Sin(phase + freq*dt)}
		},
	}

	fitness, trace, err := SignalMimicScape{}.Evaluate(context.Background(), oracle)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if float64(fitness) < 0.999 {
		t.Fatalf("expected near-perfect reward, got=%v", fitness)
	}
	if mse := trace["mse"].(float64); mse > 1e-18 {
		t.Fatalf("expected zero mse, got=%v", mse)
	}
}

func TestSignalMimicConstantOutput(t *testing.T) {
	flat := &stubController{
		id:  "flat",
		act: func([]float64, float64, float64) []float64 { return []float64{0} },
	}
	fitness, _, err := SignalMimicScape{}.Evaluate(context.Background(), flat)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if float64(fitness) >= 0.999 {
		t.Fatalf("expected imperfect reward for flat output, got=%v", fitness)
	}
	if float64(fitness) < -1 {
		t.Fatalf("reward floor violated, got=%v", fitness)
	}
}

func TestSignalMimicModes(t *testing.T) {
	flat := &stubController{
		id:  "flat",
		act: func([]float64, float64, float64) []float64 { return []float64{0} },
	}
	for _, mode := range []string{"gt", "validation", "test"} {
		if _, _, err := (SignalMimicScape{}).EvaluateMode(context.Background(), flat, mode); err != nil {
			t.Fatalf("mode %s: %v", mode, err)
		}
	}
	if _, _, err := (SignalMimicScape{}).EvaluateMode(context.Background(), flat, "bogus"); err == nil {
		t.Fatal("expected unsupported mode error")
	}
}
