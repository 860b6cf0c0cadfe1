package scape

import (
	"context"
	"testing"
)

type stubController struct {
	id      string
	act     func(observation []float64, reward, dt float64) []float64
	resets  int
	rewards []float64
}

func (s *stubController) ID() string { return s.id }

func (s *stubController) Reset() { s.resets++ }

func (s *stubController) Act(_ context.Context, observation []float64, reward, dt float64) ([]float64, error) {
	s.rewards = append(s.rewards, reward)
	return s.act(observation, reward, dt), nil
}

func TestCartPoleLiteProportionalController(t *testing.T) {
	// Pushing against the displacement should hold the cart near the center
	// and earn clearly more reward than doing nothing.
	active := &stubController{
		id:  "p-controller",
		act: func(obs []float64, _, _ float64) []float64 { return []float64{-obs[0] - 0.5*obs[1]} },
	}
	passive := &stubController{
		id:  "idle",
		act: func([]float64, float64, float64) []float64 { return []float64{0} },
	}

	scape := CartPoleLiteScape{}
	activeFitness, trace, err := scape.Evaluate(context.Background(), active)
	if err != nil {
		t.Fatalf("evaluate active: %v", err)
	}
	passiveFitness, _, err := scape.Evaluate(context.Background(), passive)
	if err != nil {
		t.Fatalf("evaluate passive: %v", err)
	}

	if activeFitness <= passiveFitness {
		t.Fatalf("expected controller to beat idling: active=%v passive=%v", activeFitness, passiveFitness)
	}
	if trace["mode"] != "gt" {
		t.Fatalf("expected gt mode trace, got=%v", trace["mode"])
	}
	if active.resets != 5 {
		t.Fatalf("expected one reset per start position, got=%d", active.resets)
	}
	if active.rewards[0] != 0 {
		t.Fatalf("expected zero reward on the first step, got=%v", active.rewards[0])
	}
}

func TestCartPoleLiteRewardBounded(t *testing.T) {
	agent := &stubController{
		id:  "noisy",
		act: func([]float64, float64, float64) []float64 { return []float64{100} },
	}
	fitness, trace, err := CartPoleLiteScape{}.Evaluate(context.Background(), agent)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if fitness < 0 || fitness > 1 {
		t.Fatalf("expected average reward in [0,1], got=%v", fitness)
	}
	if trace["steps_survived"].(int) <= 0 {
		t.Fatalf("expected positive steps survived, got=%v", trace["steps_survived"])
	}
}

func TestCartPoleLiteModes(t *testing.T) {
	agent := &stubController{
		id:  "idle",
		act: func([]float64, float64, float64) []float64 { return []float64{0} },
	}
	for _, mode := range []string{"gt", "validation", "test"} {
		if _, _, err := (CartPoleLiteScape{}).EvaluateMode(context.Background(), agent, mode); err != nil {
			t.Fatalf("mode %s: %v", mode, err)
		}
	}
	if _, _, err := (CartPoleLiteScape{}).EvaluateMode(context.Background(), agent, "bogus"); err == nil {
		t.Fatal("expected unsupported mode error")
	}
}

func TestCartPoleLiteContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agent := &stubController{
		id:  "idle",
		act: func([]float64, float64, float64) []float64 { return []float64{0} },
	}
	if _, _, err := (CartPoleLiteScape{}).Evaluate(ctx, agent); err == nil {
		t.Fatal("expected context error")
	}
}
