package tuning

import (
	"testing"

	"fluxnet/internal/ctrnn"
)

func TestNewAdapterRequiresNetwork(t *testing.T) {
	if _, err := NewAdapter(nil, DefaultGains(), nil); err == nil {
		t.Fatal("expected error for nil network")
	}
}

func TestAdapterStepAdvancesNetwork(t *testing.T) {
	net := ctrnn.NewRLNetwork(2)
	if err := net.SeedExploration(0.5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	adapter, err := NewAdapter(net, DefaultGains(), nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	before := net.MeanAmplitude()
	v := net.InitVoltage()
	v, err = adapter.Step(0.1, v, []float64{0.2, 0}, 0.5)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(v) != 2 {
		t.Fatalf("expected 2 voltages, got=%d", len(v))
	}
	if net.MeanAmplitude() >= before {
		t.Fatalf("expected positive reward to anneal exploration: before=%v after=%v", before, net.MeanAmplitude())
	}
}

func TestAdapterForwardDoesNotAdapt(t *testing.T) {
	net := ctrnn.NewRLNetwork(2)
	if err := net.SeedExploration(0.5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	adapter, err := NewAdapter(net, DefaultGains(), nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	before := net.MeanAmplitude()
	if _, err := adapter.Forward(0.1, net.InitVoltage(), nil); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got := net.MeanAmplitude(); got != before {
		t.Fatalf("forward pass changed amplitudes: before=%v after=%v", before, got)
	}
}

func TestAdapterGainsFreezeKinds(t *testing.T) {
	net := ctrnn.NewRLNetwork(2)
	if err := net.SeedExploration(0.5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	adapter, err := NewAdapter(net, Gains{Weight: 1, Bias: 0, TimeConstant: 0}, nil)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	if _, err := adapter.Step(0.1, net.InitVoltage(), nil, 1.0); err != nil {
		t.Fatalf("step: %v", err)
	}
	// 8 weight amplitudes annealed to the floor, 4 bias/tau amplitudes frozen
	// at 0.5: mean is (4*0.5 + 4*0.001) / 8.
	want := (4*0.5 + 4*0.001) / 8.0
	if got := net.MeanAmplitude(); got != want {
		t.Fatalf("expected mean amplitude %v, got=%v", want, got)
	}
}
