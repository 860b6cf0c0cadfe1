package platform

import (
	"context"
	"testing"

	"fluxnet/internal/scape"
	"fluxnet/internal/storage"
)

func newTestTrainer(t *testing.T) *Trainer {
	t.Helper()
	trainer := NewTrainer(Config{
		Store:  storage.NewMemoryStore(),
		Scapes: []scape.Scape{scape.SignalMimicScape{}, scape.CartPoleLiteScape{}},
	})
	if err := trainer.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return trainer
}

func TestTrainerInitRequiresStore(t *testing.T) {
	trainer := NewTrainer(Config{})
	if err := trainer.Init(context.Background()); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestTrainerInitRejectsDuplicateScapes(t *testing.T) {
	trainer := NewTrainer(Config{
		Store:  storage.NewMemoryStore(),
		Scapes: []scape.Scape{scape.SignalMimicScape{}, scape.SignalMimicScape{}},
	})
	if err := trainer.Init(context.Background()); err == nil {
		t.Fatal("expected error for duplicate scape")
	}
	if trainer.Started() {
		t.Fatal("trainer must not start after failed init")
	}
}

func TestTrainerRegisteredScapes(t *testing.T) {
	trainer := newTestTrainer(t)
	names := trainer.RegisteredScapes()
	if len(names) != 2 || names[0] != "cart-pole-lite" || names[1] != "signal-mimic" {
		t.Fatalf("unexpected scapes: %v", names)
	}
}

func TestTrainPersistsRunArtifacts(t *testing.T) {
	ctx := context.Background()
	trainer := newTestTrainer(t)

	result, err := trainer.Train(ctx, TrainConfig{
		RunID:                "run-1",
		ScapeName:            "signal-mimic",
		Nodes:                2,
		Episodes:             3,
		Seed:                 7,
		InitScale:            0.5,
		ExplorationAmplitude: 0.05,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if result.RunID != "run-1" || len(result.History) != 3 || len(result.Diagnostics) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}

	store := trainer.Store()
	run, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if run.Scape != "signal-mimic" || run.Episodes != 3 || run.NetworkID != result.NetworkID {
		t.Fatalf("unexpected run record: %+v", run)
	}
	if run.Steps != 600 {
		t.Fatalf("expected 600 total steps, got=%d", run.Steps)
	}

	history, ok, err := store.GetRewardHistory(ctx, "run-1")
	if err != nil || !ok || len(history) != 3 {
		t.Fatalf("get history: ok=%t err=%v history=%v", ok, err, history)
	}
	diags, ok, err := store.GetDiagnostics(ctx, "run-1")
	if err != nil || !ok || len(diags) != 3 {
		t.Fatalf("get diagnostics: ok=%t err=%v", ok, err)
	}
	if diags[0].Steps != 200 || diags[0].MeanAmplitude <= 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags[0])
	}

	network, ok, err := store.GetNetwork(ctx, result.NetworkID)
	if err != nil || !ok {
		t.Fatalf("get network: ok=%t err=%v", ok, err)
	}
	if network.Nodes != 2 || len(network.Weights) != 2 {
		t.Fatalf("unexpected network record: %+v", network)
	}

	summary, ok, err := store.GetScapeSummary(ctx, "signal-mimic")
	if err != nil || !ok {
		t.Fatalf("get summary: ok=%t err=%v", ok, err)
	}
	if summary.BestMeanReward != result.BestMeanReward {
		t.Fatalf("summary best %f, result best %f", summary.BestMeanReward, result.BestMeanReward)
	}
}

func TestTrainGeneratesRunID(t *testing.T) {
	trainer := newTestTrainer(t)
	result, err := trainer.Train(context.Background(), TrainConfig{
		ScapeName: "signal-mimic",
		Nodes:     2,
		Episodes:  1,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected generated run id")
	}
}

func TestTrainUnknownScape(t *testing.T) {
	trainer := newTestTrainer(t)
	if _, err := trainer.Train(context.Background(), TrainConfig{ScapeName: "maze", Nodes: 2}); err == nil {
		t.Fatal("expected error for unknown scape")
	}
}

func TestTrainRewardGoalStopsEarly(t *testing.T) {
	trainer := newTestTrainer(t)
	goal := -10.0 // any episode reaches this
	result, err := trainer.Train(context.Background(), TrainConfig{
		ScapeName:  "signal-mimic",
		Nodes:      2,
		Episodes:   5,
		RewardGoal: &goal,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !result.GoalReached || len(result.Diagnostics) != 1 {
		t.Fatalf("expected early stop, got %d episodes goal=%t", len(result.Diagnostics), result.GoalReached)
	}
}

func TestTrainMultipleWorkersPicksBest(t *testing.T) {
	trainer := newTestTrainer(t)
	result, err := trainer.Train(context.Background(), TrainConfig{
		RunID:                "run-workers",
		ScapeName:            "cart-pole-lite",
		Nodes:                3,
		Episodes:             2,
		Workers:              3,
		Seed:                 11,
		InitScale:            0.5,
		ExplorationAmplitude: 0.05,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if result.BestWorker < 0 || result.BestWorker >= 3 {
		t.Fatalf("best worker out of range: %d", result.BestWorker)
	}
	if len(result.Diagnostics) != 2 {
		t.Fatalf("expected winner diagnostics, got=%d", len(result.Diagnostics))
	}
}

func TestTrainCanceledContext(t *testing.T) {
	trainer := newTestTrainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := trainer.Train(ctx, TrainConfig{ScapeName: "signal-mimic", Nodes: 2}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestStopRunInactive(t *testing.T) {
	trainer := newTestTrainer(t)
	if err := trainer.StopRun("missing"); err == nil {
		t.Fatal("expected error for inactive run")
	}
}

func TestTrainerReset(t *testing.T) {
	ctx := context.Background()
	trainer := newTestTrainer(t)
	if _, err := trainer.Train(ctx, TrainConfig{RunID: "run-1", ScapeName: "signal-mimic", Nodes: 2, Episodes: 1}); err != nil {
		t.Fatalf("train: %v", err)
	}
	if err := trainer.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, err := trainer.Store().ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected cleared store, got %d runs", len(runs))
	}
	if len(trainer.RegisteredScapes()) != 2 {
		t.Fatalf("expected scapes re-registered after reset")
	}
}
