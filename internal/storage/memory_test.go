package storage

import (
	"context"
	"testing"

	"fluxnet/internal/model"
)

func testRun(id, createdAt string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		Scape:           "cart-pole-lite",
		Nodes:           3,
		Episodes:        10,
		CreatedAt:       createdAt,
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveRun(ctx, testRun("run-1", "2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("save run: %v", err)
	}
	run, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if run.Scape != "cart-pole-lite" || run.Nodes != 3 {
		t.Fatalf("unexpected run: %+v", run)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_ = store.SaveRun(ctx, testRun("run-b", "2026-01-02T00:00:00Z"))
	_ = store.SaveRun(ctx, testRun("run-a", "2026-01-01T00:00:00Z"))
	_ = store.SaveRun(ctx, testRun("run-c", "2026-01-02T00:00:00Z"))

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got=%d", len(runs))
	}
	if runs[0].ID != "run-a" || runs[1].ID != "run-b" || runs[2].ID != "run-c" {
		t.Fatalf("unexpected order: %v %v %v", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestMemoryStoreNetworkAndHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	network := model.NetworkRecord{
		VersionedRecord: CurrentVersion(),
		ID:              "net-1",
		Nodes:           2,
		Activation:      "sigmoid",
	}
	if err := store.SaveNetwork(ctx, network); err != nil {
		t.Fatalf("save network: %v", err)
	}
	got, ok, err := store.GetNetwork(ctx, "net-1")
	if err != nil || !ok {
		t.Fatalf("get network: ok=%t err=%v", ok, err)
	}
	if got.Nodes != 2 {
		t.Fatalf("unexpected network: %+v", got)
	}

	history := []float64{0.1, 0.4, 0.7}
	if err := store.SaveRewardHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history[0] = 99 // stored copy must not alias
	stored, ok, err := store.GetRewardHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%t err=%v", ok, err)
	}
	if stored[0] != 0.1 {
		t.Fatalf("history aliased caller slice: %v", stored)
	}
}

func TestMemoryStoreDiagnosticsAndSummary(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	diags := []model.EpisodeDiagnostics{{Episode: 0, MeanReward: 0.5, MeanAmplitude: 0.2}}
	if err := store.SaveDiagnostics(ctx, "run-1", diags); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	got, ok, err := store.GetDiagnostics(ctx, "run-1")
	if err != nil || !ok || len(got) != 1 {
		t.Fatalf("get diagnostics: ok=%t err=%v got=%v", ok, err, got)
	}

	summary := model.ScapeSummary{VersionedRecord: CurrentVersion(), Name: "cart-pole-lite", BestMeanReward: 0.8}
	if err := store.SaveScapeSummary(ctx, summary); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	s, ok, err := store.GetScapeSummary(ctx, "cart-pole-lite")
	if err != nil || !ok {
		t.Fatalf("get summary: ok=%t err=%v", ok, err)
	}
	if s.BestMeanReward != 0.8 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	_ = store.SaveRun(ctx, testRun("run-1", "2026-01-01T00:00:00Z"))
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty store after reset, got=%d runs", len(runs))
	}
}
