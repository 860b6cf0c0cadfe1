package stats

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fluxnet/internal/model"
)

func testDiagnostics() []model.EpisodeDiagnostics {
	return []model.EpisodeDiagnostics{
		{Episode: 0, Steps: 100, MeanReward: 0.2, MinReward: 0.0, MaxReward: 0.5, MeanAmplitude: 0.9},
		{Episode: 1, Steps: 100, MeanReward: 0.6, MinReward: 0.1, MaxReward: 0.9, MeanAmplitude: 0.4},
		{Episode: 2, Steps: 100, MeanReward: 0.4, MinReward: 0.1, MaxReward: 0.8, MeanAmplitude: 0.1},
	}
}

func TestBuildTrainingStats(t *testing.T) {
	goal := 0.5
	stats, err := BuildTrainingStats("run-1", testDiagnostics(), &goal)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if stats.Episodes != 3 || stats.TotalSteps != 300 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if math.Abs(stats.AvgReward-0.4) > 1e-12 {
		t.Fatalf("avg reward: got=%f", stats.AvgReward)
	}
	if stats.MinReward != 0.2 || stats.MaxReward != 0.6 || stats.BestEpisode != 1 {
		t.Fatalf("extrema: %+v", stats)
	}
	if stats.SuccessEpisodes != 1 || math.Abs(stats.SuccessRate-1.0/3.0) > 1e-12 {
		t.Fatalf("success accounting: %+v", stats)
	}
	if stats.FinalMeanAmplitude != 0.1 {
		t.Fatalf("final amplitude: got=%f", stats.FinalMeanAmplitude)
	}
	if len(stats.ConvergenceTrace) != 3 || stats.ConvergenceTrace[0] != 0.9 {
		t.Fatalf("convergence trace: %v", stats.ConvergenceTrace)
	}
}

func TestBuildTrainingStatsEmpty(t *testing.T) {
	if _, err := BuildTrainingStats("run-1", nil, nil); err == nil {
		t.Fatal("expected error for empty diagnostics")
	}
}

func TestBuildTrainingStatsDoesNotAliasGoal(t *testing.T) {
	goal := 0.5
	stats, err := BuildTrainingStats("run-1", testDiagnostics(), &goal)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	goal = 99
	if *stats.RewardGoal != 0.5 {
		t.Fatalf("goal aliased caller pointer: %f", *stats.RewardGoal)
	}
}

func TestSummaryFormatsStepCount(t *testing.T) {
	stats := TrainingStats{RunID: "run-1", Episodes: 10, TotalSteps: 1234567}
	summary := stats.Summary()
	if !strings.Contains(summary, "steps=1,234,567") {
		t.Fatalf("expected grouped step count, got=%s", summary)
	}
	if !strings.Contains(summary, "run=run-1") {
		t.Fatalf("expected run id, got=%s", summary)
	}
}

func TestWriteTrainingReport(t *testing.T) {
	base := t.TempDir()
	stats, err := BuildTrainingStats("run-1", testDiagnostics(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	dir, err := WriteTrainingReport(base, TrainingReport{
		RunID:   "run-1",
		Stats:   stats,
		History: []float64{0.2, 0.6, 0.4},
	})
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if dir != filepath.Join(base, "reports", "run-1") {
		t.Fatalf("unexpected report dir: %s", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report_Stats.json"))
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	var decoded TrainingStats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if decoded.Episodes != 3 {
		t.Fatalf("unexpected stats: %+v", decoded)
	}

	data, err = os.ReadFile(filepath.Join(dir, "report_Report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report TrainingReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.GeneratedAt == "" || len(report.History) != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWriteTrainingReportRequiresRunID(t *testing.T) {
	if _, err := WriteTrainingReport(t.TempDir(), TrainingReport{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}
