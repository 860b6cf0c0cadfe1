// Package stats summarizes training runs: reward statistics per run and the
// convergence trace of the network's exploration amplitude.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"fluxnet/internal/model"
	"fluxnet/internal/nn"
)

const reportsDir = "reports"

type TrainingStats struct {
	RunID              string    `json:"run_id"`
	Episodes           int       `json:"episodes"`
	TotalSteps         int       `json:"total_steps"`
	AvgReward          float64   `json:"avg_reward"`
	StdReward          float64   `json:"std_reward"`
	MinReward          float64   `json:"min_reward"`
	MaxReward          float64   `json:"max_reward"`
	BestEpisode        int       `json:"best_episode"`
	RewardGoal         *float64  `json:"reward_goal,omitempty"`
	SuccessEpisodes    int       `json:"success_episodes"`
	SuccessRate        float64   `json:"success_rate"`
	FinalMeanAmplitude float64   `json:"final_mean_amplitude"`
	ConvergenceTrace   []float64 `json:"convergence_trace"`
}

type TrainingReport struct {
	RunID       string        `json:"run_id"`
	GeneratedAt string        `json:"generated_at_utc"`
	Stats       TrainingStats `json:"stats"`
	History     []float64     `json:"history"`
}

// BuildTrainingStats folds per-episode diagnostics into one run summary. The
// optional goal marks an episode successful when its mean reward reaches it.
func BuildTrainingStats(runID string, diagnostics []model.EpisodeDiagnostics, goal *float64) (TrainingStats, error) {
	if len(diagnostics) == 0 {
		return TrainingStats{}, fmt.Errorf("diagnostics must not be empty for run %s", runID)
	}

	stats := TrainingStats{
		RunID:            runID,
		Episodes:         len(diagnostics),
		RewardGoal:       cloneFloat64Ptr(goal),
		ConvergenceTrace: make([]float64, 0, len(diagnostics)),
	}

	rewards := make([]float64, 0, len(diagnostics))
	stats.MinReward = diagnostics[0].MeanReward
	stats.MaxReward = diagnostics[0].MeanReward
	for i, d := range diagnostics {
		rewards = append(rewards, d.MeanReward)
		stats.TotalSteps += d.Steps
		stats.ConvergenceTrace = append(stats.ConvergenceTrace, d.MeanAmplitude)
		if d.MeanReward < stats.MinReward {
			stats.MinReward = d.MeanReward
		}
		if d.MeanReward > stats.MaxReward {
			stats.MaxReward = d.MeanReward
			stats.BestEpisode = i
		}
		if goal != nil && d.MeanReward >= *goal {
			stats.SuccessEpisodes++
		}
	}

	avg, err := nn.Avg(rewards)
	if err != nil {
		return TrainingStats{}, err
	}
	std, err := nn.Std(rewards)
	if err != nil {
		return TrainingStats{}, err
	}
	stats.AvgReward = avg
	stats.StdReward = std
	stats.SuccessRate = float64(stats.SuccessEpisodes) / float64(stats.Episodes)
	stats.FinalMeanAmplitude = diagnostics[len(diagnostics)-1].MeanAmplitude
	return stats, nil
}

// Summary renders the one-line run digest printed by the CLI.
func (s TrainingStats) Summary() string {
	return fmt.Sprintf(
		"run=%s episodes=%d steps=%s avg_reward=%.6f best=%.6f best_episode=%d success_rate=%.2f final_amplitude=%.6f",
		s.RunID, s.Episodes, humanize.Comma(int64(s.TotalSteps)),
		s.AvgReward, s.MaxReward, s.BestEpisode, s.SuccessRate, s.FinalMeanAmplitude,
	)
}

// WriteTrainingReport writes the report JSON artifacts under
// baseDir/reports/<run-id>/ and returns the report directory.
func WriteTrainingReport(baseDir string, report TrainingReport) (string, error) {
	if report.RunID == "" {
		return "", fmt.Errorf("report run id is required")
	}
	dir := filepath.Join(baseDir, reportsDir, report.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if report.GeneratedAt == "" {
		report.GeneratedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := writeJSON(filepath.Join(dir, "report_Stats.json"), report.Stats); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "report_History.json"), report.History); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "report_Report.json"), report); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func cloneFloat64Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
