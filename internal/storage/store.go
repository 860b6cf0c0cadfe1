package storage

import (
	"context"

	"fluxnet/internal/model"
)

// Store defines persistence operations for training runs and network
// snapshots.
type Store interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	SaveNetwork(ctx context.Context, network model.NetworkRecord) error
	GetNetwork(ctx context.Context, id string) (model.NetworkRecord, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveRewardHistory(ctx context.Context, runID string, history []float64) error
	GetRewardHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.EpisodeDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.EpisodeDiagnostics, bool, error)
	SaveScapeSummary(ctx context.Context, summary model.ScapeSummary) error
	GetScapeSummary(ctx context.Context, name string) (model.ScapeSummary, bool, error)
}
