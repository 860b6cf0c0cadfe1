// Package fluxnet is the embedding API: a Client owns a store and a trainer
// and exposes the training, reporting and query operations the CLI wraps.
package fluxnet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fluxnet/internal/model"
	"fluxnet/internal/platform"
	"fluxnet/internal/scape"
	"fluxnet/internal/scapeid"
	"fluxnet/internal/stats"
	"fluxnet/internal/storage"
	"fluxnet/internal/tuning"
)

const (
	defaultReportsDir = "reports_base"
	defaultDBPath     = "fluxnet.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ReportsDir string
}

type Client struct {
	store   storage.Store
	trainer *platform.Trainer

	reportsDir string
}

type TrainRequest struct {
	RunID                string
	Scape                string
	Mode                 string
	Nodes                int
	Episodes             int
	Workers              int
	Seed                 int64
	InitScale            float64
	ExplorationAmplitude float64
	Activation           string
	RewardPolicy         string
	RewardPolicyParam    float64
	RewardGoal           *float64
	WeightGain           float64
	BiasGain             float64
	TimeConstantGain     float64
	InputGain            float64
	OutputCount          int
	OutputScale          float64
	WriteReport          bool
}

type TrainSummary struct {
	RunID          string
	NetworkID      string
	BestWorker     int
	BestMeanReward float64
	GoalReached    bool
	History        []float64
	Stats          stats.TrainingStats
	ReportDir      string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Scape          string
	Nodes          int
	Episodes       int
	Steps          int
	Seed           int64
	Workers        int
	BestMeanReward float64
	GoalReached    bool
}

type RewardHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ScapeSummaryItem struct {
	Name           string
	Description    string
	BestMeanReward float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = defaultReportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		reportsDir: reportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureTrainer(ctx)
	return err
}

func (c *Client) Reset(ctx context.Context) error {
	trainer, err := c.ensureTrainer(ctx)
	if err != nil {
		return err
	}
	return trainer.Reset(ctx)
}

func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	req.Scape = scapeid.Normalize(req.Scape)
	req.Mode = scapeid.NormalizeMode(req.Mode)
	if req.Scape == "" {
		req.Scape = "signal-mimic"
	}
	if req.Nodes <= 0 {
		req.Nodes = 4
	}
	if req.Episodes <= 0 {
		req.Episodes = 50
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.InitScale == 0 {
		req.InitScale = 0.5
	}
	if req.ExplorationAmplitude == 0 {
		req.ExplorationAmplitude = 0.05
	}
	if req.RewardPolicy == "" {
		// Tasks with all-positive rewards need a baseline or exploration
		// only ever shrinks.
		req.RewardPolicy = "window_normalized"
	}
	if req.WeightGain == 0 && req.BiasGain == 0 && req.TimeConstantGain == 0 {
		gains := tuning.DefaultGains()
		req.WeightGain = gains.Weight
		req.BiasGain = gains.Bias
		req.TimeConstantGain = gains.TimeConstant
	}

	trainer, err := c.ensureTrainer(ctx)
	if err != nil {
		return TrainSummary{}, err
	}

	result, err := trainer.Train(ctx, platform.TrainConfig{
		RunID:                req.RunID,
		ScapeName:            req.Scape,
		Mode:                 req.Mode,
		Nodes:                req.Nodes,
		Activation:           req.Activation,
		Episodes:             req.Episodes,
		Workers:              req.Workers,
		Seed:                 req.Seed,
		InitScale:            req.InitScale,
		ExplorationAmplitude: req.ExplorationAmplitude,
		Gains: tuning.Gains{
			Weight:       req.WeightGain,
			Bias:         req.BiasGain,
			TimeConstant: req.TimeConstantGain,
		},
		RewardPolicy:      req.RewardPolicy,
		RewardPolicyParam: req.RewardPolicyParam,
		RewardGoal:        req.RewardGoal,
		InputGain:         req.InputGain,
		OutputCount:       req.OutputCount,
		OutputScale:       req.OutputScale,
	})
	if err != nil {
		return TrainSummary{}, err
	}

	trainingStats, err := stats.BuildTrainingStats(result.RunID, result.Diagnostics, req.RewardGoal)
	if err != nil {
		return TrainSummary{}, err
	}

	summary := TrainSummary{
		RunID:          result.RunID,
		NetworkID:      result.NetworkID,
		BestWorker:     result.BestWorker,
		BestMeanReward: result.BestMeanReward,
		GoalReached:    result.GoalReached,
		History:        append([]float64(nil), result.History...),
		Stats:          trainingStats,
	}
	if req.WriteReport {
		reportDir, err := stats.WriteTrainingReport(c.reportsDir, stats.TrainingReport{
			RunID:   result.RunID,
			Stats:   trainingStats,
			History: result.History,
		})
		if err != nil {
			return TrainSummary{}, err
		}
		summary.ReportDir = filepath.Clean(reportDir)
	}
	return summary, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if _, err := c.ensureTrainer(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	// Most recent first.
	out := make([]RunItem, 0, len(runs))
	for i := len(runs) - 1; i >= 0 && len(out) < req.Limit; i-- {
		r := runs[i]
		out = append(out, RunItem{
			RunID:          r.ID,
			CreatedAtUTC:   r.CreatedAt,
			Scape:          r.Scape,
			Nodes:          r.Nodes,
			Episodes:       r.Episodes,
			Steps:          r.Steps,
			Seed:           r.Seed,
			Workers:        r.Workers,
			BestMeanReward: r.BestMeanReward,
			GoalReached:    r.GoalReached,
		})
	}
	return out, nil
}

func (c *Client) RewardHistory(ctx context.Context, req RewardHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetRewardHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("reward history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.EpisodeDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) Network(ctx context.Context, id string) (model.NetworkRecord, error) {
	if id == "" {
		return model.NetworkRecord{}, errors.New("network id is required")
	}
	if _, err := c.ensureTrainer(ctx); err != nil {
		return model.NetworkRecord{}, err
	}
	network, ok, err := c.store.GetNetwork(ctx, id)
	if err != nil {
		return model.NetworkRecord{}, err
	}
	if !ok {
		return model.NetworkRecord{}, fmt.Errorf("network not found: %s", id)
	}
	return network, nil
}

func (c *Client) Scapes(ctx context.Context) ([]ScapeSummaryItem, error) {
	trainer, err := c.ensureTrainer(ctx)
	if err != nil {
		return nil, err
	}
	names := trainer.RegisteredScapes()
	out := make([]ScapeSummaryItem, 0, len(names))
	for _, name := range names {
		item := ScapeSummaryItem{Name: name}
		summary, ok, err := c.store.GetScapeSummary(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			item.Description = summary.Description
			item.BestMeanReward = summary.BestMeanReward
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if _, err := c.ensureTrainer(ctx); err != nil {
		return "", err
	}
	if latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return "", err
		}
		if len(runs) == 0 {
			return "", errors.New("no runs available")
		}
		return runs[len(runs)-1].ID, nil
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func (c *Client) ensureTrainer(ctx context.Context) (*platform.Trainer, error) {
	if c.trainer != nil && c.trainer.Started() {
		return c.trainer, nil
	}
	trainer := NewDefaultTrainer(c.store)
	if err := trainer.Init(ctx); err != nil {
		return nil, err
	}
	c.trainer = trainer
	return trainer, nil
}

// NewDefaultTrainer wires a trainer with the built-in scapes over the given
// store.
func NewDefaultTrainer(store storage.Store) *platform.Trainer {
	return platform.NewTrainer(platform.Config{
		Store: store,
		Scapes: []scape.Scape{
			scape.SignalMimicScape{},
			scape.CartPoleLiteScape{},
		},
	})
}
