// Package platform hosts the training infrastructure: a registry of scapes, a
// persistent store, and the episode loop that trains reward-adaptive networks
// against a scape.
package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fluxnet/internal/agent"
	"fluxnet/internal/ctrnn"
	"fluxnet/internal/model"
	"fluxnet/internal/scape"
	"fluxnet/internal/storage"
	"fluxnet/internal/tuning"
)

type Config struct {
	Store  storage.Store
	Scapes []scape.Scape
}

// Trainer owns the scape registry and the store, and runs training sessions
// against them. A Trainer must be initialized before use and is safe for
// concurrent callers.
type Trainer struct {
	store storage.Store

	mu      sync.RWMutex
	scapes  map[string]scape.Scape
	started bool
	runs    map[string]context.CancelFunc

	config Config
}

func NewTrainer(cfg Config) *Trainer {
	return &Trainer{
		store:  cfg.Store,
		scapes: make(map[string]scape.Scape),
		runs:   make(map[string]context.CancelFunc),
		config: cfg,
	}
}

func (t *Trainer) Init(ctx context.Context) error {
	if t.store == nil {
		return fmt.Errorf("store is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}
	if err := t.store.Init(ctx); err != nil {
		return err
	}
	for i, s := range t.config.Scapes {
		if s == nil {
			t.scapes = make(map[string]scape.Scape)
			return fmt.Errorf("scape is nil at index %d", i)
		}
		name := s.Name()
		if name == "" {
			t.scapes = make(map[string]scape.Scape)
			return fmt.Errorf("scape name is required at index %d", i)
		}
		if _, exists := t.scapes[name]; exists {
			t.scapes = make(map[string]scape.Scape)
			return fmt.Errorf("duplicate scape: %s", name)
		}
		t.scapes[name] = s
	}
	t.started = true
	return nil
}

// Reset clears all persisted state and re-registers the configured scapes.
func (t *Trainer) Reset(ctx context.Context) error {
	t.Stop()
	if err := t.store.Reset(ctx); err != nil {
		return err
	}
	return t.Init(ctx)
}

// Stop cancels every active run and marks the trainer stopped.
func (t *Trainer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cancel := range t.runs {
		cancel()
	}
	t.runs = make(map[string]context.CancelFunc)
	t.scapes = make(map[string]scape.Scape)
	t.started = false
}

func (t *Trainer) Started() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.started
}

func (t *Trainer) Store() storage.Store {
	return t.store
}

func (t *Trainer) RegisterScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return fmt.Errorf("trainer is not initialized")
	}
	t.scapes[name] = s
	return nil
}

func (t *Trainer) GetScape(name string) (scape.Scape, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.scapes[name]
	return s, ok
}

func (t *Trainer) RegisteredScapes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.scapes))
	for name := range t.scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StopRun cancels one active training session by run id.
func (t *Trainer) StopRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	t.mu.RLock()
	cancel, ok := t.runs[runID]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	cancel()
	return nil
}

// TrainConfig describes one training session. Workers > 1 trains that many
// independently seeded networks in parallel and keeps the best.
type TrainConfig struct {
	RunID     string
	ScapeName string
	// Mode selects the scape's evaluation mode when it supports modes;
	// empty means the scape default.
	Mode       string
	Nodes      int
	Activation string
	Episodes   int
	Workers    int
	Seed       int64
	// InitScale bounds the uniform random initial centers for weights and
	// biases. Zero leaves all centers at their canonical defaults.
	InitScale float64
	// ExplorationAmplitude seeds every Fluctuator's amplitude before the
	// first episode. At the default zero amplitude the oscillation never
	// manifests and nothing adapts.
	ExplorationAmplitude float64
	Gains                tuning.Gains
	RewardPolicy         string
	RewardPolicyParam    float64
	// RewardGoal, when set, stops a worker early once an episode's mean
	// reward reaches it.
	RewardGoal *float64

	InputGain   float64
	OutputCount int
	OutputScale float64
}

type TrainResult struct {
	RunID          string
	NetworkID      string
	BestWorker     int
	BestMeanReward float64
	GoalReached    bool
	History        []float64
	Diagnostics    []model.EpisodeDiagnostics
	Network        model.NetworkRecord
}

type workerResult struct {
	worker      int
	history     []float64
	diagnostics []model.EpisodeDiagnostics
	net         *ctrnn.RLNetwork
	best        float64
	goalReached bool
	err         error
}

// Train runs one training session and persists the run record, its reward
// history and diagnostics, the best network snapshot, and the scape summary.
func (t *Trainer) Train(ctx context.Context, cfg TrainConfig) (TrainResult, error) {
	if cfg.ScapeName == "" {
		return TrainResult{}, fmt.Errorf("scape name is required")
	}
	if cfg.Nodes <= 0 {
		return TrainResult{}, fmt.Errorf("node count must be positive, got %d", cfg.Nodes)
	}
	if cfg.Episodes <= 0 {
		cfg.Episodes = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	t.mu.RLock()
	targetScape, ok := t.scapes[cfg.ScapeName]
	started := t.started
	t.mu.RUnlock()
	if !started {
		return TrainResult{}, fmt.Errorf("trainer is not initialized")
	}
	if !ok {
		return TrainResult{}, fmt.Errorf("scape not registered: %s", cfg.ScapeName)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := t.registerRun(runID, cancel); err != nil {
		return TrainResult{}, err
	}
	defer t.unregisterRun(runID)

	results := make([]workerResult, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			results[worker] = t.trainWorker(runCtx, targetScape, cfg, runID, worker)
		}(w)
	}
	wg.Wait()

	best := -1
	for w := range results {
		if results[w].err != nil {
			return TrainResult{}, fmt.Errorf("worker %d: %w", w, results[w].err)
		}
		if best < 0 || results[w].best > results[best].best {
			best = w
		}
	}
	winner := results[best]

	networkID := "net-" + runID
	networkRecord := winner.net.Record(networkID)
	networkRecord.VersionedRecord = storage.CurrentVersion()

	totalSteps := 0
	for _, d := range winner.diagnostics {
		totalSteps += d.Steps
	}
	run := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		Scape:           cfg.ScapeName,
		NetworkID:       networkID,
		Nodes:           cfg.Nodes,
		Episodes:        len(winner.diagnostics),
		Steps:           totalSteps,
		Seed:            cfg.Seed,
		Workers:         cfg.Workers,
		BestMeanReward:  winner.best,
		GoalReached:     winner.goalReached,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := t.store.SaveNetwork(ctx, networkRecord); err != nil {
		return TrainResult{}, err
	}
	if err := t.store.SaveRun(ctx, run); err != nil {
		return TrainResult{}, err
	}
	if err := t.store.SaveRewardHistory(ctx, runID, winner.history); err != nil {
		return TrainResult{}, err
	}
	if err := t.store.SaveDiagnostics(ctx, runID, winner.diagnostics); err != nil {
		return TrainResult{}, err
	}
	if err := t.updateScapeSummary(ctx, cfg.ScapeName, winner.best); err != nil {
		return TrainResult{}, err
	}

	return TrainResult{
		RunID:          runID,
		NetworkID:      networkID,
		BestWorker:     winner.worker,
		BestMeanReward: winner.best,
		GoalReached:    winner.goalReached,
		History:        winner.history,
		Diagnostics:    winner.diagnostics,
		Network:        networkRecord,
	}, nil
}

func (t *Trainer) trainWorker(ctx context.Context, targetScape scape.Scape, cfg TrainConfig, runID string, worker int) workerResult {
	result := workerResult{worker: worker}

	activation := cfg.Activation
	if activation == "" {
		activation = ctrnn.DefaultActivation
	}
	net, err := ctrnn.NewRLNetworkWithActivation(cfg.Nodes, activation)
	if err != nil {
		result.err = err
		return result
	}

	if cfg.InitScale > 0 {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(worker)))
		for i := 0; i < cfg.Nodes; i++ {
			if err := net.SetBias(i, uniform(rng, cfg.InitScale)); err != nil {
				result.err = err
				return result
			}
			for j := 0; j < cfg.Nodes; j++ {
				if err := net.SetWeight(j, i, uniform(rng, cfg.InitScale)); err != nil {
					result.err = err
					return result
				}
			}
		}
	}
	if cfg.ExplorationAmplitude > 0 {
		if err := net.SeedExploration(cfg.ExplorationAmplitude); err != nil {
			result.err = err
			return result
		}
	}

	gains := cfg.Gains
	if gains == (tuning.Gains{}) {
		gains = tuning.DefaultGains()
	}
	policy, err := tuning.RewardPolicyFromConfig(cfg.RewardPolicy, cfg.RewardPolicyParam)
	if err != nil {
		result.err = err
		return result
	}
	adapter, err := tuning.NewAdapter(net, gains, policy)
	if err != nil {
		result.err = err
		return result
	}
	cortex, err := agent.NewCortex(adapter, agent.Config{
		ID:          fmt.Sprintf("%s-w%d", runID, worker),
		InputGain:   cfg.InputGain,
		OutputCount: cfg.OutputCount,
		OutputScale: cfg.OutputScale,
	})
	if err != nil {
		result.err = err
		return result
	}

	result.net = net
	for episode := 0; episode < cfg.Episodes; episode++ {
		fitness, trace, err := evaluate(ctx, targetScape, cortex, cfg.Mode)
		if err != nil {
			result.err = err
			return result
		}
		mean := float64(fitness)

		diag := model.EpisodeDiagnostics{
			Episode:       episode,
			Steps:         traceInt(trace, "steps", "steps_survived"),
			MeanReward:    mean,
			MinReward:     traceFloat(trace, "min_reward", mean),
			MaxReward:     traceFloat(trace, "max_reward", mean),
			MeanAmplitude: net.MeanAmplitude(),
		}
		result.diagnostics = append(result.diagnostics, diag)
		result.history = append(result.history, mean)
		if episode == 0 || mean > result.best {
			result.best = mean
		}
		if cfg.RewardGoal != nil && mean >= *cfg.RewardGoal {
			result.goalReached = true
			break
		}
	}
	return result
}

func evaluate(ctx context.Context, s scape.Scape, c scape.Controller, mode string) (scape.Fitness, scape.Trace, error) {
	if mode != "" {
		modeAware, ok := s.(scape.ModeAwareScape)
		if !ok {
			return 0, nil, fmt.Errorf("scape %s does not support modes", s.Name())
		}
		return modeAware.EvaluateMode(ctx, c, mode)
	}
	return s.Evaluate(ctx, c)
}

func (t *Trainer) updateScapeSummary(ctx context.Context, scapeName string, best float64) error {
	summary, ok, err := t.store.GetScapeSummary(ctx, scapeName)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.ScapeSummary{
			VersionedRecord: storage.CurrentVersion(),
			Name:            scapeName,
			Description:     fmt.Sprintf("best observed mean reward for scape %s", scapeName),
		}
	}
	if best > summary.BestMeanReward {
		summary.BestMeanReward = best
	}
	return t.store.SaveScapeSummary(ctx, summary)
}

func (t *Trainer) registerRun(runID string, cancel context.CancelFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return fmt.Errorf("trainer is not initialized")
	}
	if _, exists := t.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	t.runs[runID] = cancel
	return nil
}

func (t *Trainer) unregisterRun(runID string) {
	t.mu.Lock()
	delete(t.runs, runID)
	t.mu.Unlock()
}

func uniform(rng *rand.Rand, scale float64) float64 {
	return (rng.Float64()*2 - 1) * scale
}

func traceFloat(trace scape.Trace, key string, fallback float64) float64 {
	if trace == nil {
		return fallback
	}
	if v, ok := trace[key].(float64); ok {
		return v
	}
	return fallback
}

func traceInt(trace scape.Trace, keys ...string) int {
	if trace == nil {
		return 0
	}
	for _, key := range keys {
		if v, ok := trace[key].(int); ok {
			return v
		}
	}
	return 0
}
