package scape

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// SignalMimicScape asks the controller to reproduce a reference sine wave one
// step ahead of time: the observation is the current reference sample, the
// expected output is the next one. Reward per step is 1 minus the absolute
// tracking error, floored at -1 so a wildly wrong output still punishes
// rather than saturates.
type SignalMimicScape struct{}

func (SignalMimicScape) Name() string {
	return "signal-mimic"
}

func (SignalMimicScape) Evaluate(ctx context.Context, agent Controller) (Fitness, Trace, error) {
	return SignalMimicScape{}.EvaluateMode(ctx, agent, "gt")
}

func (SignalMimicScape) EvaluateMode(ctx context.Context, agent Controller, mode string) (Fitness, Trace, error) {
	cfg, err := signalMimicConfigForMode(mode)
	if err != nil {
		return 0, nil, err
	}

	agent.Reset()
	totalReward := 0.0
	squaredErr := 0.0
	reward := 0.0
	minReward := math.Inf(1)
	maxReward := math.Inf(-1)

	for step := 0; step < cfg.steps; step++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}

		phase := cfg.frequency * float64(step) * signalMimicDT
		current := math.Sin(phase)
		target := math.Sin(phase + cfg.frequency*signalMimicDT)

		out, err := agent.Act(ctx, []float64{current}, reward, signalMimicDT)
		if err != nil {
			return 0, nil, err
		}
		if len(out) < 1 {
			return 0, nil, fmt.Errorf("signal-mimic requires one output, agent %s returned none", agent.ID())
		}

		diff := out[0] - target
		squaredErr += diff * diff
		reward = math.Max(-1.0, 1.0-math.Abs(diff))
		totalReward += reward
		minReward = math.Min(minReward, reward)
		maxReward = math.Max(maxReward, reward)
	}

	avgReward := totalReward / float64(cfg.steps)
	mse := squaredErr / float64(cfg.steps)
	return Fitness(avgReward), Trace{
		"avg_reward": avgReward,
		"min_reward": minReward,
		"max_reward": maxReward,
		"mse":        mse,
		"mode":       cfg.mode,
		"steps":      cfg.steps,
	}, nil
}

type signalMimicModeConfig struct {
	mode      string
	steps     int
	frequency float64
}

const signalMimicDT = 0.1

func signalMimicConfigForMode(mode string) (signalMimicModeConfig, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "gt":
		return signalMimicModeConfig{mode: "gt", steps: 200, frequency: 1.0}, nil
	case "validation":
		return signalMimicModeConfig{mode: "validation", steps: 120, frequency: 1.5}, nil
	case "test":
		return signalMimicModeConfig{mode: "test", steps: 120, frequency: 0.5}, nil
	default:
		return signalMimicModeConfig{}, fmt.Errorf("unsupported signal-mimic mode: %s", mode)
	}
}
