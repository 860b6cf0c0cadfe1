package scape

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// CartPoleLiteScape is a simplified 1D centering task: the controller reads
// cart position and velocity and pushes the cart towards the origin. Reward
// per step is highest at the center and falls to zero at the track bounds.
type CartPoleLiteScape struct{}

func (CartPoleLiteScape) Name() string {
	return "cart-pole-lite"
}

func (CartPoleLiteScape) Evaluate(ctx context.Context, agent Controller) (Fitness, Trace, error) {
	return CartPoleLiteScape{}.EvaluateMode(ctx, agent, "gt")
}

func (CartPoleLiteScape) EvaluateMode(ctx context.Context, agent Controller, mode string) (Fitness, Trace, error) {
	cfg, err := cartPoleLiteConfigForMode(mode)
	if err != nil {
		return 0, nil, err
	}

	totalReward := 0.0
	stepsSurvived := 0
	minReward := math.Inf(1)
	maxReward := math.Inf(-1)

	for _, start := range cfg.startPositions {
		agent.Reset()
		x := start
		v := 0.0
		reward := 0.0

		for step := 0; step < cfg.stepsPerEpisode; step++ {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}

			out, err := agent.Act(ctx, []float64{x, v}, reward, cartPoleLiteDT)
			if err != nil {
				return 0, nil, err
			}
			if len(out) < 1 {
				return 0, nil, fmt.Errorf("cart-pole-lite requires one output, agent %s returned none", agent.ID())
			}

			x, v, reward = cartPoleLiteStep(x, v, out[0])
			totalReward += reward
			minReward = math.Min(minReward, reward)
			maxReward = math.Max(maxReward, reward)
			stepsSurvived++
			if math.Abs(x) > cartPoleLiteBound {
				break
			}
		}
	}

	if stepsSurvived == 0 {
		return 0, Trace{
			"avg_reward":        0.0,
			"min_reward":        0.0,
			"max_reward":        0.0,
			"steps_survived":    0,
			"mode":              cfg.mode,
			"episodes":          len(cfg.startPositions),
			"steps_per_episode": cfg.stepsPerEpisode,
		}, nil
	}
	avgReward := totalReward / float64(stepsSurvived)
	return Fitness(avgReward), Trace{
		"avg_reward":        avgReward,
		"min_reward":        minReward,
		"max_reward":        maxReward,
		"steps_survived":    stepsSurvived,
		"mode":              cfg.mode,
		"episodes":          len(cfg.startPositions),
		"steps_per_episode": cfg.stepsPerEpisode,
	}, nil
}

type cartPoleLiteModeConfig struct {
	mode            string
	startPositions  []float64
	stepsPerEpisode int
}

func cartPoleLiteConfigForMode(mode string) (cartPoleLiteModeConfig, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "gt":
		return cartPoleLiteModeConfig{
			mode:            "gt",
			startPositions:  []float64{-0.8, -0.4, 0.0, 0.4, 0.8},
			stepsPerEpisode: 60,
		}, nil
	case "validation":
		return cartPoleLiteModeConfig{
			mode:            "validation",
			startPositions:  []float64{-1.0, -0.5, 0.5, 1.0},
			stepsPerEpisode: 48,
		}, nil
	case "test":
		return cartPoleLiteModeConfig{
			mode:            "test",
			startPositions:  []float64{-1.2, -0.6, 0.0, 0.6, 1.2},
			stepsPerEpisode: 48,
		}, nil
	default:
		return cartPoleLiteModeConfig{}, fmt.Errorf("unsupported cart-pole-lite mode: %s", mode)
	}
}

const (
	cartPoleLiteDT    = 0.1
	cartPoleLiteBound = 2.0
)

func cartPoleLiteStep(x, v, force float64) (nextX, nextV, reward float64) {
	const (
		kPos     = 0.45
		kVel     = 0.15
		forceK   = 1.25
		maxForce = 1.0
	)
	if force > maxForce {
		force = maxForce
	}
	if force < -maxForce {
		force = -maxForce
	}

	acc := forceK*force - kPos*x - kVel*v
	v = v + acc*cartPoleLiteDT
	x = x + v*cartPoleLiteDT
	reward = 1.0 - math.Min(1.0, math.Abs(x)/cartPoleLiteBound)
	return x, v, reward
}
