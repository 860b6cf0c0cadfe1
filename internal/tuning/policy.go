package tuning

import (
	"fmt"
)

// RewardPolicy shapes the raw scalar reward a scape emits before it is
// broadcast to the network's Fluctuators. Stateful policies track the step
// index they are shaping for.
type RewardPolicy interface {
	Name() string
	Shape(reward float64, step int) float64
}

type FixedRewardPolicy struct {
	Scale float64
}

func (FixedRewardPolicy) Name() string { return "fixed" }

func (p FixedRewardPolicy) Shape(reward float64, _step int) float64 {
	scale := p.Scale
	if scale == 0 {
		scale = 1.0
	}
	return reward * scale
}

// LinearDecayRewardPolicy fades the reward's influence towards MinScale over
// TotalSteps, freezing adaptation late in a run.
type LinearDecayRewardPolicy struct {
	TotalSteps int
	MinScale   float64
}

func (LinearDecayRewardPolicy) Name() string { return "linear_decay" }

func (p LinearDecayRewardPolicy) Shape(reward float64, step int) float64 {
	if p.TotalSteps <= 0 {
		return reward
	}
	remaining := p.TotalSteps - step
	if remaining < 0 {
		remaining = 0
	}
	scale := float64(remaining) / float64(p.TotalSteps)
	if scale < p.MinScale {
		scale = p.MinScale
	}
	return reward * scale
}

// WindowNormalizedRewardPolicy subtracts a running-window baseline so the
// broadcast reward measures improvement over recent performance rather than
// absolute task reward. Without a baseline a task whose rewards are all
// positive would only ever shrink exploration.
type WindowNormalizedRewardPolicy struct {
	window  int
	recent  []float64
	nextIdx int
	filled  int
}

func NewWindowNormalizedRewardPolicy(window int) *WindowNormalizedRewardPolicy {
	if window < 1 {
		window = 1
	}
	return &WindowNormalizedRewardPolicy{
		window: window,
		recent: make([]float64, window),
	}
}

func (*WindowNormalizedRewardPolicy) Name() string { return "window_normalized" }

func (p *WindowNormalizedRewardPolicy) Shape(reward float64, _step int) float64 {
	baseline := 0.0
	if p.filled > 0 {
		sum := 0.0
		for i := 0; i < p.filled; i++ {
			sum += p.recent[i]
		}
		baseline = sum / float64(p.filled)
	}

	p.recent[p.nextIdx] = reward
	p.nextIdx = (p.nextIdx + 1) % p.window
	if p.filled < p.window {
		p.filled++
	}
	return reward - baseline
}

func RewardPolicyFromConfig(name string, param float64) (RewardPolicy, error) {
	switch name {
	case "", "fixed":
		scale := param
		if scale == 0 {
			scale = 1.0
		}
		return FixedRewardPolicy{Scale: scale}, nil
	case "linear_decay":
		steps := int(param)
		if steps < 0 {
			steps = 0
		}
		return LinearDecayRewardPolicy{TotalSteps: steps, MinScale: 0}, nil
	case "window_normalized":
		window := int(param)
		if window < 1 {
			window = 20
		}
		return NewWindowNormalizedRewardPolicy(window), nil
	default:
		return nil, fmt.Errorf("unsupported reward policy: %s", name)
	}
}
