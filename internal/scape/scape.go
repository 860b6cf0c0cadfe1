// Package scape provides the reward environments that drive reinforcement
// adaptation: each scape runs one episode against a controller, feeding it a
// per-step observation and the scalar reward earned by its previous action.
package scape

import "context"

type Fitness float64

type Trace map[string]any

// Controller is an agent a scape can drive. Act receives the current
// observation together with the reward for the previous action and returns
// the control outputs for this step. Reset clears per-episode state (a
// network controller resets its voltages, not its learned parameters).
type Controller interface {
	ID() string
	Reset()
	Act(ctx context.Context, observation []float64, reward, dt float64) ([]float64, error)
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Controller) (Fitness, Trace, error)
}

// ModeAwareScape optionally exposes evaluation mode routing for
// gt/validation/test flows.
type ModeAwareScape interface {
	Scape
	EvaluateMode(ctx context.Context, agent Controller, mode string) (Fitness, Trace, error)
}
