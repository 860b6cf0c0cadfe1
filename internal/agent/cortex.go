// Package agent bridges an adaptive network to the scape controller
// interface: it owns the per-episode voltage vector and maps observations and
// actions onto network nodes.
package agent

import (
	"context"
	"errors"
	"fmt"

	"fluxnet/internal/tuning"
)

type Config struct {
	ID string
	// InputGain scales observations before they are injected as input
	// currents on the leading nodes.
	InputGain float64
	// OutputCount is how many control outputs the scape expects; they are
	// read from the trailing nodes so inputs and outputs do not collide on
	// small networks.
	OutputCount int
	// OutputScale maps the activation's output range onto the actuator range,
	// e.g. 2*sigmoid-1 style recentering is left to the scape; this is a
	// plain multiplier.
	OutputScale float64
}

type Cortex struct {
	id          string
	adapter     *tuning.Adapter
	inputGain   float64
	outputCount int
	outputScale float64
	voltages    []float64
}

func NewCortex(adapter *tuning.Adapter, cfg Config) (*Cortex, error) {
	if adapter == nil {
		return nil, errors.New("adapter is required")
	}
	if cfg.ID == "" {
		return nil, errors.New("cortex id is required")
	}
	count := adapter.Network().Count()
	if cfg.OutputCount <= 0 {
		cfg.OutputCount = 1
	}
	if cfg.OutputCount > count {
		return nil, fmt.Errorf("output count %d exceeds node count %d", cfg.OutputCount, count)
	}
	if cfg.InputGain == 0 {
		cfg.InputGain = 1.0
	}
	if cfg.OutputScale == 0 {
		cfg.OutputScale = 1.0
	}
	return &Cortex{
		id:          cfg.ID,
		adapter:     adapter,
		inputGain:   cfg.InputGain,
		outputCount: cfg.OutputCount,
		outputScale: cfg.OutputScale,
		voltages:    adapter.Network().InitVoltage(),
	}, nil
}

func (c *Cortex) ID() string {
	return c.id
}

func (c *Cortex) Adapter() *tuning.Adapter {
	return c.adapter
}

// Reset clears the episode state: voltages return to the canonical zero
// vector, the reward shaping step counter rewinds. Fluctuator state is
// deliberately untouched, adaptation spans episodes.
func (c *Cortex) Reset() {
	c.voltages = c.adapter.Network().InitVoltage()
	c.adapter.ResetStep()
}

// Act performs one tick: the reward for the previous action adapts the
// parameters, the observation is injected on the leading nodes, and the
// trailing nodes' outputs become the action.
func (c *Cortex) Act(ctx context.Context, observation []float64, reward, dt float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count := c.adapter.Network().Count()
	if len(observation) > count {
		return nil, fmt.Errorf("observation length %d exceeds node count %d", len(observation), count)
	}

	inputs := make([]float64, len(observation))
	for i, value := range observation {
		inputs[i] = value * c.inputGain
	}

	next, err := c.adapter.Step(dt, c.voltages, inputs, reward)
	if err != nil {
		return nil, err
	}
	c.voltages = next

	outputs, err := c.adapter.Network().Outputs(c.voltages)
	if err != nil {
		return nil, err
	}
	action := make([]float64, c.outputCount)
	for i := 0; i < c.outputCount; i++ {
		action[i] = outputs[count-c.outputCount+i] * c.outputScale
	}
	return action, nil
}
