// Package tuning orchestrates the reinforcement loop the network core leaves
// to its caller: shaping the scalar reward and broadcasting it to every
// Fluctuator before each forward pass.
package tuning

import (
	"errors"

	"fluxnet/internal/ctrnn"
)

// Gains scale the broadcast reward per parameter kind. Zero for a kind means
// that kind does not adapt.
type Gains struct {
	Weight       float64 `json:"weight"`
	Bias         float64 `json:"bias"`
	TimeConstant float64 `json:"time_constant"`
}

func DefaultGains() Gains {
	return Gains{Weight: 1.0, Bias: 1.0, TimeConstant: 1.0}
}

// Adapter couples an adaptive network to a reward signal. Each Step applies
// the reward earned by the previous action while the Fluctuators still sit at
// the phase that produced it, then runs the forward pass with the adapted
// parameters.
type Adapter struct {
	net    *ctrnn.RLNetwork
	gains  Gains
	policy RewardPolicy
	step   int
}

func NewAdapter(net *ctrnn.RLNetwork, gains Gains, policy RewardPolicy) (*Adapter, error) {
	if net == nil {
		return nil, errors.New("network is required")
	}
	if policy == nil {
		policy = FixedRewardPolicy{}
	}
	return &Adapter{net: net, gains: gains, policy: policy}, nil
}

func (a *Adapter) Network() *ctrnn.RLNetwork {
	return a.net
}

// Step advances the adaptation by one tick: the shaped reward drives every
// Fluctuator, then the voltages are integrated with the updated parameters.
// The returned vector is the next voltage state, owned by the caller.
func (a *Adapter) Step(dt float64, voltages, inputs []float64, reward float64) ([]float64, error) {
	shaped := a.policy.Shape(reward, a.step)
	a.step++

	a.net.ApplyRewardByKind(dt, shaped*a.gains.Weight, shaped*a.gains.Bias, shaped*a.gains.TimeConstant)
	return a.net.Update(dt, voltages, inputs)
}

// Forward runs the tick without applying any reward, for evaluation passes
// where adaptation is frozen.
func (a *Adapter) Forward(dt float64, voltages, inputs []float64) ([]float64, error) {
	return a.net.Update(dt, voltages, inputs)
}

// ResetStep rewinds the policy step counter, typically between episodes.
func (a *Adapter) ResetStep() {
	a.step = 0
}
