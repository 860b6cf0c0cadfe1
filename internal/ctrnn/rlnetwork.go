// Package ctrnn implements continuous-time recurrent neural networks
// integrated by fixed-step explicit Euler. Network carries plain scalar
// parameters; RLNetwork replaces every weight, bias and time constant with a
// reward-adaptive Fluctuator.
package ctrnn

import (
	"errors"
	"fmt"

	"fluxnet/internal/flux"
	"fluxnet/internal/nn"
)

var (
	ErrIndexOutOfRange   = errors.New("node index out of range")
	ErrDimensionMismatch = errors.New("vector length mismatch")
	ErrUnsupported       = errors.New("unsupported operation")
)

const DefaultActivation = "sigmoid"

// RLNetwork is a fully-connected CTRNN whose every scalar parameter is a
// Fluctuator. The network exclusively owns its Fluctuators: callers reposition
// centers through the setters and feed reward through ApplyReward; the forward
// pass only reads them.
type RLNetwork struct {
	count          int
	activationName string
	activation     nn.ActivationFunc

	biases        []*flux.Fluctuator
	timeConstants []*flux.Fluctuator
	// weights[to][from]: row is the post-synaptic target.
	weights [][]*flux.Fluctuator
}

// NewRLNetwork creates a fully-connected adaptive network with the given node
// count: bias centers 0, time-constant centers 1, weight centers 0, sigmoid
// activation.
func NewRLNetwork(nodes int) *RLNetwork {
	net, err := NewRLNetworkWithActivation(nodes, DefaultActivation)
	if err != nil {
		// The default activation is always registered.
		panic(err)
	}
	return net
}

// NewRLNetworkWithActivation binds a registered activation by name at
// construction time.
func NewRLNetworkWithActivation(nodes int, activation string) (*RLNetwork, error) {
	fn, err := nn.GetActivation(activation)
	if err != nil {
		return nil, err
	}

	net := &RLNetwork{
		count:          nodes,
		activationName: activation,
		activation:     fn,
		biases:         make([]*flux.Fluctuator, 0, nodes),
		timeConstants:  make([]*flux.Fluctuator, 0, nodes),
		weights:        make([][]*flux.Fluctuator, 0, nodes),
	}
	for i := 0; i < nodes; i++ {
		net.biases = append(net.biases, flux.New(0.0))
		net.timeConstants = append(net.timeConstants, flux.New(1.0))
		row := make([]*flux.Fluctuator, 0, nodes)
		for j := 0; j < nodes; j++ {
			row = append(row, flux.New(0.0))
		}
		net.weights = append(net.weights, row)
	}
	return net, nil
}

func (net *RLNetwork) Count() int {
	return net.count
}

func (net *RLNetwork) Activation() string {
	return net.activationName
}

// SetBias repositions the bias center for a node without touching its
// oscillation state.
func (net *RLNetwork) SetBias(index int, value float64) error {
	if err := net.checkIndex(index); err != nil {
		return err
	}
	net.biases[index].Center = value
	return nil
}

// SetTimeConstant repositions the time-constant center for a node. A zero or
// negative center makes the integrator singular; that is a caller
// configuration error, not checked here.
func (net *RLNetwork) SetTimeConstant(index int, value float64) error {
	if err := net.checkIndex(index); err != nil {
		return err
	}
	net.timeConstants[index].Center = value
	return nil
}

// SetWeight repositions the center of the connection from node `from` to node
// `to`.
func (net *RLNetwork) SetWeight(from, to int, value float64) error {
	if err := net.checkIndex(from); err != nil {
		return err
	}
	if err := net.checkIndex(to); err != nil {
		return err
	}
	net.weights[to][from].Center = value
	return nil
}

// AddNode is not supported: topology is fixed at construction.
func (net *RLNetwork) AddNode() error {
	return fmt.Errorf("%w: add node on fixed-topology network", ErrUnsupported)
}

// Update advances the voltage vector by one integration step of duration dt:
//
//	sum_i   = sum_j weights[i][j] * act(voltages[j] + biases[j])
//	delta_i = (sum_i - voltages[i]) / timeConstants[i]
//	next_i  = voltages[i] + delta_i*dt + inputs[i]
//
// Missing input entries count as zero. Update reads the Fluctuators but never
// mutates them, and the whole next vector is computed from the unmodified
// prior voltages. The caller owns the voltage vector across ticks.
func (net *RLNetwork) Update(dt float64, voltages, inputs []float64) ([]float64, error) {
	if len(voltages) != net.count {
		return nil, fmt.Errorf("%w: voltages length %d, want %d", ErrDimensionMismatch, len(voltages), net.count)
	}
	if len(inputs) > net.count {
		return nil, fmt.Errorf("%w: inputs length %d exceeds node count %d", ErrDimensionMismatch, len(inputs), net.count)
	}

	// Pre-synaptic activations are shared across all targets; evaluate once.
	activations := make([]float64, net.count)
	for j := 0; j < net.count; j++ {
		activations[j] = net.activation(voltages[j] + net.biases[j].Value())
	}

	next := make([]float64, net.count)
	for i := 0; i < net.count; i++ {
		sum := 0.0
		row := net.weights[i]
		for j := 0; j < net.count; j++ {
			sum += row[j].Value() * activations[j]
		}
		delta := (sum - voltages[i]) / net.timeConstants[i].Value()
		next[i] = voltages[i] + delta*dt
		if i < len(inputs) {
			next[i] += inputs[i]
		}
	}
	return next, nil
}

// Outputs maps voltages through the per-node output function
// act(voltage + bias). Pure.
func (net *RLNetwork) Outputs(voltages []float64) ([]float64, error) {
	if len(voltages) != net.count {
		return nil, fmt.Errorf("%w: voltages length %d, want %d", ErrDimensionMismatch, len(voltages), net.count)
	}
	out := make([]float64, net.count)
	for i := 0; i < net.count; i++ {
		out[i] = net.activation(voltages[i] + net.biases[i].Value())
	}
	return out, nil
}

// InitVoltage returns the canonical all-zero starting state.
func (net *RLNetwork) InitVoltage() []float64 {
	return make([]float64, net.count)
}

// ApplyReward advances every Fluctuator by one adaptation step with the same
// reward, the global-broadcast credit assignment.
func (net *RLNetwork) ApplyReward(dt, reward float64) {
	net.ApplyRewardByKind(dt, reward, reward, reward)
}

// ApplyRewardByKind advances the weight, bias and time-constant Fluctuators
// with separately scaled rewards, so a caller can adapt parameter kinds at
// different strengths (or freeze a kind with reward 0).
func (net *RLNetwork) ApplyRewardByKind(dt, weightReward, biasReward, tauReward float64) {
	for i := 0; i < net.count; i++ {
		net.biases[i].Update(dt, biasReward)
		net.timeConstants[i].Update(dt, tauReward)
		for j := 0; j < net.count; j++ {
			net.weights[i][j].Update(dt, weightReward)
		}
	}
}

// MeanAmplitude reports the average exploration amplitude across all
// Fluctuators, the convergence signal exposed in diagnostics.
func (net *RLNetwork) MeanAmplitude() float64 {
	if net.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < net.count; i++ {
		sum += net.biases[i].Amplitude
		sum += net.timeConstants[i].Amplitude
		for j := 0; j < net.count; j++ {
			sum += net.weights[i][j].Amplitude
		}
	}
	total := float64(net.count*net.count + 2*net.count)
	return sum / total
}

// SeedExploration overwrites the amplitude of every Fluctuator. The default
// configuration starts amplitudes at zero, where the oscillation never
// manifests; a training caller seeds a nonzero amplitude before the first
// episode.
func (net *RLNetwork) SeedExploration(amplitude float64) error {
	if amplitude < 0 {
		return fmt.Errorf("%w: negative exploration amplitude %v", flux.ErrInvalidConfig, amplitude)
	}
	for i := 0; i < net.count; i++ {
		net.biases[i].Amplitude = amplitude
		net.timeConstants[i].Amplitude = amplitude
		for j := 0; j < net.count; j++ {
			net.weights[i][j].Amplitude = amplitude
		}
	}
	return nil
}

func (net *RLNetwork) checkIndex(index int) error {
	if index < 0 || index >= net.count {
		return fmt.Errorf("%w: index %d, node count %d", ErrIndexOutOfRange, index, net.count)
	}
	return nil
}
