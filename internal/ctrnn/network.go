package ctrnn

import (
	"fmt"

	"fluxnet/internal/nn"
)

// Node holds the fixed per-neuron parameters of the plain variant.
type Node struct {
	Bias         float64
	TimeConstant float64
}

// Network is the fixed-parameter CTRNN: the same update equation as RLNetwork
// with constant weights, biases and time constants, and a sparsity shortcut
// that skips zero weights in the O(N^2) pass.
type Network struct {
	count          int
	activationName string
	activation     func(float64) float64

	nodes   []Node
	weights [][]float64
}

func NewNetwork(nodes int) *Network {
	net, err := NewNetworkWithActivation(nodes, DefaultActivation)
	if err != nil {
		panic(err)
	}
	return net
}

func NewNetworkWithActivation(nodes int, activation string) (*Network, error) {
	fn, err := nn.GetActivation(activation)
	if err != nil {
		return nil, err
	}
	net := &Network{
		count:          nodes,
		activationName: activation,
		activation:     fn,
		nodes:          make([]Node, nodes),
		weights:        make([][]float64, nodes),
	}
	for i := range net.nodes {
		net.nodes[i] = Node{Bias: 0.0, TimeConstant: 1.0}
		net.weights[i] = make([]float64, nodes)
	}
	return net, nil
}

func (net *Network) Count() int {
	return net.count
}

func (net *Network) SetBias(index int, value float64) error {
	if err := net.checkIndex(index); err != nil {
		return err
	}
	net.nodes[index].Bias = value
	return nil
}

func (net *Network) SetTimeConstant(index int, value float64) error {
	if err := net.checkIndex(index); err != nil {
		return err
	}
	net.nodes[index].TimeConstant = value
	return nil
}

func (net *Network) SetWeight(from, to int, value float64) error {
	if err := net.checkIndex(from); err != nil {
		return err
	}
	if err := net.checkIndex(to); err != nil {
		return err
	}
	net.weights[to][from] = value
	return nil
}

func (net *Network) Update(dt float64, voltages, inputs []float64) ([]float64, error) {
	if len(voltages) != net.count {
		return nil, fmt.Errorf("%w: voltages length %d, want %d", ErrDimensionMismatch, len(voltages), net.count)
	}
	if len(inputs) > net.count {
		return nil, fmt.Errorf("%w: inputs length %d exceeds node count %d", ErrDimensionMismatch, len(inputs), net.count)
	}

	next := make([]float64, net.count)
	for i := 0; i < net.count; i++ {
		sum := 0.0
		for j, weight := range net.weights[i] {
			if weight == 0 {
				continue
			}
			sum += weight * net.activation(voltages[j]+net.nodes[j].Bias)
		}
		delta := (sum - voltages[i]) / net.nodes[i].TimeConstant
		next[i] = voltages[i] + delta*dt
		if i < len(inputs) {
			next[i] += inputs[i]
		}
	}
	return next, nil
}

func (net *Network) Outputs(voltages []float64) ([]float64, error) {
	if len(voltages) != net.count {
		return nil, fmt.Errorf("%w: voltages length %d, want %d", ErrDimensionMismatch, len(voltages), net.count)
	}
	out := make([]float64, net.count)
	for i := 0; i < net.count; i++ {
		out[i] = net.activation(voltages[i] + net.nodes[i].Bias)
	}
	return out, nil
}

func (net *Network) InitVoltage() []float64 {
	return make([]float64, net.count)
}

func (net *Network) checkIndex(index int) error {
	if index < 0 || index >= net.count {
		return fmt.Errorf("%w: index %d, node count %d", ErrIndexOutOfRange, index, net.count)
	}
	return nil
}
