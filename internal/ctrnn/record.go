package ctrnn

import (
	"fmt"

	"fluxnet/internal/flux"
	"fluxnet/internal/model"
)

// Record snapshots the full adaptive state of the network for persistence.
func (net *RLNetwork) Record(id string) model.NetworkRecord {
	rec := model.NetworkRecord{
		ID:            id,
		Nodes:         net.count,
		Activation:    net.activationName,
		Biases:        make([]model.FluctuatorRecord, 0, net.count),
		TimeConstants: make([]model.FluctuatorRecord, 0, net.count),
		Weights:       make([][]model.FluctuatorRecord, 0, net.count),
	}
	for i := 0; i < net.count; i++ {
		rec.Biases = append(rec.Biases, fluctuatorRecord(net.biases[i]))
		rec.TimeConstants = append(rec.TimeConstants, fluctuatorRecord(net.timeConstants[i]))
		row := make([]model.FluctuatorRecord, 0, net.count)
		for j := 0; j < net.count; j++ {
			row = append(row, fluctuatorRecord(net.weights[i][j]))
		}
		rec.Weights = append(rec.Weights, row)
	}
	return rec
}

// NewRLNetworkFromRecord rebuilds a network from a snapshot, restoring every
// Fluctuator's center, amplitude and phase. Fluctuator configuration is not
// part of the record; restored networks use the default bounds and rates.
func NewRLNetworkFromRecord(rec model.NetworkRecord) (*RLNetwork, error) {
	activation := rec.Activation
	if activation == "" {
		activation = DefaultActivation
	}
	net, err := NewRLNetworkWithActivation(rec.Nodes, activation)
	if err != nil {
		return nil, err
	}
	if len(rec.Biases) != rec.Nodes || len(rec.TimeConstants) != rec.Nodes || len(rec.Weights) != rec.Nodes {
		return nil, fmt.Errorf("%w: record arrays do not match node count %d", ErrDimensionMismatch, rec.Nodes)
	}
	for i := 0; i < rec.Nodes; i++ {
		if len(rec.Weights[i]) != rec.Nodes {
			return nil, fmt.Errorf("%w: weight row %d length %d, want %d", ErrDimensionMismatch, i, len(rec.Weights[i]), rec.Nodes)
		}
		if err := restoreFluctuator(net.biases[i], rec.Biases[i]); err != nil {
			return nil, fmt.Errorf("bias %d: %w", i, err)
		}
		if err := restoreFluctuator(net.timeConstants[i], rec.TimeConstants[i]); err != nil {
			return nil, fmt.Errorf("time constant %d: %w", i, err)
		}
		for j := 0; j < rec.Nodes; j++ {
			if err := restoreFluctuator(net.weights[i][j], rec.Weights[i][j]); err != nil {
				return nil, fmt.Errorf("weight [%d][%d]: %w", i, j, err)
			}
		}
	}
	return net, nil
}

func fluctuatorRecord(f *flux.Fluctuator) model.FluctuatorRecord {
	return model.FluctuatorRecord{
		Center:    f.Center,
		Amplitude: f.Amplitude,
		Period:    f.Period,
		Time:      f.Time,
	}
}

func restoreFluctuator(f *flux.Fluctuator, rec model.FluctuatorRecord) error {
	if rec.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", flux.ErrInvalidConfig, rec.Period)
	}
	if rec.Time < 0 {
		return fmt.Errorf("%w: time must be >= 0, got %v", flux.ErrInvalidConfig, rec.Time)
	}
	f.Center = rec.Center
	f.Amplitude = rec.Amplitude
	f.Period = rec.Period
	f.Time = rec.Time
	return nil
}
