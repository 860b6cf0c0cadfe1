package main

import (
	"encoding/json"
	"fmt"
	"os"

	fluxapi "fluxnet/pkg/fluxnet"
)

func loadOrDefaultTrainRequest(configPath string) (fluxapi.TrainRequest, error) {
	if configPath == "" {
		return fluxapi.TrainRequest{}, nil
	}
	req, err := loadTrainRequestFromConfig(configPath)
	if err != nil {
		return fluxapi.TrainRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func loadTrainRequestFromConfig(path string) (fluxapi.TrainRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fluxapi.TrainRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fluxapi.TrainRequest{}, err
	}

	var req fluxapi.TrainRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["scape"]); ok {
		req.Scape = v
	}
	if v, ok := asString(raw["mode"]); ok {
		req.Mode = v
	}
	if v, ok := asInt(raw["nodes"]); ok {
		req.Nodes = v
	}
	if v, ok := asInt(raw["episodes"]); ok {
		req.Episodes = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asFloat64(raw["init_scale"]); ok {
		req.InitScale = v
	}
	if v, ok := asFloat64(raw["exploration_amplitude"]); ok {
		req.ExplorationAmplitude = v
	}
	if v, ok := asString(raw["activation"]); ok {
		req.Activation = v
	}
	if v, ok := asString(raw["reward_policy"]); ok {
		req.RewardPolicy = v
	}
	if v, ok := asFloat64(raw["reward_policy_param"]); ok {
		req.RewardPolicyParam = v
	}
	if v, ok := asFloat64(raw["reward_goal"]); ok && v != 0 {
		goal := v
		req.RewardGoal = &goal
	}
	if v, ok := asFloat64(raw["weight_gain"]); ok {
		req.WeightGain = v
	}
	if v, ok := asFloat64(raw["bias_gain"]); ok {
		req.BiasGain = v
	}
	if v, ok := asFloat64(raw["time_constant_gain"]); ok {
		req.TimeConstantGain = v
	}
	if v, ok := asFloat64(raw["input_gain"]); ok {
		req.InputGain = v
	}
	if v, ok := asInt(raw["output_count"]); ok {
		req.OutputCount = v
	}
	if v, ok := asFloat64(raw["output_scale"]); ok {
		req.OutputScale = v
	}
	if v, ok := asBool(raw["write_report"]); ok {
		req.WriteReport = v
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

type trainOverrides struct {
	runID             string
	scape             string
	mode              string
	nodes             int
	episodes          int
	workers           int
	seed              int64
	initScale         float64
	exploration       float64
	activation        string
	rewardPolicy      string
	rewardPolicyParam float64
	rewardGoal        float64
	weightGain        float64
	biasGain          float64
	tauGain           float64
	inputGain         float64
	outputCount       int
	outputScale       float64
	writeReport       bool
}

// overrideTrainRequest applies only the flags the caller explicitly set on top
// of a config-file request.
func overrideTrainRequest(req *fluxapi.TrainRequest, set map[string]bool, values trainOverrides) {
	if set["run-id"] {
		req.RunID = values.runID
	}
	if set["scape"] {
		req.Scape = values.scape
	}
	if set["mode"] {
		req.Mode = values.mode
	}
	if set["nodes"] {
		req.Nodes = values.nodes
	}
	if set["episodes"] {
		req.Episodes = values.episodes
	}
	if set["workers"] {
		req.Workers = values.workers
	}
	if set["seed"] {
		req.Seed = values.seed
	}
	if set["init-scale"] {
		req.InitScale = values.initScale
	}
	if set["exploration"] {
		req.ExplorationAmplitude = values.exploration
	}
	if set["activation"] {
		req.Activation = values.activation
	}
	if set["reward-policy"] {
		req.RewardPolicy = values.rewardPolicy
	}
	if set["reward-policy-param"] {
		req.RewardPolicyParam = values.rewardPolicyParam
	}
	if set["reward-goal"] {
		if values.rewardGoal != 0 {
			goal := values.rewardGoal
			req.RewardGoal = &goal
		} else {
			req.RewardGoal = nil
		}
	}
	if set["w-gain"] {
		req.WeightGain = values.weightGain
	}
	if set["b-gain"] {
		req.BiasGain = values.biasGain
	}
	if set["t-gain"] {
		req.TimeConstantGain = values.tauGain
	}
	if set["input-gain"] {
		req.InputGain = values.inputGain
	}
	if set["outputs"] {
		req.OutputCount = values.outputCount
	}
	if set["output-scale"] {
		req.OutputScale = values.outputScale
	}
	if set["report"] {
		req.WriteReport = values.writeReport
	}
}
