// Package aiplayer assembles an internal/mcts.Searcher and an
// internal/evaluator.Evaluator into the AI opponent a session drives: a
// hyperparameter record plus a move chooser that never leaves a match stuck,
// even if the evaluator fails.
package aiplayer

import (
	"takeiteasy/internal/mcts"
	"takeiteasy/internal/parameters"
)

// AIConfig bundles the simulation budget with the search hyperparameters:
// constructor defaults, overridable via parameters.Params.
type AIConfig struct {
	Simulations int
	Hyperparams mcts.Hyperparams
}

// DefaultAIConfig returns the tuning this package ships with.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Simulations: 150,
		Hyperparams: mcts.DefaultHyperparams(),
	}
}

// NewAIConfigFromParams builds an AIConfig from a comma-separated
// "key=value,..." configuration string's already-parsed Params, starting
// from DefaultAIConfig and overriding only the keys present. Recognized
// keys: simulations, c_puct, rollout_count, policy_temperature,
// value_mix_alpha, gumbel_k, gumbel_sigma, heuristic_penalty. Consumed keys
// are popped from params; the caller is responsible for rejecting any keys
// left over afterwards.
func NewAIConfigFromParams(params parameters.Params) (AIConfig, error) {
	cfg := DefaultAIConfig()
	var err error

	cfg.Simulations, err = parameters.PopParamOr(params, "simulations", cfg.Simulations)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.CPuct, err = parameters.PopParamOr(params, "c_puct", cfg.Hyperparams.CPuct)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.RolloutCount, err = parameters.PopParamOr(params, "rollout_count", cfg.Hyperparams.RolloutCount)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.PolicyTemperature, err = parameters.PopParamOr(params, "policy_temperature", cfg.Hyperparams.PolicyTemperature)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.ValueMixAlpha, err = parameters.PopParamOr(params, "value_mix_alpha", cfg.Hyperparams.ValueMixAlpha)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.GumbelK, err = parameters.PopParamOr(params, "gumbel_k", cfg.Hyperparams.GumbelK)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.GumbelSigma, err = parameters.PopParamOr(params, "gumbel_sigma", cfg.Hyperparams.GumbelSigma)
	if err != nil {
		return cfg, err
	}
	cfg.Hyperparams.HeuristicPenalty, err = parameters.PopParamOr(params, "heuristic_penalty", cfg.Hyperparams.HeuristicPenalty)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}
