package mcts

import "github.com/pkg/errors"

// Errors returned by Searcher.ChooseMove. Compare with errors.Is; an
// EvaluatorFailure wraps the underlying evaluator error and the caller
// decides whether to retry with a mock evaluator.
var (
	ErrNoMoveAvailable  = errors.New("no move available")
	ErrEvaluatorFailure = errors.New("evaluator failure")
)
