package evaluator

import "sync"

// Mock is a uniform-policy, fixed-value Evaluator: Policy returns equal
// logits for every position, and Value always returns 0 (a neutral expected
// score) unless overridden. It requires no learned weights, so MCTS and the
// session scheduler can run their tests without any model files.
//
// Mock is safe for concurrent use; the mutex exists only to exercise the same
// "serialize access to shared evaluator state" shape a real tensor-backed
// evaluator needs, since Mock itself has no mutable state that requires it.
type Mock struct {
	mu sync.Mutex

	// FixedValue, if non-nil, overrides the constant value returned by
	// Value. Used by tests that want to force particular rollout/value
	// blending behavior.
	FixedValue *float32

	// Err, if set, is returned by both Policy and Value — used to exercise
	// the EvaluatorFailure / forfeit-fallback path.
	Err error
}

var _ Evaluator = (*Mock)(nil)

// NewMock returns a ready-to-use Mock evaluator.
func NewMock() *Mock {
	return &Mock{}
}

// Policy implements PolicyEvaluator: uniform logits (all zero, which
// softmaxes to a uniform distribution after masking).
func (m *Mock) Policy(features Features) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return make([]float32, 19), nil
}

// Value implements ValueEvaluator: a constant neutral score, or FixedValue
// if set.
func (m *Mock) Value(features Features) (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	if m.FixedValue != nil {
		return *m.FixedValue, nil
	}
	return 0, nil
}
