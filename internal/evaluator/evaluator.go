// Package evaluator defines the narrow contract MCTS requires from a learned
// policy and value function. Training loops, tensor I/O and model file
// formats are out of scope: this package only describes the interfaces and
// ships a Mock implementation good enough to run MCTS and session tests
// without any learned weights.
package evaluator

// Features is the fixed-shape input both evaluators consume: 8 channels over
// the 5x5 bounding grid of hex positions (unused cells are left zeroed).
// See Encode for the channel layout.
type Features [8][5][5]float32

// PolicyEvaluator scores each of the 19 board positions with a logit; the
// caller is responsible for masking illegal positions and applying a
// temperature-scaled softmax (see Softmax).
type PolicyEvaluator interface {
	// Policy returns one logit per board position (always length
	// game.NumPositions), to be softmaxed by the caller.
	Policy(features Features) ([]float32, error)
}

// ValueEvaluator scores a position with a scalar in [-1, +1] representing the
// normalized expected final score.
type ValueEvaluator interface {
	Value(features Features) (float32, error)
}

// Evaluator bundles both capabilities behind the single handle AI players and
// MCTS searches are configured with. Concrete architectures (convolutional,
// graph-based, ...) are implementation details hidden behind this pair of
// interfaces; MCTS depends only on the capability set, never on a concrete
// architecture. Implementations MUST be safe to call from multiple
// goroutines, even if that means internally serializing on a mutex: the
// tensor-backed models this interface stands in for cannot be invoked
// concurrently, and a single instance is shared process-wide.
type Evaluator interface {
	PolicyEvaluator
	ValueEvaluator
}

// Softmax applies a temperature-scaled softmax over logits, masking any index
// not present in legalPositions to zero probability and renormalizing over
// what remains. temperature <= 0 is treated as 1.
func Softmax(logits []float32, legalPositions []int, temperature float32) []float32 {
	if temperature <= 0 {
		temperature = 1
	}
	probs := make([]float32, len(logits))
	legal := make(map[int]bool, len(legalPositions))
	for _, p := range legalPositions {
		legal[p] = true
	}

	maxLogit := float32(0)
	first := true
	for i, l := range logits {
		if !legal[i] {
			continue
		}
		scaled := l / temperature
		if first || scaled > maxLogit {
			maxLogit = scaled
			first = false
		}
	}

	var sum float32
	for i, l := range logits {
		if !legal[i] {
			continue
		}
		e := expf((l/temperature - maxLogit))
		probs[i] = e
		sum += e
	}
	if sum == 0 {
		// Degenerate case (no legal positions, or all logits -inf): fall back
		// to a uniform distribution over legal positions.
		if len(legalPositions) == 0 {
			return probs
		}
		uniform := 1.0 / float32(len(legalPositions))
		for _, p := range legalPositions {
			probs[p] = uniform
		}
		return probs
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
