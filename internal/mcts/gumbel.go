package mcts

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// gumbelNoise draws n i.i.d. standard Gumbel samples from rng.
func gumbelNoise(rng *rand.Rand, n int) []float32 {
	noise := make([]float32, n)
	for i := range noise {
		u := rng.Float32()
		if u <= 0 {
			u = 1e-7
		}
		noise[i] = -math32.Log(-math32.Log(u))
	}
	return noise
}

// topKIndices returns the indices of the k largest entries of scores, in
// descending-score order. k is clamped to len(scores).
func topKIndices(scores []float32, k int) []int {
	if k > len(scores) {
		k = len(scores)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Simple selection sort over a small (<=19) slice; no need for anything
	// fancier at this size.
	for i := 0; i < k; i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if scores[order[j]] > scores[order[best]] {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}
	return order[:k]
}

// searchGumbel runs the Gumbel-top-k root variant: k candidate actions are
// chosen once from Gumbel-perturbed logits, the budget is split evenly
// across them (plain PUCT below the root, as usual; the first candidate also
// takes the remainder), and the candidate with the highest resulting mean
// value wins — not the most visited, since visit counts are fixed by the
// split rather than earned.
func (s *Searcher) searchGumbel(root *decisionNode, budget int) (int, error) {
	k := s.hp.GumbelK
	if k > len(root.legalActions) {
		k = len(root.legalActions)
	}
	noise := gumbelNoise(s.rng, len(root.legalActions))
	scores := make([]float32, len(root.legalActions))
	for i := range root.legalActions {
		q := meanValue(root, i)
		scores[i] = root.rawLogits[i] + s.hp.GumbelSigma*q + noise[i]
	}
	candidates := topKIndices(scores, k)

	per := budget / len(candidates)
	remainder := budget - per*len(candidates)
	for ci, idx := range candidates {
		n := per
		if ci == 0 {
			n += remainder
		}
		for i := 0; i < n; i++ {
			if _, err := s.simulateDecisionForced(root, idx); err != nil {
				return 0, err
			}
		}
	}

	best := candidates[0]
	for _, idx := range candidates[1:] {
		if meanValue(root, idx) > meanValue(root, best) {
			best = idx
		}
	}
	return best, nil
}
