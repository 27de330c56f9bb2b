package mcts

import "github.com/chewxy/math32"

// selectAction picks the PUCT-best action index among d.legalActions. A
// brand-new node has n summing to 0 everywhere, which zeroes the
// exploration term for every candidate; ties resolve to the first action in
// index order, so a freshly expanded node always descends into its first
// legal action before statistics can steer it anywhere else.
func (d *decisionNode) selectAction(cPuct float32) int {
	sumN := 0
	for _, n := range d.n {
		sumN += n
	}
	exploreScale := cPuct * math32.Sqrt(float32(sumN))

	best := 0
	bestScore := float32(-1 << 30)
	for i := range d.legalActions {
		q := float32(0)
		if d.n[i] > 0 {
			q = d.valueSum[i] / float32(d.n[i])
		}
		u := exploreScale * d.priors[i] / float32(1+d.n[i])
		score := q + u
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// bestRootAction returns the action with the highest visit count, breaking
// ties by highest mean value and then by lowest board position.
func (d *decisionNode) bestRootAction() int {
	best := 0
	for i := 1; i < len(d.legalActions); i++ {
		if betterRootAction(d, i, best) {
			best = i
		}
	}
	return best
}

func betterRootAction(d *decisionNode, i, best int) bool {
	if d.n[i] != d.n[best] {
		return d.n[i] > d.n[best]
	}
	qi, qb := meanValue(d, i), meanValue(d, best)
	if qi != qb {
		return qi > qb
	}
	return d.legalActions[i] < d.legalActions[best]
}

func meanValue(d *decisionNode, i int) float32 {
	if d.n[i] == 0 {
		return 0
	}
	return d.valueSum[i] / float32(d.n[i])
}
