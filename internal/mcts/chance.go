package mcts

import (
	"math/rand"

	"takeiteasy/internal/game"
)

// selectTile picks which deck tile gets announced next out of c. Unexpanded
// tiles (never sampled from this chance node before) are preferred, chosen
// uniformly at random among themselves; once every deck tile has been
// expanded at least once, sampling switches to weights proportional to
// 1/visitCount so under-explored branches keep getting a turn without ever
// starving the rest of the deck.
func (c *chanceNode) selectTile(rng *rand.Rand) game.Tile {
	var unexpanded []game.Tile
	for _, t := range c.deck {
		if _, ok := c.children[t]; !ok {
			unexpanded = append(unexpanded, t)
		}
	}
	if len(unexpanded) > 0 {
		return unexpanded[rng.Intn(len(unexpanded))]
	}

	weights := make([]float32, len(c.deck))
	var total float32
	for i, t := range c.deck {
		n := c.visitCount[t]
		if n < 1 {
			n = 1
		}
		w := float32(1) / float32(n)
		weights[i] = w
		total += w
	}
	r := rng.Float32() * total
	for i, w := range weights {
		if r < w {
			return c.deck[i]
		}
		r -= w
	}
	return c.deck[len(c.deck)-1]
}
