package game

import "math/rand"

// Deck is the multiset of tiles not yet announced in the current game. It is
// represented as a slice; order carries no meaning except for Draw's RNG
// consumption, which callers that need determinism control by supplying their
// own *rand.Rand.
type Deck []Tile

// NewDeck returns a deck holding the 27 canonical tiles.
func NewDeck() Deck {
	return Deck(FullDeck())
}

// Clone returns a deep copy of d.
func (d Deck) Clone() Deck {
	c := make(Deck, len(d))
	copy(c, d)
	return c
}

// Draw removes and returns a uniformly random tile from d using rng, along
// with the remaining deck. The caller owns rng: MCTS searches and session
// turns each use their own *rand.Rand so that draws in one context never
// perturb another's sequence.
func (d Deck) Draw(rng *rand.Rand) (Tile, Deck) {
	idx := rng.Intn(len(d))
	tile := d[idx]
	remaining := make(Deck, 0, len(d)-1)
	remaining = append(remaining, d[:idx]...)
	remaining = append(remaining, d[idx+1:]...)
	return tile, remaining
}

// Remove returns a copy of d with the first occurrence of tile removed. It is
// used where the caller already knows which tile was announced (e.g.
// reconstructing a Chance node's child deck) rather than sampling one.
func (d Deck) Remove(tile Tile) Deck {
	for i, t := range d {
		if t == tile {
			remaining := make(Deck, 0, len(d)-1)
			remaining = append(remaining, d[:i]...)
			remaining = append(remaining, d[i+1:]...)
			return remaining
		}
	}
	return d.Clone()
}
