package mcts

import "takeiteasy/internal/game"

// decisionNode is a point where the player to move must place the announced
// tile. Its per-action statistics (N, valueSum) live on the node itself,
// indexed in parallel with legalActions: the node doing the choosing keeps
// the action stats, so a lazily-created child only carries its own state
// forward. Children are chanceNodes, created lazily the second time an
// action is picked (the first visit is scored directly, see
// Searcher.simulateDecision).
type decisionNode struct {
	plateau   game.Plateau
	deck      game.Deck
	announced game.Tile
	turnIndex int

	legalActions []int
	rawLogits    []float32 // pre-softmax policy logits, for Gumbel scoring
	priors       []float32 // softmaxed, temperature-scaled PUCT priors

	n        []int
	valueSum []float32
	children []*chanceNode
}

// chanceNode is the point between a placement and the next announced tile:
// it owns the still-undrawn deck and samples which tile gets announced next.
// Per-tile statistics are keyed by tile since the deck (and so the set of
// possible draws) shrinks node to node.
type chanceNode struct {
	plateau   game.Plateau
	deck      game.Deck
	turnIndex int

	visitCount map[game.Tile]int
	valueSum   map[game.Tile]float32
	children   map[game.Tile]*decisionNode
}

func newChanceNode(plateau game.Plateau, deck game.Deck, turnIndex int) *chanceNode {
	return &chanceNode{
		plateau:    plateau,
		deck:       deck,
		turnIndex:  turnIndex,
		visitCount: make(map[game.Tile]int),
		valueSum:   make(map[game.Tile]float32),
		children:   make(map[game.Tile]*decisionNode),
	}
}
