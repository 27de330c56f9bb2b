// Package mcts implements the PUCT-guided Monte Carlo tree search that picks
// a placement for the tile currently on offer. The search tree alternates
// between decisionNodes (the player chooses where to place the announced
// tile) and chanceNodes (the next tile is announced from the remaining
// deck); everything below the root is plain PUCT regardless of how the root
// action itself got chosen.
package mcts

import (
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
)

// Searcher runs searches against one evaluator with one set of
// hyperparameters. It owns its RNG, so two Searchers seeded identically and
// driven with identical budgets and evaluators return identical moves.
type Searcher struct {
	evaluator evaluator.Evaluator
	hp        Hyperparams
	rng       *rand.Rand
}

// NewSearcher builds a Searcher. seed controls every random draw the search
// makes (chance-node sampling, Gumbel noise, rollout draws), so the same
// seed plus the same evaluator and budget always choose the same move.
func NewSearcher(eval evaluator.Evaluator, hp Hyperparams, seed int64) *Searcher {
	return &Searcher{
		evaluator: eval,
		hp:        hp,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// ChooseMove runs budget simulations from (plateau, deck, announced) and
// returns the chosen board position. deck must not contain announced (it is
// the set of tiles not yet announced, per the session's own bookkeeping).
// Returns ErrNoMoveAvailable if plateau is already full, or an error
// wrapping ErrEvaluatorFailure if the evaluator fails mid-search.
func (s *Searcher) ChooseMove(plateau game.Plateau, deck game.Deck, announced game.Tile, budget int) (int, error) {
	if len(game.LegalMoves(&plateau)) == 0 {
		return 0, ErrNoMoveAvailable
	}
	root, err := s.newDecisionNode(plateau, deck, announced, game.NumPlaced(&plateau))
	if err != nil {
		return 0, wrapEvaluatorFailure(err)
	}
	if len(root.legalActions) == 1 {
		return root.legalActions[0], nil
	}

	var chosen int
	if s.hp.GumbelK > 0 {
		chosen, err = s.searchGumbel(root, budget)
		if err != nil {
			return 0, wrapEvaluatorFailure(err)
		}
	} else {
		for i := 0; i < budget; i++ {
			if _, err := s.simulateDecision(root); err != nil {
				return 0, wrapEvaluatorFailure(err)
			}
		}
		chosen = root.bestRootAction()
	}
	klog.V(2).Infof("mcts: turn %d, %d simulations, chose position %d (visits=%d, mean value=%.3f)",
		root.turnIndex, budget, root.legalActions[chosen], root.n[chosen], meanValue(root, chosen))
	return root.legalActions[chosen], nil
}

func wrapEvaluatorFailure(err error) error {
	return errors.Wrap(ErrEvaluatorFailure, err.Error())
}

// newDecisionNode builds a decisionNode for (plateau, deck, announced),
// computing its policy priors immediately — this is the "expansion" step: a
// node always has priors for every legal action as soon as it exists, ready
// for its own first PUCT selection.
func (s *Searcher) newDecisionNode(plateau game.Plateau, deck game.Deck, announced game.Tile, turnIndex int) (*decisionNode, error) {
	legalActions := game.LegalMoves(&plateau)
	features := evaluator.Encode(&plateau, announced, turnIndex)
	logits, err := s.evaluator.Policy(features)
	if err != nil {
		return nil, err
	}
	probs := evaluator.Softmax(logits, legalActions, s.hp.PolicyTemperature)

	rawLogits := make([]float32, len(legalActions))
	priors := make([]float32, len(legalActions))
	for i, pos := range legalActions {
		rawLogits[i] = logits[pos]
		priors[i] = probs[pos]
	}

	return &decisionNode{
		plateau:      plateau,
		deck:         deck,
		announced:    announced,
		turnIndex:    turnIndex,
		legalActions: legalActions,
		rawLogits:    rawLogits,
		priors:       priors,
		n:            make([]int, len(legalActions)),
		valueSum:     make([]float32, len(legalActions)),
		children:     make([]*chanceNode, len(legalActions)),
	}, nil
}

// simulateDecision runs one simulation from d: select an action by PUCT,
// then descend.
func (s *Searcher) simulateDecision(d *decisionNode) (float32, error) {
	a := d.selectAction(s.hp.CPuct)
	return s.simulateDecisionForced(d, a)
}

// simulateDecisionForced runs one simulation from d using the given action
// rather than selecting one, so the Gumbel-top-k root variant can force
// each candidate in turn while everything below it still uses plain PUCT.
func (s *Searcher) simulateDecisionForced(d *decisionNode, a int) (float32, error) {
	if d.n[a] == 0 {
		placed, _ := game.Place(d.plateau, d.legalActions[a], d.announced)
		var value float32
		if len(game.LegalMoves(&placed)) == 0 {
			value = normalizeScore(game.Score(&placed))
		} else {
			v, err := s.evaluateLeaf(placed, d.deck, d.turnIndex+1)
			if err != nil {
				return 0, err
			}
			value = v
		}
		d.n[a]++
		d.valueSum[a] += value
		return value, nil
	}

	if d.children[a] == nil {
		placed, _ := game.Place(d.plateau, d.legalActions[a], d.announced)
		d.children[a] = newChanceNode(placed, d.deck, d.turnIndex+1)
	}
	value, err := s.simulateChance(d.children[a])
	if err != nil {
		return 0, err
	}
	d.n[a]++
	d.valueSum[a] += value
	return value, nil
}

func (s *Searcher) simulateChance(c *chanceNode) (float32, error) {
	tile := c.selectTile(s.rng)
	child, ok := c.children[tile]
	if !ok {
		newDeck := c.deck.Remove(tile)
		var err error
		child, err = s.newDecisionNode(c.plateau, newDeck, tile, c.turnIndex)
		if err != nil {
			return 0, err
		}
		c.children[tile] = child
	}
	value, err := s.simulateDecision(child)
	if err != nil {
		return 0, err
	}
	c.visitCount[tile]++
	c.valueSum[tile] += value
	return value, nil
}

// evaluateLeaf blends the value network's estimate with averaged pattern
// rollouts at a freshly placed, non-terminal board. The announced-tile
// channel is left empty: the leaf sits between placements, with no specific
// next tile yet in play.
func (s *Searcher) evaluateLeaf(plateau game.Plateau, deck game.Deck, turnIndex int) (float32, error) {
	features := evaluator.Encode(&plateau, game.EmptyTile, turnIndex)
	vNet, err := s.evaluator.Value(features)
	if err != nil {
		return 0, err
	}

	rollouts := s.hp.RolloutCount
	if rollouts < 1 {
		rollouts = 1
	}
	var sum float32
	for i := 0; i < rollouts; i++ {
		sum += rollout(s.rng, plateau, deck, s.hp.HeuristicPenalty)
	}
	vRollout := sum / float32(rollouts)

	return s.hp.ValueMixAlpha*vNet + (1-s.hp.ValueMixAlpha)*vRollout, nil
}
