package aiplayer

import (
	"fmt"

	"k8s.io/klog/v2"

	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/mcts"
)

// Player wraps an evaluator and an AIConfig into a single move chooser a
// session can call without knowing anything about MCTS internals.
type Player struct {
	Name      string
	Evaluator evaluator.Evaluator
	Config    AIConfig
}

// NewPlayer returns a ready-to-use Player.
func NewPlayer(name string, eval evaluator.Evaluator, config AIConfig) *Player {
	return &Player{Name: name, Evaluator: eval, Config: config}
}

// ChooseMove runs a search seeded by seed and returns the chosen board
// position. It never returns an error and never panics out to the caller:
// on a search panic or an evaluator failure it falls back to the first
// legal position and logs the failure, so one bad evaluator call forfeits a
// single turn's search quality rather than the whole match.
func (p *Player) ChooseMove(plateau game.Plateau, deck game.Deck, announced game.Tile, seed int64) (pos int) {
	defer func() {
		if r := recover(); r != nil {
			pos = p.forfeitFallback(&plateau, fmt.Errorf("panic: %v", r))
		}
	}()

	searcher := mcts.NewSearcher(p.Evaluator, p.Config.Hyperparams, seed)
	move, err := searcher.ChooseMove(plateau, deck, announced, p.Config.Simulations)
	if err != nil {
		return p.forfeitFallback(&plateau, err)
	}
	return move
}

// forfeitFallback plays the first legal position, logging why the real
// search couldn't run. Called only when plateau still has a legal move;
// ChooseMove is never invoked on a full board.
func (p *Player) forfeitFallback(plateau *game.Plateau, cause error) int {
	moves := game.LegalMoves(plateau)
	klog.Errorf("aiplayer %s: search failed (%+v), forfeiting to first legal position %d", p.Name, cause, moves[0])
	return moves[0]
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (simulations=%d, c_puct=%.2f)", p.Name, p.Config.Simulations, p.Config.Hyperparams.CPuct)
}
