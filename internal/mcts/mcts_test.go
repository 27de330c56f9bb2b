package mcts_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/mcts"
)

func freshDeckAndAnnounced() (game.Deck, game.Tile) {
	deck := game.NewDeck()
	announced := deck[0]
	return deck.Remove(announced), announced
}

func TestChooseMoveIsDeterministicGivenSeed(t *testing.T) {
	deck, announced := freshDeckAndAnnounced()
	hp := mcts.DefaultHyperparams()

	s1 := mcts.NewSearcher(evaluator.NewMock(), hp, 42)
	move1, err := s1.ChooseMove(game.Plateau{}, deck, announced, 50)
	require.NoError(t, err)

	s2 := mcts.NewSearcher(evaluator.NewMock(), hp, 42)
	move2, err := s2.ChooseMove(game.Plateau{}, deck, announced, 50)
	require.NoError(t, err)

	assert.Equal(t, move1, move2)
}

func TestChooseMoveReturnsLegalPosition(t *testing.T) {
	deck, announced := freshDeckAndAnnounced()
	s := mcts.NewSearcher(evaluator.NewMock(), mcts.DefaultHyperparams(), 7)

	move, err := s.ChooseMove(game.Plateau{}, deck, announced, 30)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, move, 0)
	assert.Less(t, move, game.NumPositions)
}

func TestChooseMoveNoMoveAvailableOnFullBoard(t *testing.T) {
	var p game.Plateau
	for i := 0; i < game.NumPositions; i++ {
		p, _ = game.Place(p, i, game.Tile{V1: 1, V2: 2, V3: 3})
	}
	s := mcts.NewSearcher(evaluator.NewMock(), mcts.DefaultHyperparams(), 1)

	_, err := s.ChooseMove(p, game.Deck{}, game.Tile{V1: 5, V2: 6, V3: 4}, 10)
	assert.ErrorIs(t, err, mcts.ErrNoMoveAvailable)
}

func TestChooseMoveGumbelVariantReturnsLegalPosition(t *testing.T) {
	deck, announced := freshDeckAndAnnounced()
	hp := mcts.DefaultHyperparams()
	hp.GumbelK = 4
	s := mcts.NewSearcher(evaluator.NewMock(), hp, 3)

	move, err := s.ChooseMove(game.Plateau{}, deck, announced, 40)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, move, 0)
	assert.Less(t, move, game.NumPositions)
}

func TestChooseMoveWrapsEvaluatorFailure(t *testing.T) {
	deck, announced := freshDeckAndAnnounced()
	m := evaluator.NewMock()
	m.Err = errors.New("broken evaluator")
	s := mcts.NewSearcher(m, mcts.DefaultHyperparams(), 1)

	_, err := s.ChooseMove(game.Plateau{}, deck, announced, 10)
	assert.ErrorIs(t, err, mcts.ErrEvaluatorFailure)
}

func TestChooseMoveSingleLegalPositionShortCircuits(t *testing.T) {
	var p game.Plateau
	for i := 0; i < game.NumPositions-1; i++ {
		p, _ = game.Place(p, i, game.Tile{V1: 1, V2: 2, V3: 3})
	}
	s := mcts.NewSearcher(evaluator.NewMock(), mcts.DefaultHyperparams(), 1)

	move, err := s.ChooseMove(p, game.Deck{}, game.Tile{V1: 5, V2: 6, V3: 4}, 0)
	require.NoError(t, err)
	assert.Equal(t, game.NumPositions-1, move)
}
