package aiplayer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/parameters"
)

func TestDefaultAIConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := aiplayer.DefaultAIConfig()
	assert.Equal(t, 150, cfg.Simulations)
	assert.Equal(t, float32(4.2), cfg.Hyperparams.CPuct)
	assert.Equal(t, 1, cfg.Hyperparams.RolloutCount)
	assert.InDelta(t, 1.0, cfg.Hyperparams.PolicyTemperature, 1e-9)
	assert.InDelta(t, 0.5, cfg.Hyperparams.ValueMixAlpha, 1e-9)
	assert.Equal(t, 0, cfg.Hyperparams.GumbelK)
}

func TestAIConfigFromParamsOverridesOnlyGivenKeys(t *testing.T) {
	params := parameters.NewFromConfigString("simulations=40,c_puct=1.5")
	cfg, err := aiplayer.NewAIConfigFromParams(params)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Simulations)
	assert.InDelta(t, 1.5, cfg.Hyperparams.CPuct, 1e-9)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1, cfg.Hyperparams.RolloutCount)
	assert.Empty(t, params, "consumed keys must be popped from params")
}

func TestAIConfigFromParamsRejectsBadValue(t *testing.T) {
	params := parameters.NewFromConfigString("simulations=not-a-number")
	_, err := aiplayer.NewAIConfigFromParams(params)
	assert.Error(t, err)
}

func TestPlayerChooseMoveReturnsLegalPosition(t *testing.T) {
	p := aiplayer.NewPlayer("mock", evaluator.NewMock(), aiplayer.DefaultAIConfig())
	deck := game.NewDeck()
	announced := deck[0]
	deck = deck.Remove(announced)

	move := p.ChooseMove(game.Plateau{}, deck, announced, 11)
	assert.GreaterOrEqual(t, move, 0)
	assert.Less(t, move, game.NumPositions)
}

func TestPlayerChooseMoveFallsBackOnEvaluatorFailure(t *testing.T) {
	mock := evaluator.NewMock()
	mock.Err = assertError{}
	p := aiplayer.NewPlayer("broken", mock, aiplayer.DefaultAIConfig())

	deck := game.NewDeck()
	announced := deck[0]
	deck = deck.Remove(announced)

	move := p.ChooseMove(game.Plateau{}, deck, announced, 11)
	assert.Equal(t, 0, move, "first legal position on an empty plateau is 0")
}

type assertError struct{}

func (assertError) Error() string { return "evaluator exploded" }
