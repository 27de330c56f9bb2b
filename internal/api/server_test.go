package api_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/api"
	"takeiteasy/internal/asyncmove"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/registry"
)

func newTestServer(t *testing.T) (*api.Server, *asyncmove.Handler) {
	t.Helper()
	eval := evaluator.NewMock()
	cfg := aiplayer.DefaultAIConfig()
	cfg.Simulations = 4 // keep tests fast
	reg := registry.New(func() *aiplayer.Player {
		return aiplayer.NewPlayer("ai", eval, cfg)
	})
	handler := asyncmove.New(context.Background(), reg, 4)
	return api.NewServer(reg, handler, eval, cfg), handler
}

func TestCreateSessionAndGetState(t *testing.T) {
	s, _ := newTestServer(t)
	resp, err := s.CreateSession(api.CreateSessionRequest{PlayerName: "Alice", GameMode: api.GameModeSinglePlayer})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.PlayerID)
	assert.Len(t, resp.SessionCode, registry.CodeLength)
	assert.Len(t, resp.InitialState.Players, 2)

	state, err := s.GetSessionState(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, api.StateWaiting, state.State)
}

func TestCreateSessionRejectsEmptyName(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.CreateSession(api.CreateSessionRequest{PlayerName: "", GameMode: api.GameModeSinglePlayer})
	assert.ErrorIs(t, err, api.ErrInvalidName)
}

func TestJoinSessionNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.JoinSession(api.JoinSessionRequest{SessionCode: "ZZZZZZ", PlayerName: "Bob"})
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestMultiplayerJoinAndReadyFlow(t *testing.T) {
	s, _ := newTestServer(t)
	created, err := s.CreateSession(api.CreateSessionRequest{PlayerName: "Bob", GameMode: api.GameModeMultiplayer})
	require.NoError(t, err)

	joined, err := s.JoinSession(api.JoinSessionRequest{SessionCode: created.SessionCode, PlayerName: "Carol"})
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, joined.SessionID)

	ready1, err := s.SetReady(created.SessionID, created.PlayerID)
	require.NoError(t, err)
	assert.False(t, ready1.GameStarted)

	ready2, err := s.SetReady(created.SessionID, joined.PlayerID)
	require.NoError(t, err)
	assert.True(t, ready2.GameStarted)

	turn, err := s.StartTurn(created.SessionID)
	require.NoError(t, err)
	require.NotNil(t, turn.AnnouncedTile)
	assert.Len(t, turn.WaitingFor, 2)
}

func TestSoloGameEndToEndThroughServer(t *testing.T) {
	s, handler := newTestServer(t)
	created, err := s.CreateSession(api.CreateSessionRequest{PlayerName: "Alice", GameMode: api.GameModeSinglePlayer})
	require.NoError(t, err)

	ready, err := s.SetReady(created.SessionID, created.PlayerID)
	require.NoError(t, err)
	assert.True(t, ready.GameStarted)

	for turn := 0; turn < game.NumPositions; turn++ {
		// From turn 1 on, the AI's move completing the previous turn has
		// already auto-started this one, so StartTurn re-announces the tile
		// already in play rather than drawing a fresh one.
		turnResp, err := s.StartTurn(created.SessionID)
		require.NoError(t, err)
		require.NotNil(t, turnResp.AnnouncedTile)
		assert.Equal(t, turn, turnResp.TurnNumber)

		state, err := s.GetGameState(created.SessionID)
		require.NoError(t, err)
		plateau := state.PerPlayerPlateau[created.PlayerID]
		var legalPos int
		for i, t := range plateau {
			if t.IsEmpty() {
				legalPos = i
				break
			}
		}
		move, err := s.MakeMove(created.SessionID, created.PlayerID, legalPos)
		require.NoError(t, err)
		assert.True(t, move.Accepted)

		// Drain the AI's background move (and the auto start of the next
		// turn) so each loop iteration observes a settled session.
		require.NoError(t, handler.Wait())
	}

	final, err := s.GetSessionState(created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, api.StateFinished, final.State)

	// The AI opponent finished its own plateau too: 19 tiles placed and a
	// score consistent with it.
	for _, p := range final.Players {
		placed := 0
		for _, tile := range final.PerPlayerPlateau[p.ID] {
			if !tile.IsEmpty() {
				placed++
			}
		}
		assert.Equal(t, game.NumPositions, placed)

		var plateau game.Plateau
		copy(plateau[:], final.PerPlayerPlateau[p.ID])
		assert.Equal(t, game.Score(&plateau), p.Score)
	}
}

func TestGetAiMoveStateless(t *testing.T) {
	s, _ := newTestServer(t)
	var plateau [game.NumPositions]game.Tile
	req := api.GetAiMoveRequest{
		AnnouncedTile:      game.Tile{V1: 1, V2: 2, V3: 3},
		Plateau:            plateau,
		AvailablePositions: []int{0, 1, 2},
		TurnNumber:         0,
	}
	resp, err := s.GetAiMove(req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.RecommendedPosition, 0)
	assert.Less(t, resp.RecommendedPosition, game.NumPositions)
}

func TestGetAiMoveNoMoveAvailable(t *testing.T) {
	s, _ := newTestServer(t)
	var full [game.NumPositions]game.Tile
	tiles := game.FullDeck()
	for i := range full {
		full[i] = tiles[i]
	}
	req := api.GetAiMoveRequest{
		AnnouncedTile: tiles[len(tiles)-1],
		Plateau:       full,
	}
	_, err := s.GetAiMove(req)
	assert.ErrorIs(t, err, api.ErrNoMoveAvailable)
}

func TestGetAiMoveRetriesWithMockOnEvaluatorFailure(t *testing.T) {
	broken := evaluator.NewMock()
	broken.Err = errors.New("evaluator down")
	cfg := aiplayer.DefaultAIConfig()
	cfg.Simulations = 4
	reg := registry.New(func() *aiplayer.Player {
		return aiplayer.NewPlayer("ai", broken, cfg)
	})
	handler := asyncmove.New(context.Background(), reg, 2)
	s := api.NewServer(reg, handler, broken, cfg)

	resp, err := s.GetAiMove(api.GetAiMoveRequest{
		AnnouncedTile: game.Tile{V1: 1, V2: 2, V3: 3},
		TurnNumber:    0,
	})
	require.NoError(t, err, "a broken evaluator degrades to a mock-backed recommendation, not an error")
	assert.GreaterOrEqual(t, resp.RecommendedPosition, 0)
	assert.Less(t, resp.RecommendedPosition, game.NumPositions)
}
