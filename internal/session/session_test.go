package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/session"
)

func newAI(t *testing.T) *aiplayer.Player {
	t.Helper()
	return aiplayer.NewPlayer("ai", evaluator.NewMock(), aiplayer.DefaultAIConfig())
}

func TestJoinRejectsAfterSessionFull(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	_, err := s.Join("Alice")
	require.NoError(t, err)

	_, err = s.Join("Bob")
	assert.ErrorIs(t, err, session.ErrSessionFull)
}

func TestSoloGameShortestPath(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	human, err := s.Join("Alice")
	require.NoError(t, err)
	ai, err := s.AddAIPlayer("Bot", newAI(t))
	require.NoError(t, err)

	started, err := s.SetReady(human.ID)
	require.NoError(t, err)
	assert.True(t, started, "AI is implicitly ready, so the only human readying starts the game")

	for turn := 0; turn < game.NumPositions; turn++ {
		announced, turnNumber, waitingFor, err := s.StartTurn()
		require.NoError(t, err)
		assert.Equal(t, turn, turnNumber)
		assert.Len(t, waitingFor, 2)
		assert.NotEqual(t, game.EmptyTile, announced)

		plateau := s.PerPlayerPlateau[human.ID]
		legal := game.LegalMoves(&plateau)
		_, gameOver, err := s.MakeMove(human.ID, legal[0])
		require.NoError(t, err)

		aiPlateau := s.PerPlayerPlateau[ai.ID]
		aiLegal := game.LegalMoves(&aiPlateau)
		_, gameOver, err = s.MakeMove(ai.ID, aiLegal[0])
		require.NoError(t, err)

		if turn == game.NumPositions-1 {
			assert.True(t, gameOver)
		}
	}

	assert.Equal(t, session.Finished, s.State)
	finalPlateau := s.PerPlayerPlateau[human.ID]
	assert.Equal(t, game.Score(&finalPlateau), s.PerPlayerScore[human.ID])
}

func TestMultiplayerSynchronization(t *testing.T) {
	s := session.New("s1", "AAA111", session.Multiplayer, 2)
	bob, err := s.Join("Bob")
	require.NoError(t, err)
	carol, err := s.Join("Carol")
	require.NoError(t, err)

	_, err = s.SetReady(bob.ID)
	require.NoError(t, err)
	started, err := s.SetReady(carol.ID)
	require.NoError(t, err)
	assert.True(t, started)

	firstTile, _, waitingFor, err := s.StartTurn()
	require.NoError(t, err)
	assert.Len(t, waitingFor, 2)

	_, _, err = s.MakeMove(bob.ID, 3)
	require.NoError(t, err)

	_, _, err = s.MakeMove(bob.ID, 4)
	assert.ErrorIs(t, err, session.ErrNotYourTurn)

	_, gameOver, err := s.MakeMove(carol.ID, 7)
	require.NoError(t, err)
	assert.False(t, gameOver)

	secondTile, _, _, err := s.StartTurn()
	require.NoError(t, err)
	assert.NotEqual(t, firstTile, secondTile)
}

func TestStartTurnIsIdempotentWhileTurnInFlight(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	human, _ := s.Join("Alice")
	s.AddAIPlayer("Bot", newAI(t))
	_, err := s.SetReady(human.ID)
	require.NoError(t, err)

	first, firstTurn, _, err := s.StartTurn()
	require.NoError(t, err)

	// A repeated StartTurn while waiting_for is non-empty re-announces the
	// same tile rather than drawing a second one.
	second, secondTurn, waiting, err := s.StartTurn()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstTurn, secondTurn)
	assert.Len(t, waiting, 2)
}

func TestMakeMoveRejectsIllegalPosition(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	human, _ := s.Join("Alice")
	s.AddAIPlayer("Bot", newAI(t))
	_, err := s.SetReady(human.ID)
	require.NoError(t, err)
	_, _, _, err = s.StartTurn()
	require.NoError(t, err)

	_, _, err = s.MakeMove(human.ID, 99)
	assert.ErrorIs(t, err, session.ErrIllegalPosition)
}

func TestSessionIdleCancellation(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	human, _ := s.Join("Alice")
	s.AddAIPlayer("Bot", newAI(t))
	_, err := s.SetReady(human.ID)
	require.NoError(t, err)
	_, _, _, err = s.StartTurn()
	require.NoError(t, err)

	require.NoError(t, s.Leave(human.ID))
	cancelled := s.CheckIdle(time.Now().Add(session.IdleTimeout + time.Second))
	assert.True(t, cancelled)
	assert.Equal(t, session.Cancelled, s.State)
}

func TestWaitingSessionCancelledAfterIdleTimeout(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	_, err := s.Join("Alice")
	require.NoError(t, err)

	cancelled := s.CheckIdle(time.Now().Add(session.IdleTimeout + time.Second))
	assert.True(t, cancelled)
}

func TestSetReadyIsIdempotent(t *testing.T) {
	s := session.New("s1", "AAA111", session.SinglePlayer, 1)
	human, _ := s.Join("Alice")
	s.AddAIPlayer("Bot", newAI(t))

	started1, err := s.SetReady(human.ID)
	require.NoError(t, err)
	started2, err := s.SetReady(human.ID)
	require.NoError(t, err)
	assert.True(t, started1)
	assert.True(t, started2, "second SetReady is idempotent and reports the game as already started")
}
