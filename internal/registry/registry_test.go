package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/registry"
	"takeiteasy/internal/session"
)

func newTestAI() *aiplayer.Player {
	return aiplayer.NewPlayer("ai", evaluator.NewMock(), aiplayer.DefaultAIConfig())
}

func newTestRegistry() *registry.Registry {
	var seeded int64
	return registry.New(newTestAI, registry.WithSeedFunc(func() int64 {
		seeded++
		return seeded
	}))
}

func TestCreateSessionSeatsAIForSinglePlayer(t *testing.T) {
	r := newTestRegistry()
	s, playerID, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)
	assert.NotEmpty(t, s.SessionID)
	assert.Len(t, s.SessionCode, registry.CodeLength)
	assert.Len(t, s.Players, 2, "single-player session seats the human and one AI")

	found, ok := r.LookupByID(s.SessionID)
	assert.True(t, ok)
	assert.Same(t, s, found)

	byCode, ok := r.LookupByCode(s.SessionCode)
	assert.True(t, ok)
	assert.Same(t, s, byCode)

	snap := s.GetState()
	var humanFound bool
	for _, p := range snap.Players {
		if p.ID == playerID {
			humanFound = true
		}
	}
	assert.True(t, humanFound)
}

func TestCreateSessionRejectsEmptyName(t *testing.T) {
	r := newTestRegistry()
	_, _, err := r.CreateSession("", session.SinglePlayer)
	assert.ErrorIs(t, err, registry.ErrInvalidName)
}

func TestCreateSessionGeneratesDistinctCodes(t *testing.T) {
	r := newTestRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, _, err := r.CreateSession("Player", session.Multiplayer)
		require.NoError(t, err)
		assert.False(t, seen[s.SessionCode], "session codes must be unique among live sessions")
		seen[s.SessionCode] = true
	}
}

func TestLookupByIDMissing(t *testing.T) {
	r := newTestRegistry()
	_, ok := r.LookupByID("nonexistent")
	assert.False(t, ok)
}

func TestScopedAppliesUnderLockAndReleasesOnError(t *testing.T) {
	r := newTestRegistry()
	s, playerID, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)

	started, err := registry.Scoped(r, s.SessionID, func(sess *session.Session) (bool, error) {
		return sess.SetReady(playerID)
	})
	require.NoError(t, err)
	assert.True(t, started)

	// The lock must have been released: a second Scoped call succeeds
	// immediately rather than deadlocking.
	_, err = registry.Scoped(r, s.SessionID, func(sess *session.Session) (int, error) {
		return sess.CurrentTurn, nil
	})
	require.NoError(t, err)

	_, err = registry.Scoped(r, "missing-session", func(sess *session.Session) (int, error) {
		return 0, nil
	})
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestScopedReleasesLockOnPanic(t *testing.T) {
	r := newTestRegistry()
	s, _, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = registry.Scoped(r, s.SessionID, func(sess *session.Session) (int, error) {
			panic("boom")
		})
	})

	// The deferred Unlock still ran, so the session is usable afterwards.
	_, err = registry.Scoped(r, s.SessionID, func(sess *session.Session) (int, error) {
		return sess.CurrentTurn, nil
	})
	require.NoError(t, err)
}

func TestCheckIdleCancelsAbandonedWaitingSession(t *testing.T) {
	r := newTestRegistry()
	s, _, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)

	r.CheckIdle(time.Now().Add(session.IdleTimeout + time.Second))

	_, ok := r.LookupByCode(s.SessionCode)
	assert.False(t, ok, "a cancelled session's code is unregistered immediately")
	snap := s.GetState()
	assert.Equal(t, session.Cancelled, snap.State)
}

func TestReapRemovesOldFinishedSessions(t *testing.T) {
	r := registry.New(newTestAI, registry.WithRetention(0))
	s, _, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)

	_, err = registry.Scoped(r, s.SessionID, func(sess *session.Session) (int, error) {
		sess.State = session.Finished
		sess.LastActivityAt = time.Now().Add(-time.Minute)
		return 0, nil
	})
	require.NoError(t, err)

	removed := r.Reap(time.Now())
	assert.Equal(t, 1, removed)
	_, ok := r.LookupByID(s.SessionID)
	assert.False(t, ok)
}

func TestCountTracksLiveSessions(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, 0, r.Count())
	_, _, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())
}

func TestShutdownRefusesNewSessionsAndRemovesLive(t *testing.T) {
	r := newTestRegistry()
	s, _, err := r.CreateSession("Alice", session.SinglePlayer)
	require.NoError(t, err)

	r.Shutdown()

	_, _, err = r.CreateSession("Bob", session.SinglePlayer)
	assert.ErrorIs(t, err, registry.ErrShuttingDown)

	_, ok := r.LookupByID(s.SessionID)
	assert.False(t, ok, "live sessions are removed on shutdown")
	snap := s.GetState()
	assert.Equal(t, session.Cancelled, snap.State)
}
