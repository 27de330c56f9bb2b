// Package registry implements the process-wide, sharded owner of all live
// game sessions: creation with unique id/code assignment, id/code lookup,
// scoped exclusive-lock access, and reaping of old finished/cancelled
// sessions. Other packages address sessions by session_id and read or change
// a session's mutable state only inside a scoped call.
package registry

import (
	"crypto/rand"
	"hash/fnv"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/session"
)

// DefaultShardCount bounds registry contention: enough shards that
// independent sessions rarely collide on the same shard lock, without
// over-allocating for a process that might only ever host a handful of
// sessions.
const DefaultShardCount = 16

// DefaultRetention is how long a Finished or Cancelled session is kept
// around (for late GetSessionState polls) before Reap removes it.
const DefaultRetention = time.Hour

// CodeAlphabet is the character set session codes are drawn from: 36
// alphanumeric characters, 6 of them per code, giving ~2 billion codes —
// comfortably collision-free for the number of concurrently live sessions
// any single process will ever host.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of a generated session code.
const CodeLength = 6

// maxCodeAttempts bounds the unique-code retry loop before giving up with
// ErrCodeExhausted; at CodeLength=6 this is astronomically unlikely to be hit.
const maxCodeAttempts = 64

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// Registry is a process-wide singleton (callers typically construct exactly
// one and share it); tests construct a fresh one per case.
type Registry struct {
	shards    []*shard
	retention time.Duration

	codeMu sync.Mutex
	codes  map[string]string // session code -> session id, live sessions only
	closed bool              // guarded by codeMu; set once by Shutdown

	seedMu sync.Mutex
	nextSeed func() int64

	newAIPlayer func() *aiplayer.Player
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithShardCount overrides DefaultShardCount.
func WithShardCount(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.shards = make([]*shard, n)
			for i := range r.shards {
				r.shards[i] = &shard{sessions: make(map[string]*session.Session)}
			}
		}
	}
}

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(r *Registry) { r.retention = d }
}

// WithSeedFunc overrides how each new session's own RNG is seeded (deck
// shuffling, tile draws). Tests supply a deterministic sequence; production
// callers can leave the default, which seeds from crypto/rand.
func WithSeedFunc(f func() int64) Option {
	return func(r *Registry) { r.nextSeed = f }
}

// New builds a Registry. newAIPlayer is called once per SinglePlayer session
// created to build that session's sole AI opponent; RealGame and Multiplayer
// never seat an engine-driven AI.
func New(newAIPlayer func() *aiplayer.Player, opts ...Option) *Registry {
	r := &Registry{
		retention:   DefaultRetention,
		codes:       make(map[string]string),
		nextSeed:    defaultSeed,
		newAIPlayer: newAIPlayer,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.shards == nil {
		WithShardCount(DefaultShardCount)(r)
	}
	return r
}

func defaultSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// time-derived seed rather than panicking a whole session create.
		return time.Now().UnixNano()
	}
	return n.Int64()
}

func (r *Registry) shardFor(sessionID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

// CreateSession creates a new session in Waiting state, joins creatorName as
// its first human player, and — for SinglePlayer only — seats the registry's
// AI opponent. Returns the session and the creator's player id.
func (r *Registry) CreateSession(creatorName string, mode session.GameMode) (*session.Session, string, error) {
	if creatorName == "" {
		return nil, "", ErrInvalidName
	}
	if r.isClosed() {
		return nil, "", ErrShuttingDown
	}

	code, err := r.newUniqueCode()
	if err != nil {
		return nil, "", err
	}
	id := uuid.NewString()
	s := session.New(id, code, mode, r.seed())

	player, err := s.Join(creatorName)
	if err != nil {
		// A brand-new Waiting session always has room for its first
		// player; reaching here would be an invariant violation.
		return nil, "", errors.Wrap(err, "joining creator to a fresh session")
	}
	if mode == session.SinglePlayer && r.newAIPlayer != nil {
		if _, err := s.AddAIPlayer("AI", r.newAIPlayer()); err != nil {
			return nil, "", errors.Wrap(err, "seating AI opponent")
		}
	}

	r.insert(s)
	klog.V(1).Infof("registry: created session %s (code %s, mode %d)", id, code, mode)
	return s, player.ID, nil
}

func (r *Registry) seed() int64 {
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	return r.nextSeed()
}

func (r *Registry) insert(s *session.Session) {
	sh := r.shardFor(s.SessionID)
	sh.mu.Lock()
	sh.sessions[s.SessionID] = s
	sh.mu.Unlock()

	r.codeMu.Lock()
	r.codes[s.SessionCode] = s.SessionID
	r.codeMu.Unlock()
}

func (r *Registry) newUniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		r.codeMu.Lock()
		_, taken := r.codes[code]
		r.codeMu.Unlock()
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	alphabetSize := big.NewInt(int64(len(CodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", errors.Wrap(err, "generating session code")
		}
		buf[i] = CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// LookupByID returns the live session for sessionID, or (nil, false).
func (r *Registry) LookupByID(sessionID string) (*session.Session, bool) {
	sh := r.shardFor(sessionID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.sessions[sessionID]
	return s, ok
}

// LookupByCode returns the live session registered under code, or (nil, false).
func (r *Registry) LookupByCode(code string) (*session.Session, bool) {
	r.codeMu.Lock()
	id, ok := r.codes[code]
	r.codeMu.Unlock()
	if !ok {
		return nil, false
	}
	return r.LookupByID(id)
}

// Scoped runs f with sessionID's session lock held, releasing it on every
// exit path including a panic inside f (the defer still runs during
// unwinding), and returns f's result. It is a free function rather than a
// method because Go methods cannot carry their own type parameters.
func Scoped[R any](r *Registry, sessionID string, f func(*session.Session) (R, error)) (R, error) {
	var zero R
	s, ok := r.LookupByID(sessionID)
	if !ok {
		return zero, ErrNotFound
	}
	s.Lock()
	defer s.Unlock()
	return f(s)
}

// CheckIdle runs session.CheckIdle(now) against every live session,
// cancelling (and unregistering the code of) any that have gone idle past
// their timeout. Intended to be driven by a ticker (see cmd/server).
func (r *Registry) CheckIdle(now time.Time) {
	for _, sh := range r.shards {
		sh.mu.RLock()
		sessions := make([]*session.Session, 0, len(sh.sessions))
		for _, s := range sh.sessions {
			sessions = append(sessions, s)
		}
		sh.mu.RUnlock()

		for _, s := range sessions {
			s.Lock()
			cancelled := s.CheckIdle(now)
			code := s.SessionCode
			s.Unlock()
			if cancelled {
				r.unregisterCode(code)
				klog.V(1).Infof("registry: session %s idle-cancelled", s.SessionID)
			}
		}
	}
}

func (r *Registry) unregisterCode(code string) {
	r.codeMu.Lock()
	delete(r.codes, code)
	r.codeMu.Unlock()
}

// Reap removes sessions that have been Finished or Cancelled for longer than
// the registry's retention interval. Returns how many were removed.
func (r *Registry) Reap(now time.Time) int {
	removed := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for id, s := range sh.sessions {
			s.Lock()
			done := s.State == session.Finished || s.State == session.Cancelled
			stale := done && now.Sub(s.LastActivityAt) > r.retention
			code := s.SessionCode
			s.Unlock()
			if stale {
				delete(sh.sessions, id)
				r.unregisterCode(code)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	if removed > 0 {
		klog.V(1).Infof("registry: reaped %d stale session(s)", removed)
	}
	return removed
}

func (r *Registry) isClosed() bool {
	r.codeMu.Lock()
	defer r.codeMu.Unlock()
	return r.closed
}

// Shutdown closes the registry for new sessions, cancels every live session
// and removes them all immediately, retention notwithstanding. Called once
// at process termination; in-flight background AI tasks will find their
// session gone and discard their results.
func (r *Registry) Shutdown() {
	r.codeMu.Lock()
	r.closed = true
	r.codeMu.Unlock()

	removed := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for id, s := range sh.sessions {
			s.Lock()
			s.Cancel()
			code := s.SessionCode
			s.Unlock()
			delete(sh.sessions, id)
			r.unregisterCode(code)
			removed++
		}
		sh.mu.Unlock()
	}
	klog.V(1).Infof("registry: shut down, %d session(s) removed", removed)
}

// Count returns the number of sessions currently tracked (any state);
// exposed for diagnostics and tests.
func (r *Registry) Count() int {
	n := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}
