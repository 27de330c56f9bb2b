// Package asyncmove implements the non-blocking move handler: it turns
// session/gameplay operations into registry-scoped session mutations and
// makes sure an AI player's turn is always computed in a background task,
// never inline in the call that accepted the move that triggered it. The
// request path itself — join, ready, the human half of make_move, state
// reads — is synchronous and fast; only AI search is dispatched off the
// caller's goroutine.
package asyncmove

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"golang.org/x/sync/errgroup"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/game"
	"takeiteasy/internal/registry"
	"takeiteasy/internal/session"
)

// DefaultParallelism bounds how many background AI searches may run
// concurrently, process-wide.
const DefaultParallelism = 8

// Handler is the single entry point the external-interface adapters
// (internal/api) call for every gameplay operation. It owns no session
// state of its own beyond bookkeeping for its rate limit and background
// task pool.
type Handler struct {
	reg *registry.Registry

	ctx     context.Context
	aiGroup *errgroup.Group

	mu                sync.Mutex
	cond              *sync.Cond // signalled when active drops to zero
	active            int        // AI searches dispatched but not yet finished
	inFlightStartTurn map[string]bool
	inFlightSearch    map[string]int // session id -> searches currently running

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds a Handler bound to reg. ctx is the server's lifetime context:
// background AI tasks check it before applying a computed move, so
// cancelling ctx (server shutdown) stops new moves from landing without
// having to track every in-flight search individually. parallelism <= 0
// uses DefaultParallelism.
func New(ctx context.Context, reg *registry.Registry, parallelism int) *Handler {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	group := &errgroup.Group{}
	group.SetLimit(parallelism)
	h := &Handler{
		reg:               reg,
		ctx:               ctx,
		aiGroup:           group,
		inFlightStartTurn: make(map[string]bool),
		inFlightSearch:    make(map[string]int),
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Wait blocks until every dispatched background AI task has returned —
// including tasks those tasks themselves triggered by completing a turn and
// auto-starting the next one. Used by cmd/server during graceful shutdown;
// tests use it to make dispatched AI moves deterministically observable
// before asserting.
func (h *Handler) Wait() error {
	h.mu.Lock()
	for h.active > 0 {
		h.cond.Wait()
	}
	h.mu.Unlock()
	return h.aiGroup.Wait()
}

// StartTurn draws the next tile for sessionID (or re-announces the current
// one if the turn is still being played) and dispatches background searches
// for any AI players now waited for. Returns ErrTurnInFlight if another
// start_turn call for this session is being processed at this very moment.
func (h *Handler) StartTurn(sessionID string) (announced game.Tile, turnNumber int, waitingFor []string, err error) {
	if !h.beginStartTurn(sessionID) {
		return game.EmptyTile, 0, nil, ErrTurnInFlight
	}
	defer h.endStartTurn(sessionID)

	type startResult struct {
		tile    game.Tile
		turn    int
		waiting []string
	}
	r, err := registry.Scoped(h.reg, sessionID, func(s *session.Session) (startResult, error) {
		tile, turn, waiting, err := s.StartTurn()
		return startResult{tile, turn, waiting}, err
	})
	if err != nil {
		return game.EmptyTile, 0, nil, err
	}

	h.dispatchPendingAI(sessionID)
	return r.tile, r.turn, r.waiting, nil
}

// MakeMove applies playerID's placement at position and returns
// immediately: accepted reports whether the move was applied at all. Any
// automatic progression the move unlocks (the next start_turn, and any AI
// searches it wakes up) is triggered before returning but the AI searches
// themselves run in background tasks this call does not wait for.
func (h *Handler) MakeMove(sessionID, playerID string, position int) (accepted bool, pointsEarned int, isGameOver bool, err error) {
	type moveResult struct {
		points int
		over   bool
	}
	r, err := registry.Scoped(h.reg, sessionID, func(s *session.Session) (moveResult, error) {
		points, over, err := s.MakeMove(playerID, position)
		return moveResult{points, over}, err
	})
	if err != nil {
		return false, 0, false, err
	}

	h.progressAfterMove(sessionID)
	return true, r.points, r.over, nil
}

// progressAfterMove triggers the implicit start_turn a completed turn
// unlocks. Errors are logged, not propagated: MakeMove itself has already
// succeeded and returned to its caller by the time this runs.
func (h *Handler) progressAfterMove(sessionID string) {
	snap, err := registry.Scoped(h.reg, sessionID, func(s *session.Session) (session.Snapshot, error) {
		return s.GetState(), nil
	})
	if err != nil {
		return
	}
	if snap.State != session.InProgress || len(snap.WaitingFor) > 0 {
		return
	}
	if _, _, _, err := h.StartTurn(sessionID); err != nil {
		klog.V(1).Infof("asyncmove: auto start_turn for session %s: %v", sessionID, err)
	}
}

// dispatchPendingAI reads every AI player currently waited for and spawns
// one background search per player, with at most one such batch in flight
// per session. The session lock is held only long enough to copy each
// search's inputs (plateau, deck, announced tile); the search itself — and
// reapplying its result — happens outside the lock.
func (h *Handler) dispatchPendingAI(sessionID string) {
	type pendingSearch struct {
		playerID  string
		player    *aiplayer.Player
		plateau   game.Plateau
		deck      game.Deck
		announced game.Tile
	}
	searches, err := registry.Scoped(h.reg, sessionID, func(s *session.Session) ([]pendingSearch, error) {
		var w []pendingSearch
		for _, p := range s.PendingAIPlayers() {
			plateau, deck, announced, ok := s.SearchInputFor(p.ID)
			if !ok {
				continue
			}
			w = append(w, pendingSearch{p.ID, p.AIPlayer, plateau, deck, announced})
		}
		return w, nil
	})
	if err != nil || len(searches) == 0 {
		return
	}

	h.mu.Lock()
	if h.inFlightSearch[sessionID] > 0 {
		// This session's searches are already running (a repeated start_turn
		// poll re-announcing an in-flight turn); once they land, the AI
		// players leave waiting_for and nothing is left to dispatch twice.
		h.mu.Unlock()
		return
	}
	h.inFlightSearch[sessionID] = len(searches)
	h.active += len(searches)
	h.mu.Unlock()

	// Hand the searches to the bounded group from a detached goroutine:
	// Group.Go blocks while the group is at its limit, and this dispatch can
	// be reached from inside a group task (an AI move completing a turn
	// triggers the next turn's dispatch), so blocking here would hold a slot
	// while waiting for a slot. The active counter above is already bumped,
	// so Wait observes these searches before they reach the group.
	go func() {
		for _, w := range searches {
			h.aiGroup.Go(func() error {
				released := false
				release := func() {
					if !released {
						released = true
						h.searchFinished(sessionID)
					}
				}
				defer func() {
					release()
					h.taskDone()
				}()
				if h.ctx.Err() != nil {
					return nil
				}
				seed := h.nextSeed()
				pos := w.player.ChooseMove(w.plateau, w.deck, w.announced, seed)
				if h.ctx.Err() != nil {
					// Server is shutting down: discard the result rather
					// than applying a move after the fact.
					return nil
				}
				// The search itself is over; release its in-flight slot
				// before applying the move, because applying it can
				// complete the turn and dispatch the next turn's searches.
				release()
				if _, _, _, err := h.MakeMove(sessionID, w.playerID, pos); err != nil {
					// Expected whenever the session moved on or was
					// cancelled while the search ran: the result is simply
					// discarded.
					klog.V(1).Infof("asyncmove: AI move for session %s player %s discarded: %v", sessionID, w.playerID, err)
				}
				return nil
			})
		}
	}()
}

// searchFinished releases a session's in-flight search slot.
func (h *Handler) searchFinished(sessionID string) {
	h.mu.Lock()
	h.inFlightSearch[sessionID]--
	if h.inFlightSearch[sessionID] <= 0 {
		delete(h.inFlightSearch, sessionID)
	}
	h.mu.Unlock()
}

// taskDone retires a background task from the active count Wait blocks on.
func (h *Handler) taskDone() {
	h.mu.Lock()
	h.active--
	if h.active == 0 {
		h.cond.Broadcast()
	}
	h.mu.Unlock()
}

func (h *Handler) beginStartTurn(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlightStartTurn[sessionID] {
		return false
	}
	h.inFlightStartTurn[sessionID] = true
	return true
}

func (h *Handler) endStartTurn(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inFlightStartTurn, sessionID)
}

func (h *Handler) nextSeed() int64 {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return h.rng.Int63()
}
