package api

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"takeiteasy/internal/asyncmove"
	"takeiteasy/internal/mcts"
	"takeiteasy/internal/registry"
	"takeiteasy/internal/session"
)

// Operation-level error taxonomy. Every Server method returns one of these
// (or nil); internal/session, internal/registry and internal/mcts errors
// are translated into them by translate, so lower layers keep their own
// typed errors and callers only ever see this set.
var (
	// Input errors: returned verbatim to the caller, never retried.
	ErrInvalidName     = errors.New("invalid player name")
	ErrNotFound        = errors.New("not found")
	ErrSessionFull     = errors.New("session full")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrNotAParticipant = errors.New("not a participant")
	ErrWrongState      = errors.New("wrong state for this operation")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrIllegalPosition = errors.New("illegal position")
	ErrNotInProgress   = errors.New("session not in progress")
	ErrNoActiveTurn    = errors.New("no active turn")
	ErrTurnInFlight    = errors.New("turn already being started")

	// Transient errors: the handler may retry EvaluatorFailure once with the
	// mock evaluator; Timeout is always surfaced.
	ErrTimeout          = errors.New("operation timed out")
	ErrEvaluatorFailure = errors.New("evaluator failure")

	// NoMoveAvailable: GetAiMove was asked to recommend a move for a board
	// with no legal position left.
	ErrNoMoveAvailable = errors.New("no move available")

	// Internal: an invariant violation. Logged at ERROR; never silenced,
	// never exposed with any more detail than this to the caller.
	ErrInternal = errors.New("internal error")
)

// translate maps an internal/session, internal/registry or internal/mcts
// error onto the operation-level taxonomy above. Input errors are logged at
// WARN; anything unrecognized is treated as an invariant violation, logged
// at ERROR and surfaced as the opaque ErrInternal.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, registry.ErrInvalidName):
		return ErrInvalidName
	case errors.Is(err, registry.ErrCodeExhausted):
		klog.Errorf("api: could not allocate a unique session code: %+v", err)
		return ErrInternal
	case errors.Is(err, registry.ErrShuttingDown):
		return ErrWrongState

	case errors.Is(err, session.ErrAlreadyStarted):
		return ErrAlreadyStarted
	case errors.Is(err, session.ErrSessionFull):
		return ErrSessionFull
	case errors.Is(err, session.ErrNotAParticipant):
		return ErrNotAParticipant
	case errors.Is(err, session.ErrNotInProgress):
		return ErrNotInProgress
	case errors.Is(err, session.ErrWrongState):
		return ErrWrongState
	case errors.Is(err, session.ErrNotYourTurn):
		return ErrNotYourTurn
	case errors.Is(err, session.ErrIllegalPosition):
		return ErrIllegalPosition
	case errors.Is(err, session.ErrNoActiveTurn):
		return ErrNoActiveTurn

	case errors.Is(err, asyncmove.ErrTurnInFlight):
		return ErrTurnInFlight

	case errors.Is(err, mcts.ErrNoMoveAvailable):
		return ErrNoMoveAvailable
	case errors.Is(err, mcts.ErrEvaluatorFailure):
		klog.Warningf("api: evaluator failure: %+v", err)
		return ErrEvaluatorFailure

	default:
		klog.Errorf("api: unrecognized error, treating as internal: %+v", err)
		return ErrInternal
	}
}

// warnInput logs an input-class error at WARN. Internal errors were already
// logged at ERROR by translate, so they are skipped here.
func warnInput(op string, err error) {
	if err == nil || err == ErrInternal {
		return
	}
	klog.Warningf("api: %s rejected: %v", op, err)
}
