package asyncmove

import "github.com/pkg/errors"

// Errors returned by Handler methods beyond whatever internal/session or
// internal/registry already return (those propagate unwrapped, so callers
// can keep comparing against session.ErrNotYourTurn etc. with errors.Is).
var (
	// ErrTurnInFlight is returned by StartTurn when a start_turn call for
	// the same session is already being processed: at most one is allowed
	// in flight per session.
	ErrTurnInFlight = errors.New("a turn is already being started for this session")
)
