package session

import "github.com/pkg/errors"

// Input errors returned by Session operations; compare with errors.Is. The
// handler layer (internal/asyncmove, internal/api) maps these onto its
// operation-level error taxonomy without inspecting anything beyond
// identity.
var (
	ErrAlreadyStarted  = errors.New("session already started")
	ErrSessionFull     = errors.New("session full")
	ErrNotAParticipant = errors.New("player is not a participant")
	ErrNotInProgress   = errors.New("session is not in progress")
	ErrWrongState      = errors.New("operation not valid in current state")
	ErrNotYourTurn     = errors.New("player is not waited for this turn")
	ErrIllegalPosition = errors.New("position is not a legal move")
	ErrNoActiveTurn    = errors.New("no turn is currently active")
)
