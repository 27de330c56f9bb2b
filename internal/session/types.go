// Package session implements the per-session game-state machine: join,
// readiness, turn announcement, move application and disconnect/idle
// handling. A Session holds no registry knowledge of its own — it is a pure
// state machine over one game's data, and the only concurrency primitive it
// exposes is the embedded mutex a caller (normally internal/registry's
// Scoped) locks around a sequence of operations.
package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/game"
	"takeiteasy/internal/generics"
)

// State is a session's lifecycle stage.
type State int

const (
	Waiting State = iota
	InProgress
	Finished
	Cancelled
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "Waiting"
	case InProgress:
		return "InProgress"
	case Finished:
		return "Finished"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// GameMode determines how many human players a session admits.
type GameMode int

const (
	SinglePlayer GameMode = iota
	RealGame
	Multiplayer
)

// Capacity returns the maximum number of human players GameMode admits.
func (m GameMode) Capacity() int {
	switch m {
	case Multiplayer:
		return 4
	default:
		// SinglePlayer is one human plus the AI. RealGame is the
		// client-driven variant: one human, no engine-seated opponent.
		return 1
	}
}

// PlayerKind distinguishes human participants from the AI opponent.
type PlayerKind int

const (
	Human PlayerKind = iota
	AI
)

// Player is one participant in a session.
type Player struct {
	ID          string
	Name        string
	Score       int
	IsReady     bool
	IsConnected bool
	JoinedAt    time.Time
	Kind        PlayerKind
	AIPlayer    *aiplayer.Player // non-nil iff Kind == AI
}

// IdleTimeout is how long a session sits with no qualifying activity before
// CheckIdle cancels it — both for an abandoned Waiting session and for an
// InProgress one every human has disconnected from.
const IdleTimeout = 30 * time.Second

// Session is one game's full state. All fields are accessed only while the
// embedded Mutex is held by the caller (see internal/registry.Scoped).
type Session struct {
	sync.Mutex

	SessionID   string
	SessionCode string
	State       State
	GameMode    GameMode

	Players          []*Player
	PerPlayerPlateau map[string]game.Plateau
	PerPlayerScore   map[string]int

	CurrentTurn   int
	AnnouncedTile game.Tile // game.EmptyTile means no turn is currently active
	Deck          game.Deck
	WaitingFor    generics.Set[string]

	CreatedAt      time.Time
	LastActivityAt time.Time
	idleDeadline   time.Time // zero means "no deadline pending"

	rng *rand.Rand
}

// New creates a session in the Waiting state. seed controls every random
// draw the session makes (deck shuffling, tile draws), independent of any
// MCTS search's own RNG.
func New(sessionID, sessionCode string, mode GameMode, seed int64) *Session {
	now := time.Now()
	return &Session{
		SessionID:        sessionID,
		SessionCode:      sessionCode,
		State:            Waiting,
		GameMode:         mode,
		PerPlayerPlateau: make(map[string]game.Plateau),
		PerPlayerScore:   make(map[string]int),
		WaitingFor:       generics.MakeSet[string](),
		CreatedAt:        now,
		LastActivityAt:   now,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

func newPlayerID() string {
	return uuid.NewString()
}
