// Package api defines the request/response shapes for the session and
// gameplay operations exposed to external collaborators (the transport
// layer), plus the Server that implements them on top of internal/registry
// and internal/asyncmove. Shapes are plain, JSON-tagged structs; any RPC or
// HTTP encoding preserving their fields works.
package api

import (
	"strings"

	"takeiteasy/internal/game"
	"takeiteasy/internal/session"
)

// GameMode mirrors session.GameMode on the wire as its lowercase name,
// since external collaborators shouldn't depend on the engine's internal
// enum ordering.
type GameMode string

const (
	GameModeSinglePlayer GameMode = "single_player"
	GameModeRealGame     GameMode = "real_game"
	GameModeMultiplayer  GameMode = "multiplayer"
)

// ParseGameMode converts the wire GameMode into session.GameMode, defaulting
// to SinglePlayer for an empty or unrecognized value.
func ParseGameMode(m GameMode) session.GameMode {
	switch GameMode(strings.ToLower(string(m))) {
	case GameModeRealGame:
		return session.RealGame
	case GameModeMultiplayer:
		return session.Multiplayer
	default:
		return session.SinglePlayer
	}
}

func gameModeToWire(m session.GameMode) GameMode {
	switch m {
	case session.RealGame:
		return GameModeRealGame
	case session.Multiplayer:
		return GameModeMultiplayer
	default:
		return GameModeSinglePlayer
	}
}

// State mirrors session.State on the wire.
type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
	StateCancelled  State = "cancelled"
)

func stateToWire(s session.State) State {
	switch s {
	case session.InProgress:
		return StateInProgress
	case session.Finished:
		return StateFinished
	case session.Cancelled:
		return StateCancelled
	default:
		return StateWaiting
	}
}

// PlayerView is one participant as exposed in a session state snapshot.
type PlayerView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	IsReady     bool   `json:"is_ready"`
	IsConnected bool   `json:"is_connected"`
}

// SessionStateSnapshot is the wire shape of a session state snapshot: the
// full externally visible session, including every player's plateau.
type SessionStateSnapshot struct {
	SessionID        string                     `json:"session_id"`
	SessionCode      string                     `json:"session_code"`
	State            State                      `json:"state"`
	GameMode         GameMode                   `json:"game_mode"`
	Players          []PlayerView               `json:"players"`
	CurrentTurn      int                        `json:"current_turn"`
	AnnouncedTile    *game.Tile                 `json:"announced_tile,omitempty"`
	PerPlayerPlateau map[string][]game.Tile     `json:"per_player_plateau"`
	WaitingFor       []string                   `json:"waiting_for"`
}

func toSnapshot(snap session.Snapshot) SessionStateSnapshot {
	players := make([]PlayerView, len(snap.Players))
	for i, p := range snap.Players {
		players[i] = PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			IsReady:     p.IsReady,
			IsConnected: p.IsConnected,
		}
	}
	plateaus := make(map[string][]game.Tile, len(snap.PerPlayerPlateau))
	for id, plateau := range snap.PerPlayerPlateau {
		tiles := make([]game.Tile, len(plateau))
		copy(tiles, plateau[:])
		plateaus[id] = tiles
	}
	var announced *game.Tile
	if !snap.AnnouncedTile.IsEmpty() {
		t := snap.AnnouncedTile
		announced = &t
	}
	return SessionStateSnapshot{
		SessionID:        snap.SessionID,
		SessionCode:      snap.SessionCode,
		State:            stateToWire(snap.State),
		GameMode:         gameModeToWire(snap.GameMode),
		Players:          players,
		CurrentTurn:      snap.CurrentTurn,
		AnnouncedTile:    announced,
		PerPlayerPlateau: plateaus,
		WaitingFor:       snap.WaitingFor,
	}
}

// CreateSessionRequest/Response: the CreateSession operation.
type CreateSessionRequest struct {
	PlayerName string   `json:"player_name"`
	GameMode   GameMode `json:"game_mode"`
}

type CreateSessionResponse struct {
	SessionID    string               `json:"session_id"`
	PlayerID     string               `json:"player_id"`
	SessionCode  string               `json:"session_code"`
	InitialState SessionStateSnapshot `json:"initial_state"`
}

// JoinSessionRequest/Response: the JoinSession operation.
type JoinSessionRequest struct {
	SessionCode string `json:"session_code"`
	PlayerName  string `json:"player_name"`
}

type JoinSessionResponse struct {
	SessionID string               `json:"session_id"`
	PlayerID  string               `json:"player_id"`
	State     SessionStateSnapshot `json:"state"`
}

// SetReadyResponse: the SetReady operation.
type SetReadyResponse struct {
	GameStarted bool `json:"game_started"`
}

// StartTurnResponse: the StartTurn operation. FinalState is populated
// instead of the announced-tile fields once the game has finished.
type StartTurnResponse struct {
	AnnouncedTile *game.Tile            `json:"announced_tile,omitempty"`
	TurnNumber    int                   `json:"turn_number"`
	WaitingFor    []string              `json:"waiting_for,omitempty"`
	FinalState    *SessionStateSnapshot `json:"final_state,omitempty"`
}

// MakeMoveResponse: the MakeMove operation.
type MakeMoveResponse struct {
	Accepted     bool `json:"accepted"`
	PointsEarned int  `json:"points_earned"`
	IsGameOver   bool `json:"is_game_over"`
}

// GetAiMoveRequest/Response: the GetAiMove operation. It is stateless with
// respect to the registry: it runs a search directly against caller-supplied
// board data, for analysis/hint tooling that isn't driving a live session.
type GetAiMoveRequest struct {
	AnnouncedTile      game.Tile     `json:"announced_tile"`
	Plateau            [19]game.Tile `json:"plateau"`
	AvailablePositions []int         `json:"available_positions"`
	TurnNumber         int           `json:"turn_number"`
}

type GetAiMoveResponse struct {
	RecommendedPosition int `json:"recommended_position"`
}
