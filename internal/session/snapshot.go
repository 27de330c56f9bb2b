package session

import "takeiteasy/internal/game"

// PlayerSnapshot is the externally visible subset of Player fields.
type PlayerSnapshot struct {
	ID          string
	Name        string
	Score       int
	IsReady     bool
	IsConnected bool
}

// Snapshot is a non-mutating read of a session's externally visible state.
type Snapshot struct {
	SessionID        string
	SessionCode      string
	State            State
	GameMode         GameMode
	Players          []PlayerSnapshot
	CurrentTurn      int
	AnnouncedTile    game.Tile // game.EmptyTile means absent
	PerPlayerPlateau map[string]game.Plateau
	WaitingFor       []string
}

// GetState returns a snapshot of s. The returned maps and slices are private
// copies; mutating them does not affect the session.
func (s *Session) GetState() Snapshot {
	players := make([]PlayerSnapshot, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			IsReady:     p.IsReady,
			IsConnected: p.IsConnected,
		}
	}
	plateaus := make(map[string]game.Plateau, len(s.PerPlayerPlateau))
	for id, p := range s.PerPlayerPlateau {
		plateaus[id] = p
	}
	return Snapshot{
		SessionID:        s.SessionID,
		SessionCode:      s.SessionCode,
		State:            s.State,
		GameMode:         s.GameMode,
		Players:          players,
		CurrentTurn:      s.CurrentTurn,
		AnnouncedTile:    s.AnnouncedTile,
		PerPlayerPlateau: plateaus,
		WaitingFor:       s.waitingForIDs(),
	}
}
