package session

import (
	"time"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/game"
	"takeiteasy/internal/generics"
)

// Join adds a human player in the Waiting state. Callers (internal/registry,
// through Scoped) must hold s's lock.
func (s *Session) Join(name string) (*Player, error) {
	if s.State != Waiting {
		return nil, ErrAlreadyStarted
	}
	if s.humanCount() >= s.GameMode.Capacity() {
		return nil, ErrSessionFull
	}
	p := &Player{
		ID:          newPlayerID(),
		Name:        name,
		Kind:        Human,
		IsConnected: true,
		JoinedAt:    time.Now(),
	}
	s.addPlayer(p)
	return p, nil
}

// AddAIPlayer seats an AI opponent, implicitly ready from the moment it
// joins: readiness only ever gates on humans.
func (s *Session) AddAIPlayer(name string, player *aiplayer.Player) (*Player, error) {
	if s.State != Waiting {
		return nil, ErrAlreadyStarted
	}
	p := &Player{
		ID:          newPlayerID(),
		Name:        name,
		Kind:        AI,
		IsReady:     true,
		IsConnected: true,
		JoinedAt:    time.Now(),
		AIPlayer:    player,
	}
	s.addPlayer(p)
	return p, nil
}

func (s *Session) addPlayer(p *Player) {
	s.Players = append(s.Players, p)
	s.PerPlayerPlateau[p.ID] = game.Plateau{}
	s.PerPlayerScore[p.ID] = 0
	s.touch()
}

func (s *Session) humanCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Kind == Human {
			n++
		}
	}
	return n
}

// SetReady marks a player ready. Once every human player is ready, the
// session moves to InProgress and its deck is initialized; the first turn
// itself is started by a subsequent StartTurn call, exactly like every
// other turn.
func (s *Session) SetReady(playerID string) (gameStarted bool, err error) {
	p := s.find(playerID)
	if p == nil {
		return false, ErrNotAParticipant
	}
	if s.State != Waiting {
		// Idempotent: the game has already started (or finished/was
		// cancelled since), so repeating the call is a no-op query.
		return s.State == InProgress || s.State == Finished, nil
	}

	p.IsReady = true
	s.touch()
	for _, pl := range s.Players {
		if pl.Kind == Human && !pl.IsReady {
			return false, nil
		}
	}
	s.State = InProgress
	s.Deck = game.NewDeck()
	return true, nil
}

// StartTurn draws the next tile and reopens waiting_for for every player.
// Calling it again while the turn is still being played is idempotent: the
// current announcement comes back unchanged rather than a second tile being
// drawn, so any number of clients can poll StartTurn for the same turn and
// all see the same tile.
func (s *Session) StartTurn() (announced game.Tile, turnNumber int, waitingFor []string, err error) {
	if s.State != InProgress {
		return game.EmptyTile, 0, nil, ErrNotInProgress
	}
	if len(s.WaitingFor) > 0 {
		return s.AnnouncedTile, s.CurrentTurn, s.waitingForIDs(), nil
	}
	if s.CurrentTurn >= game.NumPositions {
		return game.EmptyTile, 0, nil, ErrWrongState
	}

	tile, remaining := s.Deck.Draw(s.rng)
	s.Deck = remaining
	s.AnnouncedTile = tile
	s.WaitingFor = generics.MakeSet[string](len(s.Players))
	for _, p := range s.Players {
		s.WaitingFor.Insert(p.ID)
	}
	s.touch()
	return s.AnnouncedTile, s.CurrentTurn, s.waitingForIDs(), nil
}

// MakeMove applies announced_tile to playerID's plateau at position,
// scoring the delta and closing out the turn (and the session, on turn 19)
// once every waited-for player has moved.
func (s *Session) MakeMove(playerID string, position int) (pointsEarned int, isGameOver bool, err error) {
	if s.State != InProgress || s.AnnouncedTile == game.EmptyTile {
		return 0, false, ErrNoActiveTurn
	}
	if !s.WaitingFor.Has(playerID) {
		return 0, false, ErrNotYourTurn
	}
	plateau := s.PerPlayerPlateau[playerID]
	if !isLegal(&plateau, position) {
		return 0, false, ErrIllegalPosition
	}

	newPlateau, _ := game.Place(plateau, position, s.AnnouncedTile)
	newScore := game.Score(&newPlateau)
	pointsEarned = newScore - s.PerPlayerScore[playerID]

	s.PerPlayerPlateau[playerID] = newPlateau
	s.PerPlayerScore[playerID] = newScore
	if p := s.find(playerID); p != nil {
		p.Score = newScore
	}
	delete(s.WaitingFor, playerID)
	s.touch()

	if len(s.WaitingFor) == 0 {
		s.AnnouncedTile = game.EmptyTile
		s.CurrentTurn++
		if s.CurrentTurn >= game.NumPositions {
			s.State = Finished
		}
	}
	return pointsEarned, s.State == Finished, nil
}

func isLegal(plateau *game.Plateau, position int) bool {
	for _, m := range game.LegalMoves(plateau) {
		if m == position {
			return true
		}
	}
	return false
}

// Leave marks a player disconnected. If no humans remain connected, an idle
// deadline is set; CheckIdle cancels the session once it passes.
func (s *Session) Leave(playerID string) error {
	p := s.find(playerID)
	if p == nil {
		return ErrNotAParticipant
	}
	p.IsConnected = false
	s.touch()

	for _, pl := range s.Players {
		if pl.Kind == Human && pl.IsConnected {
			s.idleDeadline = time.Time{}
			return nil
		}
	}
	s.idleDeadline = time.Now().Add(IdleTimeout)
	return nil
}

// Cancel moves s to Cancelled unless it already reached a terminal state.
// Cancelled sessions refuse every further operation and are eventually
// reaped.
func (s *Session) Cancel() {
	if s.State == Finished || s.State == Cancelled {
		return
	}
	s.State = Cancelled
	s.touch()
}

// CheckIdle cancels s if it has been abandoned: a Waiting session with no
// activity for IdleTimeout, or an InProgress session every human has
// disconnected from past its idle deadline. Returns whether it did.
func (s *Session) CheckIdle(now time.Time) bool {
	switch s.State {
	case Waiting:
		if now.Sub(s.LastActivityAt) > IdleTimeout {
			s.State = Cancelled
			return true
		}
	case InProgress:
		if !s.idleDeadline.IsZero() && now.After(s.idleDeadline) {
			s.State = Cancelled
			return true
		}
	}
	return false
}

// PendingAIPlayers returns the AI players currently in waiting_for, for the
// async move handler to dispatch searches for.
func (s *Session) PendingAIPlayers() []*Player {
	var pending []*Player
	for _, p := range s.Players {
		if p.Kind == AI && s.WaitingFor.Has(p.ID) {
			pending = append(pending, p)
		}
	}
	return pending
}

// SearchInputFor returns the (plateau, deck, announced tile) a background
// search for playerID should run against, and false if playerID is not
// currently waited for. The returned deck is a private copy: the session
// lock is not held during the search itself, so the search must not share
// mutable state with the session going forward.
func (s *Session) SearchInputFor(playerID string) (plateau game.Plateau, deck game.Deck, announced game.Tile, ok bool) {
	if !s.WaitingFor.Has(playerID) {
		return game.Plateau{}, nil, game.EmptyTile, false
	}
	return s.PerPlayerPlateau[playerID], s.Deck.Clone(), s.AnnouncedTile, true
}

func (s *Session) find(playerID string) *Player {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) waitingForIDs() []string {
	ids := make([]string, 0, len(s.WaitingFor))
	for id := range s.WaitingFor {
		ids = append(ids, id)
	}
	return ids
}

func (s *Session) touch() {
	s.LastActivityAt = time.Now()
}
