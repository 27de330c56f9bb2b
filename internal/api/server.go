package api

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/asyncmove"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/mcts"
	"takeiteasy/internal/registry"
	"takeiteasy/internal/session"
)

// Server implements the session and gameplay operations on top of a
// Registry and an asyncmove.Handler, translating their typed errors into
// the operation-level taxonomy of errors.go. This is the package the
// transport layer (cmd/server, or any other adapter) is meant to call
// directly; it never touches net/http itself.
type Server struct {
	reg     *registry.Registry
	handler *asyncmove.Handler

	defaultEvaluator evaluator.Evaluator
	defaultAIConfig  aiplayer.AIConfig

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewServer builds a Server. defaultEvaluator/defaultAIConfig are used both
// to seat each SinglePlayer session's AI opponent and to service the
// stateless GetAiMove operation.
func NewServer(reg *registry.Registry, handler *asyncmove.Handler, defaultEvaluator evaluator.Evaluator, defaultAIConfig aiplayer.AIConfig) *Server {
	return &Server{
		reg:              reg,
		handler:          handler,
		defaultEvaluator: defaultEvaluator,
		defaultAIConfig:  defaultAIConfig,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Server) nextSeed() int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Int63()
}

// CreateSession creates a new Waiting session with the caller as its first
// player and returns its id, code and initial state.
func (s *Server) CreateSession(req CreateSessionRequest) (CreateSessionResponse, error) {
	sess, playerID, err := s.reg.CreateSession(req.PlayerName, ParseGameMode(req.GameMode))
	if err != nil {
		err = translate(err)
		warnInput("CreateSession", err)
		return CreateSessionResponse{}, err
	}
	snap, err := registry.Scoped(s.reg, sess.SessionID, func(sc *session.Session) (session.Snapshot, error) {
		return sc.GetState(), nil
	})
	if err != nil {
		err = translate(err)
		warnInput("CreateSession", err)
		return CreateSessionResponse{}, err
	}
	return CreateSessionResponse{
		SessionID:    sess.SessionID,
		PlayerID:     playerID,
		SessionCode:  sess.SessionCode,
		InitialState: toSnapshot(snap),
	}, nil
}

// JoinSession adds a player to the session registered under the given code.
func (s *Server) JoinSession(req JoinSessionRequest) (JoinSessionResponse, error) {
	sess, ok := s.reg.LookupByCode(req.SessionCode)
	if !ok {
		warnInput("JoinSession", ErrNotFound)
		return JoinSessionResponse{}, ErrNotFound
	}

	type joinResult struct {
		playerID string
		snap     session.Snapshot
	}
	r, err := registry.Scoped(s.reg, sess.SessionID, func(sc *session.Session) (joinResult, error) {
		p, err := sc.Join(req.PlayerName)
		if err != nil {
			return joinResult{}, err
		}
		return joinResult{p.ID, sc.GetState()}, nil
	})
	if err != nil {
		err = translate(err)
		warnInput("JoinSession", err)
		return JoinSessionResponse{}, err
	}
	return JoinSessionResponse{
		SessionID: sess.SessionID,
		PlayerID:  r.playerID,
		State:     toSnapshot(r.snap),
	}, nil
}

// SetReady marks a player ready, reporting whether that started the game.
func (s *Server) SetReady(sessionID, playerID string) (SetReadyResponse, error) {
	started, err := registry.Scoped(s.reg, sessionID, func(sc *session.Session) (bool, error) {
		return sc.SetReady(playerID)
	})
	if err != nil {
		err = translate(err)
		warnInput("SetReady", err)
		return SetReadyResponse{}, err
	}
	return SetReadyResponse{GameStarted: started}, nil
}

// LeaveSession marks a player disconnected.
func (s *Server) LeaveSession(sessionID, playerID string) error {
	_, err := registry.Scoped(s.reg, sessionID, func(sc *session.Session) (struct{}, error) {
		return struct{}{}, sc.Leave(playerID)
	})
	if err != nil {
		err = translate(err)
		warnInput("LeaveSession", err)
		return err
	}
	return nil
}

// GetSessionState returns the session's externally visible state.
func (s *Server) GetSessionState(sessionID string) (SessionStateSnapshot, error) {
	snap, err := registry.Scoped(s.reg, sessionID, func(sc *session.Session) (session.Snapshot, error) {
		return sc.GetState(), nil
	})
	if err != nil {
		err = translate(err)
		warnInput("GetSessionState", err)
		return SessionStateSnapshot{}, err
	}
	return toSnapshot(snap), nil
}

// StartTurn announces the next tile (or re-announces the one already in
// play). Once the game is Finished it returns the final state instead of an
// announcement.
func (s *Server) StartTurn(sessionID string) (StartTurnResponse, error) {
	tile, turn, waiting, err := s.handler.StartTurn(sessionID)
	if err != nil {
		translated := translate(err)
		if translated == ErrNotInProgress {
			if snap, sErr := s.GetSessionState(sessionID); sErr == nil && snap.State == StateFinished {
				return StartTurnResponse{FinalState: &snap}, nil
			}
		}
		warnInput("StartTurn", translated)
		return StartTurnResponse{}, translated
	}
	return StartTurnResponse{
		AnnouncedTile: &tile,
		TurnNumber:    turn,
		WaitingFor:    waiting,
	}, nil
}

// MakeMove places the announced tile for a player and reports the points
// the placement earned.
func (s *Server) MakeMove(sessionID, playerID string, position int) (MakeMoveResponse, error) {
	accepted, points, over, err := s.handler.MakeMove(sessionID, playerID, position)
	if err != nil {
		translated := translate(err)
		warnInput("MakeMove", translated)
		return MakeMoveResponse{Accepted: false}, translated
	}
	return MakeMoveResponse{Accepted: accepted, PointsEarned: points, IsGameOver: over}, nil
}

// GetGameState returns the full state including per-player plateau and
// score. It is the same snapshot GetSessionState returns; both operations
// are kept because clients address them as distinct endpoints.
func (s *Server) GetGameState(sessionID string) (SessionStateSnapshot, error) {
	return s.GetSessionState(sessionID)
}

// GetAiMove returns a stateless recommendation for an externally supplied
// board, independent of any live session. Used by hint/analysis tooling
// rather than session autoplay (which goes through internal/aiplayer via
// the asyncmove handler instead).
func (s *Server) GetAiMove(req GetAiMoveRequest) (GetAiMoveResponse, error) {
	plateau := game.Plateau(req.Plateau)
	if len(game.LegalMoves(&plateau)) == 0 {
		return GetAiMoveResponse{}, ErrNoMoveAvailable
	}

	deck := buildDeck(plateau, req.AnnouncedTile)
	searcher := mcts.NewSearcher(s.defaultEvaluator, s.defaultAIConfig.Hyperparams, s.nextSeed())
	pos, err := searcher.ChooseMove(plateau, deck, req.AnnouncedTile, s.defaultAIConfig.Simulations)
	if err != nil && errors.Is(err, mcts.ErrEvaluatorFailure) {
		// Retry once with the mock evaluator: a degraded uniform-policy
		// recommendation beats an error for hint tooling.
		klog.Warningf("api: GetAiMove evaluator failure, retrying with mock evaluator: %v", err)
		retry := mcts.NewSearcher(evaluator.NewMock(), s.defaultAIConfig.Hyperparams, s.nextSeed())
		pos, err = retry.ChooseMove(plateau, deck, req.AnnouncedTile, s.defaultAIConfig.Simulations)
	}
	if err != nil {
		translated := translate(err)
		warnInput("GetAiMove", translated)
		return GetAiMoveResponse{}, translated
	}
	return GetAiMoveResponse{RecommendedPosition: pos}, nil
}

// buildDeck reconstructs the set of tiles not yet announced from the full
// 27-tile deck, given the board's already-placed tiles and the tile on
// offer this turn (itself not yet placed, so not "on the board" but also no
// longer in the deck).
func buildDeck(plateau game.Plateau, announced game.Tile) game.Deck {
	placed := make(map[game.Tile]bool, game.NumPositions)
	for _, t := range plateau {
		if !t.IsEmpty() {
			placed[t] = true
		}
	}
	placed[announced] = true

	var deck game.Deck
	for _, t := range game.FullDeck() {
		if !placed[t] {
			deck = append(deck, t)
		}
	}
	return deck
}
