// cmd/server takes a listen address and exposes the session and gameplay
// operations over HTTP: a thin gorilla/mux transport (route table, JSON
// decode/encode, mux.Vars path params) wrapped around internal/api.Server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/api"
	"takeiteasy/internal/asyncmove"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/mcts"
	"takeiteasy/internal/profilers"
	"takeiteasy/internal/registry"
	"takeiteasy/internal/ui/spinning"
)

var (
	flagAddr         = flag.String("addr", ":8080", "Listen address, e.g. :8080 or 127.0.0.1:9000.")
	flagSimulations  = flag.Int("simulations", 200, "MCTS simulation budget per AI move.")
	flagParallelism  = flag.Int("parallelism", 0, "Max concurrent background AI searches; <= 0 uses asyncmove.DefaultParallelism.")
	flagGumbelK      = flag.Int("gumbel_k", 0, "If > 0, use the Gumbel-top-k root variant with this k for AI players.")
	flagIdleInterval = flag.Duration("idle_check_interval", time.Minute, "How often to scan for idle sessions to cancel.")
	flagReapInterval = flag.Duration("reap_interval", 10*time.Minute, "How often to remove old finished/cancelled sessions.")
	flagRetention    = flag.Duration("retention", registry.DefaultRetention, "How long a finished/cancelled session is kept before reaping.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 5*time.Second)
	defer cancel()

	profilers.Setup(ctx)
	defer profilers.OnQuit()

	must.M(serve(ctx))
}

func serve(ctx context.Context) error {
	eval := evaluator.NewMock()
	hp := mcts.DefaultHyperparams()
	hp.GumbelK = *flagGumbelK
	aiCfg := aiplayer.AIConfig{Simulations: *flagSimulations, Hyperparams: hp}

	reg := registry.New(
		func() *aiplayer.Player { return aiplayer.NewPlayer("AI", eval, aiCfg) },
		registry.WithRetention(*flagRetention),
	)
	handler := asyncmove.New(ctx, reg, *flagParallelism)
	server := api.NewServer(reg, handler, eval, aiCfg)

	go runReaper(ctx, reg)

	router := buildRouter(server)
	httpServer := &http.Server{Addr: *flagAddr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			klog.Warningf("cmd/server: graceful shutdown: %v", err)
		}
	}()

	klog.Infof("cmd/server: listening on %s", *flagAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	reg.Shutdown()
	if err := handler.Wait(); err != nil {
		klog.Warningf("cmd/server: draining background AI tasks: %v", err)
	}
	return nil
}

// runReaper periodically idle-cancels and reaps sessions from reg. It stops
// when ctx is cancelled.
func runReaper(ctx context.Context, reg *registry.Registry) {
	idleTicker := time.NewTicker(*flagIdleInterval)
	defer idleTicker.Stop()
	reapTicker := time.NewTicker(*flagReapInterval)
	defer reapTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-idleTicker.C:
			reg.CheckIdle(now)
		case now := <-reapTicker.C:
			reg.Reap(now)
		}
	}
}

func buildRouter(server *api.Server) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/sessions", handleCreateSession(server)).Methods("POST")
	router.HandleFunc("/sessions/join", handleJoinSession(server)).Methods("POST")
	router.HandleFunc("/sessions/{id}/ready", handleSetReady(server)).Methods("POST")
	router.HandleFunc("/sessions/{id}/leave", handleLeaveSession(server)).Methods("POST")
	router.HandleFunc("/sessions/{id}", handleGetSessionState(server)).Methods("GET")
	router.HandleFunc("/sessions/{id}/start_turn", handleStartTurn(server)).Methods("POST")
	router.HandleFunc("/sessions/{id}/move", handleMakeMove(server)).Methods("POST")
	router.HandleFunc("/sessions/{id}/game_state", handleGetGameState(server)).Methods("GET")
	router.HandleFunc("/ai/move", handleGetAiMove(server)).Methods("POST")
	return router
}

func handleCreateSession(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := server.CreateSession(req)
		if writeError(w, err) {
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleJoinSession(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.JoinSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := server.JoinSession(req)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleSetReady(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		var req struct {
			PlayerID string `json:"player_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := server.SetReady(sessionID, req.PlayerID)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleLeaveSession(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		var req struct {
			PlayerID string `json:"player_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := server.LeaveSession(sessionID, req.PlayerID); writeError(w, err) {
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetSessionState(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		resp, err := server.GetSessionState(sessionID)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleStartTurn(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		resp, err := server.StartTurn(sessionID)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleMakeMove(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		var req struct {
			PlayerID string `json:"player_id"`
			Position int    `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := server.MakeMove(sessionID, req.PlayerID, req.Position)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleGetGameState(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		resp, err := server.GetGameState(sessionID)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleGetAiMove(server *api.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.GetAiMoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := server.GetAiMove(req)
		if writeError(w, err) {
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// writeError translates an internal/api taxonomy error into an HTTP status
// and writes it, returning true if it did (so callers can `return` in one
// line). A nil err is a no-op that returns false.
func writeError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	http.Error(w, err.Error(), statusFor(err))
	return true
}

func statusFor(err error) int {
	switch err {
	case api.ErrInvalidName, api.ErrIllegalPosition, api.ErrWrongState, api.ErrNoActiveTurn:
		return http.StatusBadRequest
	case api.ErrNotFound:
		return http.StatusNotFound
	case api.ErrSessionFull, api.ErrAlreadyStarted, api.ErrNotAParticipant, api.ErrNotYourTurn, api.ErrNotInProgress, api.ErrTurnInFlight:
		return http.StatusConflict
	case api.ErrTimeout:
		return http.StatusGatewayTimeout
	case api.ErrEvaluatorFailure, api.ErrNoMoveAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
