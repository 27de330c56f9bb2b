// cmd/bench plays a configurable number of solo games against the mock
// evaluator at a given simulation budget and seed, and prints avg/min/max
// final scores. Useful for hyperparameter sweeps and for a quick sanity
// check that a search change didn't tank playing strength.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/janpfeifer/must"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"takeiteasy/internal/aiplayer"
	"takeiteasy/internal/evaluator"
	"takeiteasy/internal/game"
	"takeiteasy/internal/mcts"
	"takeiteasy/internal/profilers"
	"takeiteasy/internal/ui/cli"
	"takeiteasy/internal/ui/spinning"
)

var (
	flagSimulations = flag.Int("simulations", 150, "MCTS simulation budget per move.")
	flagSeed        = flag.Int64("seed", 0, "RNG seed; 0 picks one from the current time.")
	flagNumGames    = flag.Int("num_games", 100, "Number of self-play games to run.")
	flagParallelism = flag.Int("parallelism", 0, "If > 0, ignore GOMAXPROCS and run this many games simultaneously.")
	flagCPuct       = flag.Float64("c_puct", float64(mcts.DefaultHyperparams().CPuct), "PUCT exploration constant.")
	flagGumbelK     = flag.Int("gumbel_k", 0, "If > 0, use the Gumbel-top-k root variant with this k.")
	flagPrintSteps  = flag.Bool("print_steps", false, "Print the board after every move. Very verbose; set parallelism to 1.")
)

var globalCtx = context.Background()

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	must.M(runBench(globalCtx))
}

type stats struct {
	mu            sync.Mutex
	start         time.Time
	played, total int
	sum           int64
	min, max      int
}

func (s *stats) record(score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.played == 0 || score < s.min {
		s.min = score
	}
	if s.played == 0 || score > s.max {
		s.max = score
	}
	s.sum += int64(score)
	s.played++
}

func (s *stats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	avg := 0.0
	if s.played > 0 {
		avg = float64(s.sum) / float64(s.played)
	}
	return fmt.Sprintf("Played %d/%d: avg=%.1f min=%d max=%d (%s)",
		s.played, s.total, avg, s.min, s.max, time.Since(s.start))
}

var (
	stepUI   = cli.New(false)
	muStepUI sync.Mutex
)

func runBench(ctx context.Context) error {
	seed := *flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eval := evaluator.NewMock()
	hp := mcts.DefaultHyperparams()
	hp.CPuct = float32(*flagCPuct)
	hp.GumbelK = *flagGumbelK
	cfg := aiplayer.AIConfig{Simulations: *flagSimulations, Hyperparams: hp}

	s := &stats{start: time.Now(), total: *flagNumGames}
	var wg errgroup.Group
	wg.SetLimit(parallelism())
	fmt.Printf("\r%s", s)

	for gameIdx := range s.total {
		wg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			player := aiplayer.NewPlayer(fmt.Sprintf("bench-%d", gameIdx), eval, cfg)
			score := runGame(ctx, player, seed+int64(gameIdx))
			s.record(score)
			fmt.Printf("\r%s", s)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return err
	}
	fmt.Printf("\r%s\n", s)
	return nil
}

// runGame plays one solo game to completion against an evaluator-driven AI
// and returns the final score. It uses the game kernel directly rather than
// a session, since benchmarking self-play quality has no use for the
// multi-session scheduler.
func runGame(ctx context.Context, player *aiplayer.Player, seed int64) int {
	rng := rand.New(rand.NewSource(seed))
	deck := game.NewDeck()
	var plateau game.Plateau

	for turn := 0; turn < game.NumPositions; turn++ {
		if ctx.Err() != nil {
			return game.Score(&plateau)
		}
		var tile game.Tile
		tile, deck = deck.Draw(rng)
		pos := player.ChooseMove(plateau, deck, tile, seed+int64(turn))
		plateau, _ = game.Place(plateau, pos, tile)
		if *flagPrintSteps {
			muStepUI.Lock()
			stepUI.PrintPlateau(&plateau)
			stepUI.PrintScore(player.Name, game.Score(&plateau))
			fmt.Println()
			muStepUI.Unlock()
		}
	}
	return game.Score(&plateau)
}

func parallelism() int {
	if *flagParallelism > 0 {
		return *flagParallelism
	}
	return int(math.Max(1, float64(runtime.GOMAXPROCS(0))))
}
