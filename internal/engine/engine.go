package engine

import (
	"context"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
	"github.com/seekerror/logw"
)

// benchFENs is the fixed position set the "bench" UCI command runs to
// produce a reproducible, comparable node count and NPS figure across
// engine versions.
var benchFENs = []string{
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
}

// benchDepth is the SPSA-grade depth, deeper than the "e.g., 5 for quick"
// figure spec §6 offers as an example rather than a mandate.
const benchDepth = 14

// Engine is the single-threaded facade the UCI driver talks to: one
// Searcher, one transposition table, one NNUE evaluator, all owned here so
// ucinewgame/position/setoption have one place to reset or reconfigure them.
type Engine struct {
	cfg      *Config
	tt       *TranspositionTable
	eval     *nnue.Evaluator
	searcher *Searcher
	tc       *TimeController

	moveOverhead time.Duration

	// OnInfo, if set, is invoked after every completed iterative-deepening
	// depth during Go.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with a transposition table sized hashMB
// megabytes and an NNUE evaluator seeded with deterministic weights (call
// LoadNNUE to replace them with a trained network).
func NewEngine(hashMB int) *Engine {
	cfg := NewConfig()
	cfg.Hash.Value = float64(hashMB)
	tt := NewTranspositionTable(hashMB)

	eval, err := nnue.NewEvaluator("")
	if err != nil {
		// NewEvaluator("") never loads a file, so this can't actually fail.
		logw.Errorf(context.Background(), "engine: unexpected NNUE init error: %v", err)
	}
	eval.SetPosition(board.NewPosition())

	e := &Engine{
		cfg:  cfg,
		tt:   tt,
		eval: eval,
		tc:   NewTimeController(),
	}
	e.searcher = NewSearcher(cfg, tt, eval)
	return e
}

// LoadNNUE replaces the evaluator's network with weights read from path.
func (e *Engine) LoadNNUE(path string) error {
	eval, err := nnue.NewEvaluator(path)
	if err != nil {
		return err
	}
	e.eval = eval
	e.searcher = NewSearcher(e.cfg, e.tt, eval)
	logw.Infof(context.Background(), "engine: loaded NNUE weights from %s", path)
	return nil
}

// SetOption applies a UCI "setoption" name/value pair. Hash is special-cased
// because it requires reallocating the transposition table; MoveOverhead is
// special-cased because it feeds the time controller rather than the
// Config's own tunable plumbing. Everything else delegates to Config.
func (e *Engine) SetOption(name, value string) bool {
	switch name {
	case "Hash":
		mb := e.cfg.Hash.Value
		e.cfg.SetOption(name, value)
		if e.cfg.Hash.Value != mb {
			e.tt = NewTranspositionTable(e.cfg.Hash.Int())
			e.searcher = NewSearcher(e.cfg, e.tt, e.eval)
		}
		return true
	case "MoveOverhead":
		e.cfg.SetOption(name, value)
		e.moveOverhead = time.Duration(e.cfg.MoveOverhead.Int()) * time.Millisecond
		return true
	default:
		return e.cfg.SetOption(name, value)
	}
}

// Config exposes the engine's tunable set, mainly for the UCI layer to
// render "option" and "print spsa workload" lines from.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Clear resets the transposition table for a new game, called on
// "ucinewgame". Move-ordering history is left as is.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// SetPositionHistory seeds the repetition-detection stack with the game's
// position hashes up to (but not including) the current root, called before
// Go whenever "position" has been processed.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.searcher.SetRootHistory(hashes)
}

// Go runs a search against pos bounded by limits, streaming progress through
// OnInfo, and returns the chosen move.
func (e *Engine) Go(pos *board.Position, limits UCILimits) board.Move {
	e.eval.SetPosition(pos)

	tc := NewTimeController()
	tc.Setup(limits, pos.SideToMove, e.moveOverhead, e.cfg.TCTimeDivisor.Int())
	e.tc = tc

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = MaxPly - 1
	}

	return e.searcher.Go(pos, maxDepth, tc, e.OnInfo)
}

// Stop requests the in-progress search to return as soon as possible.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Nodes returns the most recent search's node count.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// Perft counts leaf nodes reachable from pos at exactly depth plies, used to
// validate move generation correctness and speed.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// Bench runs the fixed benchmark position set at a fixed depth and returns
// the total node count and nodes-per-second, for comparing engine builds
// and hardware reproducibly.
func (e *Engine) Bench() (nodes uint64, nps uint64) {
	e.tt.Clear()

	start := time.Now()
	var total uint64

	for _, fenStr := range benchFENs {
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			logw.Errorf(context.Background(), "engine: bench FEN parse failed: %v", err)
			continue
		}
		e.eval.SetPosition(pos)

		tc := NewTimeController()
		e.searcher.Go(pos, benchDepth, tc, nil)
		total += e.searcher.Nodes()
	}

	elapsed := time.Since(start)
	ms := elapsed.Milliseconds() + 1
	return total, total * 1000 / uint64(ms)
}
