package engine

import (
	"math"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
	"go.uber.org/atomic"
)

// Infinity is a window bound comfortably outside any real score, including
// a mate score found at the deepest ply the PV table can represent.
// MateScore is the magnitude of a checkmate found at ply 0; a mate found at
// ply p is scored MateScore-p so that shallower mates are preferred.
const (
	Infinity  = 100001
	MateScore = 100000
	MaxPly    = 128
)

// SearchInfo is one iterative-deepening report, handed to the caller's
// OnInfo callback after every completed depth.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	NPS      uint64
	Elapsed  float64 // seconds
	PV       []board.Move
	HashFull int
}

// Searcher runs a single-threaded iterative-deepening search against one
// position. It owns every piece of per-search state: the transposition
// table and NNUE evaluator are shared with the owning Engine and survive
// across searches. At the start of Go the node count, stop flag and killers
// are reset and the history-heuristic table is halved; the repetition stack
// keeps the root history set by SetRootHistory.
type Searcher struct {
	pos *board.Position

	cfg     *Config
	tt      *TranspositionTable
	orderer *MoveOrderer
	eval    *nnue.Evaluator
	hist    *HistoryStack
	pv      PVTable
	tc      *TimeController

	nodes     uint64
	evalStack [MaxPly]int
	stop      atomic.Bool
}

// NewSearcher wires a searcher to its shared transposition table, config and
// NNUE evaluator.
func NewSearcher(cfg *Config, tt *TranspositionTable, eval *nnue.Evaluator) *Searcher {
	return &Searcher{
		cfg:     cfg,
		tt:      tt,
		orderer: NewMoveOrderer(),
		eval:    eval,
		hist:    NewHistoryStack(),
		tc:      NewTimeController(),
	}
}

// SetRootHistory seeds the repetition-detection stack with the game's prior
// position hashes (not including the current root, which Go pushes itself).
func (s *Searcher) SetRootHistory(keys []uint64) {
	s.hist.SetRoot(keys)
}

// Stop requests the in-progress search to unwind as soon as it next checks.
func (s *Searcher) Stop() {
	s.stop.Store(true)
}

// Nodes returns the node count of the most recent (or in-progress) search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Go runs iterative deepening from pos up to maxDepth (or until tc's budget
// or an external Stop request ends it), invoking onInfo after each depth
// that completed before time ran out. It returns the best move found by the
// deepest completed iteration.
func (s *Searcher) Go(pos *board.Position, maxDepth int, tc *TimeController, onInfo func(SearchInfo)) board.Move {
	s.pos = pos
	s.tc = tc
	s.nodes = 0
	s.stop.Store(false)
	s.hist.Push(pos.Hash)
	defer s.hist.Pop()

	s.tt.NewSearch()
	s.orderer.Clear()

	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	bestMove := board.NoMove
	var bestPV []board.Move

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && s.tc.PastSoftLimit(s.cfg.TCElapsedFactor.Int()) {
			break
		}
		if s.stop.Load() {
			break
		}

		score := s.negamax(depth, 0, -Infinity, Infinity)

		if s.tc.IsTimeUp() || s.stop.Load() {
			break
		}

		bestMove = s.pv.BestMove()
		bestPV = s.pv.Collect()

		if onInfo != nil {
			elapsed := s.tc.Elapsed().Seconds()
			nps := uint64(0)
			if elapsed > 0 {
				nps = uint64(float64(s.nodes) / elapsed)
			}
			onInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    s.nodes,
				NPS:      nps,
				Elapsed:  elapsed,
				PV:       bestPV,
				HashFull: s.tt.HashFull(),
			})
		}

		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
	}

	if bestMove == board.NoMove {
		if legal := pos.GenerateLegalMoves(); legal.Len() > 0 {
			bestMove = legal.Get(0)
		}
	}
	return bestMove
}

// improving reports whether the static eval at ply is at least as good as it
// was two plies earlier (the same side to move), the standard signal
// NMP/RFP/LMR use to search more aggressively when a side's position keeps
// getting better for it. A missing ply-2 entry (ply < 2) counts as equal,
// i.e. improving.
func (s *Searcher) improving(ply, staticEval int) bool {
	if ply < 2 {
		return true
	}
	return staticEval >= s.evalStack[ply-2]
}

func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	s.pv.UpdateLength(ply)

	if s.tc.IsTimeUp() || s.stop.Load() {
		return 0
	}

	if depth <= 0 {
		return s.quiescence(alpha, beta, s.cfg.QSearchDepth.Int())
	}

	s.nodes++

	key := s.pos.Hash
	isRoot := ply == 0
	isPV := beta-alpha > 1

	entry, found := s.tt.Probe(key)
	if found && !isRoot && int(entry.Depth) >= depth {
		ttScore := AdjustScoreFromTT(int(entry.Score), ply)
		switch entry.Bound {
		case BoundExact:
			return ttScore
		case BoundAlpha:
			if ttScore <= alpha {
				return ttScore
			}
		case BoundBeta:
			if ttScore >= beta {
				return ttScore
			}
		}
	}

	isCheck := s.pos.InCheck()
	staticEval := s.eval.Evaluate(s.pos.SideToMove)
	if ply < MaxPly {
		s.evalStack[ply] = staticEval
	}

	if !isRoot {
		if s.hist.CountZobrist(key) >= 1 || s.pos.HalfMoveClock >= 100 || s.pos.IsInsufficientMaterial() {
			return 0
		}
	}

	if !isCheck && !isPV {
		// Reverse futility pruning: if we're already comfortably above beta
		// by static eval alone at shallow depth, assume it holds.
		if depth <= s.cfg.RFPDepth.Int() {
			margin := s.cfg.RFPBaseMargin.Int() * depth
			if s.improving(ply, staticEval) {
				margin -= s.cfg.RFPReductionImproving.Int()
			}
			if staticEval-margin >= beta {
				return staticEval
			}
		}

		// Null-move pruning: give the opponent a free move and see if we
		// still beat beta; if even a tempo loss can't save us, cut.
		if depth > s.cfg.NMPDepth.Int() && ply > 0 && s.pos.HasNonPawnMaterial() {
			divisor := s.cfg.NMPDivisor.Int()
			if s.improving(ply, staticEval) {
				divisor = s.cfg.NMPDivisorImproving.Int()
			}
			r := s.cfg.NMPMargin.Int() + depth/divisor
			if r > depth {
				r = depth
			}
			undo := s.pos.MakeNullMove()
			score := -s.negamax(depth-r, ply+1, -beta, -beta+1)
			s.pos.UnmakeNullMove(undo)
			if score >= beta {
				return score
			}
		}
	}

	moves := s.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if isCheck {
			return -MateScore + ply
		}
		return 0
	}

	ttMove := board.NoMove
	if found {
		ttMove = entry.BestMove
	}

	// Internal iterative reduction: the TT recommended a move that isn't
	// even legal here anymore (key collision, or a stale shallower entry);
	// treat this node as less trustworthy and search it shallower.
	if ttMove != board.NoMove && depth > 1 && !moves.Contains(ttMove) {
		depth--
	}

	scores := s.orderer.ScoreMoves(s.cfg, s.pos, moves, ply, ttMove)

	startAlpha := alpha
	bestScore := -Infinity
	bestMove := moves.Get(0)
	skipQuiets := false

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)
		isQuiet := m.IsQuiet(s.pos)

		// Late-move pruning: quiet moves seen this late at shallow depth
		// are assumed not to pan out and are skipped entirely.
		if !isPV && !isCheck && isQuiet && !m.IsPromotion() &&
			i >= s.cfg.LMPMoveMargin.Int()+s.cfg.LMPDepthFactor.Int()*depth {
			continue
		}

		if skipQuiets && isQuiet {
			continue
		}

		s.eval.Push()
		s.eval.ApplyMove(s.pos, m)
		undo := s.pos.MakeMove(m)
		s.hist.Push(s.pos.Hash)

		givesCheck := s.pos.InCheck()

		r := 1
		if depth >= s.cfg.LMRDepth.Int() && i >= s.cfg.LMRMoveMargin.Int() && !givesCheck {
			var rf float64
			if isQuiet {
				rf = s.cfg.LMRQuietMargin.Value + math.Log(float64(depth))*math.Log(float64(i))/s.cfg.LMRQuietDivisor.Value
			} else {
				rf = s.cfg.LMRBaseMargin.Value + math.Log(float64(depth))*math.Log(float64(i))/s.cfg.LMRBaseDivisor.Value
			}
			if !s.improving(ply, staticEval) {
				rf *= 2
			}
			r = clampReduction(rf, depth)
		}

		// Extended futility pruning: once the reduced remaining depth's
		// best-case static score still can't reach alpha, stop considering
		// quiet moves at this node (but still search this one out).
		if depth-r <= s.cfg.FPDepthMargin.Int() {
			margin := s.cfg.FPBaseMargin.Int() + s.cfg.FPMarginDepthFactor.Int()*(depth-r)
			if staticEval+margin < alpha {
				skipQuiets = true
			}
		}

		var score int
		if i == 0 {
			score = -s.negamax(depth-1, ply+1, -beta, -alpha)
		} else {
			score = -s.negamax(depth-r, ply+1, -alpha-1, -alpha)
			if score > alpha && isPV {
				score = -s.negamax(depth-1, ply+1, -beta, -alpha)
			}
		}

		s.hist.Pop()
		s.pos.UnmakeMove(m, undo)
		s.eval.Pop()

		if s.tc.IsTimeUp() || s.stop.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				s.pv.Store(ply, m)
			}
		}

		if alpha >= beta {
			if isQuiet {
				s.orderer.UpdateKillers(m, ply)
				s.orderer.UpdateHistory(s.pos, m, depth)
			}
			break
		}
	}

	bound := BoundExact
	switch {
	case bestScore <= startAlpha:
		bound = BoundAlpha
	case bestScore >= beta:
		bound = BoundBeta
	}
	s.tt.Store(key, depth, AdjustScoreToTT(bestScore, ply), bound, bestMove)

	return bestScore
}

// quiescence extends the search along capturing lines only, so the static
// eval returned at the frontier of the main search isn't blind to a hanging
// piece one ply away. limit bounds recursion depth independent of the main
// search's ply, decrementing on every recursive call.
func (s *Searcher) quiescence(alpha, beta, limit int) int {
	s.nodes++

	if s.tc.IsTimeUp() || s.stop.Load() {
		return 0
	}

	standPat := s.eval.Evaluate(s.pos.SideToMove)
	if limit <= 0 {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.cfg, s.pos, captures, 0, board.NoMove)

	for i := 0; i < captures.Len(); i++ {
		PickMove(captures, scores, i)
		m := captures.Get(i)

		s.eval.Push()
		s.eval.ApplyMove(s.pos, m)
		undo := s.pos.MakeMove(m)

		score := -s.quiescence(-beta, -alpha, limit-1)

		s.pos.UnmakeMove(m, undo)
		s.eval.Pop()

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// clampReduction truncates a fractional LMR reduction to an integer pruned
// to [1, depth], per spec's mandatory clamp (an unclamped doubled reduction
// at shallow depth can otherwise go negative or exceed depth).
func clampReduction(r float64, depth int) int {
	ri := int(r)
	if ri < 1 {
		ri = 1
	}
	if ri > depth {
		ri = depth
	}
	return ri
}
