package nnue

import "github.com/hailam/chessplay/internal/board"

// Evaluator is the search-facing NNUE component: a network plus the
// accumulator stack tracking it incrementally across the search tree.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator creates an evaluator. If weightsFile is empty the network is
// seeded with small deterministic weights instead of failing, so the
// searcher still has a numeric (if not meaningful) evaluation to search
// against.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()
	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(0x5EED)
	}
	return &Evaluator{net: net, stack: NewAccumulatorStack(net)}, nil
}

// SetPosition rebuilds the accumulator stack from scratch for pos and resets
// it to ply 0. Call on ucinewgame / position commands.
func (e *Evaluator) SetPosition(pos *board.Position) {
	e.stack.Reset(e.net)
	ComputeFromScratch(e.stack, e.net, pos)
}

// Evaluate returns the static evaluation of the current accumulator couple
// from us's perspective, in centipawns.
func (e *Evaluator) Evaluate(us board.Color) int {
	couple := e.stack.Current()
	if us == board.White {
		return e.net.Evaluate(&couple.White, &couple.Black)
	}
	return e.net.Evaluate(&couple.Black, &couple.White)
}

// Push copies the current accumulator couple to a new search ply. Call
// before applying a move to pos.
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop discards the top search ply's accumulator couple. Call after undoing
// a move.
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// ApplyMove updates the (already pushed) top-of-stack accumulator couple for
// m, given pos in its PRE-move state (so the mover and any captured piece
// can still be read off the board). It must be called after Push and before
// pos.MakeMove. The dispatch mirrors the four move variants board.Move
// tags: Normal (with or without capture), Promotion (with or without
// capture), EnPassant, and Castling.
func (e *Evaluator) ApplyMove(pos *board.Position, m board.Move) {
	us := pos.SideToMove
	mover := pos.PieceAt(m.From())

	switch {
	case m.IsEnPassant():
		capturedSq := m.To() - 8
		if us == board.Black {
			capturedSq = m.To() + 8
		}
		ManualUpdate(e.stack, e.net, board.NewPiece(board.Pawn, us.Other()), capturedSq, false)
		MoveUpdate(e.stack, e.net, mover, m.From(), m.To())

	case m.IsCastling():
		rookFrom, rookTo := castlingRookSquares(m.From(), m.To())
		MoveUpdate(e.stack, e.net, board.NewPiece(board.Rook, us), rookFrom, rookTo)
		MoveUpdate(e.stack, e.net, mover, m.From(), m.To())

	case m.IsPromotion():
		if captured := pos.PieceAt(m.To()); captured != board.NoPiece {
			ManualUpdate(e.stack, e.net, captured, m.To(), false)
		}
		ManualUpdate(e.stack, e.net, mover, m.From(), false)
		ManualUpdate(e.stack, e.net, board.NewPiece(m.Promotion(), us), m.To(), true)

	default:
		if captured := pos.PieceAt(m.To()); captured != board.NoPiece {
			ManualUpdate(e.stack, e.net, captured, m.To(), false)
		}
		MoveUpdate(e.stack, e.net, mover, m.From(), m.To())
	}
}

// castlingRookSquares returns the rook's from/to squares for a castling move
// given the king's from/to squares.
func castlingRookSquares(kingFrom, kingTo board.Square) (from, to board.Square) {
	kingSide := kingTo > kingFrom
	rank := kingFrom.Rank()
	if kingSide {
		return board.NewSquare(7, rank), board.NewSquare(5, rank)
	}
	return board.NewSquare(0, rank), board.NewSquare(3, rank)
}
