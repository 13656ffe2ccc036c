package engine

import "github.com/hailam/chessplay/internal/board"

// PVTable is a triangular principal-variation table: ply p's row holds the
// best line found from ply p to the end of search, and is rebuilt from the
// ply-below's row whenever a new best move raises alpha.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// UpdateLength resets the PV length at ply to reflect "no line found yet",
// called at the top of every negamax node before any move is searched.
func (pv *PVTable) UpdateLength(ply int) {
	pv.length[ply] = ply
}

// Store records m as the best move at ply and splices in the continuation
// found at ply+1.
func (pv *PVTable) Store(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for next := ply + 1; next < pv.length[ply+1]; next++ {
		pv.moves[ply][next] = pv.moves[ply+1][next]
	}
	pv.length[ply] = pv.length[ply+1]
}

// BestMove returns the root's best move, or board.NoMove if none was found.
func (pv *PVTable) BestMove() board.Move {
	if pv.length[0] == 0 {
		return board.NoMove
	}
	return pv.moves[0][0]
}

// Collect returns the full principal variation from the root.
func (pv *PVTable) Collect() []board.Move {
	line := make([]board.Move, pv.length[0])
	copy(line, pv.moves[0][:pv.length[0]])
	return line
}
