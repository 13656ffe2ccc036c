package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

const moveImportanceFactor = 10000

// MoveOrderer ranks moves for a search node: TT move first, then captures
// scored by victim/attacker value, then killer moves, then promotions, then
// quiet moves by history score.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [7][64]int // indexed by piece role (1..6); row 0 unused
}

// NewMoveOrderer creates an empty move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and ages (halves) history for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// pieceValue gives quiet move-ordering weight to a piece type; it is not a
// material evaluation, just the 1..6 ordinal move_importance scales by.
func pieceValue(pt board.PieceType) int {
	return int(pt) + 1
}

// ScoreMoves assigns an ordering score to every move in the list.
func (mo *MoveOrderer) ScoreMoves(cfg *Config, pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(cfg, pos, moves.Get(i), ply, ttMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(cfg *Config, pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return cfg.MOTTEntryValue.Int() * moveImportanceFactor
	}

	if m.IsCapture(pos) {
		attackerPiece := pos.PieceAt(m.From())
		attackerValue := pieceValue(attackerPiece.Type())

		var victimValue int
		if m.IsEnPassant() {
			victimValue = pieceValue(board.Pawn)
		} else if captured := pos.PieceAt(m.To()); captured != board.NoPiece {
			victimValue = pieceValue(captured.Type())
		}

		return (cfg.MOCaptureValue.Int()*victimValue - attackerValue) * moveImportanceFactor
	}

	if m == mo.killers[ply][0] || m == mo.killers[ply][1] {
		return cfg.MOKillerValue.Int() * moveImportanceFactor
	}

	if m.IsPromotion() {
		return pieceValue(m.Promotion())
	}

	role := pieceValue(pos.PieceAt(m.From()).Type())
	return mo.history[role][m.To()]
}

// SortMoves fully sorts moves by score, descending.
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove selects the best-scoring remaining move and swaps it into index,
// enabling lazy (partial) selection sort during the move loop.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records m as a killer at ply, keeping the two most recent
// distinct killers.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	if mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory adjusts the quiet-move history score for m's (role, to)
// cell by depth, halving the whole table if the bonus would overflow the
// cap.
func (mo *MoveOrderer) UpdateHistory(pos *board.Position, m board.Move, depth int) {
	role := pieceValue(pos.PieceAt(m.From()).Type())
	to := m.To()

	mo.history[role][to] += depth
	if mo.history[role][to] > 400000 {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
