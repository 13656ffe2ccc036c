package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestScoreMovesTTMoveFirst(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	ttMove := moves.Get(moves.Len() - 1)

	mo := NewMoveOrderer()
	cfg := NewConfig()
	scores := mo.ScoreMoves(cfg, pos, moves, 0, ttMove)

	SortMoves(moves, scores)
	if moves.Get(0) != ttMove {
		t.Errorf("after sort, move 0 = %s, want TT move %s", moves.Get(0).String(), ttMove.String())
	}
}

func TestUpdateHistoryByRoleAndSquare(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()
	cfg := NewConfig()

	m := board.NewMove(board.G1, board.F3) // knight move, quiet
	before := mo.scoreMove(cfg, pos, m, 0, board.NoMove)

	mo.UpdateHistory(pos, m, 4)
	after := mo.scoreMove(cfg, pos, m, 0, board.NoMove)

	if after <= before {
		t.Errorf("UpdateHistory should raise the quiet score for the same (role, to): before=%d after=%d", before, after)
	}
}

func TestUpdateKillersTwoSlots(t *testing.T) {
	mo := NewMoveOrderer()
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)
	m3 := board.NewMove(board.C2, board.C4)

	mo.UpdateKillers(m1, 0)
	mo.UpdateKillers(m2, 0)
	if mo.killers[0][0] != m2 || mo.killers[0][1] != m1 {
		t.Fatalf("killers = %v, want [m2, m1]", mo.killers[0])
	}

	mo.UpdateKillers(m3, 0)
	if mo.killers[0][0] != m3 || mo.killers[0][1] != m2 {
		t.Errorf("killers after third update = %v, want [m3, m2]", mo.killers[0])
	}
}

func TestClearHalvesHistory(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()
	m := board.NewMove(board.G1, board.F3)

	mo.UpdateHistory(pos, m, 10)
	role := pieceValue(pos.PieceAt(m.From()).Type())
	before := mo.history[role][m.To()]

	mo.Clear()
	after := mo.history[role][m.To()]

	if after != before/2 {
		t.Errorf("Clear() should halve history entries: before=%d after=%d", before, after)
	}
}
