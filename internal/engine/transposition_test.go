package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestTranspositionStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.NewSearch()

	var hash uint64 = 0xdeadbeefcafef00d
	tt.Store(hash, 6, 42, BoundExact, board.NewMove(board.E2, board.E4))

	entry, found := tt.Probe(hash)
	if !found {
		t.Fatal("expected a hit after Store")
	}
	if entry.Score != 42 || entry.Depth != 6 || entry.Bound != BoundExact {
		t.Errorf("got entry %+v, want score=42 depth=6 bound=Exact", entry)
	}
}

func TestTranspositionGenerationGating(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.NewSearch()

	hash := uint64(123456789)
	tt.Store(hash, 4, 10, BoundExact, board.NoMove)

	if _, found := tt.Probe(hash); !found {
		t.Fatal("expected a hit within the same generation")
	}

	tt.NewSearch()
	if _, found := tt.Probe(hash); found {
		t.Error("a stale entry from a previous generation should not hit")
	}
}

func TestTranspositionClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.NewSearch()
	tt.Store(99, 3, 1, BoundAlpha, board.NoMove)

	tt.Clear()
	if _, found := tt.Probe(99); found {
		t.Error("Probe hit after Clear")
	}
}

func TestAdjustScoreRoundTrip(t *testing.T) {
	mateScore := MateScore - 3
	toTT := AdjustScoreToTT(mateScore, 5)
	back := AdjustScoreFromTT(toTT, 5)
	if back != mateScore {
		t.Errorf("round trip: got %d, want %d", back, mateScore)
	}
}

func TestPVTableStoreCollect(t *testing.T) {
	var pv PVTable
	pv.UpdateLength(2) // the ply-2 child node, entered before ply 1 stores
	pv.UpdateLength(1)
	pv.Store(1, board.NewMove(board.E7, board.E5))

	pv.UpdateLength(0)
	pv.Store(0, board.NewMove(board.E2, board.E4))

	line := pv.Collect()
	if len(line) != 2 {
		t.Fatalf("expected a 2-move PV, got %d", len(line))
	}
	if line[0] != board.NewMove(board.E2, board.E4) || line[1] != board.NewMove(board.E7, board.E5) {
		t.Errorf("unexpected PV: %v", line)
	}
	if pv.BestMove() != line[0] {
		t.Errorf("BestMove() = %s, want %s", pv.BestMove().String(), line[0].String())
	}
}

func TestHistoryStackRepetition(t *testing.T) {
	h := NewHistoryStack()
	h.SetRoot([]uint64{1, 2, 3})
	h.Push(2) // current top == 2, should not count itself

	if got := h.CountZobrist(2); got != 1 {
		t.Errorf("CountZobrist(2) = %d, want 1 (the root occurrence, not the pushed top)", got)
	}
	if got := h.CountZobrist(4); got != 0 {
		t.Errorf("CountZobrist(4) = %d, want 0", got)
	}

	h.Pop()
	if got := h.CountZobrist(2); got != 1 {
		t.Errorf("CountZobrist(2) after Pop = %d, want 1", got)
	}
}
