package nnue

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestFeatureIndexMirroring(t *testing.T) {
	// A white pawn on e4 and a black pawn on e5 should activate the same
	// feature plane from their own perspective, since e5 is e4's vertical
	// mirror.
	wIdx, _ := FeatureIndex(board.White, board.Pawn, board.E4)
	_, bIdx := FeatureIndex(board.Black, board.Pawn, board.E5)

	if wIdx != bIdx {
		t.Errorf("mirrored squares should share a feature plane: white e4=%d, black e5=%d", wIdx, bIdx)
	}
}

func TestFeatureIndexRange(t *testing.T) {
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			for sq := board.A1; sq <= board.H8; sq++ {
				wIdx, bIdx := FeatureIndex(c, pt, sq)
				if wIdx < 0 || wIdx >= Features || bIdx < 0 || bIdx >= Features {
					t.Fatalf("feature index out of range for c=%d pt=%d sq=%d: white=%d black=%d", c, pt, sq, wIdx, bIdx)
				}
			}
		}
	}
}

func TestComputeFromScratchMatchesIncrementalUpdate(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(1)

	pos := board.NewPosition()

	fromScratch := NewAccumulatorStack(net)
	ComputeFromScratch(fromScratch, net, pos)

	// Build the same position incrementally via ManualUpdate, piece by
	// piece, starting from the bias vector.
	incremental := NewAccumulatorStack(net)
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				ManualUpdate(incremental, net, board.NewPiece(pt, c), sq, true)
			}
		}
	}

	got := incremental.Current()
	want := fromScratch.Current()
	if *got != *want {
		t.Errorf("incremental accumulator diverged from from-scratch rebuild")
	}
}

func TestEvaluatorApplyMoveMatchesFullRebuild(t *testing.T) {
	e, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	pos := board.NewPosition()
	e.SetPosition(pos)

	m := board.NewMove(board.E2, board.E4)
	e.Push()
	e.ApplyMove(pos, m)
	pos.MakeMove(m)

	incremental := e.Evaluate(pos.SideToMove)

	rebuilt, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	rebuilt.SetPosition(pos)
	fromScratch := rebuilt.Evaluate(pos.SideToMove)

	if incremental != fromScratch {
		t.Errorf("incremental eval %d != from-scratch eval %d after e2e4", incremental, fromScratch)
	}
}

func TestEvaluatorPushPopSymmetry(t *testing.T) {
	e, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	pos := board.NewPosition()
	e.SetPosition(pos)
	before := e.Evaluate(board.White)

	m := board.NewMove(board.E2, board.E4)
	e.Push()
	e.ApplyMove(pos, m)
	undo := pos.MakeMove(m)
	pos.UnmakeMove(m, undo)
	e.Pop()

	after := e.Evaluate(board.White)
	if before != after {
		t.Errorf("push/pop didn't round-trip: before=%d after=%d", before, after)
	}
}

func TestSCReLUClampsAndSquares(t *testing.T) {
	if got := screlu(-100); got != 0 {
		t.Errorf("screlu(-100) = %d, want 0", got)
	}
	if got := screlu(int16(QA) + 100); got != int32(QA)*int32(QA) {
		t.Errorf("screlu above QA should clamp before squaring, got %d", got)
	}
}
