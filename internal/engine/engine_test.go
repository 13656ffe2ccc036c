package engine

import (
	"testing"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

func TestEngineGoReturnsLegalMove(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	move := eng.Go(pos, UCILimits{Depth: 4})
	if move == board.NoMove {
		t.Fatal("Go returned NoMove for starting position")
	}
	if !pos.GenerateLegalMoves().Contains(move) {
		t.Errorf("Go returned illegal move %s", move.String())
	}
	t.Logf("best move: %s", move.String())
}

func TestEngineGoMoveTime(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	start := time.Now()
	move := eng.Go(pos, UCILimits{MoveTime: 200 * time.Millisecond})
	elapsed := time.Since(start)

	if move == board.NoMove {
		t.Fatal("Go returned NoMove under a move-time budget")
	}
	if elapsed > 2*time.Second {
		t.Errorf("Go took %v, want roughly its 200ms budget", elapsed)
	}
}

func TestEngineStopHaltsSearch(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	done := make(chan board.Move, 1)
	go func() {
		done <- eng.Go(pos, UCILimits{Infinite: true})
	}()

	time.Sleep(20 * time.Millisecond)
	eng.Stop()

	select {
	case move := <-done:
		if move == board.NoMove {
			t.Error("stopped search returned NoMove")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not halt an infinite search in time")
	}
}

func TestEngineMateInOne(t *testing.T) {
	// White to move has a back-rank mate in one (Ra8#).
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	eng := NewEngine(16)

	move := eng.Go(pos, UCILimits{Depth: 6})
	undo := pos.MakeMove(move)
	defer pos.UnmakeMove(move, undo)

	if !pos.InCheck() || pos.GenerateLegalMoves().Len() != 0 {
		t.Errorf("expected %s to deliver mate, position is not mate afterwards", move.String())
	}
}

func TestEnginePerft(t *testing.T) {
	eng := NewEngine(16)
	pos := board.NewPosition()

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	for _, tc := range tests {
		if got := eng.Perft(pos, tc.depth); got != tc.expected {
			t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

func TestEngineBenchReportsNodes(t *testing.T) {
	eng := NewEngine(16)
	nodes, _ := eng.Bench()
	if nodes == 0 {
		t.Error("Bench reported zero nodes")
	}
}

func TestEngineSetOptionHash(t *testing.T) {
	eng := NewEngine(16)
	if !eng.SetOption("Hash", "32") {
		t.Fatal("SetOption(Hash, 32) rejected")
	}
	if eng.Config().Hash.Int() != 32 {
		t.Errorf("Hash = %d, want 32", eng.Config().Hash.Int())
	}
}

func TestEngineSetOptionUnknown(t *testing.T) {
	eng := NewEngine(16)
	if eng.SetOption("NotARealOption", "1") {
		t.Error("SetOption accepted an unknown option name")
	}
}
