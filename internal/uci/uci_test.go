package uci

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

func TestParseGoLimits(t *testing.T) {
	limits := parseGoLimits([]string{"wtime", "60000", "btime", "59000", "winc", "1000", "depth", "10"})

	if limits.Time[board.White] != 60*time.Second {
		t.Errorf("wtime = %v, want 60s", limits.Time[board.White])
	}
	if limits.Time[board.Black] != 59*time.Second {
		t.Errorf("btime = %v, want 59s", limits.Time[board.Black])
	}
	if limits.Inc[board.White] != time.Second {
		t.Errorf("winc = %v, want 1s", limits.Inc[board.White])
	}
	if limits.Depth != 10 {
		t.Errorf("depth = %d, want 10", limits.Depth)
	}
}

func TestParseGoLimitsInfinite(t *testing.T) {
	limits := parseGoLimits([]string{"infinite"})
	if !limits.Infinite {
		t.Error("expected Infinite to be set")
	}
}

func TestParseSetOption(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "Hash", "value", "128"})
	if !ok || name != "Hash" || value != "128" {
		t.Errorf("got name=%q value=%q ok=%v, want name=Hash value=128 ok=true", name, value, ok)
	}
}

func TestParseSetOptionMultiWordName(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "Move", "Overhead", "value", "50"})
	if !ok || name != "Move Overhead" || value != "50" {
		t.Errorf("got name=%q value=%q ok=%v", name, value, ok)
	}
}

func TestParseSetOptionMalformed(t *testing.T) {
	if _, _, ok := parseSetOption([]string{"value", "50"}); ok {
		t.Error("expected ok=false when name is missing")
	}
}

func drive(t *testing.T, lines ...string) []string {
	t.Helper()
	eng := engine.NewEngine(4)
	in := make(chan string)
	_, out := NewDriver(context.Background(), eng, in)

	go func() {
		defer close(in)
		for _, l := range lines {
			in <- l
		}
	}()

	var got []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, line)
		case <-timeout:
			t.Fatal("driver did not close its output channel in time")
		}
	}
}

func TestDriverUCIHandshake(t *testing.T) {
	lines := drive(t, "uci", "quit")
	if len(lines) < 2 || lines[0] != "id name ChessPlay" {
		t.Fatalf("unexpected handshake: %v", lines)
	}
	if lines[len(lines)-1] != "uciok" {
		t.Errorf("last line = %q, want uciok", lines[len(lines)-1])
	}
}

func TestDriverDisplayCommand(t *testing.T) {
	lines := drive(t, "d", "quit")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "Side to move") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'd' output to include board state, got %v", lines)
	}
}

func TestDriverPerftCommand(t *testing.T) {
	lines := drive(t, "perft 2", "quit")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "perft 2: 400 nodes") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected perft(2)=400 from the starting position, got %v", lines)
	}
}

func TestDriverPrintSPSAWorkload(t *testing.T) {
	lines := drive(t, "print spsa workload", "quit")
	if len(lines) == 0 {
		t.Fatal("expected at least one SPSA workload line")
	}
}
