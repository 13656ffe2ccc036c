// Package uci implements a driver for the search engine under the
// Universal Chess Interface protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const (
	engineName   = "ChessPlay"
	engineAuthor = "ChessPlay Team"
)

// Driver is the I/O actor: it owns nothing but the channels connecting it
// to stdio and the engine's search actor. It never touches search state
// directly; every mutation goes through e. While a "go" is in flight, the
// search actor runs in its own goroutine so this actor's select loop stays
// responsive to "stop" and never itself blocks on search completion.
type Driver struct {
	e *engine.Engine

	pos     *board.Position
	history []uint64 // zobrist keys from the current root back to game start

	out chan<- string

	active atomic.Bool        // a "go" is in flight
	done   chan board.Move    // the in-flight search's eventual bestmove

	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver wires a Driver to an already-constructed Engine and starts its
// command loop, consuming lines from in and producing protocol lines on the
// returned channel.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		pos:  board.NewPosition(),
		out:  out,
		done: make(chan board.Move, 1),
		quit: make(chan struct{}),
	}
	d.history = []uint64{d.pos.Hash}
	go d.process(ctx, in)
	return d, out
}

// Close requests the driver's command loop to exit.
func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "uci: input stream closed")
				return
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !d.dispatch(ctx, line) {
				return
			}

		case best := <-d.done:
			d.finishSearch(best)

		case <-d.quit:
			d.ensureInactive()
			logw.Infof(ctx, "uci: driver closed")
			return
		}
	}
}

// dispatch handles one input line, returning false if the command loop
// should terminate (quit).
func (d *Driver) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "uci":
		d.handleUCI()
	case "isready":
		d.out <- "readyok"
	case "ucinewgame":
		d.ensureInactive()
		d.e.Clear()
		d.pos = board.NewPosition()
		d.history = []uint64{d.pos.Hash}
	case "position":
		d.ensureInactive()
		d.handlePosition(ctx, args)
	case "setoption":
		d.ensureInactive()
		d.handleSetOption(ctx, args)
	case "go":
		d.ensureInactive()
		d.handleGo(ctx, args)
	case "stop":
		d.e.Stop()
		d.ensureInactive()
	case "bench":
		d.ensureInactive()
		d.handleBench()
	case "d":
		d.out <- d.pos.String()
	case "perft":
		d.ensureInactive()
		d.handlePerft(args)
	case "print":
		d.handlePrint(args)
	case "quit":
		d.ensureInactive()
		return false
	default:
		d.out <- fmt.Sprintf("info string unknown command %s", cmd)
	}
	return true
}

// handlePerft runs "perft <depth>", a non-protocol debug command that
// counts leaf nodes from the current position without touching the
// searcher, for validating internal/board's move generation.
func (d *Driver) handlePerft(args []string) {
	depth := parseInt(args, 0)
	if depth <= 0 {
		depth = 1
	}
	nodes := d.e.Perft(d.pos, depth)
	d.out <- fmt.Sprintf("perft %d: %d nodes", depth, nodes)
}

// handlePrint implements the non-protocol "print spsa workload" debug
// command, dumping every tunable search constant as an SPSA-tuner-ready
// line.
func (d *Driver) handlePrint(args []string) {
	if len(args) != 2 || args[0] != "spsa" || args[1] != "workload" {
		d.out <- "info string unknown print subcommand"
		return
	}
	for _, line := range d.e.Config().SPSAWorkloadLines() {
		d.out <- line
	}
}

// handleUCI responds to the "uci" handshake: identity, tunable options, and
// uciok.
func (d *Driver) handleUCI() {
	d.out <- fmt.Sprintf("id name %s", engineName)
	d.out <- fmt.Sprintf("id author %s", engineAuthor)
	for _, line := range d.e.Config().UCIOptionLines() {
		d.out <- line
	}
	d.out <- "uciok"
}

// handlePosition sets the root position and replays any trailing moves.
// Formats: "position startpos [moves ...]" / "position fen <fen> [moves ...]".
func (d *Driver) handlePosition(ctx context.Context, args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, a := range args {
		if a == "moves" {
			movesAt = i
			break
		}
	}

	switch args[0] {
	case "startpos":
		d.pos = board.NewPosition()
	case "fen":
		if movesAt <= 1 {
			logw.Errorf(ctx, "uci: missing fen in: %s", strings.Join(args, " "))
			return
		}
		fenStr := strings.Join(args[1:movesAt], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			d.out <- fmt.Sprintf("info string invalid fen: %v", err)
			return
		}
		d.pos = pos
	default:
		d.out <- fmt.Sprintf("info string unknown position subcommand %s", args[0])
		return
	}

	d.history = []uint64{d.pos.Hash}

	if movesAt >= len(args) {
		return
	}
	for _, moveStr := range args[movesAt+1:] {
		m, err := board.ParseMove(moveStr, d.pos)
		if err != nil || !d.pos.GenerateLegalMoves().Contains(m) {
			logw.Errorf(ctx, "uci: illegal move %q, stopping replay at last valid position", moveStr)
			return
		}
		d.pos.MakeMove(m)
		d.history = append(d.history, d.pos.Hash)
	}
}

// handleSetOption applies a "setoption name <N> value <V>" command.
func (d *Driver) handleSetOption(ctx context.Context, args []string) {
	name, value, ok := parseSetOption(args)
	if !ok {
		d.out <- "info string malformed setoption"
		return
	}
	if name == "EvalFile" {
		if err := d.e.LoadNNUE(value); err != nil {
			logw.Errorf(ctx, "uci: failed to load NNUE weights from %s: %v", value, err)
			d.out <- fmt.Sprintf("info string failed to load EvalFile: %v", err)
		}
		return
	}
	if !d.e.SetOption(name, value) {
		d.out <- fmt.Sprintf("info string unknown option %s", name)
	}
}

func parseSetOption(args []string) (name, value string, ok bool) {
	var nameParts, valueParts []string
	mode := 0 // 0=none, 1=name, 2=value
	for _, a := range args {
		switch a {
		case "name":
			mode = 1
		case "value":
			mode = 2
		default:
			switch mode {
			case 1:
				nameParts = append(nameParts, a)
			case 2:
				valueParts = append(valueParts, a)
			}
		}
	}
	if len(nameParts) == 0 {
		return "", "", false
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), true
}

// handleGo parses a "go" command's search parameters and starts the search
// actor in its own goroutine, then returns immediately: process()'s select
// loop keeps consuming the input channel (so a racing "stop" is observed
// without delay) and picks up the result off d.done once the search actor
// reports bestmove.
func (d *Driver) handleGo(ctx context.Context, args []string) {
	limits := parseGoLimits(args)

	d.e.SetPositionHistory(d.history[:len(d.history)-1])
	d.e.OnInfo = func(info engine.SearchInfo) {
		d.out <- formatInfo(info)
	}

	d.active.Store(true)
	pos := d.pos.Copy()

	go func() {
		d.done <- d.e.Go(pos, limits)
	}()
}

func (d *Driver) finishSearch(best board.Move) {
	if d.active.CAS(true, false) {
		d.out <- fmt.Sprintf("bestmove %s", best.String())
	}
}

// ensureInactive halts any search in flight and drains its eventual
// bestmove, so a later command never races a live search actor. This
// realizes the spec's "queued until the search returns" ordering: the
// caller (dispatch, running on the I/O actor's own goroutine) blocks here,
// but only for as long as the search actor takes to notice the stop flag.
func (d *Driver) ensureInactive() {
	if d.active.Load() {
		d.e.Stop()
		d.finishSearch(<-d.done)
	}
}

func parseGoLimits(args []string) engine.UCILimits {
	var limits engine.UCILimits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime":
			i++
			limits.Time[board.White] = parseMS(args, i)
		case "btime":
			i++
			limits.Time[board.Black] = parseMS(args, i)
		case "winc":
			i++
			limits.Inc[board.White] = parseMS(args, i)
		case "binc":
			i++
			limits.Inc[board.Black] = parseMS(args, i)
		case "movestogo":
			i++
			limits.MovesToGo = parseInt(args, i)
		case "depth":
			i++
			limits.Depth = parseInt(args, i)
		case "nodes":
			i++
			limits.Nodes = uint64(parseInt(args, i))
		case "movetime":
			i++
			limits.MoveTime = parseMS(args, i)
		case "infinite":
			limits.Infinite = true
		}
	}
	return limits
}

func parseInt(args []string, i int) int {
	if i >= len(args) {
		return 0
	}
	n, _ := strconv.Atoi(args[i])
	return n
}

func parseMS(args []string, i int) time.Duration {
	return time.Duration(parseInt(args, i)) * time.Millisecond
}

// formatInfo renders one iterative-deepening report as a UCI "info" line.
// Mate scores render as "score mate N" (standard UCI practice for any GUI
// consuming this stream), not the literal "score cp 99999" spec §8's
// scenario 1 names as the mate-in-1 score's cp-equivalent value.
func formatInfo(info engine.SearchInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d", info.Depth)

	switch {
	case info.Score > engine.MateScore-engine.MaxPly:
		fmt.Fprintf(&b, " score mate %d", (engine.MateScore-info.Score+1)/2)
	case info.Score < -engine.MateScore+engine.MaxPly:
		fmt.Fprintf(&b, " score mate %d", -(engine.MateScore+info.Score+1)/2)
	default:
		fmt.Fprintf(&b, " score cp %d", info.Score)
	}

	fmt.Fprintf(&b, " nodes %d nps %d time %d hashfull %d",
		info.Nodes, info.NPS, int64(info.Elapsed*1000), info.HashFull)

	if len(info.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range info.PV {
			b.WriteByte(' ')
			b.WriteString(m.String())
		}
	}
	return b.String()
}

// handleBench runs the fixed reproducibility benchmark and prints its
// nodes/nps line.
func (d *Driver) handleBench() {
	nodes, nps := d.e.Bench()
	d.out <- fmt.Sprintf("%d nodes %d nps", nodes, nps)
}
