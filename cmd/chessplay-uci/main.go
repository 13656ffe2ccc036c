// Command chessplay-uci runs the search engine as a UCI engine, reading
// commands from stdin and writing protocol responses to stdout.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/uci"
	"github.com/pkg/profile"
	"github.com/seekerror/logw"
)

var (
	hashMB  = flag.Int("hash", 255, "transposition table size in MiB")
	nnue    = flag.String("evalfile", "", "path to an NNUE weights blob (falls back to a deterministic stub network)")
	cpuProf = flag.Bool("cpuprofile", false, "write a CPU profile (cpu.pprof in a new temporary directory)")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	if *cpuProf {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	eng := engine.NewEngine(*hashMB)
	if *nnue != "" {
		if err := eng.LoadNNUE(*nnue); err != nil {
			logw.Errorf(ctx, "main: failed to load NNUE weights from %s: %v", *nnue, err)
		}
	}

	in := make(chan string)
	_, out := uci.NewDriver(ctx, eng, in)

	go func() {
		defer close(in)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			in <- scanner.Text()
		}
	}()

	for line := range out {
		fmt.Println(line)
	}
}
