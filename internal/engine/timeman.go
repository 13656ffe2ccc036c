package engine

import (
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// TimeMode selects how a TimeController bounds a search.
type TimeMode int

const (
	TimeInfinite TimeMode = iota // no bound; search runs until Stop
	TimeMoveTime                 // fixed wall-clock budget for this move
	TimeColor                    // budget derived from the side to move's remaining clock
)

// UCILimits holds the raw "go" command parameters as received over UCI.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int
	MoveTime  time.Duration
	Depth     int
	Nodes     uint64
	Infinite  bool
}

// TimeController allocates a play-time budget for one search and reports
// whether that budget is exhausted. It deliberately has no stability or
// instability adjustment machinery: the soft-stop decision in the
// iterative-deepening loop (elapsed*TCElapsedFactor > playTime) is the only
// early-exit signal besides the hard deadline here.
type TimeController struct {
	mode      TimeMode
	playTime  time.Duration
	startTime time.Time
}

// NewTimeController returns a controller in infinite mode.
func NewTimeController() *TimeController {
	return &TimeController{mode: TimeInfinite}
}

// Setup computes the play-time budget for limits against us's remaining
// clock and starts the clock. moveOverhead is subtracted from a color-time
// budget to leave headroom for engine-external latency (GUI, network).
func (tc *TimeController) Setup(limits UCILimits, us board.Color, moveOverhead time.Duration, tcTimeDivisor int) {
	switch {
	case limits.MoveTime > 0:
		tc.mode = TimeMoveTime
		tc.playTime = limits.MoveTime

	case limits.Infinite || limits.Depth > 0 || (limits.Time[board.White] == 0 && limits.Time[board.Black] == 0):
		tc.mode = TimeInfinite
		tc.playTime = 0

	default:
		// winc/binc are accepted in UCILimits but, per spec, not factored
		// into the budget below — increment-aware time management is left
		// as a future extension.
		tc.mode = TimeColor
		remaining := limits.Time[us]
		budget := remaining/time.Duration(tcTimeDivisor) - moveOverhead
		if budget < time.Millisecond {
			budget = time.Millisecond
		}
		tc.playTime = budget
	}

	tc.startTime = time.Now()
}

// Elapsed returns the time since Setup was called.
func (tc *TimeController) Elapsed() time.Duration {
	return time.Since(tc.startTime)
}

// IsTimeUp is the hard stop: true once elapsed exceeds the allocated
// play-time budget. Infinite-mode controllers never report time up.
func (tc *TimeController) IsTimeUp() bool {
	if tc.mode == TimeInfinite {
		return false
	}
	return tc.Elapsed() > tc.playTime
}

// PastSoftLimit is the iterative-deepening loop's early-exit check: true
// once elapsed*factor has exceeded the play-time budget, letting the engine
// stop between iterations well before the hard deadline would cut off a
// deepening pass mid-search.
func (tc *TimeController) PastSoftLimit(factor int) bool {
	if tc.mode == TimeInfinite {
		return false
	}
	return tc.Elapsed()*time.Duration(factor) > tc.playTime
}
