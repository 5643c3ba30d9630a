// Package bnb implements the parallel branch-and-bound engine: the search
// node representation, the bound function, the priority-ordered
// exploration, and the pruning rules. The distributed / shared-memory
// coordination layer that keeps many workers busy over this engine lives
// in packages worker and coord; bnb itself is deployment agnostic — it
// exposes plain functions and a small set of concrete types rather than
// closures or callback hooks.
package bnb

import (
	"errors"
	"time"
)

// Sentinel errors for the engine's distinct failure kinds. These are not
// wrapped with fmt.Errorf where a sentinel suffices.
var (
	// ErrBadArgs covers missing/extra CLI arguments or a non-positive ceiling.
	ErrBadArgs = errors.New("bnb: bad arguments")

	// ErrIoOpen indicates the input file could not be opened for reading.
	ErrIoOpen = errors.New("bnb: input file unreadable")

	// ErrIoParse indicates malformed input (re-exported from package graph
	// at the boundary; see cmd/tspbb).
	ErrIoParse = errors.New("bnb: malformed input")

	// ErrNoSolution indicates every branch was pruned, or the ceiling is
	// unreachable. Not a failure: callers report "NO SOLUTION" and exit 0.
	ErrNoSolution = errors.New("bnb: no solution within ceiling")

	// ErrInvariant indicates an internal invariant violation (e.g. a popped
	// node with length > n). Always a bug; never recovered from.
	ErrInvariant = errors.New("bnb: internal invariant violation")

	// ErrNotElected indicates this rank's local result lost the distributed
	// deployment's cross-rank minimum-cost election to another rank. Not a
	// failure: this process prints nothing and exits 0, leaving the result
	// to whichever rank won.
	ErrNotElected = errors.New("bnb: another rank holds the global optimum")
)

// TSResult is the outcome of a successful search: the optimal tour
// (length n+1, starting and ending at city 0) and its total cost.
type TSResult struct {
	Tour []int
	Cost float64
}

// Stats accumulates search counters for diagnostics. Safe to read only
// after the search has quiesced; per-worker partial stats are merged by
// worker.Pool.Stats, while each distributed rank reports its own.
type Stats struct {
	Expanded int64 // nodes popped (expanded, recorded as a tour, or pruned at pop time)
	Pruned   int64 // children dropped at push time plus queue entries discarded by pop-time pruning
	Donated  int64 // nodes donated to another worker
}

// Merge folds o into s and returns the combined stats.
func (s Stats) Merge(o Stats) Stats {
	s.Expanded += o.Expanded
	s.Pruned += o.Pruned
	s.Donated += o.Donated
	return s
}

// Tuning holds the empirical donation-policy constants that govern when a
// worker offers queued nodes to an idle peer, exposed so the CLI/config
// layer can override them. The defaults below are carried over unchanged
// since no alternative tuning rationale is available.
type Tuning struct {
	// SmallWorkerPopThreshold is T_small for W < 16 ranks.
	SmallWorkerPopThreshold int
	// LargeWorkerPopThreshold is T_small for W >= 16 ranks.
	LargeWorkerPopThreshold int
	// DeepQueueMultiplier defines the "deep queue" donation trigger as
	// |Q| > DeepQueueMultiplier*n (Multiplier==1 reproduces the plain
	// |Q| > n rule).
	DeepQueueMultiplier int
}

// DefaultTuning returns the engine's baseline tuning constants.
func DefaultTuning() Tuning {
	return Tuning{
		SmallWorkerPopThreshold: 20000,
		LargeWorkerPopThreshold: 7500,
		DeepQueueMultiplier:     1,
	}
}

// PopThreshold returns T_small for a ring of the given size.
func (tu Tuning) PopThreshold(workers int) int {
	if workers >= 16 {
		return tu.LargeWorkerPopThreshold
	}
	return tu.SmallWorkerPopThreshold
}

// Options groups the settings of a single bnb search run. No function in
// this module takes an Options value: the CLI passes the ceiling and the
// tuning to worker.NewPool / distrib.RunRank directly.
type Options struct {
	// Ceiling is the user-supplied cost ceiling (defaults to +Inf).
	Ceiling float64

	// Tuning carries the donation-policy constants.
	Tuning Tuning

	// TimeLimit is a wall-clock budget, zero meaning none. Nothing reads
	// it; a search stops early only when its context.Context is done.
	TimeLimit time.Duration
}
