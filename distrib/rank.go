// Package distrib runs one rank of a multi-process branch-and-bound
// search: a private queue and incumbent (no memory is shared across
// processes), donation over coord.Transport instead of a shared mutex,
// and termination detection delegated to coord.Ring's token protocol.
package distrib

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/tspbb/bnbtsp/applog"
	"github.com/tspbb/bnbtsp/bnb"
	"github.com/tspbb/bnbtsp/coord"
	"github.com/tspbb/bnbtsp/graph"
)

// pollBackoff bounds how long a paused rank sleeps between non-blocking
// inbox checks; it only matters for CPU use while idle, not correctness.
const pollBackoff = 2 * time.Millisecond

// RunRank drives one rank of the ring to completion. Rank 0 seeds the
// search from the graph's root node and starts the termination token;
// every other rank begins with an empty queue and waits for either a WORK
// donation or the committed termination token.
func RunRank(ctx context.Context, g *graph.Graph, rank, size int, t coord.Transport, ceiling float64, tuning bnb.Tuning, log applog.Logger, runSeed int64) (bnb.TSResult, bnb.Stats, error) {
	q := bnb.NewQueue()
	best := bnb.NewBest(ceiling)
	ring := coord.NewRing(ctx, rank, size, t, ceiling)
	rng := deriveRankRNG(runSeed, rank)

	if rank == 0 {
		q.Push(&bnb.Node{Tour: []int{0}, Cost: 0, Bound: g.RootBound()})
		if err := ring.InjectInitial(ctx); err != nil {
			return bnb.TSResult{}, bnb.Stats{}, err
		}
	}

	popThreshold := tuning.PopThreshold(size)
	deepThreshold := tuning.DeepQueueMultiplier * g.N()

	var stats bnb.Stats
	for {
		if err := ctx.Err(); err != nil {
			return bnb.TSResult{}, stats, err
		}

		drainInbox(q, t)

		if ring.Terminated() && q.Size() == 0 {
			break
		}

		node, ok := q.Pop()
		if !ok {
			ring.SetPaused(true)
			if ring.Terminated() {
				break
			}
			time.Sleep(pollBackoff)
			continue
		}
		ring.SetPaused(false)

		limit := math.Min(best.Cost(), ring.Limit())
		stats.Expanded++

		if bnb.ShouldPrunePopped(node, limit) {
			stats.Pruned += int64(q.Size())
			q.Clear()
			continue
		}

		if node.Length() == g.N() {
			if total, ok := bnb.CompleteTour(g, node, limit, best); ok && total <= limit+1e-9 {
				ring.ObserveCost(best.Cost())
				log.Debug("improved incumbent to %.4f at rank %d", total, rank)
			}
			continue
		}

		visited := make([]bool, g.N())
		for _, c := range node.Tour {
			visited[c] = true
		}
		for _, child := range bnb.Expand(g, node, visited, limit, &stats) {
			q.Push(child)
		}

		donate(ctx, q, t, &stats, ring, rng, rank, popThreshold, deepThreshold)
	}

	// Every rank has only searched its own share of the tree, so its local
	// incumbent may not be the true optimum: elect the rank whose local
	// cost is the global minimum (ties broken by lowest rank) and report
	// only from there, mirroring the original MPI deployment's Allgather
	// of result costs followed by a single elected print.
	winner, err := coord.ElectMinCost(ctx, t, rank, size, best.Cost())
	if err != nil {
		return bnb.TSResult{}, stats, err
	}
	if winner != rank {
		return bnb.TSResult{}, stats, bnb.ErrNotElected
	}

	tour := best.Tour()
	if tour == nil {
		return bnb.TSResult{}, stats, bnb.ErrNoSolution
	}
	return bnb.TSResult{Tour: tour, Cost: best.Cost()}, stats, nil
}

// drainInbox absorbs every WORK message currently buffered without
// blocking, so a donation never waits behind the local search loop.
func drainInbox(q *bnb.Queue, t coord.Transport) {
	for {
		msg, ok := t.RecvWork()
		if !ok {
			return
		}
		q.Push(&bnb.Node{Tour: msg.Tour, Cost: msg.Cost, Bound: msg.Bound})
	}
}

// donate offers one shallow node to an idle rank once the local queue
// outgrows the tuned thresholds, putting the node back on failure (or on
// finding no known-idle peer) rather than losing it. It prefers the most
// recently claimed target (another rank's own announced donation intent,
// which doubles as "this rank is known idle"), falling back to a random
// pick among ranks last seen paused.
func donate(ctx context.Context, q *bnb.Queue, t coord.Transport, stats *bnb.Stats, ring *coord.Ring, rng *rand.Rand, rank, popThreshold, deepThreshold int) {
	if q.Size() <= popThreshold && q.Size() <= deepThreshold {
		return
	}

	target := ring.LastNotedRank()
	if target < 0 || target == rank {
		target = pickDonationTarget(rng, rank, ring.IdleRanks())
	}
	if target < 0 {
		return
	}

	node, ok := q.Pop()
	if !ok {
		return
	}

	msg := coord.WorkMsg{Length: node.Length(), Index: node.Index(), Cost: node.Cost, Bound: node.Bound, Tour: node.Tour}
	if err := t.SendWork(ctx, target, msg); err != nil {
		q.Push(node)
		return
	}
	ring.ClaimDonationTarget(target)
	stats.Donated++
}
