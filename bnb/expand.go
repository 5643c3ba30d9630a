package bnb

import (
	"math"

	"github.com/tspbb/bnbtsp/graph"
)

// Expand generates the children of a popped node whose length is < n:
// for each feasible unvisited neighbor, compute the child bound and
// either prune it (bound exceeds the current best or the ceiling) or
// return it to be enqueued by the caller. visited must mark exactly the
// cities in parent.Tour.
//
// limit convention: every exported function in this file takes a single
// limit, which callers always pass as min(local incumbent-cost copy,
// ceiling). The incumbent cost is initialized to ceiling and only ever
// decreases, so it never exceeds ceiling, meaning limit == incumbent cost
// in practice and a single comparison against limit does the work of
// separately checking against the incumbent and against the ceiling.
//
// Expand never mutates parent; every returned child owns an independent
// tour slice.
func Expand(g *graph.Graph, parent *Node, visited []bool, limit float64, stats *Stats) []*Node {
	n := g.N()
	last := parent.Index()
	children := make([]*Node, 0, n-parent.Length())

	for i := 0; i < n; i++ {
		if i == last || visited[i] {
			continue
		}
		w := g.Weight(last, i)
		if math.IsInf(w, 1) {
			continue
		}

		bound := ChildBound(g, parent.Bound, last, i)
		if bound > limit {
			stats.Pruned++
			continue
		}

		children = append(children, &Node{
			Tour:  cloneTour(parent.Tour, i),
			Cost:  parent.Cost + w,
			Bound: bound,
		})
	}

	return children
}

// CompleteTour handles a popped node whose length equals n: it closes the
// cycle back to city 0 and, if that improves on best, offers it as the new
// incumbent. Returns (total, true) when the closing edge exists; ok is
// false when w[last][0] is infinite, in which case the node is simply
// discarded.
//
// The closing cost is always computed from the accumulated Cost field,
// never from Bound — Bound is a lower-bound estimate and using it here
// would record the wrong tour cost.
func CompleteTour(g *graph.Graph, popped *Node, limit float64, best *Best) (total float64, ok bool) {
	last := popped.Index()
	closing := g.Weight(last, 0)
	if math.IsInf(closing, 1) {
		return 0, false
	}

	total = popped.Cost + closing
	if total > limit+1e-9 {
		return total, true
	}

	closedTour := cloneTour(popped.Tour, 0)
	best.Offer(closedTour, total)
	return total, true
}

// ShouldPrunePopped reports pop-time pruning: a popped node whose bound is
// no longer better than the current best (or the ceiling) can be
// discarded, and — because the queue is bound-ordered — every remaining
// entry can be discarded too.
func ShouldPrunePopped(popped *Node, limit float64) bool {
	return popped.Bound >= limit-1e-9
}
