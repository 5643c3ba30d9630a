package bnb

import "github.com/tspbb/bnbtsp/graph"

// ChildBound computes the admissible lower bound of a child that commits
// to edge (a, b), given the parent's bound:
//
//	ca = w[a][b] >= short2[a] ? short2[a] : short1[a]
//	cb = w[a][b] >= short2[b] ? short2[b] : short1[b]
//	child.bound = parent.bound + w[a][b] - (ca+cb)/2
//
// Committing to edge (a,b) consumes one incident-edge "slot" at each
// endpoint; the slot deducted is short1 unless w[a][b] already dominates
// it, in which case short2 is deducted, preserving admissibility while
// tightening the estimate relative to the root bound L0 (which already
// accounts for both cheapest incident edges of every city, halved because
// each edge is counted by both endpoints).
func ChildBound(g *graph.Graph, parentBound float64, a, b int) float64 {
	wab := g.Weight(a, b)

	ca := g.Short1(a)
	if wab >= g.Short2(a) {
		ca = g.Short2(a)
	}

	cb := g.Short1(b)
	if wab >= g.Short2(b) {
		cb = g.Short2(b)
	}

	return parentBound + wab - (ca+cb)/2
}
