package bnb

import "math"

// Node is a search node: a partial tour prefix, its accumulated cost, and
// its computed lower bound.
//
// Nodes are strictly tree-structured: a parent exists only transiently
// during expansion (see Expand) and is never referenced by its children.
// Each child owns an independent copy of the tour prefix, so nodes can be
// freely transferred between workers (donated or serialized) without
// aliasing concerns — the sender drops ownership on transfer.
type Node struct {
	Tour  []int   // tour[0] == 0; all entries distinct; len == Length
	Cost  float64 // sum of w[tour[k], tour[k+1]] over the prefix
	Bound float64 // admissible lower bound on any completion
}

// Length is the number of cities currently in the partial tour.
func (n *Node) Length() int { return len(n.Tour) }

// Index is the frontier city, tour[length-1].
func (n *Node) Index() int { return n.Tour[len(n.Tour)-1] }

// Valid checks a node's structural invariants against n cities and the
// owning graph's weight function: a well-formed prefix starting at city 0
// with distinct entries, an accumulated Cost matching the prefix's actual
// edge weights, and a Bound that is never below Cost. It is called only
// by tests; neither the worker pool nor the distributed rank loop checks
// popped nodes with it.
func (node *Node) Valid(nCities int, weight func(i, j int) float64) error {
	if len(node.Tour) == 0 || node.Tour[0] != 0 {
		return ErrInvariant
	}
	seen := make([]bool, nCities)
	var cost float64
	for k, v := range node.Tour {
		if v < 0 || v >= nCities || seen[v] {
			return ErrInvariant
		}
		seen[v] = true
		if k > 0 {
			cost += weight(node.Tour[k-1], v)
		}
	}
	if math.Abs(cost-node.Cost) > 1e-6 {
		return ErrInvariant
	}
	if node.Bound < node.Cost-1e-9 {
		return ErrInvariant
	}
	return nil
}

// cloneTour returns an independent copy of a tour prefix, appending next
// if next >= 0.
func cloneTour(prefix []int, next int) []int {
	out := make([]int, len(prefix), len(prefix)+1)
	copy(out, prefix)
	if next >= 0 {
		out = append(out, next)
	}
	return out
}
