package bnb

import (
	"math"
	"sync"
)

// Best holds the global incumbent tour and its cost (btour/btourcost),
// updated under a single mutex rather than a read-heavy lock-free
// structure: contention is rare (an update only happens on improvement)
// so a plain critical section is simpler and fast enough. The distributed
// variant (package distrib) also uses one Best per rank to hold its local,
// eventually-consistent copy; the mutex there only ever sees
// single-goroutine contention but costs nothing to keep.
type Best struct {
	mu      sync.Mutex
	tour    []int
	cost    float64
	hasTour bool
}

// NewBest initializes the incumbent with cost == ceiling and no tour.
func NewBest(ceiling float64) *Best {
	return &Best{cost: ceiling}
}

// Cost returns the current btourcost (possibly +Inf / the ceiling).
func (b *Best) Cost() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cost
}

// Tour returns a copy of the current best tour, or nil if none recorded.
func (b *Best) Tour() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasTour {
		return nil
	}
	out := make([]int, len(b.tour))
	copy(out, b.tour)
	return out
}

// Offer attempts to install (tour, cost) as the new incumbent: strictly
// lower cost always wins; on an exact tie, the lexicographically smaller
// tour (from index 1 onwards) wins. Returns true if the incumbent changed.
// The incumbent cost is monotonically non-increasing: a worse-or-equal
// losing offer is a no-op.
func (b *Best) Offer(tour []int, cost float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case cost < b.cost-1e-9:
		// Strictly better.
	case math.Abs(cost-b.cost) <= 1e-9 && b.hasTour && lexLess(tour, b.tour):
		// Exact tie, lexicographically smaller wins.
	case math.Abs(cost-b.cost) <= 1e-9 && !b.hasTour:
		// First tour found at exactly the ceiling.
	default:
		return false
	}

	b.tour = append(b.tour[:0], tour...)
	b.cost = cost
	b.hasTour = true
	return true
}

// lexLess reports whether a is lexicographically smaller than b when
// compared from index 1 onward (index 0 is always city 0 for both).
func lexLess(a, b []int) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 1; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
