package bnb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspbb/bnbtsp/bnb"
)

func TestNodeValid(t *testing.T) {
	g := square()
	n := &bnb.Node{Tour: []int{0, 1, 2}, Cost: 2, Bound: 2}
	require.NoError(t, n.Valid(g.N(), g.Weight))
}

func TestNodeValidRejectsBadStart(t *testing.T) {
	g := square()
	n := &bnb.Node{Tour: []int{1, 2}, Cost: 1, Bound: 1}
	assert.ErrorIs(t, n.Valid(g.N(), g.Weight), bnb.ErrInvariant)
}

func TestNodeValidRejectsDuplicate(t *testing.T) {
	g := square()
	n := &bnb.Node{Tour: []int{0, 1, 1}, Cost: 1, Bound: 1}
	assert.ErrorIs(t, n.Valid(g.N(), g.Weight), bnb.ErrInvariant)
}

func TestNodeValidRejectsBoundBelowCost(t *testing.T) {
	g := square()
	n := &bnb.Node{Tour: []int{0, 1}, Cost: 1, Bound: 0.5}
	assert.ErrorIs(t, n.Valid(g.N(), g.Weight), bnb.ErrInvariant)
}
