package graph_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspbb/bnbtsp/graph"
)

func TestNewTriangle(t *testing.T) {
	g, err := graph.New(3, []graph.Edge{
		{U: 0, V: 1, Cost: 1},
		{U: 1, V: 2, Cost: 2},
		{U: 0, V: 2, Cost: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.N())
	assert.Equal(t, 1.0, g.Short1(0))
	assert.Equal(t, 3.0, g.Short2(0))
	assert.Equal(t, 1.0, g.Weight(0, 1))
	assert.Equal(t, 1.0, g.Weight(1, 0))
	assert.True(t, math.IsInf(g.Weight(0, 0), 1))
}

func TestNewRejectsTooFewCities(t *testing.T) {
	_, err := graph.New(1, nil)
	assert.ErrorIs(t, err, graph.ErrTooFewCities)
}

func TestNewRejectsOutOfRangeCity(t *testing.T) {
	_, err := graph.New(2, []graph.Edge{{U: 0, V: 5, Cost: 1}})
	assert.ErrorIs(t, err, graph.ErrCityOutOfRange)
}

func TestNewRejectsNonPositiveWeight(t *testing.T) {
	_, err := graph.New(2, []graph.Edge{{U: 0, V: 1, Cost: 0}})
	assert.ErrorIs(t, err, graph.ErrNonPositiveWeight)
}

func TestNewRejectsIncompleteCity(t *testing.T) {
	// City 2 has degree 0: disconnected but syntactically fine otherwise.
	_, err := graph.New(3, []graph.Edge{{U: 0, V: 1, Cost: 1}})
	assert.ErrorIs(t, err, graph.ErrIncompleteCity)
}

func TestDuplicateEdgesOverwriteIdempotently(t *testing.T) {
	g, err := graph.New(2, []graph.Edge{
		{U: 0, V: 1, Cost: 5},
		{U: 0, V: 1, Cost: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, g.Weight(0, 1))
	assert.Equal(t, 3.0, g.Short1(0))
}

func TestRootBoundK4(t *testing.T) {
	g, err := graph.New(4, []graph.Edge{
		{U: 0, V: 1, Cost: 1}, {U: 1, V: 2, Cost: 1},
		{U: 2, V: 3, Cost: 1}, {U: 3, V: 0, Cost: 1},
		{U: 0, V: 2, Cost: 2}, {U: 1, V: 3, Cost: 2},
	})
	require.NoError(t, err)
	// Every city's two smallest incident edges are 1 and 1 (its third edge
	// costs 2); assert the bound is <= the known optimum (4.0).
	assert.LessOrEqual(t, g.RootBound(), 4.0)
}

func TestRootBoundTwoCities(t *testing.T) {
	g, err := graph.New(2, []graph.Edge{{U: 0, V: 1, Cost: 7}})
	require.NoError(t, err)
	assert.Equal(t, 7.0, g.Short1(0))
	assert.Equal(t, 7.0, g.Short2(0))
	assert.Equal(t, 14.0, g.RootBound())
}

func TestTourCost(t *testing.T) {
	g, err := graph.New(3, []graph.Edge{
		{U: 0, V: 1, Cost: 1},
		{U: 1, V: 2, Cost: 2},
		{U: 0, V: 2, Cost: 3},
	})
	require.NoError(t, err)
	cost, err := g.TourCost([]int{0, 1, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, 6.0, cost)
}

func TestParseValid(t *testing.T) {
	input := "2 1\n0 1 7\n"
	g, err := graph.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, g.N())
	assert.Equal(t, 7.0, g.Weight(0, 1))
}

func TestParseMalformed(t *testing.T) {
	_, err := graph.Parse(strings.NewReader("2 1\n0 1\n"))
	assert.ErrorIs(t, err, graph.ErrMalformedInput)
}

func TestParseNonNumeric(t *testing.T) {
	_, err := graph.Parse(strings.NewReader("2 1\n0 1 abc\n"))
	assert.ErrorIs(t, err, graph.ErrMalformedInput)
}
