package distrib

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspbb/bnbtsp/applog"
	"github.com/tspbb/bnbtsp/bnb"
	"github.com/tspbb/bnbtsp/coord"
	"github.com/tspbb/bnbtsp/graph"
)

func square(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(4, []graph.Edge{
		{U: 0, V: 1, Cost: 1}, {U: 1, V: 2, Cost: 1},
		{U: 2, V: 3, Cost: 1}, {U: 3, V: 0, Cost: 1},
		{U: 0, V: 2, Cost: 2}, {U: 1, V: 3, Cost: 2},
	})
	require.NoError(t, err)
	return g
}

func TestRunRankSingleRankSolvesAlone(t *testing.T) {
	g := square(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	links := coord.NewChanRing(1)
	res, _, err := RunRank(ctx, g, 0, 1, links[0], math.Inf(1), bnb.DefaultTuning(), applog.Null{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Cost)
}

func TestRunRankMultiRankConvergesToOptimum(t *testing.T) {
	g := square(t)
	const size = 3
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	links := coord.NewChanRing(size)
	type outcome struct {
		res   bnb.TSResult
		err   error
		found bool
	}
	results := make(chan outcome, size)

	for rank := 0; rank < size; rank++ {
		rank := rank
		go func() {
			res, _, err := RunRank(ctx, g, rank, size, links[rank], math.Inf(1), bnb.DefaultTuning(), applog.Null{}, int64(rank+1))
			results <- outcome{res: res, err: err, found: err == nil}
		}()
	}

	winners := 0
	for i := 0; i < size; i++ {
		out := <-results
		if out.found {
			winners++
			assert.Equal(t, 4.0, out.res.Cost)
		} else {
			assert.ErrorIs(t, out.err, bnb.ErrNotElected)
		}
	}
	assert.Equal(t, 1, winners, "exactly one rank should be elected to report the result")
}
