package coord

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElectMinCostSingleRank(t *testing.T) {
	ctx := context.Background()
	winner, err := ElectMinCost(ctx, nil, 0, 1, 7.0)
	require.NoError(t, err)
	assert.Equal(t, 0, winner)
}

func TestElectMinCostPicksLowestCost(t *testing.T) {
	const size = 4
	links := NewChanRing(size)
	costs := []float64{9.0, 3.0, 5.0, 7.0}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan int, size)
	for rank := 0; rank < size; rank++ {
		rank := rank
		go func() {
			winner, err := ElectMinCost(ctx, links[rank], rank, size, costs[rank])
			require.NoError(t, err)
			results <- winner
		}()
	}

	for i := 0; i < size; i++ {
		assert.Equal(t, 1, <-results)
	}
}

func TestElectMinCostBreaksTiesByLowestRank(t *testing.T) {
	const size = 3
	links := NewChanRing(size)
	costs := []float64{4.0, 4.0, 4.0}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan int, size)
	for rank := 0; rank < size; rank++ {
		rank := rank
		go func() {
			winner, err := ElectMinCost(ctx, links[rank], rank, size, costs[rank])
			require.NoError(t, err)
			results <- winner
		}()
	}

	for i := 0; i < size; i++ {
		assert.Equal(t, 0, <-results)
	}
}
