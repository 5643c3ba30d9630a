package bnb_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tspbb/bnbtsp/bnb"
)

func TestBestOfferStrictlyBetter(t *testing.T) {
	b := bnb.NewBest(math.Inf(1))
	assert.True(t, b.Offer([]int{0, 1, 2, 0}, 5))
	assert.False(t, b.Offer([]int{0, 2, 1, 0}, 6))
	assert.Equal(t, 5.0, b.Cost())
}

func TestBestOfferTieBreaksLexicographically(t *testing.T) {
	b := bnb.NewBest(math.Inf(1))
	assert.True(t, b.Offer([]int{0, 2, 1, 0}, 5))
	assert.True(t, b.Offer([]int{0, 1, 2, 0}, 5)) // lexicographically smaller
	assert.Equal(t, []int{0, 1, 2, 0}, b.Tour())
	assert.False(t, b.Offer([]int{0, 2, 1, 0}, 5)) // loses the tie
	assert.Equal(t, []int{0, 1, 2, 0}, b.Tour())
}

func TestBestMonotoneNonIncreasing(t *testing.T) {
	b := bnb.NewBest(100)
	costs := []float64{90, 95, 50, 60, 20}
	prev := b.Cost()
	for _, c := range costs {
		b.Offer([]int{0}, c)
		assert.LessOrEqual(t, b.Cost(), prev)
		prev = b.Cost()
	}
	assert.Equal(t, 20.0, b.Cost())
}

func TestBestConcurrentOffers(t *testing.T) {
	b := bnb.NewBest(math.Inf(1))
	var wg sync.WaitGroup
	for i := 100; i > 0; i-- {
		wg.Add(1)
		go func(cost float64) {
			defer wg.Done()
			b.Offer([]int{0, 1}, cost)
		}(float64(i))
	}
	wg.Wait()
	assert.Equal(t, 1.0, b.Cost())
}
