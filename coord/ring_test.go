package coord

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactPromotesStageOnceAroundWhilePaused(t *testing.T) {
	r := &Ring{rank: 0, size: 3, claim: -1, lastNoted: -1}
	r.SetPaused(true)

	out, terminate := r.react(TokenMsg{Paused: make([]bool, 3), Stage: 0, GBest: 10, NotedRank: -1})
	assert.Equal(t, 1, out.Stage)
	assert.False(t, terminate)
	assert.True(t, out.Paused[0])
}

func TestReactCommitsStageTwoAtRankZero(t *testing.T) {
	r := &Ring{rank: 0, size: 3, claim: -1, lastNoted: -1}
	r.SetPaused(true)

	out, terminate := r.react(TokenMsg{Paused: []bool{true, true, true}, Stage: 1, GBest: 10, NotedRank: -1})
	assert.Equal(t, 2, out.Stage)
	assert.True(t, terminate)
}

func TestReactDemotesCandidateWhenNotPaused(t *testing.T) {
	r := &Ring{rank: 1, size: 3, claim: -1, lastNoted: -1}
	r.SetPaused(false)

	out, terminate := r.react(TokenMsg{Paused: make([]bool, 3), Stage: 1, GBest: 10, NotedRank: -1})
	assert.Equal(t, 0, out.Stage)
	assert.False(t, terminate)
}

func TestReactPassesStageTwoThroughAndTerminates(t *testing.T) {
	r := &Ring{rank: 2, size: 3, claim: -1, lastNoted: -1}
	r.SetPaused(true)

	out, terminate := r.react(TokenMsg{Paused: []bool{true, true, true}, Stage: 2, GBest: 5, NotedRank: -1})
	assert.Equal(t, 2, out.Stage)
	assert.True(t, terminate)
}

func TestReactGossipsLowerGBest(t *testing.T) {
	r := &Ring{rank: 1, size: 3, claim: -1, lastNoted: -1, limitBits: math.Float64bits(math.Inf(1))}
	r.ObserveCost(50)

	out, _ := r.react(TokenMsg{Paused: make([]bool, 3), Stage: 0, GBest: 20, NotedRank: -1})
	assert.Equal(t, 20.0, out.GBest)
	assert.Equal(t, 20.0, r.Limit())
}

func TestReactCarriesClaimedTargetOnce(t *testing.T) {
	r := &Ring{rank: 1, size: 3, claim: -1, lastNoted: -1}
	r.ClaimDonationTarget(2)

	out, _ := r.react(TokenMsg{Paused: make([]bool, 3), Stage: 0, GBest: 10, NotedRank: -1})
	assert.Equal(t, 2, out.NotedRank)

	out2, _ := r.react(TokenMsg{Paused: make([]bool, 3), Stage: 0, GBest: 10, NotedRank: 2})
	assert.Equal(t, 2, out2.NotedRank) // unclaimed hint just passes through unchanged
	assert.Equal(t, 2, r.LastNotedRank())
}

func TestIdleRanksReflectsLastObservedPausedVector(t *testing.T) {
	r := &Ring{rank: 0, size: 3, claim: -1, lastNoted: -1}
	r.react(TokenMsg{Paused: []bool{false, true, false}, Stage: 0, GBest: 10, NotedRank: -1})
	assert.Equal(t, []int{1}, r.IdleRanks())
}

func TestRingTerminatesWhenEveryRankIsPaused(t *testing.T) {
	const size = 4
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	links := NewChanRing(size)
	rings := make([]*Ring, size)
	for i, link := range links {
		rings[i] = NewRing(ctx, i, size, link, 100)
		rings[i].SetPaused(true)
	}

	require.NoError(t, rings[0].InjectInitial(ctx))

	for _, r := range rings {
		select {
		case <-r.Done():
		case <-ctx.Done():
			t.Fatalf("rank %d never terminated", r.rank)
		}
	}
}
