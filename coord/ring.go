package coord

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
)

// Ring drives the token-ring termination protocol for one rank: forward a
// single token around the ring of workers, gossiping the global best cost
// and accumulating a paused-vector until a termination probe started by an
// idle rank 0 completes a full circulation without any rank demoting it,
// at which point the whole ring terminates together.
//
// Three stages travel in the token's Stage field:
//
//	0  normal circulation: work may still be in flight anywhere in the ring
//	1  termination candidate: rank 0 became paused and started a probe
//	2  committed: the probe returned to rank 0 having toured the ring
//	   without any rank demoting it back to 0, so every rank stops
//
// Only rank 0 promotes 0->1 (on becoming paused) and 1->2 (on the probe
// coming back around); any other rank demotes 1->0 while forwarding if it
// is not itself paused, since that invalidates the candidate round.
type Ring struct {
	rank, size int
	t          Transport

	limitBits uint64 // atomic: math.Float64bits of min(ceiling, gossiped gbest)
	paused    int32  // atomic bool
	terminate int32  // atomic bool

	mu         sync.Mutex
	claim      int    // a donation target this rank wants the ring to know about, -1 if none
	lastPaused []bool // most recent paused-vector this rank has observed
	lastNoted  int    // most recent claim observed arriving in a token, -1 if none

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewRing constructs a Ring for one rank and starts its background token
// loop. Callers must call InjectInitial exactly once, from rank 0, after
// every rank's Ring has been constructed.
func NewRing(ctx context.Context, rank, size int, t Transport, ceiling float64) *Ring {
	r := &Ring{
		rank:      rank,
		size:      size,
		t:         t,
		claim:     -1,
		lastNoted: -1,
		stopped:   make(chan struct{}),
	}
	atomic.StoreUint64(&r.limitBits, math.Float64bits(ceiling))
	go r.loop(ctx)
	return r
}

// Limit returns this rank's current eventually-consistent copy of
// min(ceiling, global best cost seen by the token so far).
func (r *Ring) Limit() float64 {
	return math.Float64frombits(atomic.LoadUint64(&r.limitBits))
}

// ObserveCost folds a newly found local tour cost into the rank's
// advertised best, so the next token this rank forwards carries it onward.
func (r *Ring) ObserveCost(cost float64) {
	for {
		old := atomic.LoadUint64(&r.limitBits)
		if cost >= math.Float64frombits(old) {
			return
		}
		if atomic.CompareAndSwapUint64(&r.limitBits, old, math.Float64bits(cost)) {
			return
		}
	}
}

// SetPaused records whether this rank's queue is currently empty. The
// background loop reads this when it next forwards a token.
func (r *Ring) SetPaused(paused bool) {
	v := int32(0)
	if paused {
		v = 1
	}
	atomic.StoreInt32(&r.paused, v)
}

// Terminated reports whether this rank has observed a committed (stage 2)
// token and should stop pulling work from the ring.
func (r *Ring) Terminated() bool {
	return atomic.LoadInt32(&r.terminate) != 0
}

// ClaimDonationTarget records the rank this rank has just donated to, so
// the claim rides the next token this rank forwards and downstream ranks
// see it through LastNotedRank (distrib's donation prefers that rank as
// its own target). This is advisory only: nothing enforces exclusivity.
func (r *Ring) ClaimDonationTarget(target int) {
	r.mu.Lock()
	r.claim = target
	r.mu.Unlock()
}

// IdleRanks returns the ranks this rank most recently learned (via the
// token's paused-vector) were idle. The information can be one full
// circulation stale.
func (r *Ring) IdleRanks() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	idle := make([]int, 0, len(r.lastPaused))
	for i, p := range r.lastPaused {
		if p {
			idle = append(idle, i)
		}
	}
	return idle
}

// LastNotedRank returns the most recent donation claim this rank observed
// arriving in a token, or -1 if none has been seen yet.
func (r *Ring) LastNotedRank() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastNoted
}

// InjectInitial starts the protocol: only rank 0 calls this, once, after
// seeding its own queue from the input graph.
func (r *Ring) InjectInitial(ctx context.Context) error {
	if r.rank != 0 {
		return nil
	}
	msg := TokenMsg{
		Paused:    make([]bool, r.size),
		Stage:     0,
		GBest:     r.Limit(),
		NotedRank: -1,
	}
	return r.t.SendToken(ctx, msg)
}

func (r *Ring) loop(ctx context.Context) {
	for {
		msg, err := r.t.RecvToken(ctx)
		if err != nil {
			return
		}

		fwd, terminate := r.react(msg)

		if terminate {
			atomic.StoreInt32(&r.terminate, 1)
		}

		// A rank that just committed termination still forwards the
		// stage-2 token once, so its successor also terminates, then
		// stops participating.
		if err := r.t.SendToken(ctx, fwd); err != nil {
			return
		}
		if terminate {
			r.stopOnce.Do(func() { close(r.stopped) })
			return
		}
	}
}

// react computes this rank's reaction to an inbound token: its forwarded
// form, and whether this rank has now observed global termination. It
// depends only on the inbound token and the rank's local state (which it
// updates: limit, last paused-vector, last noted rank, pending claim), so
// the protocol is testable without a live Transport.
func (r *Ring) react(msg TokenMsg) (fwd TokenMsg, terminate bool) {
	paused := atomic.LoadInt32(&r.paused) != 0

	gbest := math.Min(msg.GBest, r.Limit())
	r.ObserveCost(gbest)

	out := TokenMsg{
		Paused:    append([]bool(nil), msg.Paused...),
		Stage:     msg.Stage,
		GBest:     gbest,
		NotedRank: msg.NotedRank,
	}
	if r.rank < len(out.Paused) {
		out.Paused[r.rank] = paused
	}

	r.mu.Lock()
	r.lastPaused = append([]bool(nil), out.Paused...)
	r.lastNoted = msg.NotedRank
	claim := r.claim
	r.claim = -1
	r.mu.Unlock()
	if claim >= 0 {
		out.NotedRank = claim
	}

	switch {
	case r.rank == 0 && out.Stage == 1:
		out.Stage = 2
	case r.rank == 0 && paused:
		out.Stage = 1
	case r.rank != 0 && out.Stage == 1 && !paused:
		out.Stage = 0
	}

	return out, out.Stage == 2
}

// Done returns a channel closed once this rank has forwarded a stage-2
// token and stopped participating in the ring.
func (r *Ring) Done() <-chan struct{} { return r.stopped }
