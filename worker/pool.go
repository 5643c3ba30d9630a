// Package worker implements the shared-memory specialization of the
// branch-and-bound engine: a fixed set of goroutines, each with its own
// queue protected by its own mutex, sharing one global incumbent (bnb.Best)
// behind a single critical section and a waiting-vector / finish-counter
// pair for termination detection. This is the deployment that needs no
// transport at all — package coord's token ring exists for the
// multi-process variant, where no memory can be shared directly.
package worker

import (
	"context"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tspbb/bnbtsp/applog"
	"github.com/tspbb/bnbtsp/bnb"
	"github.com/tspbb/bnbtsp/graph"
)

// Pool runs a branch-and-bound search over N goroutines sharing one graph
// and one incumbent.
type Pool struct {
	g      *graph.Graph
	best   *bnb.Best
	tuning bnb.Tuning
	log    applog.Logger

	n int // worker count, == g.N()-1 is NOT required; chosen by caller

	queueMu []sync.Mutex
	queues  []*bnb.Queue
	rngs    []*rand.Rand

	termMu  sync.Mutex
	termCnd *sync.Cond
	waiting []bool
	finish  int

	statsMu sync.Mutex
	stats   []bnb.Stats
}

// NewPool creates a pool of n worker queues over g, seeded with a single
// root node (city 0 alone). runSeed drives the deterministic per-worker
// donation RNGs.
func NewPool(g *graph.Graph, n int, ceiling float64, tuning bnb.Tuning, log applog.Logger, runSeed int64) *Pool {
	p := &Pool{
		g:       g,
		best:    bnb.NewBest(ceiling),
		tuning:  tuning,
		log:     log,
		n:       n,
		queueMu: make([]sync.Mutex, n),
		queues:  make([]*bnb.Queue, n),
		rngs:    make([]*rand.Rand, n),
		waiting: make([]bool, n),
		stats:   make([]bnb.Stats, n),
	}
	p.termCnd = sync.NewCond(&p.termMu)
	for i := 0; i < n; i++ {
		p.queues[i] = bnb.NewQueue()
		p.rngs[i] = deriveWorkerRNG(runSeed, i)
	}
	root := &bnb.Node{Tour: []int{0}, Cost: 0, Bound: g.RootBound()}
	p.queues[0].Push(root)
	return p
}

// Best exposes the pool's shared incumbent, read after Run returns.
func (p *Pool) Best() *bnb.Best { return p.best }

// Stats merges every worker's partial counters. Safe to call only after
// Run has returned.
func (p *Pool) Stats() bnb.Stats {
	var total bnb.Stats
	for _, s := range p.stats {
		total = total.Merge(s)
	}
	return total
}

// Run drives every worker goroutine to completion: either every queue is
// empty (search exhausted) or ctx is canceled (time limit or caller abort).
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < p.n; rank++ {
		rank := rank
		g.Go(func() error {
			p.runWorker(ctx, rank)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (p *Pool) runWorker(ctx context.Context, rank int) {
	limit := p.tuning.PopThreshold(p.n)
	deep := p.tuning.DeepQueueMultiplier * p.g.N()

	for {
		if ctx.Err() != nil {
			return
		}

		node, ok := p.pop(rank)
		if !ok {
			if p.pause(rank) {
				return // every worker idle: search exhausted
			}
			continue // woken by a donation
		}

		stats := &p.stats[rank]
		stats.Expanded++

		bestCost := p.best.Cost()
		if bnb.ShouldPrunePopped(node, bestCost) {
			p.queueMu[rank].Lock()
			stats.Pruned += int64(p.queues[rank].Size())
			p.queueMu[rank].Unlock()
			p.clear(rank)
			continue
		}

		if node.Length() == p.g.N() {
			bnb.CompleteTour(p.g, node, bestCost, p.best)
			continue
		}

		visited := make([]bool, p.g.N())
		for _, c := range node.Tour {
			visited[c] = true
		}
		children := bnb.Expand(p.g, node, visited, p.best.Cost(), stats)
		for _, c := range children {
			p.queueMu[rank].Lock()
			p.queues[rank].Push(c)
			p.queueMu[rank].Unlock()
		}

		p.maybeDonate(rank, limit, deep)
	}
}

func (p *Pool) pop(rank int) (*bnb.Node, bool) {
	p.queueMu[rank].Lock()
	defer p.queueMu[rank].Unlock()
	return p.queues[rank].Pop()
}

// clear discards a popped-but-pruned node's remaining queue contents too:
// since the queue is bound-ordered, everything left is equally prunable.
func (p *Pool) clear(rank int) {
	p.queueMu[rank].Lock()
	p.queues[rank].Clear()
	p.queueMu[rank].Unlock()
}

// maybeDonate offers a shallow node from rank's queue to a currently
// waiting peer once the local queue has grown past the tuned thresholds.
func (p *Pool) maybeDonate(rank, popThreshold, deepThreshold int) {
	p.queueMu[rank].Lock()
	size := p.queues[rank].Size()
	if size <= popThreshold && size <= deepThreshold {
		p.queueMu[rank].Unlock()
		return
	}
	node, ok := p.queues[rank].Pop()
	p.queueMu[rank].Unlock()
	if !ok {
		return
	}

	p.termMu.Lock()
	candidates := make([]int, 0, p.n)
	for i, w := range p.waiting {
		if w {
			candidates = append(candidates, i)
		}
	}
	target := pickDonationTarget(p.rngs[rank], rank, candidates)
	p.termMu.Unlock()

	if target < 0 {
		p.queueMu[rank].Lock()
		p.queues[rank].Push(node)
		p.queueMu[rank].Unlock()
		return
	}

	p.queueMu[target].Lock()
	p.queues[target].Push(node)
	p.queueMu[target].Unlock()
	p.stats[rank].Donated++

	p.termMu.Lock()
	p.waiting[target] = false
	p.termMu.Unlock()
	p.termCnd.Broadcast()
}

// pause marks rank idle and blocks until either it is woken by a donation
// (returns false, caller should retry its pop) or every worker has become
// idle simultaneously, meaning the search is exhausted (returns true).
func (p *Pool) pause(rank int) (terminate bool) {
	p.termMu.Lock()
	defer p.termMu.Unlock()

	p.waiting[rank] = true
	p.finish++
	if p.finish == p.n {
		p.termCnd.Broadcast()
		return true
	}

	for p.waiting[rank] && p.finish != p.n {
		p.termCnd.Wait()
	}
	if p.finish == p.n {
		return true
	}
	p.finish--
	return false
}
