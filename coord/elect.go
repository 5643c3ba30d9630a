package coord

import (
	"context"
	"time"
)

// electPollBackoff bounds how long ElectMinCost sleeps between inbox polls
// while waiting for the next reduction message to arrive.
const electPollBackoff = 2 * time.Millisecond

// ElectMinCost runs a two-phase ring reduction, mirroring the original
// MPI deployment's Allgather-then-elect step: after the termination token
// protocol (Ring) has stopped, every rank's local best cost is folded into
// a single running minimum as it circulates once around the ring (fold
// phase), then the winning rank is broadcast back around so every rank
// learns it (broadcast phase). Ties are broken by the lowest rank index,
// so repeated runs over the same input and seed elect the same rank.
//
// It reuses the WORK channel (WorkMsg.Cost/Index) rather than a dedicated
// message kind, since by the time this runs no more search traffic is in
// flight: Ring termination means every rank was simultaneously idle, so
// nothing donates again afterward.
func ElectMinCost(ctx context.Context, t Transport, rank, size int, localCost float64) (int, error) {
	if size <= 1 {
		return 0, nil
	}

	if rank == 0 {
		if err := t.SendWork(ctx, 1, WorkMsg{Cost: localCost, Index: 0}); err != nil {
			return 0, err
		}
	} else {
		in, err := recvWorkBlocking(ctx, t)
		if err != nil {
			return 0, err
		}
		winner, winCost := in.Index, in.Cost
		if localCost < winCost {
			winner, winCost = rank, localCost
		}
		if err := t.SendWork(ctx, (rank+1)%size, WorkMsg{Cost: winCost, Index: winner}); err != nil {
			return 0, err
		}
	}

	if rank == 0 {
		final, err := recvWorkBlocking(ctx, t)
		if err != nil {
			return 0, err
		}
		if err := t.SendWork(ctx, 1, WorkMsg{Index: final.Index}); err != nil {
			return 0, err
		}
		return final.Index, nil
	}

	announce, err := recvWorkBlocking(ctx, t)
	if err != nil {
		return 0, err
	}
	if next := rank + 1; next < size {
		if err := t.SendWork(ctx, next, announce); err != nil {
			return 0, err
		}
	}
	return announce.Index, nil
}

func recvWorkBlocking(ctx context.Context, t Transport) (WorkMsg, error) {
	for {
		if msg, ok := t.RecvWork(); ok {
			return msg, nil
		}
		select {
		case <-ctx.Done():
			return WorkMsg{}, ctx.Err()
		case <-time.After(electPollBackoff):
		}
	}
}
