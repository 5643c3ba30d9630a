package coord

import "context"

// NewChanRing builds one ChanTransport per rank in a ring of the given
// size, all wired to each other's channels. It runs several ranks inside
// one process; the tests use it, while the CLI's shared-memory mode uses
// package worker and no transport at all. A ring built this way behaves identically to one built over TCPTransport
// from the Ring state machine's point of view.
func NewChanRing(size int) []*ChanTransport {
	tokenLinks := make([]chan TokenMsg, size)
	workLinks := make([]chan WorkMsg, size)
	for i := range tokenLinks {
		tokenLinks[i] = make(chan TokenMsg, 1)
		workLinks[i] = make(chan WorkMsg, 64)
	}

	ring := make([]*ChanTransport, size)
	for rank := 0; rank < size; rank++ {
		ring[rank] = &ChanTransport{
			rank:      rank,
			size:      size,
			sendToken: tokenLinks[(rank+1)%size],
			recvToken: tokenLinks[rank],
			sendWork:  workLinks,
			recvWork:  workLinks[rank],
		}
	}
	return ring
}

// ChanTransport is the in-process Transport: every link is a buffered Go
// channel, so RecvToken blocks on channel receive and RecvWork polls with
// a non-blocking select.
type ChanTransport struct {
	rank, size int

	sendToken chan<- TokenMsg
	recvToken <-chan TokenMsg

	sendWork []chan WorkMsg // indexed by destination rank
	recvWork <-chan WorkMsg
}

func (c *ChanTransport) SendToken(ctx context.Context, msg TokenMsg) error {
	select {
	case c.sendToken <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ChanTransport) RecvToken(ctx context.Context) (TokenMsg, error) {
	select {
	case msg := <-c.recvToken:
		return msg, nil
	case <-ctx.Done():
		return TokenMsg{}, ctx.Err()
	}
}

func (c *ChanTransport) SendWork(ctx context.Context, toRank int, msg WorkMsg) error {
	select {
	case c.sendWork[toRank] <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ChanTransport) RecvWork() (WorkMsg, bool) {
	select {
	case msg := <-c.recvWork:
		return msg, true
	default:
		return WorkMsg{}, false
	}
}

// Close is a no-op: the channels are shared with sibling ranks and are
// reclaimed by the garbage collector once every rank drops its reference.
func (c *ChanTransport) Close() error { return nil }
