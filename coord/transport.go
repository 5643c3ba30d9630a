// Package coord implements the distributed work-stealing / load-balancing
// protocol: the WORK and TOKEN message kinds, the ring topology, and the
// three-stage termination detection scheme.
//
// The protocol logic (Ring) is written once against a small Transport
// interface so it drives both transports unchanged: ChanTransport
// (in-process channels, used by tests; the shared-memory deployment in
// package worker uses no transport) and TCPTransport (a full mesh of TCP
// connections, used by the multi-process deployment). Dispatching on a small interface rather than branching on
// deployment mode keeps the termination-detection state machine testable
// without sockets.
package coord

import "context"

// MsgTag distinguishes WORK from TOKEN frames on the wire.
type MsgTag byte

const (
	TagTOKEN MsgTag = 1
	TagWORK  MsgTag = 2
)

// WorkMsg is a serialized search node handed from one rank to another.
// Length/Index/Cost/Bound/Tour mirror bnb.Node's fields at the wire
// boundary so package coord never needs to import package bnb's internal
// representation directly.
type WorkMsg struct {
	Length int
	Index  int
	Cost   float64
	Bound  float64
	Tour   []int
}

// TokenMsg is the ring-traversing control message (tag 1): a
// paused-vector, a termination stage, the gossiped global best cost, and
// the optional donation hint ("noted" slot).
type TokenMsg struct {
	Paused []bool  // paused[k] == true if rank k reported itself idle
	Stage  int     // 0 normal, 1 termination candidate, 2 committed
	GBest  float64 // minimum incumbent cost seen by the token so far

	// NotedRank is the optional work hand-off hint: -1 means "no hint",
	// otherwise the rank a donating worker most recently sent a WORK
	// donation to.
	NotedRank int
}

// Transport is the per-rank, per-link send/receive contract the Ring state
// machine is written against. A rank has exactly one outbound link (to
// (rank+1) mod W) and one inbound link (from (rank-1) mod W); Transport
// exposes both ends plus a dedicated unsolicited-WORK channel so a WORK
// delivery never blocks behind, or is blocked by, TOKEN traffic.
type Transport interface {
	// SendToken forwards a token to this rank's successor.
	SendToken(ctx context.Context, msg TokenMsg) error

	// RecvToken blocks until a token arrives from this rank's
	// predecessor, or ctx is done.
	RecvToken(ctx context.Context) (TokenMsg, error)

	// SendWork delivers a donated node to the given rank.
	SendWork(ctx context.Context, toRank int, msg WorkMsg) error

	// RecvWork is non-blocking: it returns ok==false immediately if no
	// WORK message is queued, matching a "service inbox" poll point in
	// the worker loop rather than a blocking receive.
	RecvWork() (msg WorkMsg, ok bool)

	// Close releases transport resources (sockets, channels) for this
	// rank. Safe to call once termination (TOKEN stage 2) is reached.
	Close() error
}
