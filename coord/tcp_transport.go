package coord

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
)

// TCPTransport is the multi-process Transport: one listener accepts a
// connection from every other rank, and one background goroutine dials
// every peer once to open an outbound connection to it. WORK can be addressed to any rank (a
// donation target), so every rank maintains a full-mesh outbound
// connection set; TOKEN always travels to (rank+1) mod size and arrives
// from (rank-1) mod size, but both kinds share the same connections and
// are told apart by the MsgTag at the front of each frame.
type TCPTransport struct {
	rank, size int

	mu    sync.Mutex
	peers []*bufio.Writer // peers[k]: buffered writer to rank k, nil until dialed
	conns []net.Conn

	tokenCh chan TokenMsg
	workCh  chan WorkMsg
	errCh   chan error

	listener net.Listener
	closed   chan struct{}
}

// DialTCPRing starts a TCPTransport for rank among addrs (addrs[k] is the
// listen address for rank k), accepting inbound connections on
// addrs[rank]. It returns once the local listener is up; a background
// goroutine then dials the peers one at a time in rank order. A failed
// dial is not retried: its error is handed to the next RecvToken. A send
// to a rank whose connection is not yet established returns an error; it
// neither waits for nor starts a dial.
func DialTCPRing(addrs []string, rank int) (*TCPTransport, error) {
	ln, err := net.Listen("tcp", addrs[rank])
	if err != nil {
		return nil, fmt.Errorf("coord: listen on %s: %w", addrs[rank], err)
	}

	t := &TCPTransport{
		rank:     rank,
		size:     len(addrs),
		peers:    make([]*bufio.Writer, len(addrs)),
		conns:    make([]net.Conn, len(addrs)),
		tokenCh:  make(chan TokenMsg, 1),
		workCh:   make(chan WorkMsg, 64),
		errCh:    make(chan error, 1),
		listener: ln,
		closed:   make(chan struct{}),
	}

	go t.acceptLoop()
	go t.dialPeers(addrs)
	return t, nil
}

func (t *TCPTransport) acceptLoop() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			return
		}
		go t.readLoop(conn)
	}
}

func (t *TCPTransport) dialPeers(addrs []string) {
	for k, addr := range addrs {
		if k == t.rank {
			continue
		}
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			select {
			case t.errCh <- fmt.Errorf("coord: dial rank %d at %s: %w", k, addr, err):
			default:
			}
			continue
		}
		t.mu.Lock()
		t.conns[k] = conn
		t.peers[k] = bufio.NewWriter(conn)
		t.mu.Unlock()
	}
}

func (t *TCPTransport) readLoop(conn net.Conn) {
	for {
		tag, err := readTag(conn)
		if err != nil {
			return
		}
		switch tag {
		case TagTOKEN:
			msg, err := decodeToken(conn)
			if err != nil {
				return
			}
			select {
			case t.tokenCh <- msg:
			case <-t.closed:
				return
			}
		case TagWORK:
			msg, err := decodeWork(conn)
			if err != nil {
				return
			}
			select {
			case t.workCh <- msg:
			case <-t.closed:
				return
			}
		default:
			return
		}
	}
}

func (t *TCPTransport) writerFor(rank int) (*bufio.Writer, error) {
	t.mu.Lock()
	w := t.peers[rank]
	t.mu.Unlock()
	if w == nil {
		return nil, fmt.Errorf("coord: no connection to rank %d yet", rank)
	}
	return w, nil
}

func (t *TCPTransport) SendToken(ctx context.Context, msg TokenMsg) error {
	successor := (t.rank + 1) % t.size
	w, err := t.writerFor(successor)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := encodeToken(w, msg); err != nil {
		return err
	}
	return w.Flush()
}

func (t *TCPTransport) RecvToken(ctx context.Context) (TokenMsg, error) {
	select {
	case msg := <-t.tokenCh:
		return msg, nil
	case err := <-t.errCh:
		return TokenMsg{}, err
	case <-ctx.Done():
		return TokenMsg{}, ctx.Err()
	}
}

func (t *TCPTransport) SendWork(ctx context.Context, toRank int, msg WorkMsg) error {
	w, err := t.writerFor(toRank)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := encodeWork(w, msg); err != nil {
		return err
	}
	return w.Flush()
}

func (t *TCPTransport) RecvWork() (WorkMsg, bool) {
	select {
	case msg := <-t.workCh:
		return msg, true
	default:
		return WorkMsg{}, false
	}
}

func (t *TCPTransport) Close() error {
	close(t.closed)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.conns {
		if c != nil {
			c.Close()
		}
	}
	return t.listener.Close()
}
