// Package vchan implements the inter-domain channel-transport collaborator
// as an in-process shared-memory style rendezvous: servers register on a
// (domain, port) pair, a connecting client is handed one end of a pair of
// bounded byte rings. It needs no network stack and its error set never
// includes refused or timeout.
package vchan

import (
	"context"
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/valyala/bytebufferpool"

	"conduit/pkg/transport"
)

// DefaultRingSize is the per-direction buffer capacity used when the open
// carries no hint.
const DefaultRingSize = 64 << 10

// Transport is the channel-transport registry. One Transport instance
// models the host's inter-domain connection namespace.
type Transport struct {
	listeners cmap.ConcurrentMap[string, *listener]
}

func New() *Transport {
	return &Transport{listeners: cmap.New[*listener]()}
}

type listener struct {
	requests chan *request
}

type request struct {
	resp chan transport.ChannelConn
}

func connKey(domain uint32, port transport.ChannelPort) string {
	return fmt.Sprintf("%d/%s", domain, port)
}

// ParsePort validates a textual port identifier: non-empty, limited to
// [A-Za-z0-9_-].
func (t *Transport) ParsePort(s string) (transport.ChannelPort, error) {
	if s == "" {
		return "", fmt.Errorf("invalid vchan port: %q (empty)", s)
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return "", fmt.Errorf("invalid vchan port: %q", s)
		}
	}
	return transport.ChannelPort(s), nil
}

// OpenServer registers on (domain, port) and waits for exactly one client.
// The registration is removed once the open completes or ctx ends.
func (t *Transport) OpenServer(ctx context.Context, domain uint32, port transport.ChannelPort, hint transport.BufferHint) (transport.ChannelConn, error) {
	k := connKey(domain, port)
	l := &listener{requests: make(chan *request)}
	if !t.listeners.SetIfAbsent(k, l) {
		return nil, fmt.Errorf("vchan: dom%d/%s already has a server", domain, port)
	}
	defer t.listeners.Remove(k)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case req := <-l.requests:
		srv, cli := newPair(hint)
		req.resp <- cli
		return srv, nil
	}
}

// OpenClient connects to a registered server in the given domain. There is
// no waiting for a server to appear: connecting without one fails.
func (t *Transport) OpenClient(ctx context.Context, domain uint32, port transport.ChannelPort) (transport.ChannelConn, error) {
	k := connKey(domain, port)
	l, ok := t.listeners.Get(k)
	if !ok {
		return nil, fmt.Errorf("vchan: no server listening on dom%d/%s", domain, port)
	}
	req := &request{resp: make(chan transport.ChannelConn, 1)}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case c := <-req.resp:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// conn is one endpoint of an established channel: a read ring fed by the
// peer and a write ring feeding it.
type conn struct {
	rd *ring
	wr *ring

	closeOnce sync.Once
}

// newPair builds both endpoints. Hints size the server's view: ReadBytes
// caps the ring the server reads from, WriteBytes the one it writes into.
func newPair(hint transport.BufferHint) (srv, cli *conn) {
	rsize := hint.ReadBytes
	if rsize <= 0 {
		rsize = DefaultRingSize
	}
	wsize := hint.WriteBytes
	if wsize <= 0 {
		wsize = DefaultRingSize
	}
	toServer := newRing(rsize)
	toClient := newRing(wsize)
	srv = &conn{rd: toServer, wr: toClient}
	cli = &conn{rd: toClient, wr: toServer}
	return srv, cli
}

func (c *conn) Read() ([]byte, error) { return c.rd.read() }

func (c *conn) Write(p []byte) error { return c.wr.write(p) }

// Writev coalesces the vector through a pooled buffer so it lands in the
// ring as one contiguous write, not interleaved with a concurrent writer.
func (c *conn) Writev(bufs [][]byte) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	for _, b := range bufs {
		_, _ = bb.Write(b)
	}
	return c.wr.write(bb.B)
}

// Close signals the peer and releases both rings. Data already queued for
// the peer stays readable on its side; peer writes fail from here on.
func (c *conn) Close() {
	c.closeOnce.Do(func() {
		c.wr.close()
		c.rd.close()
	})
}
