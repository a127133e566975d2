package conduit

import (
	"context"
	"io"
	"net/netip"
	"sync"

	"conduit/pkg/transport"
)

// fakeConn satisfies both native conn interfaces. Reads drain the queued
// chunks, then report io.EOF.
type fakeConn struct {
	mu     sync.Mutex
	reads  [][]byte
	writes [][]byte
	closed bool
}

func (c *fakeConn) Read() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reads) == 0 {
		return nil, io.EOF
	}
	b := c.reads[0]
	c.reads = c.reads[1:]
	return b, nil
}

func (c *fakeConn) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), p...))
	return nil
}

func (c *fakeConn) Writev(bufs [][]byte) error {
	for _, b := range bufs {
		if err := c.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) wasClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeStack records every native call so tests can assert that
// configuration failures never reach the stack.
type fakeStack struct {
	mu      sync.Mutex
	dials   int
	accepts map[uint16]func(transport.StreamConn)
	stopped []uint16

	dialErr error
	conn    transport.StreamConn
}

func newFakeStack() *fakeStack {
	return &fakeStack{accepts: make(map[uint16]func(transport.StreamConn))}
}

func (s *fakeStack) CreateConnection(_ context.Context, _ netip.Addr, _ uint16) (transport.StreamConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dials++
	if s.dialErr != nil {
		return nil, s.dialErr
	}
	if s.conn == nil {
		s.conn = &fakeConn{}
	}
	return s.conn, nil
}

func (s *fakeStack) Listen(port uint16, accept func(transport.StreamConn)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepts[port] = accept
	return nil
}

func (s *fakeStack) StopListen(port uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = append(s.stopped, port)
}

func (s *fakeStack) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func (s *fakeStack) acceptFunc(port uint16) func(transport.StreamConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepts[port]
}

func (s *fakeStack) stoppedPorts() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint16(nil), s.stopped...)
}

// fakeChannel hands out fakeConns. When block is set, OpenServer waits for
// ctx.
type fakeChannel struct {
	mu          sync.Mutex
	clientOpens int
	serverOpens int

	block     bool
	openErr   error
	parseFail bool
}

func (c *fakeChannel) ParsePort(s string) (transport.ChannelPort, error) {
	if c.parseFail {
		return "", errParse
	}
	return transport.ChannelPort(s), nil
}

func (c *fakeChannel) OpenClient(_ context.Context, _ uint32, _ transport.ChannelPort) (transport.ChannelConn, error) {
	c.mu.Lock()
	c.clientOpens++
	err := c.openErr
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeConn{}, nil
}

func (c *fakeChannel) OpenServer(ctx context.Context, _ uint32, _ transport.ChannelPort, _ transport.BufferHint) (transport.ChannelConn, error) {
	c.mu.Lock()
	c.serverOpens++
	c.mu.Unlock()
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.openErr != nil {
		return nil, c.openErr
	}
	return &fakeConn{}, nil
}

var errParse = &parseError{}

type parseError struct{}

func (*parseError) Error() string { return `invalid vchan port: ""` }
