// Package tcpstack implements the stream-transport collaborator on top of
// the operating system TCP stack. Native failures are classified into the
// normalized vocabulary: refused and timed-out opens surface as
// transport.ErrRefused/ErrTimeout wraps, everything else passes through
// untouched.
package tcpstack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"syscall"

	"conduit/pkg/transport"
)

const readChunk = 4096

// Stack dials and listens over TCP. The zero value is not usable; call New.
type Stack struct {
	dialer net.Dialer

	mu        sync.Mutex
	listeners map[uint16]net.Listener
}

func New() *Stack {
	return &Stack{listeners: make(map[uint16]net.Listener)}
}

// CreateConnection performs an active open to addr:port.
func (s *Stack) CreateConnection(ctx context.Context, addr netip.Addr, port uint16) (transport.StreamConn, error) {
	c, err := s.dialer.DialContext(ctx, "tcp", netip.AddrPortFrom(addr, port).String())
	if err != nil {
		return nil, classify(err)
	}
	return &conn{c: c}, nil
}

// Listen registers a persistent accept callback on port and returns
// immediately. Each accepted connection runs accept on its own goroutine.
func (s *Stack) Listen(port uint16, accept func(transport.StreamConn)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listeners[port]; ok {
		return fmt.Errorf("tcpstack: port %d already has a listener", port)
	}
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	s.listeners[port] = l
	go acceptLoop(l, accept)
	return nil
}

func acceptLoop(l net.Listener, accept func(transport.StreamConn)) {
	for {
		c, err := l.Accept()
		if err != nil {
			return
		}
		go accept(&conn{c: c})
	}
}

// Addr reports the bound address of the listener registered for port.
// Useful when listening on port 0.
func (s *Stack) Addr(port uint16) net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.listeners[port]; l != nil {
		return l.Addr()
	}
	return nil
}

// StopListen closes the listener for port, if any. Established connections
// are unaffected.
func (s *Stack) StopListen(port uint16) {
	s.mu.Lock()
	l := s.listeners[port]
	delete(s.listeners, port)
	s.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}
}

// Close tears down every listener.
func (s *Stack) Close() {
	s.mu.Lock()
	ls := s.listeners
	s.listeners = make(map[uint16]net.Listener)
	s.mu.Unlock()
	for _, l := range ls {
		_ = l.Close()
	}
}

// classify maps native errors into the normalized vocabulary, keeping the
// original message inside the wrap. Unrecognized errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", transport.ErrRefused, err)
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	}
	return err
}

type conn struct {
	c net.Conn

	wmu sync.Mutex
}

func (cn *conn) Read() ([]byte, error) {
	buf := make([]byte, readChunk)
	n, err := cn.c.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	return nil, classify(err)
}

func (cn *conn) Write(p []byte) error {
	cn.wmu.Lock()
	defer cn.wmu.Unlock()
	_, err := cn.c.Write(p)
	return classify(err)
}

func (cn *conn) Writev(bufs [][]byte) error {
	cn.wmu.Lock()
	defer cn.wmu.Unlock()
	nb := make(net.Buffers, len(bufs))
	copy(nb, bufs)
	_, err := nb.WriteTo(cn.c)
	return classify(err)
}

func (cn *conn) Close() {
	_ = cn.c.Close()
}
