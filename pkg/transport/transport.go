package transport

import (
	"context"
	"net/netip"
)

// Kind identifies the concrete transport behind a flow or descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	KindStream
	KindChannel
)

func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// StreamConn is the native handle exposed by a stream (TCP-style) stack.
// Read returns io.EOF once the peer has finished sending. Connection-level
// failures are reported either as ErrRefused/ErrTimeout wraps or as opaque
// transport errors.
type StreamConn interface {
	Read() ([]byte, error)
	Write(p []byte) error
	Writev(bufs [][]byte) error
	Close()
}

// ChannelConn is the native handle exposed by an inter-domain channel
// transport. Its error set is a strict subset of the stream one: io.EOF
// and opaque errors only, never ErrRefused or ErrTimeout.
type ChannelConn interface {
	Read() ([]byte, error)
	Write(p []byte) error
	Writev(bufs [][]byte) error
	Close()
}

// Stack is the stream-transport collaborator. One Stack instance is bound
// to a conduit context and shared read-only by every connect/serve call.
type Stack interface {
	// CreateConnection performs an active open to addr:port.
	CreateConnection(ctx context.Context, addr netip.Addr, port uint16) (StreamConn, error)
	// Listen registers a persistent accept callback for the given port and
	// returns immediately; accept runs once per inbound connection, each on
	// its own goroutine.
	Listen(port uint16, accept func(StreamConn)) error
}

// StopListener is an optional Stack capability used for cooperative
// shutdown of a listen registration.
type StopListener interface {
	StopListen(port uint16)
}

// ChannelPort is a parsed channel port identifier, produced only by a
// Channel's ParsePort.
type ChannelPort string

func (p ChannelPort) String() string { return string(p) }

// BufferHint carries optional ring sizing for a channel server open.
// Zero values mean transport defaults.
type BufferHint struct {
	ReadBytes  int
	WriteBytes int
}

// Channel is the inter-domain channel-transport collaborator. It needs no
// bound Stack; the presence of an implementation is the capability flag
// for channel endpoints.
type Channel interface {
	// ParsePort validates a textual port identifier.
	ParsePort(s string) (ChannelPort, error)
	// OpenClient performs an active open towards a server in the given domain.
	OpenClient(ctx context.Context, domain uint32, port ChannelPort) (ChannelConn, error)
	// OpenServer performs exactly one passive open: it waits for a single
	// peer and returns the established handle.
	OpenServer(ctx context.Context, domain uint32, port ChannelPort, hint BufferHint) (ChannelConn, error)
}
