package conduit

import (
	"errors"

	"conduit/pkg/transport"
)

// Flow is the unified bidirectional connection handle. Its transport kind
// is fixed at creation; the Flow exclusively owns the native handle and
// Close is the only way to release it. Read reports io.EOF once the peer
// has finished sending; stream flows may additionally surface
// transport.ErrRefused/ErrTimeout wraps, channel flows never do — every
// other failure passes through with its original message.
type Flow struct {
	kind    transport.Kind
	stream  transport.StreamConn
	channel transport.ChannelConn
}

func newStreamFlow(c transport.StreamConn) *Flow {
	return &Flow{kind: transport.KindStream, stream: c}
}

func newChannelFlow(c transport.ChannelConn) *Flow {
	return &Flow{kind: transport.KindChannel, channel: c}
}

var errNoTransport = errors.New("conduit: flow has no transport")

// Kind reports which transport backs this flow.
func (f *Flow) Kind() transport.Kind { return f.kind }

// Read returns the next chunk of the byte stream, in peer write order.
func (f *Flow) Read() ([]byte, error) {
	switch f.kind {
	case transport.KindStream:
		return f.stream.Read()
	case transport.KindChannel:
		return f.channel.Read()
	default:
		return nil, errNoTransport
	}
}

// Write sends p in full.
func (f *Flow) Write(p []byte) error {
	switch f.kind {
	case transport.KindStream:
		return f.stream.Write(p)
	case transport.KindChannel:
		return f.channel.Write(p)
	default:
		return errNoTransport
	}
}

// Writev sends all buffers in order.
func (f *Flow) Writev(bufs [][]byte) error {
	switch f.kind {
	case transport.KindStream:
		return f.stream.Writev(bufs)
	case transport.KindChannel:
		return f.channel.Writev(bufs)
	default:
		return errNoTransport
	}
}

// Close releases the native handle. It is best-effort and returns nothing;
// for channel flows the peer is notified but keeps anything already queued
// readable. Callers close a flow exactly once and stop using it afterwards.
func (f *Flow) Close() {
	switch f.kind {
	case transport.KindStream:
		f.stream.Close()
	case transport.KindChannel:
		f.channel.Close()
	}
}
