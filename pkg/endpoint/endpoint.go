// Package endpoint describes transport-neutral connection targets, prior
// to resolution into concrete conduit descriptors. Endpoints are produced
// by external resolvers or configuration; this package performs no name
// resolution and no I/O.
package endpoint

import (
	"fmt"
	"net/netip"
)

// Kind tags the shape of an Endpoint.
type Kind int

const (
	// KindUnknown carries a diagnostic explaining why resolution upstream
	// could not produce anything better.
	KindUnknown Kind = iota
	// KindStream is a conventional IP address + port target.
	KindStream
	// KindChannel is an inter-domain channel target: isolation domain id
	// plus a textual port identifier.
	KindChannel
	// KindUnix is a unix domain socket path. Not connectable through this
	// layer; kept so resolution can reject it with a precise error.
	KindUnix
	// KindTLS is a secure stream target. Not connectable through this layer.
	KindTLS
)

func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindChannel:
		return "channel"
	case KindUnix:
		return "unix"
	case KindTLS:
		return "tls"
	default:
		return "unknown"
	}
}

// Endpoint is a tagged, transport-neutral description of somewhere to
// connect to or listen on. Only the fields matching Kind are meaningful.
type Endpoint struct {
	kind Kind

	addr netip.Addr
	port uint16

	domain      uint32
	channelPort string

	path   string
	host   string
	reason string
}

// Stream builds an address+port endpoint.
func Stream(addr netip.Addr, port uint16) Endpoint {
	return Endpoint{kind: KindStream, addr: addr, port: port}
}

// Channel builds an inter-domain channel endpoint. The port identifier is
// kept as raw text; parsing happens at resolution.
func Channel(domain uint32, port string) Endpoint {
	return Endpoint{kind: KindChannel, domain: domain, channelPort: port}
}

// Unix builds a unix domain socket endpoint.
func Unix(path string) Endpoint {
	return Endpoint{kind: KindUnix, path: path}
}

// TLS builds a secure stream endpoint for the given host.
func TLS(host string) Endpoint {
	return Endpoint{kind: KindTLS, host: host}
}

// Unknown builds an endpoint carrying an upstream diagnostic.
func Unknown(reason string) Endpoint {
	return Endpoint{kind: KindUnknown, reason: reason}
}

func (e Endpoint) Kind() Kind          { return e.kind }
func (e Endpoint) Addr() netip.Addr    { return e.addr }
func (e Endpoint) Port() uint16        { return e.port }
func (e Endpoint) Domain() uint32      { return e.domain }
func (e Endpoint) ChannelPort() string { return e.channelPort }
func (e Endpoint) Path() string        { return e.path }
func (e Endpoint) Host() string        { return e.host }
func (e Endpoint) Reason() string      { return e.reason }

func (e Endpoint) String() string {
	switch e.kind {
	case KindStream:
		return fmt.Sprintf("tcp:%s:%d", e.addr, e.port)
	case KindChannel:
		return fmt.Sprintf("vchan:dom%d/%s", e.domain, e.channelPort)
	case KindUnix:
		return "unix:" + e.path
	case KindTLS:
		return "tls:" + e.host
	default:
		return "unknown:" + e.reason
	}
}
