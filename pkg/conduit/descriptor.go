package conduit

import (
	"fmt"
	"net/netip"

	"conduit/pkg/transport"
)

// Client is a fully-typed active-open descriptor: either a stream target
// (address + port) or a channel target (domain + parsed port).
type Client struct {
	kind transport.Kind

	addr netip.Addr
	port uint16

	domain      uint32
	channelPort transport.ChannelPort
}

// StreamClient describes an active open towards addr:port over the stream
// transport. The address is passed through unvalidated; family checks
// happen at connect time.
func StreamClient(addr netip.Addr, port uint16) Client {
	return Client{kind: transport.KindStream, addr: addr, port: port}
}

// ChannelClient describes an active open towards a channel server in the
// given isolation domain.
func ChannelClient(domain uint32, port transport.ChannelPort) Client {
	return Client{kind: transport.KindChannel, domain: domain, channelPort: port}
}

func (c Client) Kind() transport.Kind { return c.kind }

func (c Client) Addr() netip.Addr { return c.addr }

func (c Client) Port() uint16 { return c.port }

func (c Client) Domain() uint32 { return c.domain }

func (c Client) ChannelPort() transport.ChannelPort { return c.channelPort }

func (c Client) String() string {
	switch c.kind {
	case transport.KindStream:
		return fmt.Sprintf("tcp:%s:%d", c.addr, c.port)
	case transport.KindChannel:
		return fmt.Sprintf("vchan:dom%d/%s", c.domain, c.channelPort)
	default:
		return "unknown"
	}
}

// Server is a fully-typed passive-open descriptor: a stream listen port or
// a channel (domain, port) pair.
type Server struct {
	kind transport.Kind

	port uint16

	domain      uint32
	channelPort transport.ChannelPort
}

// StreamServer describes a persistent stream listener on the given port.
func StreamServer(port uint16) Server {
	return Server{kind: transport.KindStream, port: port}
}

// ChannelServer describes a single-accept channel listener.
func ChannelServer(domain uint32, port transport.ChannelPort) Server {
	return Server{kind: transport.KindChannel, domain: domain, channelPort: port}
}

func (s Server) Kind() transport.Kind { return s.kind }

func (s Server) Port() uint16 { return s.port }

func (s Server) Domain() uint32 { return s.domain }

func (s Server) ChannelPort() transport.ChannelPort { return s.channelPort }

func (s Server) String() string {
	switch s.kind {
	case transport.KindStream:
		return fmt.Sprintf("tcp::%d", s.port)
	case transport.KindChannel:
		return fmt.Sprintf("vchan:dom%d/%s", s.domain, s.channelPort)
	default:
		return "unknown"
	}
}
