package conduit

import (
	"conduit/pkg/endpoint"
	"conduit/pkg/transport"
)

// ResolveClient validates a transport-neutral endpoint and maps it to a
// typed client descriptor. It performs no I/O and no reachability checks:
// stream endpoints pass address and port through unchanged, channel
// endpoints get their port identifier parsed by the linked channel
// transport, everything else is rejected.
func (c *Context) ResolveClient(ep endpoint.Endpoint) (Client, error) {
	switch ep.Kind() {
	case endpoint.KindStream:
		return StreamClient(ep.Addr(), ep.Port()), nil
	case endpoint.KindChannel:
		port, err := c.parseChannelPort(ep)
		if err != nil {
			return Client{}, err
		}
		return ChannelClient(ep.Domain(), port), nil
	default:
		return Client{}, rejectEndpoint(ep)
	}
}

// ResolveServer is the passive-open counterpart of ResolveClient. For
// stream endpoints only the port is kept; the address, if any, is
// discarded.
func (c *Context) ResolveServer(ep endpoint.Endpoint) (Server, error) {
	switch ep.Kind() {
	case endpoint.KindStream:
		return StreamServer(ep.Port()), nil
	case endpoint.KindChannel:
		port, err := c.parseChannelPort(ep)
		if err != nil {
			return Server{}, err
		}
		return ChannelServer(ep.Domain(), port), nil
	default:
		return Server{}, rejectEndpoint(ep)
	}
}

func (c *Context) parseChannelPort(ep endpoint.Endpoint) (transport.ChannelPort, error) {
	if c.channel == nil {
		return "", errChannelUnavailable
	}
	port, err := c.channel.ParsePort(ep.ChannelPort())
	if err != nil {
		return "", &ConfigurationError{reason: err.Error()}
	}
	return port, nil
}

func rejectEndpoint(ep endpoint.Endpoint) error {
	switch ep.Kind() {
	case endpoint.KindUnix:
		return configErrorf("unix domain sockets are not valid in this environment")
	case endpoint.KindTLS:
		return configErrorf("tls endpoints are currently unsupported")
	default:
		return configErrorf("endpoint resolution failed: %s", ep.Reason())
	}
}
