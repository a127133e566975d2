package conduit

import (
	"context"
	"fmt"
	"net/netip"

	"go.uber.org/zap"

	"conduit/pkg/transport"
)

// Connect performs an active open for the given descriptor and returns the
// established flow. Channel opens never consult the bound stack; stream
// opens fail fast on configuration problems before any native I/O. Native
// failures are wrapped with the descriptor for context but keep the
// transport's own error reachable through errors.Is/As. Connect never
// retries.
func (c *Context) Connect(ctx context.Context, d Client) (*Flow, error) {
	switch d.kind {
	case transport.KindChannel:
		if c.channel == nil {
			return nil, errChannelUnavailable
		}
		conn, err := c.channel.OpenClient(ctx, d.domain, d.channelPort)
		if err != nil {
			return nil, fmt.Errorf("conduit: connect %s: %w", d, err)
		}
		c.log.Debug("channel flow connected", zap.String("client", d.String()))
		return newChannelFlow(conn), nil

	case transport.KindStream:
		if !supportedFamily(d.addr) {
			return nil, configErrorf("unsupported address family: %s", d.addr)
		}
		if c.stack == nil {
			return nil, errNoStack
		}
		conn, err := c.stack.CreateConnection(ctx, d.addr, d.port)
		if err != nil {
			return nil, fmt.Errorf("conduit: connect %s: %w", d, err)
		}
		c.log.Debug("stream flow connected", zap.String("client", d.String()))
		return newStreamFlow(conn), nil

	default:
		return nil, configErrorf("client descriptor has no transport kind")
	}
}

// supportedFamily limits stream connects to IPv4 targets, including
// 4-in-6 mapped addresses.
func supportedFamily(addr netip.Addr) bool {
	return addr.Is4() || addr.Is4In6()
}
