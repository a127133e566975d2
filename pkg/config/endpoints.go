package config

import (
	"fmt"
	"net/netip"

	"conduit/pkg/endpoint"
)

// EndpointConfig describes one connection target or listener.
// Example YAML:
// listen:
//   - kind: tcp
//     port: 8080
//   - kind: vchan
//     domain: 7
//     vchan_port: control
// dial:
//   - kind: tcp
//     address: "10.0.0.2"
//     port: 8080
type EndpointConfig struct {
	Kind string `mapstructure:"kind"` // tcp | vchan | unix | tls

	Address string `mapstructure:"address"`
	Port    uint16 `mapstructure:"port"`

	Domain    uint32 `mapstructure:"domain"`
	VchanPort string `mapstructure:"vchan_port"`

	Path string `mapstructure:"path"`
	Host string `mapstructure:"host"`
}

// Endpoint maps the stanza to a transport-neutral endpoint. Unrecognized
// kinds become Unknown endpoints so the rejection happens at resolution,
// with the diagnostic preserved.
func (e EndpointConfig) Endpoint() (endpoint.Endpoint, error) {
	switch e.Kind {
	case "tcp":
		addr := netip.IPv4Unspecified()
		if e.Address != "" {
			a, err := netip.ParseAddr(e.Address)
			if err != nil {
				return endpoint.Endpoint{}, fmt.Errorf("endpoint address %q: %w", e.Address, err)
			}
			addr = a
		}
		return endpoint.Stream(addr, e.Port), nil
	case "vchan":
		return endpoint.Channel(e.Domain, e.VchanPort), nil
	case "unix":
		return endpoint.Unix(e.Path), nil
	case "tls":
		return endpoint.TLS(e.Host), nil
	default:
		return endpoint.Unknown(fmt.Sprintf("unrecognized endpoint kind %q", e.Kind)), nil
	}
}
