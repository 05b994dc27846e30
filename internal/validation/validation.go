// Package validation provides centralized input validation for trackrec.
package validation

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"unicode"
)

// =============================================================================
// Endpoint Validation
// =============================================================================

// Transport is a ZeroMQ transport scheme.
type Transport string

const (
	TransportTCP    Transport = "tcp"
	TransportIPC    Transport = "ipc"
	TransportInproc Transport = "inproc"
)

// Endpoint is a parsed ZeroMQ endpoint such as "tcp://*:5555".
type Endpoint struct {
	Transport Transport
	Address   string

	// Host and Port are set for tcp endpoints only.
	Host string
	Port int
}

// ParseEndpoint parses a ZeroMQ endpoint string.
func ParseEndpoint(s string) (*Endpoint, error) {
	if s == "" {
		return nil, fmt.Errorf("empty endpoint")
	}

	scheme, addr, ok := strings.Cut(s, "://")
	if !ok {
		return nil, fmt.Errorf("endpoint %q: missing transport (expected tcp://, ipc:// or inproc://)", s)
	}
	if addr == "" {
		return nil, fmt.Errorf("endpoint %q: empty address", s)
	}

	ep := &Endpoint{Transport: Transport(scheme), Address: addr}

	switch ep.Transport {
	case TransportTCP:
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", s, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("endpoint %q: invalid port %q", s, portStr)
		}
		if host == "" {
			return nil, fmt.Errorf("endpoint %q: empty host (use * to bind all interfaces)", s)
		}
		ep.Host = host
		ep.Port = port
	case TransportIPC, TransportInproc:
		if strings.IndexFunc(addr, unicode.IsSpace) >= 0 {
			return nil, fmt.Errorf("endpoint %q: address contains whitespace", s)
		}
	default:
		return nil, fmt.Errorf("endpoint %q: unsupported transport %q", s, scheme)
	}

	return ep, nil
}

// String returns the endpoint in ZeroMQ notation.
func (e *Endpoint) String() string {
	return string(e.Transport) + "://" + e.Address
}

// IsWildcard reports whether a tcp endpoint binds all interfaces.
func (e *Endpoint) IsWildcard() bool {
	return e.Transport == TransportTCP && e.Host == "*"
}

// ValidateBindEndpoint validates an endpoint a reply socket can bind to.
func ValidateBindEndpoint(s string) error {
	_, err := ParseEndpoint(s)
	return err
}

// ValidateDialEndpoint validates an endpoint a request socket can connect
// to. Wildcard hosts are only meaningful when binding.
func ValidateDialEndpoint(s string) error {
	ep, err := ParseEndpoint(s)
	if err != nil {
		return err
	}
	if ep.IsWildcard() {
		return fmt.Errorf("endpoint %q: cannot connect to wildcard host", s)
	}
	return nil
}
