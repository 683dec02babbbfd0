package connectivity

import (
	"context"
	"net"
	"time"
)

// DefaultTarget is a public DNS resolver reachable on TCP/53 from most networks.
const DefaultTarget = "8.8.8.8:53"

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 3 * time.Second

// Prober reports whether the internet is reachable at the moment of the call.
type Prober interface {
	Online(ctx context.Context) bool
}

// ProbeFunc adapts a function to the Prober interface.
type ProbeFunc func(ctx context.Context) bool

// Online implements Prober.
func (f ProbeFunc) Online(ctx context.Context) bool { return f(ctx) }

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// TCPProber opens a TCP connection to Address and closes it immediately.
type TCPProber struct {
	Address string
	Timeout time.Duration
	Dial    DialFunc
}

// NewTCPProber returns a prober for address with the given timeout, falling
// back to DefaultTarget and DefaultTimeout for zero values.
func NewTCPProber(address string, timeout time.Duration) *TCPProber {
	return &TCPProber{Address: address, Timeout: timeout}
}

// Online returns true when the connection succeeds within the timeout. Any
// failure (refusal, timeout, DNS error, cancelled context) yields false.
func (p *TCPProber) Online(ctx context.Context) (online bool) {
	defer func() {
		if recover() != nil {
			online = false
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}

	address := p.Address
	if address == "" {
		address = DefaultTarget
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dial := p.Dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dial(probeCtx, "tcp", address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
