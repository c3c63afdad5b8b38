package tcp

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"time"

	"mocapstream/pkg/transport"
)

// Dialer resolves an endpoint and opens a TCP stream to it.
type Dialer struct {
	// Resolver is used for host lookup; nil means net.DefaultResolver.
	Resolver *net.Resolver
	// Timeout bounds resolution plus connect; zero means only ctx applies.
	Timeout time.Duration
	// KeepAlive period for the connection; zero uses the system default,
	// negative disables it.
	KeepAlive time.Duration
	// NoDelay disables Nagle's algorithm; telemetry frames are small and
	// latency sensitive.
	NoDelay bool
}

func New() *Dialer { return &Dialer{NoDelay: true} }

var _ transport.Dialer = (*Dialer)(nil)

// Dial parses, resolves and connects to endpoint. Every failure is a
// *transport.DialError wrapping the stage that failed; no connection is
// left open on error.
func (d *Dialer) Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	ep, err := transport.ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	addrs, err := d.resolve(ctx, ep.Host)
	if err != nil {
		return nil, &transport.DialError{Endpoint: endpoint, Stage: transport.ErrHostResolution, Err: err}
	}

	nd := &net.Dialer{KeepAlive: d.KeepAlive}
	port := strconv.Itoa(int(ep.Port))
	var lastErr error
	for _, ip := range addrs {
		c, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), port))
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		tc := c.(*net.TCPConn)
		if d.NoDelay {
			_ = tc.SetNoDelay(true)
		}
		return tc, nil
	}
	stage := transport.ErrConnect
	var se *os.SyscallError
	if errors.As(lastErr, &se) && se.Syscall == "socket" {
		stage = transport.ErrSocket
	}
	return nil, &transport.DialError{Endpoint: endpoint, Stage: stage, Err: lastErr}
}

// resolve returns the host's addresses with IPv4 first.
func (d *Dialer) resolve(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	r := d.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	ias, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ias) == 0 {
		return nil, errors.New("no addresses")
	}
	out := make([]net.IP, 0, len(ias))
	for _, ia := range ias {
		if ia.IP.To4() != nil {
			out = append(out, ia.IP)
		}
	}
	for _, ia := range ias {
		if ia.IP.To4() == nil {
			out = append(out, ia.IP)
		}
	}
	return out, nil
}
