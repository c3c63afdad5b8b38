package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Stages of connection establishment.
var (
	ErrAddressFormat  = errors.New("malformed endpoint, want host:port")
	ErrHostResolution = errors.New("host resolution failed")
	ErrSocket         = errors.New("socket creation failed")
	ErrConnect        = errors.New("connect failed")
)

// DialError reports which establishment stage failed for an endpoint.
type DialError struct {
	Endpoint string
	Stage    error // one of the Err* stage values above
	Err      error // underlying cause, may be nil
}

func (e *DialError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dial %q: %v", e.Endpoint, e.Stage)
	}
	return fmt.Sprintf("dial %q: %v: %v", e.Endpoint, e.Stage, e.Err)
}

func (e *DialError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage}
	}
	return []error{e.Stage, e.Err}
}

// Endpoint is a parsed "<host>:<port>" string.
type Endpoint struct {
	Host string
	Port uint16
}

// ParseEndpoint splits s on its last ':'. It performs no I/O.
func ParseEndpoint(s string) (Endpoint, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return Endpoint{}, &DialError{Endpoint: s, Stage: ErrAddressFormat}
	}
	host, port := s[:i], s[i+1:]
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	if host == "" {
		return Endpoint{}, &DialError{Endpoint: s, Stage: ErrAddressFormat, Err: errors.New("empty host")}
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Endpoint{}, &DialError{Endpoint: s, Stage: ErrAddressFormat, Err: fmt.Errorf("port %q: %w", port, err)}
	}
	return Endpoint{Host: host, Port: uint16(p)}, nil
}

func (e Endpoint) String() string { return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port))) }

// Dialer opens the single stream connection a client uses.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (net.Conn, error)
}
