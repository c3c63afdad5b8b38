// Package transport holds the endpoint format and the connection
// establishment errors shared by the stream client and its dialers.
//
// Key concepts:
//   - Endpoint: "<host>:<port>", split on the last ':' so bracketed IPv6
//     literals work; the port is decimal.
//   - Dial errors: every failure to establish a connection wraps exactly one
//     of ErrAddressFormat, ErrHostResolution, ErrSocket or ErrConnect, so
//     callers can branch with errors.Is regardless of the concrete dialer.
package transport
