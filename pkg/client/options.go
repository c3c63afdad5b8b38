package client

import (
	"time"

	"go.uber.org/zap"

	"mocapstream/pkg/protocol"
	"mocapstream/pkg/transport"
)

// DefaultMaxPayload is used when New is given a zero maximum.
const DefaultMaxPayload = 64 * 1024

// Option configures a Client.
type Option func(*options)

type options struct {
	frameName       string
	dialTimeout     time.Duration
	shutdownTimeout time.Duration
	idlePoll        time.Duration
	sendRate        int64
	logger          *zap.Logger
	onError         func(error)
	dialer          transport.Dialer
}

func defaultOptions() options {
	return options{
		frameName:   protocol.NameMocap,
		dialTimeout: 5 * time.Second,
		idlePoll:    50 * time.Millisecond,
	}
}

// WithFrameName sets the single data frame kind exchanged with the peer.
func WithFrameName(name string) Option { return func(o *options) { o.frameName = name } }

// WithDialTimeout bounds resolution plus connect. Zero leaves only the
// context passed to Connect.
func WithDialTimeout(d time.Duration) Option { return func(o *options) { o.dialTimeout = d } }

// WithShutdownTimeout bounds Disconnect and Close. Zero waits for the loops
// without limit.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) { o.shutdownTimeout = d }
}

// WithIdlePoll sets how long the sender sleeps when the producer had
// nothing to send and the repository gave no signal.
func WithIdlePoll(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idlePoll = d
		}
	}
}

// WithSendRate caps outgoing bytes per second (header included). Zero
// disables shaping.
func WithSendRate(bytesPerSec int64) Option { return func(o *options) { o.sendRate = bytesPerSec } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithErrorHandler registers a callback for errors raised inside the send
// and receive loops, which have no caller to return them to. It runs on the
// loop goroutine and must not block.
func WithErrorHandler(fn func(error)) Option { return func(o *options) { o.onError = fn } }

// WithDialer replaces the TCP dialer, mainly for tests.
func WithDialer(d transport.Dialer) Option { return func(o *options) { o.dialer = d } }
