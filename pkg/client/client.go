// Package client implements a duplex point-to-point frame stream over one
// TCP connection.
//
// A Client owns at most one session at a time. Connect dials the endpoint
// and starts a sender goroutine, which pulls outgoing frames from a Producer
// hook, and a receiver goroutine, which validates incoming frames and hands
// them to a Consumer hook. Either side may end the session by sending the
// termination frame ("quit", empty payload).
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mocapstream/pkg/protocol"
	"mocapstream/pkg/protocol/stream"
	"mocapstream/pkg/repository"
	"mocapstream/pkg/transport/tcp"
)

// ErrWrite wraps failed or short frame writes reported by the sender.
var ErrWrite = errors.New("client: write failed")

const quitWriteTimeout = time.Second

// quitFrame is the encoded termination frame.
var quitFrame = func() []byte {
	f := protocol.Frame{Header: protocol.Sentinel()}
	b, err := f.EncodeFrame()
	if err != nil {
		panic(err)
	}
	return b
}()

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Client streams frames to and from a single peer.
type Client[R Repository] struct {
	endpoint   string
	maxPayload uint32
	repo       R
	opts       options
	log        *zap.Logger

	mu   sync.Mutex // serializes Connect and Disconnect
	sess atomic.Pointer[session[R]]

	stats counters
}

// New returns an unconnected client for endpoint ("host:port"). maxPayload
// bounds payload sizes in both directions; zero selects DefaultMaxPayload.
func New[R Repository](endpoint string, maxPayload uint32, repo R, opts ...Option) *Client[R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayload
	}
	if o.logger == nil {
		o.logger = zap.L()
	}
	if o.dialer == nil {
		o.dialer = &tcp.Dialer{Timeout: o.dialTimeout, NoDelay: true}
	}
	return &Client[R]{
		endpoint:   endpoint,
		maxPayload: maxPayload,
		repo:       repo,
		opts:       o,
		log:        o.logger.With(zap.String("endpoint", endpoint)),
	}
}

// Connect opens the connection and starts both loops. An existing session,
// live or already ended by the peer, is fully disconnected first. Either
// hook may be nil. On error no connection is left open and the client stays
// disconnected; establishment errors wrap transport.ErrAddressFormat,
// ErrHostResolution, ErrSocket or ErrConnect.
//
// ctx bounds connection establishment only; use Disconnect to end the
// session.
func (c *Client[R]) Connect(ctx context.Context, producer Producer[R], consumer Consumer[R]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Load() != nil {
		sctx, cancel := c.shutdownContext()
		err := c.disconnectLocked(sctx)
		cancel()
		if err != nil {
			return fmt.Errorf("client: reconnect: %w", err)
		}
	}
	if n := c.opts.frameName; n == "" || n == protocol.NameQuit || len(n) > protocol.MaxNameLen {
		return fmt.Errorf("client: invalid frame name %q", n)
	}

	conn, err := c.opts.dialer.Dial(ctx, c.endpoint)
	if err != nil {
		c.log.Warn("connect failed", zap.Error(err))
		return err
	}

	s := c.newSession(ctx, conn, producer, consumer)
	s.active.Store(true)
	c.sess.Store(s)
	s.wg.Add(2)
	go s.receive()
	go s.send()

	c.stats.sessions.Add(1)
	c.log.Info("connected",
		zap.String("local", conn.LocalAddr().String()),
		zap.Uint32("max_payload", c.maxPayload),
		zap.Bool("producer", producer != nil),
		zap.Bool("consumer", consumer != nil))
	return nil
}

// Disconnect stops both loops, tells the peer we are leaving and releases
// the socket. It is a no-op when already disconnected. The wait is bounded
// only by WithShutdownTimeout.
func (c *Client[R]) Disconnect() { _ = c.Close() }

// Close is Disconnect returning the shutdown error, for use with defer.
func (c *Client[R]) Close() error {
	ctx, cancel := c.shutdownContext()
	defer cancel()
	return c.DisconnectContext(ctx)
}

// DisconnectContext is Disconnect bounded by ctx. If ctx ends before both
// loops return, the socket is closed underneath them and ctx's error is
// returned; a hook that never returns keeps its goroutine alive.
func (c *Client[R]) DisconnectContext(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnectLocked(ctx)
}

func (c *Client[R]) disconnectLocked(ctx context.Context) error {
	s := c.sess.Load()
	if s == nil {
		return nil
	}
	s.active.Store(false)
	s.cancel()
	// wake a receiver blocked in read
	_ = s.conn.SetReadDeadline(time.Now())

	joined := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
	case <-ctx.Done():
		s.teardown(false)
		c.sess.Store(nil)
		err := fmt.Errorf("client: disconnect: loops did not stop: %w", ctx.Err())
		c.report(err)
		return err
	}

	if s.teardown(true) {
		c.log.Info("disconnected")
	} else {
		c.log.Debug("session already closed by peer")
	}
	c.sess.Store(nil)
	return nil
}

// IsWorking reports whether a session is active and its socket open.
func (c *Client[R]) IsWorking() bool {
	s := c.sess.Load()
	return s != nil && s.active.Load() && !s.closed.Load()
}

// Done is closed when the current session ends, whether by Disconnect, the
// peer's termination frame or a fatal stream error. Without a session it
// returns a closed channel.
func (c *Client[R]) Done() <-chan struct{} {
	if s := c.sess.Load(); s != nil {
		return s.ctx.Done()
	}
	return closedCh
}

// Repository returns the store shared with the hooks.
func (c *Client[R]) Repository() R { return c.repo }

func (c *Client[R]) Endpoint() string { return c.endpoint }

func (c *Client[R]) shutdownContext() (context.Context, context.CancelFunc) {
	if c.opts.shutdownTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.opts.shutdownTimeout)
}

// report logs an in-loop error and forwards it to the error handler.
func (c *Client[R]) report(err error) {
	c.log.Warn("stream error", zap.Error(err))
	if c.opts.onError != nil {
		c.opts.onError(err)
	}
}

// session is one connection and its two loops.
type session[R Repository] struct {
	c        *Client[R]
	conn     net.Conn
	rd       *stream.Reader // receiver only
	wr       *stream.Writer // sender only
	shaper   *repository.TokenBucket
	producer Producer[R]
	consumer Consumer[R]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	active atomic.Bool
	closed atomic.Bool
}

func (c *Client[R]) newSession(ctx context.Context, conn net.Conn, p Producer[R], cn Consumer[R]) *session[R] {
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session[R]{
		c:        c,
		conn:     conn,
		rd:       stream.NewReader(conn, c.opts.frameName, c.maxPayload),
		wr:       stream.NewWriter(conn, c.maxPayload),
		producer: p,
		consumer: cn,
		ctx:      sctx,
		cancel:   cancel,
	}
	if c.opts.sendRate > 0 {
		s.shaper = repository.NewTokenBucket(c.opts.sendRate, 0)
	}
	return s
}

// teardown is the only place the socket is shut down and closed. The first
// caller wins; later calls report false and touch nothing. With notifyPeer
// the termination frame is written first, best effort.
func (s *session[R]) teardown(notifyPeer bool) bool {
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}
	s.active.Store(false)
	s.cancel()
	if notifyPeer {
		_ = s.conn.SetWriteDeadline(time.Now().Add(quitWriteTimeout))
		if _, err := s.conn.Write(quitFrame); err != nil {
			s.c.log.Debug("quit frame not sent", zap.Error(err))
		}
	}
	if hc, ok := s.conn.(interface {
		CloseRead() error
		CloseWrite() error
	}); ok {
		_ = hc.CloseWrite()
		_ = hc.CloseRead()
	}
	if err := s.conn.Close(); err != nil {
		s.c.log.Debug("close", zap.Error(err))
	}
	return true
}
