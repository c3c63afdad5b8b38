package client

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"mocapstream/pkg/protocol"
)

// receive runs the receiver loop. It is the only reader of the socket and
// ends the session itself on the peer's termination frame, on a protocol
// violation and on any read failure.
func (s *session[R]) receive() {
	defer s.wg.Done()
	c := s.c
	for s.active.Load() {
		f, err := s.rd.Next()
		if err != nil {
			if !s.active.Load() || s.closed.Load() {
				return
			}
			s.fail(err, f)
			return
		}
		if f.Header.IsSentinel() {
			c.log.Info("peer closed the stream")
			s.teardown(false)
			return
		}

		c.stats.framesReceived.Add(1)
		c.stats.bytesReceived.Add(uint64(protocol.HeaderSize + len(f.Payload)))
		if s.consumer == nil {
			continue
		}
		if err := s.consumer.Consume(s.ctx, f, c.repo); err != nil {
			c.stats.hookErrors.Add(1)
			c.report(fmt.Errorf("client: consumer: %w", err))
		}
	}
}

// fail classifies a receive error and tears the session down. A violating
// peer is told we are leaving; a broken stream is just closed.
func (s *session[R]) fail(err error, f *protocol.Frame) {
	c := s.c
	switch {
	case errors.Is(err, protocol.ErrShortRead):
		c.stats.readErrors.Add(1)
		c.report(err)
		s.teardown(false)
	case errors.Is(err, io.EOF):
		c.log.Info("peer closed the connection without a termination frame")
		s.teardown(false)
	case errors.Is(err, protocol.ErrProtocolViolation), errors.Is(err, protocol.ErrPayloadTooLarge):
		c.stats.violations.Add(1)
		if f != nil {
			c.log.Warn("protocol violation",
				zap.String("name", f.Header.Name),
				zap.Uint32("payload_size", f.Header.PayloadSize))
		}
		c.report(err)
		s.teardown(true)
	default:
		c.stats.readErrors.Add(1)
		c.report(fmt.Errorf("client: read: %w", err))
		s.teardown(false)
	}
	if ce := c.log.Check(zap.DebugLevel, "receiver stopped"); ce != nil {
		ce.Write(zap.Uint64("frames", c.stats.framesReceived.Load()))
	}
}
