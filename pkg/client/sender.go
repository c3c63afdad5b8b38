package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"mocapstream/pkg/protocol"
)

// send runs the sender loop until the session is cancelled or the socket is
// closed. Write failures are reported and the loop carries on with the next
// frame.
func (s *session[R]) send() {
	defer s.wg.Done()
	c := s.c
	if s.producer == nil {
		<-s.ctx.Done()
		return
	}

	var idle *time.Timer
	defer func() {
		if idle != nil {
			idle.Stop()
		}
	}()
	wait := func() {
		if idle == nil {
			idle = time.NewTimer(c.opts.idlePoll)
		} else {
			idle.Reset(c.opts.idlePoll)
		}
		select {
		case <-s.ctx.Done():
			if !idle.Stop() {
				<-idle.C
			}
		case <-c.repo.Pending():
			if !idle.Stop() {
				<-idle.C
			}
		case <-idle.C:
		}
	}

	f := protocol.Frame{Payload: make([]byte, 0, c.maxPayload)}
	for s.active.Load() && s.ctx.Err() == nil {
		f.Reset(c.opts.frameName, c.maxPayload)
		if err := s.producer.Produce(s.ctx, &f, c.repo); err != nil {
			c.stats.hookErrors.Add(1)
			c.report(fmt.Errorf("client: producer: %w", err))
			wait()
			continue
		}
		if len(f.Payload) == 0 {
			wait()
			continue
		}
		if f.Header.Name == "" {
			f.Header.Name = c.opts.frameName
		}
		if s.shaper != nil {
			if err := s.shaper.Wait(s.ctx, int64(protocol.HeaderSize+len(f.Payload))); err != nil {
				return
			}
		}

		if err := s.wr.Send(&f); err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			if errors.Is(err, protocol.ErrPayloadTooLarge) || errors.Is(err, protocol.ErrNameTooLong) {
				c.stats.hookErrors.Add(1)
				c.report(fmt.Errorf("client: producer: %w", err))
				continue
			}
			c.stats.writeErrors.Add(1)
			c.report(fmt.Errorf("%w: %w", ErrWrite, err))
			wait()
			continue
		}
		c.stats.framesSent.Add(1)
		c.stats.bytesSent.Add(uint64(protocol.HeaderSize + len(f.Payload)))
		if ce := c.log.Check(zap.DebugLevel, "frame sent"); ce != nil {
			ce.Write(zap.String("name", f.Header.Name), zap.Int("size", len(f.Payload)))
		}
	}
}
