package repository

import (
	"context"

	"mocapstream/pkg/protocol"
)

// Produce moves the oldest outgoing payload into f, leaving f empty when
// there is nothing to send. It has the shape of a client producer hook.
func Produce(_ context.Context, f *protocol.Frame, s *Store) error {
	b, ok := s.Pop()
	if !ok {
		return nil
	}
	return f.SetPayload(b)
}

// Consume copies a received frame's payload into the store. It has the
// shape of a client consumer hook.
func Consume(_ context.Context, f *protocol.Frame, s *Store) error {
	s.Deliver(f.Payload)
	return nil
}
