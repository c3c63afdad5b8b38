package client

import (
	"context"

	"mocapstream/pkg/protocol"
)

// Repository is the store shared by the application and both loops. The
// client never reads or writes it; it only hands it to the hooks and waits
// on Pending when the producer has nothing to send. Implementations must
// tolerate concurrent use from the owner and either loop.
type Repository interface {
	// Pending should deliver a value whenever outgoing data may have become
	// available. A nil channel makes the sender fall back to idle polling.
	Pending() <-chan struct{}
}

// Producer fills outgoing frames. It is called from the sender goroutine
// with a staging frame whose name and capacity hint are preset and whose
// payload is empty; leaving the payload empty means nothing to send.
type Producer[R Repository] interface {
	Produce(ctx context.Context, f *protocol.Frame, repo R) error
}

// Consumer handles received frames. It is called from the receiver
// goroutine; f.Payload aliases a buffer that is reused for the next frame,
// so anything kept must be copied.
type Consumer[R Repository] interface {
	Consume(ctx context.Context, f *protocol.Frame, repo R) error
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc[R Repository] func(ctx context.Context, f *protocol.Frame, repo R) error

func (fn ProducerFunc[R]) Produce(ctx context.Context, f *protocol.Frame, repo R) error {
	return fn(ctx, f, repo)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc[R Repository] func(ctx context.Context, f *protocol.Frame, repo R) error

func (fn ConsumerFunc[R]) Consume(ctx context.Context, f *protocol.Frame, repo R) error {
	return fn(ctx, f, repo)
}
