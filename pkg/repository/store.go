// Package repository is the default data-staging store shared by an
// application and the stream client's send and receive loops.
//
// Outgoing payloads are queued by the application with Push and picked up
// by the sender through the Produce hook; received payloads are copied in
// by the Consume hook and read back with Next, Latest or Drain. Every
// method is safe for concurrent use.
package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Options configures a Store.
type Options struct {
	OutboxCapacity int    // pending outgoing payloads (default 64)
	InboxCapacity  int    // retained received payloads (default 64)
	MaxPayload     uint32 // reject larger outgoing payloads (0 = no limit)
}

func (o *Options) withDefaults() Options {
	res := *o
	if res.OutboxCapacity <= 0 {
		res.OutboxCapacity = 64
	}
	if res.InboxCapacity <= 0 {
		res.InboxCapacity = 64
	}
	return res
}

// Store holds outgoing and received payloads.
type Store struct {
	opts    Options
	out     *queue
	in      *queue
	pending chan struct{}
	once    sync.Once

	mPushed     atomic.Uint64
	mPopped     atomic.Uint64
	mOutDropped atomic.Uint64
	mDelivered  atomic.Uint64
	mInDropped  atomic.Uint64
	mBytesOut   atomic.Uint64
	mBytesIn    atomic.Uint64
}

// Metrics is a snapshot of store counters.
type Metrics struct {
	Pushed      uint64
	Popped      uint64
	OutDropped  uint64
	OutPending  int
	Delivered   uint64
	InDropped   uint64
	InRetained  int
	BytesQueued uint64
	BytesIn     uint64
}

func New(opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		opts:    opts,
		out:     newQueue(opts.OutboxCapacity),
		in:      newQueue(opts.InboxCapacity),
		pending: make(chan struct{}, 1),
	}
}

// Push queues a copy of payload for sending. When the outbox is full the
// oldest pending payload is dropped.
func (s *Store) Push(payload []byte) error {
	if s.opts.MaxPayload != 0 && uint64(len(payload)) > uint64(s.opts.MaxPayload) {
		return fmt.Errorf("repository: payload %d bytes exceeds %d", len(payload), s.opts.MaxPayload)
	}
	if len(payload) == 0 {
		return fmt.Errorf("repository: empty payload")
	}
	if s.out.push(append([]byte(nil), payload...)) {
		s.mOutDropped.Add(1)
	}
	s.mPushed.Add(1)
	s.mBytesOut.Add(uint64(len(payload)))
	select {
	case s.pending <- struct{}{}:
	default:
	}
	return nil
}

// Pending delivers a value after Push, so a sender that found the outbox
// empty can sleep until there is work.
func (s *Store) Pending() <-chan struct{} { return s.pending }

// Pop removes the oldest outgoing payload without blocking.
func (s *Store) Pop() ([]byte, bool) {
	b, ok := s.out.tryPop()
	if ok {
		s.mPopped.Add(1)
	}
	return b, ok
}

// Deliver stores a copy of a received payload. The caller's slice is not
// retained.
func (s *Store) Deliver(payload []byte) {
	if s.in.push(append([]byte(nil), payload...)) {
		s.mInDropped.Add(1)
	}
	s.mDelivered.Add(1)
	s.mBytesIn.Add(uint64(len(payload)))
}

// Next blocks until a received payload is available and removes it.
func (s *Store) Next(ctx context.Context) ([]byte, error) { return s.in.pop(ctx) }

// Latest returns the most recently received payload without removing it.
func (s *Store) Latest() ([]byte, bool) { return s.in.peekLast() }

// Drain removes and returns all retained received payloads, oldest first.
func (s *Store) Drain() [][]byte { return s.in.drain() }

func (s *Store) Metrics() Metrics {
	return Metrics{
		Pushed:      s.mPushed.Load(),
		Popped:      s.mPopped.Load(),
		OutDropped:  s.mOutDropped.Load(),
		OutPending:  s.out.size(),
		Delivered:   s.mDelivered.Load(),
		InDropped:   s.mInDropped.Load(),
		InRetained:  s.in.size(),
		BytesQueued: s.mBytesOut.Load(),
		BytesIn:     s.mBytesIn.Load(),
	}
}

// Close makes Next return ErrClosed once nothing is retained.
func (s *Store) Close() {
	s.once.Do(func() {
		s.out.close()
		s.in.close()
	})
}
