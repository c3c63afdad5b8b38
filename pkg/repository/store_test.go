package repository

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mocapstream/pkg/protocol"
)

func TestPushPopCopies(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	in := []byte("abc")
	if err := s.Push(in); err != nil {
		t.Fatalf("push: %v", err)
	}
	in[0] = 'X'
	out, ok := s.Pop()
	if !ok || string(out) != "abc" {
		t.Fatalf("pop mismatch: ok=%v v=%q", ok, out)
	}
	if _, ok := s.Pop(); ok {
		t.Fatalf("expected empty outbox")
	}
}

func TestPushSignalsPending(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	select {
	case <-s.Pending():
		t.Fatalf("unexpected pending signal on empty store")
	default:
	}
	_ = s.Push([]byte{1})
	_ = s.Push([]byte{2})
	select {
	case <-s.Pending():
	case <-time.After(time.Second):
		t.Fatalf("expected pending signal after push")
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	s := New(Options{OutboxCapacity: 2})
	defer s.Close()

	for i := byte(1); i <= 3; i++ {
		if err := s.Push([]byte{i}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	if a[0] != 2 || b[0] != 3 {
		t.Fatalf("expected oldest dropped, got %v %v", a, b)
	}
	if m := s.Metrics(); m.OutDropped != 1 || m.Pushed != 3 || m.Popped != 2 {
		t.Fatalf("metrics mismatch: %#v", m)
	}
}

func TestPushLimits(t *testing.T) {
	s := New(Options{MaxPayload: 4})
	defer s.Close()
	if err := s.Push(make([]byte, 5)); err == nil {
		t.Fatalf("expected oversized payload to be rejected")
	}
	if err := s.Push(nil); err == nil {
		t.Fatalf("expected empty payload to be rejected")
	}
}

func TestDeliverNextLatestDrain(t *testing.T) {
	s := New(Options{InboxCapacity: 3})
	defer s.Close()

	buf := []byte{7, 7}
	s.Deliver(buf)
	buf[0] = 0
	s.Deliver([]byte{8})

	latest, ok := s.Latest()
	if !ok || latest[0] != 8 {
		t.Fatalf("latest mismatch: %v %v", ok, latest)
	}
	got, err := s.Next(context.Background())
	if err != nil || !bytes.Equal(got, []byte{7, 7}) {
		t.Fatalf("next mismatch: %v %v", got, err)
	}
	rest := s.Drain()
	if len(rest) != 1 || rest[0][0] != 8 {
		t.Fatalf("drain mismatch: %v", rest)
	}
	if m := s.Metrics(); m.Delivered != 2 || m.BytesIn != 3 || m.InRetained != 0 {
		t.Fatalf("metrics mismatch: %#v", m)
	}
}

func TestNextBlocksUntilDeliver(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	var got []byte
	var err error
	go func() {
		defer wg.Done()
		got, err = s.Next(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	s.Deliver([]byte("late"))
	wg.Wait()
	if err != nil || string(got) != "late" {
		t.Fatalf("next = %q, %v", got, err)
	}
}

func TestNextHonoursContextAndClose(t *testing.T) {
	s := New(Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := s.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Next(context.Background())
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	s.Close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Next did not wake on Close")
	}
}

func TestProduceConsumeHooks(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	var f protocol.Frame
	f.Reset(protocol.NameMocap, 16)
	if err := Produce(context.Background(), &f, s); err != nil || len(f.Payload) != 0 {
		t.Fatalf("empty outbox must leave frame empty: %v %v", err, f.Payload)
	}

	_ = s.Push([]byte("sample"))
	if err := Produce(context.Background(), &f, s); err != nil {
		t.Fatalf("produce: %v", err)
	}
	if string(f.Payload) != "sample" || f.Header.PayloadSize != 6 {
		t.Fatalf("frame mismatch: %#v", f)
	}

	if err := Consume(context.Background(), &f, s); err != nil {
		t.Fatalf("consume: %v", err)
	}
	f.Payload[0] = 'X'
	if got, _ := s.Latest(); string(got) != "sample" {
		t.Fatalf("consume must copy the payload, got %q", got)
	}

	_ = s.Push(make([]byte, 17))
	if err := Produce(context.Background(), &f, s); !errors.Is(err, protocol.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}
