package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by blocking calls once the store is closed.
var ErrClosed = errors.New("repository: closed")

// queue is a bounded FIFO of owned payloads. When full, the oldest entry is
// dropped: for periodic telemetry a fresh sample is worth more than a stale
// one.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]byte
	head   int
	n      int
	closed bool
}

func newQueue(capacity int) *queue {
	q := &queue{items: make([][]byte, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends b (already owned by the queue) and reports whether an older
// entry was dropped to make room.
func (q *queue) push(b []byte) (dropped bool) {
	q.mu.Lock()
	if q.n == len(q.items) {
		q.items[q.head] = nil
		q.head = (q.head + 1) % len(q.items)
		q.n--
		dropped = true
	}
	q.items[(q.head+q.n)%len(q.items)] = b
	q.n++
	q.cond.Broadcast()
	q.mu.Unlock()
	return dropped
}

func (q *queue) tryPop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *queue) popLocked() ([]byte, bool) {
	if q.n == 0 {
		return nil, false
	}
	b := q.items[q.head]
	q.items[q.head] = nil
	q.head = (q.head + 1) % len(q.items)
	q.n--
	return b, true
}

// pop blocks until an entry is available, ctx is done or the queue closes.
func (q *queue) pop(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if b, ok := q.popLocked(); ok {
			return b, nil
		}
		if q.closed {
			return nil, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q.cond.Wait()
	}
}

// peekLast returns the newest entry without removing it.
func (q *queue) peekLast() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.n == 0 {
		return nil, false
	}
	return q.items[(q.head+q.n-1)%len(q.items)], true
}

func (q *queue) drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]byte, 0, q.n)
	for {
		b, ok := q.popLocked()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
