// Package queue carries ledger mutations to the single writer.
//
// Submitters never block on a full queue; they get ErrBackpressure instead.
package queue

import (
	"context"
	"sync"

	"github.com/okian/podium/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a mutation. It fails with ErrBackpressure when full and
	// ErrClosed after Close.
	Enqueue(ctx context.Context, m Mutation) error

	// Dequeue returns a channel that yields mutations until the queue is
	// closed and drained.
	Dequeue() <-chan Mutation

	// Len returns the number of pending mutations.
	Len() int

	// Close stops accepting mutations. Pending ones stay readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	mutations chan Mutation
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.mutations = make(chan Mutation, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds a mutation to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Mutation) error { //nolint:gocritic // hugeParam: Mutation is passed by value for channel semantics
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.mutations <- m:
		metrics.UpdateQueueSize(len(q.mutations))
		return nil
	default:
		metrics.RecordQueueRejected()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrBackpressure
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Mutation {
	return q.mutations
}

// Len returns the current number of queued mutations.
func (q *InMemoryQueue) Len() int {
	size := len(q.mutations)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.mutations)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
