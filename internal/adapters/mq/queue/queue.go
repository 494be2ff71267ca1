// Package queue buffers trigger events between a surface and its
// reconciliation window.
//
// Producers enqueue from any goroutine without blocking; the window loop
// drains everything buffered so far in one call.
package queue

import (
	"context"
	"sync"

	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/metrics"
)

const (
	defaultQueueCapacity = 1024
	defaultQueueName     = "default"
)

// Event represents the payload type flowing through the queue.
type Event = trigger.Event

// Queue provides non-blocking enqueue and drain semantics.
type Queue interface {
	// Enqueue adds an event to the queue.
	// Returns false if the queue is full or closed and the event was not enqueued.
	Enqueue(ctx context.Context, e Event) bool

	// Drain removes and returns every event currently buffered, in arrival
	// order, without waiting for more.
	Drain(ctx context.Context) []Event

	// Discard drops every buffered event and returns how many were dropped.
	Discard(ctx context.Context) int

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new events can be enqueued; buffered events can still be drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int
	name     string
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		name:     defaultQueueName,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.name, q.capacity)
	q.observe()

	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	default:
	}

	select {
	case q.events <- e:
		q.observe()
		return true
	default:
		return false // queue is full
	}
}

// Drain removes and returns every event currently buffered.
func (q *InMemoryQueue) Drain(_ context.Context) []Event {
	n := len(q.events)
	if n == 0 {
		return nil
	}
	out := make([]Event, 0, n)
	for {
		select {
		case e, ok := <-q.events:
			if !ok {
				q.observe()
				return out
			}
			out = append(out, e)
		default:
			q.observe()
			return out
		}
	}
}

// Discard drops every buffered event.
func (q *InMemoryQueue) Discard(ctx context.Context) int {
	return len(q.Drain(ctx))
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.events)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Capacity returns the maximum number of buffered events.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

func (q *InMemoryQueue) observe() {
	size := len(q.events)
	metrics.UpdateQueueSize(q.name, size)
	metrics.UpdateQueueUtilization(q.name, float64(size)/float64(q.capacity))
}
