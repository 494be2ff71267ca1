// Package app hosts the stateful side of trigger reconciliation: one
// Engine per surface owns the held set, the event buffer and the
// window, and a Service runs the windows for every engine.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	eventqueue "github.com/okian/synthpad/internal/adapters/mq/queue"
	workerpool "github.com/okian/synthpad/internal/adapters/mq/worker"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
	"github.com/okian/synthpad/pkg/metrics"
)

const (
	defaultWindow    = time.Millisecond
	defaultQueueSize = 1024
)

// Engine buffers events for one surface and reconciles them once per window.
// Flush, Reset and the Run loop are serialized: a window completes, consumers
// included, before the next one starts. Consumers run under the engine
// lock and must not call back into the engine.
type Engine struct {
	name      string
	window    time.Duration
	queueSize int
	consumers []trigger.Consumer

	mu    sync.Mutex
	queue *eventqueue.InMemoryQueue
	held  trigger.HeldSet
	last  trigger.Frame

	submitted      atomic.Int64
	dropped        atomic.Int64
	emitted        atomic.Int64
	suppressed     atomic.Int64
	anomalies      atomic.Int64
	consumerErrors atomic.Int64
	resets         atomic.Int64

	logger logger.Logger
}

// NewEngine creates an engine named after its surface.
func NewEngine(name string, opts ...Option) *Engine {
	e := &Engine{
		name:      name,
		window:    defaultWindow,
		queueSize: defaultQueueSize,
		held:      trigger.HeldSet{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine").Named(name)
	}
	e.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(e.queueSize),
		eventqueue.WithName(name),
	)
	metrics.UpdateHeldTriggers(name, 0)

	return e
}

// Name returns the surface name.
func (e *Engine) Name() string { return e.name }

// Window returns the reconciliation window.
func (e *Engine) Window() time.Duration { return e.window }

// AddConsumer registers c for subsequent frames.
func (e *Engine) AddConsumer(c trigger.Consumer) {
	if c == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consumers = append(e.consumers, c)
}

// Submit buffers ev for the next window. It returns false when the buffer
// is full or the engine is closed.
func (e *Engine) Submit(ctx context.Context, ev trigger.Event) bool {
	if !ev.Finite() {
		e.anomalies.Add(1)
		metrics.RecordNumericAnomaly(e.name)
		e.logger.Warn(ctx, "non-finite trigger value",
			logger.Int("source", ev.Source),
			logger.String("kind", ev.Kind.String()),
			logger.Float64("frequency", ev.Frequency),
			logger.Float64("velocity", ev.Velocity),
		)
	}

	if !e.queue.Enqueue(ctx, ev) {
		e.dropped.Add(1)
		metrics.RecordEventDropped(e.name)
		e.logger.Warn(ctx, "event dropped",
			logger.Int("source", ev.Source),
			logger.String("kind", ev.Kind.String()),
			logger.Bool("closed", e.queue.IsClosed()),
		)
		return false
	}
	e.submitted.Add(1)
	metrics.RecordEventSubmitted(e.name)
	return true
}

// Flush reconciles everything buffered since the previous window. It
// returns the frame and whether it was delivered to consumers; empty
// frames and frames equal to the previous emission are not delivered.
func (e *Engine) Flush(ctx context.Context) (trigger.Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	events := e.queue.Drain(ctx)
	if len(events) == 0 && !e.held.HasPending() {
		e.held = e.held.Settle()
		return nil, false
	}

	start := time.Now()
	frame, next := trigger.Reconcile(events, e.held)
	e.held = next
	metrics.RecordReconcileLatency(e.name, float64(time.Since(start).Microseconds()))
	metrics.RecordWindowEvents(e.name, len(events))
	metrics.UpdateHeldTriggers(e.name, next.Len())

	if len(frame) == 0 {
		return nil, false
	}
	if frame.Equal(e.last) {
		e.suppressed.Add(1)
		metrics.RecordFrameSuppressed(e.name)
		return frame, false
	}

	e.deliver(ctx, frame)
	return frame, true
}

// Reset tears the engine down for a surface teardown or re-layout: queued
// events are discarded, every held trigger is emitted as released and the
// held set is cleared. It returns the release frame, nil if nothing was held.
func (e *Engine) Reset(ctx context.Context) trigger.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	discarded := e.queue.Discard(ctx)
	frame := trigger.ReleaseAll(e.held)
	e.held = trigger.HeldSet{}
	e.resets.Add(1)
	metrics.RecordReset(e.name)
	metrics.UpdateHeldTriggers(e.name, 0)

	e.logger.Debug(ctx, "engine reset",
		logger.Int("discarded", discarded),
		logger.Int("released", len(frame)),
	)

	if frame != nil {
		e.deliver(ctx, frame)
	}
	e.last = nil
	return frame
}

// deliver must be called with e.mu held.
func (e *Engine) deliver(ctx context.Context, frame trigger.Frame) {
	e.last = frame
	e.emitted.Add(1)
	metrics.RecordFrameEmitted(e.name)
	e.logger.Debug(ctx, "frame emitted", logger.Int("size", len(frame)))

	for _, c := range e.consumers {
		if err := c.Consume(ctx, frame.Clone()); err != nil {
			e.consumerErrors.Add(1)
			metrics.RecordConsumerError(e.name)
			e.logger.Error(ctx, "consumer failed",
				logger.Int("frame_size", len(frame)),
				logger.Error(err),
			)
		}
	}
}

// Run flushes once per window until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	workerpool.NewWindower(e,
		workerpool.WithName(e.name),
		workerpool.WithWindow(e.window),
		workerpool.WithLogger(e.logger),
	).Run(ctx)
}

// Snapshot returns a copy of the held triggers sorted by id.
func (e *Engine) Snapshot() trigger.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held.Triggers()
}

// Held returns the number of held triggers.
func (e *Engine) Held() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held.Len()
}

// Close stops accepting events. Buffered events can still be flushed.
func (e *Engine) Close() error {
	return e.queue.Close()
}

// GetStats returns engine counters for monitoring.
func (e *Engine) GetStats() map[string]interface{} {
	ctx := context.Background()
	return map[string]interface{}{
		"name":           e.name,
		"windowMs":       float64(e.window) / float64(time.Millisecond),
		"queueLength":    e.queue.Len(ctx),
		"queueCapacity":  e.queue.Capacity(),
		"held":           e.Held(),
		"submitted":      e.submitted.Load(),
		"dropped":        e.dropped.Load(),
		"emitted":        e.emitted.Load(),
		"suppressed":     e.suppressed.Load(),
		"anomalies":      e.anomalies.Load(),
		"consumerErrors": e.consumerErrors.Load(),
		"resets":         e.resets.Load(),
		"closed":         e.queue.IsClosed(),
	}
}
