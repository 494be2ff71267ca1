// Package worker runs the timer-driven reconciliation windows.
//
// A Windower calls Flush on its engine once per window until stopped. A
// Pool runs one Windower per surface so independent surfaces never wait
// on each other.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
	"github.com/okian/synthpad/pkg/metrics"
)

const (
	defaultWindow         = time.Millisecond
	poolShutdownTimeout   = 5 * time.Second
	defaultWindowerPrefix = "windower-"
)

// Flusher reconciles one window. Engines implement it.
type Flusher interface {
	Flush(ctx context.Context) (trigger.Frame, bool)
}

// Worker runs windows until stopped.
type Worker interface {
	// Run starts the window loop until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the loop after one final window so buffered events
	// are not lost.
	Shutdown(ctx context.Context) error
}

// Windower implements Worker over a Flusher.
type Windower struct {
	flusher Flusher
	name    string
	window  time.Duration

	shutdown     chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
	emitted      int64

	logger logger.Logger
}

// NewWindower creates a window loop for f.
func NewWindower(f Flusher, opts ...Option) *Windower {
	w := &Windower{
		flusher:  f,
		name:     "windower",
		window:   defaultWindow,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "windower" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the window loop.
func (w *Windower) Run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.window)
	defer ticker.Stop()

	w.logger.Debug(ctx, "window loop started", logger.Duration("window", w.window))
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.flush(ctx)
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Windower) flush(ctx context.Context) {
	if _, emitted := w.flusher.Flush(ctx); emitted {
		w.emitted++
	}
}

// Emitted returns how many windows produced a frame. Only valid after Run returned.
func (w *Windower) Emitted() int64 {
	return w.emitted
}

// Shutdown gracefully stops the window loop.
func (w *Windower) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages one Windower per flusher.
type Pool struct {
	windowers []*Windower
	running   sync.WaitGroup
	started   bool
	mu        sync.Mutex

	logger logger.Logger
}

// NewPool creates a pool with one windower per flusher, all sharing window.
func NewPool(window time.Duration, flushers ...Flusher) *Pool {
	p := &Pool{
		windowers: make([]*Windower, len(flushers)),
		logger:    logger.Get().Named("worker-pool"),
	}
	for i, f := range flushers {
		p.windowers[i] = NewWindower(f,
			WithName(defaultWindowerPrefix+strconv.Itoa(i)),
			WithWindow(window),
		)
	}
	return p
}

// Start runs every windower in its own goroutine.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for _, w := range p.windowers {
		p.running.Add(1)
		go func(w *Windower) {
			defer p.running.Done()
			w.Run(ctx)
		}(w)
	}
	metrics.UpdateWindowersRunning(len(p.windowers))
	p.logger.Info(ctx, "window pool started", logger.Int("windowers", len(p.windowers)))
}

// Size returns the number of windowers.
func (p *Pool) Size() int { return len(p.windowers) }

// Shutdown stops every windower, waiting at most poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.windowers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "windower shutdown timed out", logger.Int("windower_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	p.running.Wait()
	metrics.UpdateWindowersRunning(0)
	return nil
}
