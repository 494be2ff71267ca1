package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	workerpool "github.com/okian/synthpad/internal/adapters/mq/worker"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
)

// Resetter releases a surface together with its engine. A surface that
// tracks pointers registers one so that resets clear both sides.
type Resetter interface {
	Reset(ctx context.Context) trigger.Frame
}

// Service owns the engines of every surface and runs their windows.
type Service struct {
	mu sync.RWMutex

	engines   []*Engine
	byName    map[string]*Engine
	resetters map[string]Resetter
	pool      *workerpool.Pool

	window    time.Duration
	queueSize int

	started bool
	stopped bool

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...ServiceOption) *Service {
	s := &Service{
		byName:    make(map[string]*Engine),
		resetters: make(map[string]Resetter),
		window:    defaultWindow,
		queueSize: defaultQueueSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	return s
}

// NewEngine registers an engine for a surface. Engines must be registered
// before Start.
func (s *Service) NewEngine(name string, opts ...Option) (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return nil, ErrStopped
	case s.started:
		return nil, fmt.Errorf("%w: cannot add engine %q", ErrAlreadyStarted, name)
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}

	base := []Option{WithWindow(s.window), WithQueueSize(s.queueSize)}
	e := NewEngine(name, append(base, opts...)...)
	s.engines = append(s.engines, e)
	s.byName[name] = e
	return e, nil
}

// Engine returns the engine registered under name, or nil.
func (s *Service) Engine(name string) *Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byName[name]
}

// SetResetter routes resets of the named engine through r, normally the
// surface feeding it. r must reset the engine itself.
func (s *Service) SetResetter(name string, r Resetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	if r == nil {
		delete(s.resetters, name)
		return nil
	}
	s.resetters[name] = r
	return nil
}

// ResetEngine releases everything held by the named engine, through its
// surface when one is registered.
func (s *Service) ResetEngine(ctx context.Context, name string) (trigger.Frame, error) {
	s.mu.RLock()
	e, r := s.byName[name], s.resetters[name]
	s.mu.RUnlock()

	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	if r == nil {
		r = e
	}
	frame := r.Reset(ctx)
	s.logger.Info(ctx, "engine reset",
		logger.String("engine", name),
		logger.Int("released", len(frame)),
	)
	return frame, nil
}

// Start runs one window loop per registered engine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	flushers := make([]workerpool.Flusher, len(s.engines))
	for i, e := range s.engines {
		flushers[i] = e
	}
	s.pool = workerpool.NewPool(s.window, flushers...)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("engines", len(s.engines)),
		logger.Duration("window", s.window),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop shuts the window loops down, then tears every engine down so that
// no trigger is left sounding. Stop is idempotent.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "window pool shutdown", logger.Error(err))
		}
	}

	for _, e := range s.engines {
		if r, ok := s.resetters[e.Name()]; ok {
			r.Reset(ctx)
		} else {
			e.Reset(ctx)
		}
		if err := e.Close(); err != nil {
			s.logger.Error(ctx, "closing engine", logger.String("engine", e.Name()), logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	engines := make(map[string]interface{}, len(s.engines))
	names := make([]string, 0, len(s.engines))
	for _, e := range s.engines {
		engines[e.Name()] = e.GetStats()
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return map[string]interface{}{
		"started":   s.started,
		"stopped":   s.stopped,
		"windowMs":  float64(s.window) / float64(time.Millisecond),
		"queueSize": s.queueSize,
		"surfaces":  names,
		"engines":   engines,
	}
}

// Held returns the held triggers of every engine, keyed by engine name.
func (s *Service) Held() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.engines))
	for _, e := range s.engines {
		out[e.Name()] = e.Snapshot()
	}
	return out
}
