package app

import (
	"time"

	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
)

// Option applies a configuration option to an Engine.
type Option func(*Engine)

// WithWindow sets the reconciliation window used by Run.
func WithWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithQueueSize bounds the event buffer.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithConsumer adds a frame consumer. Consumers are called in the order added.
func WithConsumer(c trigger.Consumer) Option {
	return func(e *Engine) {
		if c != nil {
			e.consumers = append(e.consumers, c)
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithServiceWindow sets the window shared by every engine the service creates.
func WithServiceWindow(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithServiceQueueSize sets the buffer size of every engine the service creates.
func WithServiceQueueSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithServiceLogger sets a custom logger for the service.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
