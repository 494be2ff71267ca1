package worker

import (
	"time"

	"github.com/okian/synthpad/pkg/logger"
)

// Option applies a configuration option to the Windower.
type Option func(*Windower)

// WithName sets the windower name for identification and logging.
func WithName(name string) Option {
	return func(w *Windower) {
		if name != "" {
			w.name = name
		}
	}
}

// WithWindow sets the reconciliation window.
func WithWindow(d time.Duration) Option {
	return func(w *Windower) {
		if d > 0 {
			w.window = d
		}
	}
}

// WithLogger sets a custom logger for the windower.
func WithLogger(logger logger.Logger) Option {
	return func(w *Windower) {
		if logger != nil {
			w.logger = logger
		}
	}
}
