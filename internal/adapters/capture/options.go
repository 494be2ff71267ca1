package capture

import (
	"github.com/okian/synthpad/internal/domain/dedupe"
	"github.com/okian/synthpad/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithLogger sets a custom logger for the hub and its listeners.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRegistry sets the registry used to share native registrations.
func WithRegistry(r dedupe.Deduper) Option {
	return func(h *Hub) {
		if r != nil {
			h.registry = r
		}
	}
}
