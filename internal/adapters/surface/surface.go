// Package surface maps pointer positions on instrument surfaces to
// musical values. A surface never reconciles: it forwards press, move and
// release events to a Sink, normally an engine.
package surface

import (
	"context"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/domain/trigger"
)

// Sink receives mapped events.
type Sink interface {
	Submit(ctx context.Context, ev trigger.Event) bool
}

// Resetter releases everything a sink holds. Surfaces call it before
// their layout changes.
type Resetter interface {
	Reset(ctx context.Context) trigger.Frame
}

// Surface is a capture target that consumes pointer changes.
type Surface interface {
	capture.Target
	Handle(ctx context.Context, change capture.Change)
}

// Attach subscribes s to l. The returned function unsubscribes.
func Attach(ctx context.Context, l *capture.Listener, s Surface) func() {
	return l.Subscribe(func(change capture.Change) {
		s.Handle(ctx, change)
	})
}
