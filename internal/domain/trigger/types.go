// Package trigger reconciles windows of pointer-derived events into
// id-stable trigger transitions.
//
// A trigger lives through pressed -> down* -> released. Every frame lists
// all triggers that are held or changed in that window, sorted by id, and
// an id never appears twice in one frame. Ids of released triggers are
// reused, always choosing the smallest non-negative integer not in use.
package trigger

import (
	"context"
	"math"
)

// Kind is the kind of an input event.
type Kind int

const (
	Press Kind = iota
	Move
	Release
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Event is one surface-mapped input. Source is the surface's logical key:
// the pointer id for the radar, the note index for the keyboard.
type Event struct {
	Source    int
	Kind      Kind
	Frequency float64
	Velocity  float64
}

// Finite reports whether the event carries only finite values.
func (e Event) Finite() bool {
	return !math.IsNaN(e.Frequency) && !math.IsInf(e.Frequency, 0) &&
		!math.IsNaN(e.Velocity) && !math.IsInf(e.Velocity, 0)
}

// StateType is the lifecycle stage of a trigger within a frame.
type StateType string

const (
	Pressed  StateType = "pressed"
	Down     StateType = "down"
	Released StateType = "released"
)

// State is the reported state of one trigger.
type State struct {
	ID        int       `json:"id"`
	Frequency float64   `json:"frequency"`
	Velocity  float64   `json:"velocity"`
	Type      StateType `json:"state"`
}

// IsDown reports whether the trigger is pressed or down.
func (s State) IsDown() bool {
	return s.Type == Pressed || s.Type == Down
}

// Frame is the canonical output of one window.
type Frame []State

// Equal reports whether f and o carry the same ids, states and values.
func (f Frame) Equal(o Frame) bool {
	if len(f) != len(o) {
		return false
	}
	for i := range f {
		a, b := f[i], o[i]
		if a.ID != b.ID || a.Type != b.Type ||
			!sameFloat(a.Frequency, b.Frequency) || !sameFloat(a.Velocity, b.Velocity) {
			return false
		}
	}
	return true
}

// Clone returns a copy of f.
func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}
	out := make(Frame, len(f))
	copy(out, f)
	return out
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Consumer receives every emitted frame. Consumers must start sound on
// pressed, adjust it on down and stop it on released.
type Consumer interface {
	Consume(ctx context.Context, f Frame) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, f Frame) error

// Consume calls fn.
func (fn ConsumerFunc) Consume(ctx context.Context, f Frame) error {
	return fn(ctx, f)
}
