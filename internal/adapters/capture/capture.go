// Package capture turns native mouse and touch events delivered by a
// Platform into per-target streams of pointer changes.
//
// A Platform plays the part of a window system: it owns native listeners
// and calls them with NativeEvents. A Hub shares those native
// registrations between Listeners, and each Listener tracks which pointers
// are down on its target and emits Change values to its subscribers.
package capture

import (
	"fmt"

	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/trigger"
)

// MouseID is the pointer id reserved for the mouse. Touch ids are the
// platform's touch identifiers.
const MouseID = -1

// Kind is the kind of a pointer change.
type Kind = trigger.Kind

const (
	Press   = trigger.Press
	Move    = trigger.Move
	Release = trigger.Release
)

// Event is one pointer change in client coordinates.
type Event struct {
	ID   int
	X, Y float64
	Kind Kind
}

// Point returns the event position.
func (e Event) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// Change is what a Listener emits for every handled native event.
type Change struct {
	// Changes holds the pointer changes carried by the native event.
	Changes []Event
	// States holds every pointer currently down on the target, sorted by
	// id, plus the pointers released by this change.
	States []Event
}

// Mode selects which pointers a Listener monitors.
type Mode string

const (
	ModeAll   Mode = "all"
	ModeMouse Mode = "mouse"
	ModeTouch Mode = "touch"
)

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAll, ModeMouse, ModeTouch:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) mouse() bool { return m == ModeAll || m == ModeMouse }
func (m Mode) touch() bool { return m == ModeAll || m == ModeTouch }

// NativeKind names a native event type.
type NativeKind string

const (
	MouseDown  NativeKind = "mousedown"
	MouseMove  NativeKind = "mousemove"
	MouseUp    NativeKind = "mouseup"
	TouchStart NativeKind = "touchstart"
	TouchMove  NativeKind = "touchmove"
	TouchEnd   NativeKind = "touchend"
)

// Touch is one changed touch of a native touch event.
type Touch struct {
	ID   int
	X, Y float64
}

// NativeEvent is what a Platform hands to its listeners. Mouse events use
// X and Y; touch events carry their changed touches.
type NativeEvent struct {
	Kind    NativeKind
	X, Y    float64
	Touches []Touch

	cancelled bool
}

// Cancel marks the event as consumed so the platform skips its default
// handling (scrolling, text selection).
func (e *NativeEvent) Cancel() { e.cancelled = true }

// Cancelled reports whether a listener called Cancel.
func (e *NativeEvent) Cancelled() bool { return e.cancelled }

// Target is something native listeners attach to.
type Target interface {
	ID() string
	Bounds() geometry.Rect
}

// Window is the window-level target. Mouse moves and releases are
// observed there so a drag keeps reporting after leaving its target.
var Window Target = windowTarget{}

type windowTarget struct{}

func (windowTarget) ID() string            { return "window" }
func (windowTarget) Bounds() geometry.Rect { return geometry.Rect{} }

// Area is a rectangular Target.
type Area struct {
	Name string
	Rect geometry.Rect
}

// ID returns the area name.
func (a *Area) ID() string { return a.Name }

// Bounds returns the area rectangle.
func (a *Area) Bounds() geometry.Rect { return a.Rect }

// Platform delivers native events. Listen returns a function that removes
// the registration; calling it more than once is safe.
type Platform interface {
	Listen(target Target, kind NativeKind, fn func(*NativeEvent)) (unlisten func())
}
