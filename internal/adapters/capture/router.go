package capture

import (
	"sync"

	"github.com/okian/synthpad/internal/domain/geometry"
)

// router holds native registrations and routes events to them the way a
// window system would: mouse presses go to the targets under the cursor,
// mouse moves and releases to the window, and every touch to the targets
// it started on.
type router struct {
	mu      sync.Mutex
	nextID  int
	regs    []routerRegistration
	origins map[int][]Target
}

type routerRegistration struct {
	id     int
	target Target
	kind   NativeKind
	fn     func(*NativeEvent)
}

// Listen implements Platform.
func (r *router) Listen(target Target, kind NativeKind, fn func(*NativeEvent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.regs = append(r.regs, routerRegistration{id: id, target: target, kind: kind, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, reg := range r.regs {
				if reg.id == id {
					r.regs = append(r.regs[:i], r.regs[i+1:]...)
					return
				}
			}
		})
	}
}

// Registrations returns the number of native registrations for target and
// kind.
func (r *router) Registrations(target Target, kind NativeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, reg := range r.regs {
		if reg.target.ID() == target.ID() && reg.kind == kind {
			n++
		}
	}
	return n
}

func (r *router) handlers(target Target, kind NativeKind) []func(*NativeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fns []func(*NativeEvent)
	for _, reg := range r.regs {
		if reg.target.ID() == target.ID() && reg.kind == kind {
			fns = append(fns, reg.fn)
		}
	}
	return fns
}

// targetsAt returns the non-window targets containing p, in registration
// order and without repeats.
func (r *router) targetsAt(p geometry.Point) []Target {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	var out []Target
	for _, reg := range r.regs {
		id := reg.target.ID()
		if id == Window.ID() || seen[id] {
			continue
		}
		if reg.target.Bounds().Contains(p) {
			seen[id] = true
			out = append(out, reg.target)
		}
	}
	return out
}

func (r *router) fire(target Target, ev *NativeEvent) {
	for _, fn := range r.handlers(target, ev.Kind) {
		fn(ev)
	}
}

func (r *router) mouseDown(x, y float64) bool {
	ev := &NativeEvent{Kind: MouseDown, X: x, Y: y}
	for _, t := range r.targetsAt(geometry.Point{X: x, Y: y}) {
		r.fire(t, ev)
	}
	return ev.Cancelled()
}

func (r *router) mouseMove(x, y float64) bool {
	ev := &NativeEvent{Kind: MouseMove, X: x, Y: y}
	r.fire(Window, ev)
	return ev.Cancelled()
}

func (r *router) mouseUp(x, y float64) bool {
	ev := &NativeEvent{Kind: MouseUp, X: x, Y: y}
	r.fire(Window, ev)
	return ev.Cancelled()
}

// touch routes one native touch event. Touches are grouped per target so
// each target sees only its own changed touches.
func (r *router) touch(kind NativeKind, touches []Touch) bool {
	var order []Target
	groups := make(map[string][]Touch)

	r.mu.Lock()
	if r.origins == nil {
		r.origins = make(map[int][]Target)
	}
	r.mu.Unlock()

	for _, t := range touches {
		var targets []Target
		if kind == TouchStart {
			targets = r.targetsAt(geometry.Point{X: t.X, Y: t.Y})
			r.mu.Lock()
			r.origins[t.ID] = targets
			r.mu.Unlock()
		} else {
			r.mu.Lock()
			targets = r.origins[t.ID]
			if kind == TouchEnd {
				delete(r.origins, t.ID)
			}
			r.mu.Unlock()
		}
		for _, target := range targets {
			id := target.ID()
			if _, ok := groups[id]; !ok {
				order = append(order, target)
			}
			groups[id] = append(groups[id], t)
		}
	}

	cancelled := false
	for _, target := range order {
		ev := &NativeEvent{Kind: kind, Touches: groups[target.ID()]}
		r.fire(target, ev)
		cancelled = cancelled || ev.Cancelled()
	}
	return cancelled
}
