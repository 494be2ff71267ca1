package capture

import (
	"sort"
	"sync"

	"github.com/okian/synthpad/pkg/metrics"
)

// Listener tracks the pointers down on one target. A press is forwarded
// for pointers that are not down; moves and releases only for pointers
// that are.
type Listener struct {
	hub    *Hub
	target Target
	mode   Mode

	mu      sync.Mutex
	down    map[int]Event
	subs    map[int]func(Change)
	nextSub int
	stopped bool

	releases []func()
	stopOnce sync.Once
}

// Target returns the monitored target.
func (l *Listener) Target() Target { return l.target }

// Mode returns the listener mode.
func (l *Listener) Mode() Mode { return l.mode }

// Subscribe registers fn for every subsequent Change. Subscribers run on
// the platform's goroutine in subscription order.
func (l *Listener) Subscribe(fn func(Change)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Down returns the pointers currently down, sorted by id.
func (l *Listener) Down() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedEvents(l.down, nil)
}

// Stop removes the listener's native registrations and subscribers. It is
// safe to call more than once. Pointers still down are not released; the
// engine's reset takes care of the triggers they hold.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.subs = make(map[int]func(Change))
		l.mu.Unlock()

		for _, release := range l.releases {
			release()
		}
		l.releases = nil
		metrics.AddActiveListeners(-1)
	})
}

func (l *Listener) onMouseDown(ev *NativeEvent) {
	ev.Cancel()
	l.update([]Event{{ID: MouseID, X: ev.X, Y: ev.Y, Kind: Press}})
}

func (l *Listener) onWindowMouse(kind Kind) func(*NativeEvent) {
	return func(ev *NativeEvent) {
		if l.update([]Event{{ID: MouseID, X: ev.X, Y: ev.Y, Kind: kind}}) {
			ev.Cancel()
		}
	}
}

func (l *Listener) onTouch(kind Kind) func(*NativeEvent) {
	return func(ev *NativeEvent) {
		changes := make([]Event, 0, len(ev.Touches))
		for _, t := range ev.Touches {
			changes = append(changes, Event{ID: t.ID, X: t.X, Y: t.Y, Kind: kind})
		}
		if l.update(changes) {
			ev.Cancel()
		}
	}
}

// update applies changes that pass the down-state filter and notifies
// subscribers. It reports whether anything was applied.
func (l *Listener) update(changes []Event) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}

	valid := changes[:0:0]
	for _, c := range changes {
		if !l.accepts(c) {
			metrics.RecordCaptureDropped(c.Kind.String())
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		l.mu.Unlock()
		return false
	}

	var released []Event
	for _, c := range valid {
		if c.Kind == Release {
			delete(l.down, c.ID)
			released = append(released, c)
			continue
		}
		l.down[c.ID] = c
	}
	change := Change{Changes: valid, States: sortedEvents(l.down, released)}

	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, l.subs[id])
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
	return true
}

func (l *Listener) accepts(c Event) bool {
	if c.ID == MouseID && !l.mode.mouse() {
		return false
	}
	if c.ID != MouseID && !l.mode.touch() {
		return false
	}
	_, isDown := l.down[c.ID]
	if c.Kind == Press {
		return !isDown
	}
	return isDown
}

func sortedEvents(down map[int]Event, extra []Event) []Event {
	out := make([]Event, 0, len(down)+len(extra))
	for _, ev := range down {
		out = append(out, ev)
	}
	out = append(out, extra...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
