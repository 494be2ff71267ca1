package capture

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/okian/synthpad/internal/domain/dedupe"
	"github.com/okian/synthpad/pkg/logger"
	"github.com/okian/synthpad/pkg/metrics"
)

// Hub shares native registrations between listeners. A target and native
// kind pair is registered with the platform once, on its first user, and
// removed after its last; events are fanned out to every user in
// registration order.
type Hub struct {
	platform Platform
	registry dedupe.Deduper
	logger   logger.Logger

	mu     sync.Mutex
	nextID int
	native map[string]*nativeRegistration
}

type nativeRegistration struct {
	target   Target
	unlisten func()
	handlers map[int]func(*NativeEvent)
}

// NewHub creates a hub on top of platform.
func NewHub(platform Platform, opts ...Option) *Hub {
	h := &Hub{
		platform: platform,
		native:   make(map[string]*nativeRegistration),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		h.registry = dedupe.NewInMemoryDeduper(
			dedupe.WithInitialCapacity(8),
			dedupe.WithOnChange(metrics.UpdateRegistrationUsers),
		)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("capture")
	}
	return h
}

// Listen starts monitoring target for the pointers selected by mode.
func (h *Hub) Listen(ctx context.Context, target Target, mode Mode) *Listener {
	l := &Listener{
		hub:    h,
		target: target,
		mode:   mode,
		down:   make(map[int]Event),
		subs:   make(map[int]func(Change)),
	}

	if mode.mouse() {
		l.releases = append(l.releases,
			h.acquire(ctx, target, MouseDown, l.onMouseDown),
			h.acquire(ctx, Window, MouseMove, l.onWindowMouse(Move)),
			h.acquire(ctx, Window, MouseUp, l.onWindowMouse(Release)),
		)
	}
	if mode.touch() {
		l.releases = append(l.releases,
			h.acquire(ctx, target, TouchStart, l.onTouch(Press)),
			h.acquire(ctx, target, TouchMove, l.onTouch(Move)),
			h.acquire(ctx, target, TouchEnd, l.onTouch(Release)),
		)
	}

	metrics.AddActiveListeners(1)
	h.logger.Debug(ctx, "listener started",
		logger.String("target", target.ID()),
		logger.String("mode", string(mode)),
	)
	return l
}

// Registrations returns the number of native registrations currently held
// with the platform.
func (h *Hub) Registrations() int {
	return int(h.registry.Size())
}

// WindowRegistrations returns the number of window-level native
// registrations. It is at most two: one mouse move and one mouse up.
func (h *Hub) WindowRegistrations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.windowRegistrationsLocked()
}

func (h *Hub) windowRegistrationsLocked() int {
	n := 0
	for _, reg := range h.native {
		if reg.target.ID() == Window.ID() {
			n++
		}
	}
	return n
}

func registrationKey(target Target, kind NativeKind) string {
	return strings.Join([]string{target.ID(), string(kind)}, ":")
}

// acquire adds fn as a user of the target/kind registration and returns
// the function that gives it back.
func (h *Hub) acquire(ctx context.Context, target Target, kind NativeKind, fn func(*NativeEvent)) func() {
	key := registrationKey(target, kind)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if !h.registry.SeenAndRecord(ctx, key) {
		reg := &nativeRegistration{
			target:   target,
			handlers: make(map[int]func(*NativeEvent)),
		}
		h.native[key] = reg
		reg.unlisten = h.platform.Listen(target, kind, func(ev *NativeEvent) {
			h.dispatch(key, ev)
		})
		metrics.UpdateWindowListeners(h.windowRegistrationsLocked())
		h.logger.Debug(ctx, "native listener registered", logger.String("key", key))
	}
	h.native[key].handlers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		reg, ok := h.native[key]
		if !ok {
			h.mu.Unlock()
			return
		}
		delete(reg.handlers, id)
		if !h.registry.Unrecord(ctx, key) {
			h.mu.Unlock()
			return
		}
		delete(h.native, key)
		metrics.UpdateWindowListeners(h.windowRegistrationsLocked())
		h.mu.Unlock()

		reg.unlisten()
		h.logger.Debug(ctx, "native listener removed", logger.String("key", key))
	}
}

func (h *Hub) dispatch(key string, ev *NativeEvent) {
	h.mu.Lock()
	reg, ok := h.native[key]
	if !ok {
		h.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(reg.handlers))
	for id := range reg.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(*NativeEvent), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, reg.handlers[id])
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}
