package capture

// MemoryPlatform is a Platform driven by injected events. It delivers
// every event synchronously on the caller's goroutine. Each Inject method
// reports whether a listener cancelled the native event.
type MemoryPlatform struct {
	router
}

// NewMemoryPlatform creates an empty memory platform.
func NewMemoryPlatform() *MemoryPlatform {
	return &MemoryPlatform{}
}

// InjectMouseDown presses the mouse at (x, y) on every target under it.
func (p *MemoryPlatform) InjectMouseDown(x, y float64) bool {
	return p.mouseDown(x, y)
}

// InjectMouseMove moves the mouse to (x, y).
func (p *MemoryPlatform) InjectMouseMove(x, y float64) bool {
	return p.mouseMove(x, y)
}

// InjectMouseUp releases the mouse at (x, y).
func (p *MemoryPlatform) InjectMouseUp(x, y float64) bool {
	return p.mouseUp(x, y)
}

// InjectMouseDrag presses at (fromX, fromY), makes steps evenly spaced
// moves toward (toX, toY), then moves to and releases at (toX, toY).
func (p *MemoryPlatform) InjectMouseDrag(fromX, fromY, toX, toY float64, steps int) {
	p.InjectMouseDown(fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		p.InjectMouseMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	p.InjectMouseMove(toX, toY)
	p.InjectMouseUp(toX, toY)
}

// InjectTouchStart starts touches. Each touch is routed to the targets
// under its start position for the rest of its life.
func (p *MemoryPlatform) InjectTouchStart(touches ...Touch) bool {
	return p.touch(TouchStart, touches)
}

// InjectTouchMove moves live touches.
func (p *MemoryPlatform) InjectTouchMove(touches ...Touch) bool {
	return p.touch(TouchMove, touches)
}

// InjectTouchEnd ends touches.
func (p *MemoryPlatform) InjectTouchEnd(touches ...Touch) bool {
	return p.touch(TouchEnd, touches)
}
