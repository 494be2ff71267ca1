package capture

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenPlatform polls ebiten's mouse and touch state. Call Update once
// per tick from the game's Update; native events are delivered from
// there.
type EbitenPlatform struct {
	router

	mouse   mouseTracker
	touches *touchTracker
	buf     []ebiten.TouchID
}

// NewEbitenPlatform creates a platform for the running ebiten game.
func NewEbitenPlatform() *EbitenPlatform {
	return &EbitenPlatform{touches: newTouchTracker()}
}

// Update translates this tick's input into native events.
func (p *EbitenPlatform) Update() {
	cx, cy := ebiten.CursorPosition()
	for _, ev := range p.mouse.step(mouseTick{
		x:        float64(cx),
		y:        float64(cy),
		pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}) {
		switch ev.kind {
		case MouseDown:
			p.mouseDown(ev.x, ev.y)
		case MouseMove:
			p.mouseMove(ev.x, ev.y)
		case MouseUp:
			p.mouseUp(ev.x, ev.y)
		}
	}

	started, moved, ended := p.touches.step(p.touchTick())
	if len(started) > 0 {
		p.touch(TouchStart, started)
	}
	if len(moved) > 0 {
		p.touch(TouchMove, moved)
	}
	if len(ended) > 0 {
		p.touch(TouchEnd, ended)
	}
}

func (p *EbitenPlatform) touchTick() touchTick {
	var tick touchTick

	p.buf = inpututil.AppendJustPressedTouchIDs(p.buf[:0])
	for _, id := range p.buf {
		tx, ty := ebiten.TouchPosition(id)
		tick.pressed = append(tick.pressed, touchSample{id: int(id), x: tx, y: ty})
	}

	p.buf = ebiten.AppendTouchIDs(p.buf[:0])
	for _, id := range p.buf {
		tx, ty := ebiten.TouchPosition(id)
		tick.live = append(tick.live, touchSample{id: int(id), x: tx, y: ty})
	}

	// A released touch no longer has a current position.
	p.buf = inpututil.AppendJustReleasedTouchIDs(p.buf[:0])
	for _, id := range p.buf {
		tx, ty := inpututil.TouchPositionInPreviousTick(id)
		tick.released = append(tick.released, touchSample{id: int(id), x: tx, y: ty})
	}
	return tick
}

// mouseTick is the mouse state read in one tick.
type mouseTick struct {
	x, y     float64
	pressed  bool
	released bool
}

type mouseEvent struct {
	kind NativeKind
	x, y float64
}

// mouseTracker turns polled mouse state into native events. A move is
// reported on the first tick and whenever the cursor changes position.
type mouseTracker struct {
	x, y  float64
	known bool
}

func (m *mouseTracker) step(tick mouseTick) []mouseEvent {
	var out []mouseEvent
	if tick.pressed {
		out = append(out, mouseEvent{kind: MouseDown, x: tick.x, y: tick.y})
	}
	if !m.known || tick.x != m.x || tick.y != m.y {
		out = append(out, mouseEvent{kind: MouseMove, x: tick.x, y: tick.y})
		m.x, m.y, m.known = tick.x, tick.y, true
	}
	if tick.released {
		out = append(out, mouseEvent{kind: MouseUp, x: tick.x, y: tick.y})
	}
	return out
}

type touchSample struct {
	id   int
	x, y int
}

// touchTick is the touch state read in one tick. pressed and live carry
// current positions; released carries each touch's last position.
type touchTick struct {
	pressed  []touchSample
	live     []touchSample
	released []touchSample
}

// touchTracker turns per-tick touch samples into start, move and end
// batches. Only touches seen starting are moved or ended, and a live touch
// is moved only when its position changed.
type touchTracker struct {
	last map[int][2]int
}

func newTouchTracker() *touchTracker {
	return &touchTracker{last: make(map[int][2]int)}
}

func (t *touchTracker) step(tick touchTick) (started, moved, ended []Touch) {
	for _, s := range tick.pressed {
		t.last[s.id] = [2]int{s.x, s.y}
		started = append(started, s.touch())
	}

	for _, s := range tick.live {
		last, ok := t.last[s.id]
		if !ok || (last[0] == s.x && last[1] == s.y) {
			continue
		}
		t.last[s.id] = [2]int{s.x, s.y}
		moved = append(moved, s.touch())
	}

	for _, s := range tick.released {
		if _, ok := t.last[s.id]; !ok {
			continue
		}
		delete(t.last, s.id)
		ended = append(ended, s.touch())
	}
	return started, moved, ended
}

func (s touchSample) touch() Touch {
	return Touch{ID: s.id, X: float64(s.x), Y: float64(s.y)}
}
