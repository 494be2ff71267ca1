package surface

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
)

const (
	defaultOctaves     = 2
	defaultStartOctave = 2
	keyVelocity        = 1.0
)

// Keyboard is a piano surface. The source key of its events is the note
// index. A key is held while any pointer is on it; a pointer sliding to
// another key releases the old key and presses the new one.
type Keyboard struct {
	name        string
	sink        Sink
	resetter    Resetter
	octaves     int
	startOctave int
	logger      logger.Logger

	mu       sync.Mutex
	bounds   geometry.Rect
	layout   Layout
	pointers map[int]int
	refs     map[int]int
}

// NewKeyboard creates a keyboard drawn in bounds, in client coordinates.
func NewKeyboard(name string, sink Sink, bounds geometry.Rect, opts ...KeyboardOption) (*Keyboard, error) {
	k := &Keyboard{
		name:        name,
		sink:        sink,
		octaves:     defaultOctaves,
		startOctave: defaultStartOctave,
		bounds:      bounds,
		pointers:    make(map[int]int),
		refs:        make(map[int]int),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = logger.Get().Named("keyboard")
	}

	layout, err := NewLayout(k.octaves, k.startOctave)
	if err != nil {
		return nil, err
	}
	k.layout = layout
	return k, nil
}

// ID implements capture.Target.
func (k *Keyboard) ID() string { return k.name }

// Bounds implements capture.Target.
func (k *Keyboard) Bounds() geometry.Rect {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.bounds
}

// SetBounds moves or resizes the keyboard.
func (k *Keyboard) SetBounds(r geometry.Rect) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.bounds = r
}

// Layout returns the current layout.
func (k *Keyboard) Layout() Layout {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.layout
}

// Down returns the note indexes of held keys, ascending.
func (k *Keyboard) Down() []int {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]int, 0, len(k.refs))
	for n := range k.refs {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// SetLayout rebuilds the keys. Everything held is released first through
// the resetter, so no trigger outlives the key it was pressed on.
func (k *Keyboard) SetLayout(ctx context.Context, octaves, startOctave int) error {
	layout, err := NewLayout(octaves, startOctave)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.resetLocked(ctx)
	k.layout = layout
	k.octaves, k.startOctave = octaves, startOctave

	k.logger.Info(ctx, "keyboard layout changed",
		logger.Int("octaves", octaves),
		logger.Int("start_octave", startOctave),
		logger.Int("keys", len(layout.Keys)),
	)
	return nil
}

// Reset forgets every pointer and held key, then releases what the
// resetter holds. A pointer still on a key after Reset presses it again on
// its next press.
func (k *Keyboard) Reset(ctx context.Context) trigger.Frame {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.resetLocked(ctx)
}

func (k *Keyboard) resetLocked(ctx context.Context) trigger.Frame {
	var released trigger.Frame
	if k.resetter != nil {
		released = k.resetter.Reset(ctx)
	}
	k.logger.Debug(ctx, "keyboard reset",
		logger.Int("pointers", len(k.pointers)),
		logger.Int("released", len(released)),
	)
	k.pointers = make(map[int]int)
	k.refs = make(map[int]int)
	return released
}

// KeyAt returns the key under p, in client coordinates.
func (k *Keyboard) KeyAt(p geometry.Point) (Key, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keyAtLocked(p)
}

func (k *Keyboard) keyAtLocked(p geometry.Point) (Key, bool) {
	n := geometry.Normalize(p, k.bounds)
	return k.layout.KeyAt(geometry.Point{X: n.X * ViewWidth, Y: n.Y * ViewHeight})
}

// Handle implements Surface.
func (k *Keyboard) Handle(ctx context.Context, change capture.Change) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, ev := range change.Changes {
		prev, had := k.pointers[ev.ID]

		if ev.Kind == capture.Release {
			if had {
				delete(k.pointers, ev.ID)
				k.detach(ctx, prev)
			}
			continue
		}

		key, ok := k.keyAtLocked(ev.Point())
		if had && ok && prev == key.NoteIndex {
			continue
		}
		if had {
			delete(k.pointers, ev.ID)
			k.detach(ctx, prev)
		}
		if ok {
			k.pointers[ev.ID] = key.NoteIndex
			k.attach(ctx, key)
		}
	}
}

func (k *Keyboard) attach(ctx context.Context, key Key) {
	k.refs[key.NoteIndex]++
	if k.refs[key.NoteIndex] > 1 {
		return
	}
	k.sink.Submit(ctx, trigger.Event{
		Source:    key.NoteIndex,
		Kind:      trigger.Press,
		Frequency: key.Frequency,
		Velocity:  keyVelocity,
	})
}

func (k *Keyboard) detach(ctx context.Context, noteIndex int) {
	k.refs[noteIndex]--
	if k.refs[noteIndex] > 0 {
		return
	}
	delete(k.refs, noteIndex)

	ev := trigger.Event{Source: noteIndex, Kind: trigger.Release}
	if key, ok := k.layout.Key(noteIndex); ok {
		ev.Frequency = key.Frequency
	}
	k.sink.Submit(ctx, ev)
}
