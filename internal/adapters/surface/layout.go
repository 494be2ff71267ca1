package surface

import (
	"fmt"

	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/pitch"
)

// Keyboard view box. Keys are laid out in these units and scaled to the
// keyboard's bounds.
const (
	ViewWidth     = 1000.0
	ViewHeight    = 200.0
	KeyAreaWidth  = 960.0
	KeyAreaHeight = 180.0

	keyAreaOffsetX = (ViewWidth - KeyAreaWidth) / 2
	keyAreaOffsetY = ViewHeight - KeyAreaHeight

	tonesPerOctave = 7
)

// Key is one positioned piano key.
type Key struct {
	NoteIndex int
	Name      string
	Semitone  bool
	Frequency float64
	// Rect is in view box units.
	Rect geometry.Rect
}

// Layout is a keyboard's set of keys.
type Layout struct {
	Octaves     int
	StartOctave int
	Keys        []Key
}

// NewLayout lays out octaves octaves starting at note index
// startOctave*12, plus the four keys that close the last octave.
func NewLayout(octaves, startOctave int) (Layout, error) {
	if octaves < 1 {
		return Layout{}, fmt.Errorf("%w: octaves %d < 1", ErrInvalidConfig, octaves)
	}
	if startOctave < 0 {
		return Layout{}, fmt.Errorf("%w: start octave %d < 0", ErrInvalidConfig, startOctave)
	}

	toneWidth := KeyAreaWidth / float64(3+octaves*tonesPerOctave)
	semitoneWidth := toneWidth * 2 / 3
	semitoneHeight := KeyAreaHeight * 2 / 3

	first := startOctave * 12
	last := first + 4 + octaves*12
	keys := make([]Key, 0, last-first)
	pos := 0
	for n := first; n < last; n++ {
		k := Key{
			NoteIndex: n,
			Name:      pitch.Label(n),
			Semitone:  pitch.IsSemitone(n),
			Frequency: pitch.NoteFrequency(n),
		}
		x := float64(pos)*toneWidth + keyAreaOffsetX
		if k.Semitone {
			k.Rect = geometry.Rect{X: x - semitoneWidth/2, Y: keyAreaOffsetY, Width: semitoneWidth, Height: semitoneHeight}
		} else {
			k.Rect = geometry.Rect{X: x, Y: keyAreaOffsetY, Width: toneWidth, Height: KeyAreaHeight}
			pos++
		}
		keys = append(keys, k)
	}

	return Layout{Octaves: octaves, StartOctave: startOctave, Keys: keys}, nil
}

// KeyAt returns the key under p, in view box units. Semitones sit on top
// of tones and win where they overlap.
func (l Layout) KeyAt(p geometry.Point) (Key, bool) {
	for _, k := range l.Keys {
		if k.Semitone && k.Rect.Contains(p) {
			return k, true
		}
	}
	for _, k := range l.Keys {
		if !k.Semitone && k.Rect.Contains(p) {
			return k, true
		}
	}
	return Key{}, false
}

// Key returns the key for a note index.
func (l Layout) Key(noteIndex int) (Key, bool) {
	first := l.StartOctave * 12
	i := noteIndex - first
	if i < 0 || i >= len(l.Keys) {
		return Key{}, false
	}
	return l.Keys[i], true
}
