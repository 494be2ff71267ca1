package surface

import (
	"github.com/okian/synthpad/pkg/logger"
)

// KeyboardOption applies a configuration option to the Keyboard.
type KeyboardOption func(*Keyboard)

// WithOctaves sets the number of octaves.
func WithOctaves(n int) KeyboardOption {
	return func(k *Keyboard) {
		k.octaves = n
	}
}

// WithStartOctave sets the octave of the first key.
func WithStartOctave(n int) KeyboardOption {
	return func(k *Keyboard) {
		k.startOctave = n
	}
}

// WithResetter sets what Reset and SetLayout release, normally the
// keyboard's engine.
func WithResetter(r Resetter) KeyboardOption {
	return func(k *Keyboard) {
		k.resetter = r
	}
}

// WithKeyboardLogger sets a custom logger for the keyboard.
func WithKeyboardLogger(l logger.Logger) KeyboardOption {
	return func(k *Keyboard) {
		if l != nil {
			k.logger = l
		}
	}
}

// RadarOption applies a configuration option to the Radar.
type RadarOption func(*Radar)

// WithFrequencyRange sets the frequencies at the left and right edges.
func WithFrequencyRange(minFreq, maxFreq float64) RadarOption {
	return func(r *Radar) {
		r.minFreq = minFreq
		r.maxFreq = maxFreq
	}
}

// WithVelocityExponent sets the exponent of the velocity curve.
func WithVelocityExponent(e float64) RadarOption {
	return func(r *Radar) {
		r.exponent = e
	}
}

// WithMode selects velocity or volume output.
func WithMode(m Mode) RadarOption {
	return func(r *Radar) {
		r.mode = m
	}
}

// WithRadarResetter sets what Reset releases, normally the radar's engine.
func WithRadarResetter(rs Resetter) RadarOption {
	return func(r *Radar) {
		r.resetter = rs
	}
}

// WithPitchCorrection pulls frequencies toward the nearest equal-tempered
// note. Strength 0 leaves them untouched and 1 snaps them.
func WithPitchCorrection(strength float64) RadarOption {
	return func(r *Radar) {
		r.correction = strength
	}
}

// WithRadarLogger sets a custom logger for the radar.
func WithRadarLogger(l logger.Logger) RadarOption {
	return func(r *Radar) {
		if l != nil {
			r.logger = l
		}
	}
}
