// Package config defines process configuration and its loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers defaults, an optional YAML file and SYNTHPAD_* env vars.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Radar value modes.
const (
	RadarModeVelocity = "velocity"
	RadarModeVolume   = "volume"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AdminAddr is the listen address of the admin HTTP server. Empty disables it.
	AdminAddr string `koanf:"admin_addr"`

	// WindowMS is the reconciliation window in milliseconds.
	WindowMS int `koanf:"window_ms"`

	// QueueSize bounds the per-surface event buffer.
	QueueSize int `koanf:"queue_size"`

	// KeyboardOctaves and KeyboardStartOctave shape the on-screen keyboard.
	KeyboardOctaves     int `koanf:"keyboard_octaves"`
	KeyboardStartOctave int `koanf:"keyboard_start_octave"`

	// RadarMinFreq and RadarMaxFreq bound the radar's horizontal axis in Hz.
	RadarMinFreq float64 `koanf:"radar_min_freq"`
	RadarMaxFreq float64 `koanf:"radar_max_freq"`

	// RadarExponent shapes the vertical velocity curve.
	RadarExponent float64 `koanf:"radar_exponent"`

	// RadarPitchCorrection pulls radar frequencies toward the nearest note,
	// from 0 (off) to 1 (snap).
	RadarPitchCorrection float64 `koanf:"radar_pitch_correction"`

	// RadarMode is "velocity" or "volume" (decibels).
	RadarMode string `koanf:"radar_mode"`

	// MIDIPort is a substring of the MIDI output port name. Empty disables MIDI.
	MIDIPort string `koanf:"midi_port"`

	// MIDIChannel is the zero-based MIDI channel.
	MIDIChannel int `koanf:"midi_channel"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		AdminAddr:            "",
		WindowMS:             1,
		QueueSize:            1024,
		KeyboardOctaves:      2,
		KeyboardStartOctave:  2,
		RadarMinFreq:         50,
		RadarMaxFreq:         1000,
		RadarExponent:        4,
		RadarPitchCorrection: 0,
		RadarMode:            RadarModeVelocity,
		MIDIPort:             "",
		MIDIChannel:          0,
	}
}

// Window returns the reconciliation window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.WindowMS <= 0:
		return fmt.Errorf("%w: window_ms must be positive, got %d", ErrInvalidConfig, c.WindowMS)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.KeyboardOctaves < 1:
		return fmt.Errorf("%w: keyboard_octaves must be at least 1, got %d", ErrInvalidConfig, c.KeyboardOctaves)
	case c.KeyboardStartOctave < 0:
		return fmt.Errorf("%w: keyboard_start_octave must not be negative, got %d", ErrInvalidConfig, c.KeyboardStartOctave)
	case c.RadarMaxFreq <= c.RadarMinFreq:
		return fmt.Errorf("%w: radar_max_freq (%g) must exceed radar_min_freq (%g)",
			ErrInvalidConfig, c.RadarMaxFreq, c.RadarMinFreq)
	case c.RadarExponent <= 0:
		return fmt.Errorf("%w: radar_exponent must be positive, got %g", ErrInvalidConfig, c.RadarExponent)
	case c.RadarPitchCorrection < 0 || c.RadarPitchCorrection > 1:
		return fmt.Errorf("%w: radar_pitch_correction must be in [0,1], got %g", ErrInvalidConfig, c.RadarPitchCorrection)
	case c.MIDIChannel < 0 || c.MIDIChannel > 15:
		return fmt.Errorf("%w: midi_channel must be in 0..15, got %d", ErrInvalidConfig, c.MIDIChannel)
	}

	switch strings.ToLower(c.RadarMode) {
	case RadarModeVelocity, RadarModeVolume:
	default:
		return fmt.Errorf("%w: unknown radar_mode %q", ErrInvalidConfig, c.RadarMode)
	}
	return nil
}
