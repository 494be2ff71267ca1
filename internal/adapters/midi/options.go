package midi

import (
	"github.com/okian/synthpad/pkg/logger"
)

// Option applies a configuration option to the Output.
type Option func(*Output)

// WithChannel sets the MIDI channel, 0..15. Other values are ignored.
func WithChannel(ch int) Option {
	return func(o *Output) {
		if ch >= 0 && ch <= 15 {
			o.channel = uint8(ch)
		}
	}
}

// WithDecibelVelocity treats trigger velocities as decibels, as produced
// by a radar in volume mode.
func WithDecibelVelocity() Option {
	return func(o *Output) {
		o.decibel = true
	}
}

// WithLogger sets a custom logger for the output.
func WithLogger(l logger.Logger) Option {
	return func(o *Output) {
		if l != nil {
			o.logger = l
		}
	}
}
