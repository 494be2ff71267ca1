package surface

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/pitch"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
)

// Mode selects what the radar's vertical axis produces.
type Mode string

const (
	// VelocityMode maps height to a velocity in [0,1].
	VelocityMode Mode = "velocity"
	// VolumeMode maps height to a volume in decibels, at most 0.
	VolumeMode Mode = "volume"
)

const (
	// DefaultVelocityExponent shapes the velocity curve (1-y)^e.
	DefaultVelocityExponent = 4.0
	// DefaultMinFrequency is the frequency at the left edge.
	DefaultMinFrequency = 50.0
	// DefaultMaxFrequency is the frequency at the right edge.
	DefaultMaxFrequency = 1000.0
	// MinVolume is the floor of the volume curve, reached at the bottom edge.
	MinVolume = -96.0
)

// Radar is an X/Y pad. X maps linearly to frequency and Y, from the top,
// to velocity or volume. The source key of its events is the pointer id.
// A pointer leaving the pad releases its trigger.
type Radar struct {
	name       string
	sink       Sink
	resetter   Resetter
	minFreq    float64
	maxFreq    float64
	exponent   float64
	correction float64
	mode       Mode
	logger     logger.Logger

	mu     sync.Mutex
	bounds geometry.Rect
	down   map[int]bool
}

// NewRadar creates a radar drawn in bounds, in client coordinates.
func NewRadar(name string, sink Sink, bounds geometry.Rect, opts ...RadarOption) (*Radar, error) {
	r := &Radar{
		name:     name,
		sink:     sink,
		minFreq:  DefaultMinFrequency,
		maxFreq:  DefaultMaxFrequency,
		exponent: DefaultVelocityExponent,
		mode:     VelocityMode,
		bounds:   bounds,
		down:     make(map[int]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("radar")
	}

	if r.maxFreq <= r.minFreq {
		return nil, fmt.Errorf("%w: max frequency %g <= min frequency %g", ErrInvalidConfig, r.maxFreq, r.minFreq)
	}
	if r.exponent <= 0 {
		return nil, fmt.Errorf("%w: velocity exponent %g <= 0", ErrInvalidConfig, r.exponent)
	}
	if r.correction < 0 || r.correction > 1 {
		return nil, fmt.Errorf("%w: pitch correction %g outside [0,1]", ErrInvalidConfig, r.correction)
	}
	if r.mode != VelocityMode && r.mode != VolumeMode {
		return nil, fmt.Errorf("%w: mode %q", ErrInvalidConfig, r.mode)
	}
	return r, nil
}

// ID implements capture.Target.
func (r *Radar) ID() string { return r.name }

// Bounds implements capture.Target.
func (r *Radar) Bounds() geometry.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bounds
}

// SetBounds moves or resizes the pad.
func (r *Radar) SetBounds(b geometry.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bounds = b
}

// Frequency maps a normalized x to a frequency, corrected toward the
// nearest note when pitch correction is set.
func (r *Radar) Frequency(x float64) float64 {
	f := math.Abs(x)*(r.maxFreq-r.minFreq) + r.minFreq
	if r.correction > 0 {
		f = pitch.Correct(f, r.correction)
	}
	return f
}

// Velocity maps a normalized y to a velocity, or to a volume in VolumeMode.
func (r *Radar) Velocity(y float64) float64 {
	v := math.Pow(1-y, r.exponent)
	if r.mode == VelocityMode {
		return v
	}
	if v <= 0 {
		return MinVolume
	}
	return math.Max(20*math.Log10(v), MinVolume)
}

// Position maps a frequency and a velocity, or a volume in VolumeMode,
// back to a normalized point on the pad.
func (r *Radar) Position(freq, value float64) geometry.Point {
	v := value
	if r.mode == VolumeMode {
		v = math.Pow(10, value/20)
	}
	return geometry.Point{
		X: geometry.Clamp((freq-r.minFreq)/(r.maxFreq-r.minFreq), 0, 1),
		Y: geometry.Clamp(1-math.Pow(math.Max(v, 0), 1/r.exponent), 0, 1),
	}
}

// GridStops returns the frequencies of the vertical grid lines, every 50 Hz
// from the minimum frequency up to the maximum.
func (r *Radar) GridStops() []float64 {
	var stops []float64
	for f := r.minFreq; f <= r.maxFreq; f += 50 {
		stops = append(stops, f)
	}
	return stops
}

// Handle implements Surface.
func (r *Radar) Handle(ctx context.Context, change capture.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ev := range change.Changes {
		if ev.Kind == capture.Release {
			r.release(ctx, ev.ID)
			continue
		}

		p := ev.Point()
		if !r.bounds.Contains(p) {
			r.release(ctx, ev.ID)
			continue
		}

		n := geometry.Normalize(p, r.bounds)
		kind := trigger.Move
		if !r.down[ev.ID] {
			kind = trigger.Press
			r.down[ev.ID] = true
		}
		r.sink.Submit(ctx, trigger.Event{
			Source:    ev.ID,
			Kind:      kind,
			Frequency: r.Frequency(n.X),
			Velocity:  r.Velocity(n.Y),
		})
	}
}

func (r *Radar) release(ctx context.Context, id int) {
	if !r.down[id] {
		return
	}
	delete(r.down, id)
	r.sink.Submit(ctx, trigger.Event{Source: id, Kind: trigger.Release})
}

// Reset forgets every pointer without emitting releases and returns what
// the resetter released. A pointer still on the pad presses again on its
// next move.
func (r *Radar) Reset(ctx context.Context) trigger.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	var released trigger.Frame
	if r.resetter != nil {
		released = r.resetter.Reset(ctx)
	}
	r.logger.Debug(ctx, "radar reset",
		logger.Int("pointers", len(r.down)),
		logger.Int("released", len(released)),
	)
	r.down = make(map[int]bool)
	return released
}
