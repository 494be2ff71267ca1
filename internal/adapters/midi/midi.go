// Package midi plays trigger frames on a MIDI output: a pressed trigger
// starts a note, a down trigger follows its pitch and pressure, and a
// released trigger stops its note.
package midi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/pitch"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
	"github.com/okian/synthpad/pkg/metrics"
)

// Sender writes one MIDI message.
type Sender func(gomidi.Message) error

// Output is a trigger.Consumer that sends notes through a Sender. Each
// trigger id maps to at most one sounding key.
type Output struct {
	send    Sender
	port    drivers.Out
	channel uint8
	decibel bool
	logger  logger.Logger

	mu    sync.Mutex
	notes map[int]note
}

type note struct {
	key      uint8
	pressure uint8
}

// New creates an output writing through send.
func New(send Sender, opts ...Option) *Output {
	o := &Output{
		send:  send,
		notes: make(map[int]note),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("midi")
	}
	return o
}

// Ports lists the names of the available output ports.
func Ports() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	sort.Strings(names)
	return names
}

// Open connects to the first output port whose name contains name. An
// empty name picks the first port. A MIDI driver must be registered by
// the caller.
func Open(name string, opts ...Option) (*Output, error) {
	for _, out := range gomidi.GetOutPorts() {
		if name != "" && !strings.Contains(out.String(), name) {
			continue
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			return nil, fmt.Errorf("open midi port %q: %w", out.String(), err)
		}
		o := New(send, opts...)
		o.port = out
		o.logger.Info(context.Background(), "midi port opened", logger.String("port", out.String()))
		return o, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
}

// Consume implements trigger.Consumer.
func (o *Output) Consume(ctx context.Context, frame trigger.Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, s := range frame {
		var err error
		switch s.Type {
		case trigger.Pressed:
			err = o.start(s)
		case trigger.Down:
			err = o.follow(s)
		case trigger.Released:
			err = o.stop(s.ID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("trigger %d: %w", s.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		o.logger.Error(ctx, "midi send failed",
			logger.Int("frame_size", len(frame)),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// Held returns the number of sounding notes.
func (o *Output) Held() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.notes)
}

// Fork returns an output writing through the same sender with its own
// note table, for a second surface on another channel. Closing the fork
// does not close the port.
func (o *Output) Fork(opts ...Option) *Output {
	return New(o.send, append([]Option{WithChannel(int(o.channel)), WithLogger(o.logger)}, opts...)...)
}

// Close stops every sounding note and closes the port if Open created it.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]int, 0, len(o.notes))
	for id := range o.notes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var errs []error
	for _, id := range ids {
		errs = append(errs, o.stop(id))
	}
	if o.port != nil {
		errs = append(errs, o.port.Close())
	}
	return errors.Join(errs...)
}

func (o *Output) start(s trigger.State) error {
	if err := o.stop(s.ID); err != nil {
		return err
	}
	key, ok := pitch.MIDIKey(s.Frequency)
	if !ok {
		o.logger.Debug(context.Background(), "frequency outside midi range",
			logger.Int("id", s.ID),
			logger.Float64("frequency", s.Frequency),
		)
		return nil
	}
	vel := o.velocity(s.Velocity)
	if err := o.write("note_on", gomidi.NoteOn(o.channel, key, vel)); err != nil {
		return err
	}
	o.notes[s.ID] = note{key: key, pressure: vel}
	return nil
}

func (o *Output) follow(s trigger.State) error {
	n, ok := o.notes[s.ID]
	if !ok {
		return o.start(s)
	}
	key, ok := pitch.MIDIKey(s.Frequency)
	if !ok {
		return o.stop(s.ID)
	}
	if key != n.key {
		return o.start(s)
	}
	vel := o.velocity(s.Velocity)
	if vel == n.pressure {
		return nil
	}
	if err := o.write("poly_aftertouch", gomidi.PolyAfterTouch(o.channel, key, vel)); err != nil {
		return err
	}
	o.notes[s.ID] = note{key: key, pressure: vel}
	return nil
}

func (o *Output) stop(id int) error {
	n, ok := o.notes[id]
	if !ok {
		return nil
	}
	delete(o.notes, id)
	return o.write("note_off", gomidi.NoteOff(o.channel, n.key))
}

func (o *Output) write(kind string, msg gomidi.Message) error {
	metrics.RecordMIDIMessage(kind)
	return o.send(msg)
}

// velocity maps a trigger velocity to 1..127. Zero is avoided because a
// note-on with velocity zero is a note-off.
func (o *Output) velocity(v float64) uint8 {
	if o.decibel {
		v = math.Pow(10, v/20)
	}
	if math.IsNaN(v) {
		return 1
	}
	return uint8(math.Max(1, math.Round(geometry.Clamp(v, 0, 1)*127)))
}
