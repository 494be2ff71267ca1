package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/adapters/http/api"
	"github.com/okian/synthpad/internal/adapters/http/swagger"
	"github.com/okian/synthpad/internal/adapters/midi"
	"github.com/okian/synthpad/internal/adapters/surface"
	app "github.com/okian/synthpad/internal/app"
	"github.com/okian/synthpad/internal/config"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/pkg/logger"
)

// Engine names, also used as surface ids and admin reset paths.
const (
	keyboardName = "keyboard"
	radarName    = "radar"
)

// Screen layout in logical pixels.
const (
	screenWidth  = 1000
	screenHeight = 640
	radarMargin  = 40
)

var (
	keyboardBounds = geometry.Rect{Width: surface.ViewWidth, Height: surface.ViewHeight}
	radarBounds    = geometry.Rect{
		X:      radarMargin,
		Y:      surface.ViewHeight + radarMargin,
		Width:  screenWidth - 2*radarMargin,
		Height: screenHeight - surface.ViewHeight - 2*radarMargin,
	}
)

// rig wires both surfaces to their engines and to a capture platform.
type rig struct {
	svc       *app.Service
	keyboard  *surface.Keyboard
	radar     *surface.Radar
	hub       *capture.Hub
	listeners []*capture.Listener
	detach    []func()
	outputs   []*midi.Output
}

func newRig(ctx context.Context, cfg *config.Config, platform capture.Platform) (*rig, error) {
	log := logger.Get()
	r := &rig{
		svc: app.New(
			app.WithServiceWindow(cfg.Window()),
			app.WithServiceQueueSize(cfg.QueueSize),
			app.WithServiceLogger(log.Named("service")),
		),
	}

	kbEngine, err := r.svc.NewEngine(keyboardName)
	if err != nil {
		return nil, fmt.Errorf("keyboard engine: %w", err)
	}
	radarEngine, err := r.svc.NewEngine(radarName)
	if err != nil {
		return nil, fmt.Errorf("radar engine: %w", err)
	}

	r.keyboard, err = surface.NewKeyboard(keyboardName, kbEngine, keyboardBounds,
		surface.WithOctaves(cfg.KeyboardOctaves),
		surface.WithStartOctave(cfg.KeyboardStartOctave),
		surface.WithResetter(kbEngine),
	)
	if err != nil {
		return nil, fmt.Errorf("keyboard: %w", err)
	}
	r.radar, err = surface.NewRadar(radarName, radarEngine, radarBounds,
		surface.WithFrequencyRange(cfg.RadarMinFreq, cfg.RadarMaxFreq),
		surface.WithVelocityExponent(cfg.RadarExponent),
		surface.WithMode(surface.Mode(strings.ToLower(cfg.RadarMode))),
		surface.WithPitchCorrection(cfg.RadarPitchCorrection),
		surface.WithRadarResetter(radarEngine),
	)
	if err != nil {
		return nil, fmt.Errorf("radar: %w", err)
	}

	if err := r.svc.SetResetter(keyboardName, r.keyboard); err != nil {
		return nil, err
	}
	if err := r.svc.SetResetter(radarName, r.radar); err != nil {
		return nil, err
	}

	r.hub = capture.NewHub(platform)
	for _, s := range []surface.Surface{r.keyboard, r.radar} {
		l := r.hub.Listen(ctx, s, capture.ModeAll)
		r.listeners = append(r.listeners, l)
		r.detach = append(r.detach, surface.Attach(ctx, l, s))
	}
	return r, nil
}

// attachMIDI plays the keyboard on cfg.MIDIChannel and the radar on the
// channel after it.
func (r *rig) attachMIDI(out *midi.Output, cfg *config.Config) {
	var opts []midi.Option
	if strings.EqualFold(cfg.RadarMode, config.RadarModeVolume) {
		opts = append(opts, midi.WithDecibelVelocity())
	}
	radarOut := out.Fork(append(opts, midi.WithChannel((cfg.MIDIChannel+1)%16))...)

	r.svc.Engine(keyboardName).AddConsumer(out)
	r.svc.Engine(radarName).AddConsumer(radarOut)
	r.outputs = append(r.outputs, radarOut, out)
}

// adminHandler serves the admin API for the rig's service.
func (r *rig) adminHandler() http.Handler {
	mux := http.NewServeMux()
	api.NewServer(r.svc, app.ErrUnknownEngine).Register(mux)
	swagger.Register(mux)
	return mux
}

func (r *rig) start(ctx context.Context) error {
	return r.svc.Start(ctx)
}

// close stops capture, releases every held trigger and silences MIDI.
func (r *rig) close(ctx context.Context) {
	for _, l := range r.listeners {
		l.Stop()
	}
	for _, d := range r.detach {
		d()
	}
	r.svc.Stop(ctx)
	for _, out := range r.outputs {
		if err := out.Close(); err != nil {
			logger.Get().Error(ctx, "closing midi output", logger.Error(err))
		}
	}
}
