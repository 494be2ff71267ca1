package gesturesim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/adapters/surface"
	"github.com/okian/synthpad/internal/app"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/trigger"
	"github.com/okian/synthpad/pkg/logger"
)

const (
	simQueueSize = 4096
	// Timed sessions pause every few steps so windows can close mid-gesture.
	timedPauseEvery = 4
)

var (
	radarBounds    = geometry.Rect{Width: 400, Height: 400}
	keyboardBounds = geometry.Rect{Width: surface.ViewWidth, Height: surface.ViewHeight}
)

func boundsFor(name string) geometry.Rect {
	if name == SurfaceKeyboard {
		return keyboardBounds
	}
	return radarBounds
}

// session is the pipeline one script is replayed through: memory platform,
// capture hub, surface and engine.
type session struct {
	platform *capture.MemoryPlatform
	listener *capture.Listener
	engine   *app.Engine
	resetter app.Resetter
	recorder *trigger.Recorder
	velocity bool
}

func newSession(ctx context.Context, script Script, window time.Duration, log logger.Logger) (*session, error) {
	s := &session{
		platform: capture.NewMemoryPlatform(),
		recorder: trigger.NewRecorder(0),
	}
	s.engine = app.NewEngine("sim-"+script.Surface,
		app.WithConsumer(s.recorder),
		app.WithQueueSize(simQueueSize),
		app.WithWindow(window),
		app.WithLogger(log.Named("engine")),
	)

	var surf surface.Surface
	switch script.Surface {
	case SurfaceRadar:
		r, err := surface.NewRadar(script.SessionID, s.engine, radarBounds,
			surface.WithRadarResetter(s.engine), surface.WithRadarLogger(log))
		if err != nil {
			return nil, err
		}
		surf = r
		s.resetter = r
		s.velocity = true
	case SurfaceKeyboard:
		kb, err := surface.NewKeyboard(script.SessionID, s.engine, keyboardBounds,
			surface.WithResetter(s.engine), surface.WithKeyboardLogger(log))
		if err != nil {
			return nil, err
		}
		surf = kb
		s.resetter = kb
	default:
		return nil, fmt.Errorf("unknown surface %q", script.Surface)
	}

	hub := capture.NewHub(s.platform, capture.WithLogger(log))
	s.listener = hub.Listen(ctx, surf, capture.ModeAll)
	surface.Attach(ctx, s.listener, surf)
	return s, nil
}

func (s *session) inject(step Step) {
	switch step.Kind {
	case capture.MouseDown:
		s.platform.InjectMouseDown(step.X, step.Y)
	case capture.MouseMove:
		s.platform.InjectMouseMove(step.X, step.Y)
	case capture.MouseUp:
		s.platform.InjectMouseUp(step.X, step.Y)
	case capture.TouchStart:
		s.platform.InjectTouchStart(step.Touches...)
	case capture.TouchMove:
		s.platform.InjectTouchMove(step.Touches...)
	case capture.TouchEnd:
		s.platform.InjectTouchEnd(step.Touches...)
	}
}

// teardown stops capture before resetting the surface and its engine so
// no event arrives after the release frame.
func (s *session) teardown(ctx context.Context) {
	s.listener.Stop()
	s.resetter.Reset(ctx)
	_ = s.engine.Close()
}

// replay plays script and checks the frames it produced.
func replay(ctx context.Context, config *Config, script Script) Result {
	log := logger.Get().Named("gesturesim").Named(script.Surface)
	res := Result{SessionID: script.SessionID, Surface: script.Surface}

	s, err := newSession(ctx, script, config.Window, log)
	if err != nil {
		res.Err = err
		return res
	}

	if config.Timed {
		runCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.engine.Run(runCtx)
		}()
		for i, step := range script.Steps {
			s.inject(step)
			if i%timedPauseEvery == 0 {
				time.Sleep(config.Window)
			}
		}
		s.teardown(ctx)
		cancel()
		wg.Wait()
	} else {
		for _, step := range script.Steps {
			s.inject(step)
			if step.Flush {
				s.engine.Flush(ctx)
			}
		}
		s.teardown(ctx)
	}

	frames := s.recorder.Frames()
	res.Frames = len(frames)
	res.Pressed = countPressed(frames)
	res.Err = verifyFrames(frames, s.velocity)
	return res
}

func countPressed(frames []trigger.Frame) int {
	n := 0
	for _, f := range frames {
		for _, st := range f {
			if st.Type == trigger.Pressed {
				n++
			}
		}
	}
	return n
}
