package gesturesim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	// Share of positions drawn from a margin around the surface.
	outsideMargin = 0.1
	// One in mouseOdds sessions drives a pointer with the mouse.
	mouseOdds = 4
	// One in flushOdds steps ends a window.
	flushOdds = 3
	// One in groupOdds touch moves carries every live touch.
	groupOdds = 2
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [0, n).
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randomPoint returns a point in bounds widened by outsideMargin on every side.
func randomPoint(bounds geometry.Rect) geometry.Point {
	p := geometry.Point{
		X: -outsideMargin + getRandomFloat()*(1+2*outsideMargin),
		Y: -outsideMargin + getRandomFloat()*(1+2*outsideMargin),
	}
	return geometry.Denormalize(p, bounds)
}

// generateScripts creates config.Sessions scripts concurrently.
func generateScripts(ctx context.Context, config *Config, stats *Stats) ([]Script, error) {
	logger.Get().Info(ctx, "generating gesture scripts", logger.Int("sessions", config.Sessions))

	scripts := make([]Script, config.Sessions)

	type scriptResult struct {
		index  int
		script Script
		err    error
	}
	resultChan := make(chan scriptResult, config.Sessions)

	workerCount := minInt(config.Workers, config.Sessions)
	perWorker := config.Sessions / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.Sessions
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- scriptResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- scriptResult{index: i, script: generateScript(config, surfaceFor(config.Surface, i))}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.Sessions; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during script generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate script %d: %w", result.index, result.err)
			}
			scripts[result.index] = result.script
		}
	}

	stats.SessionsGenerated = len(scripts)
	logger.Get().Info(ctx, "generated scripts successfully", logger.Int("count", len(scripts)))
	return scripts, nil
}

func surfaceFor(surface string, index int) string {
	if surface != SurfaceMixed {
		return surface
	}
	if index%2 == 0 {
		return SurfaceRadar
	}
	return SurfaceKeyboard
}

type simPointer struct {
	id    int
	down  bool
	done  bool
	moves int
}

// generateScript interleaves the gestures of up to MaxPointers pointers.
// Each pointer presses, moves a random number of times and releases.
func generateScript(config *Config, surface string) Script {
	bounds := boundsFor(surface)
	n := 1 + randomInt(config.MaxPointers)
	pointers := make([]*simPointer, n)
	for i := range pointers {
		pointers[i] = &simPointer{id: i, moves: randomInt(config.MaxMoves + 1)}
	}
	if randomInt(mouseOdds) == 0 {
		pointers[0].id = capture.MouseID
	}

	var steps []Step
	live := n
	for live > 0 {
		p := pickPointer(pointers)
		pt := randomPoint(bounds)
		var step Step

		switch {
		case !p.down:
			p.down = true
			step = pointerStep(p.id, pt, capture.MouseDown, capture.TouchStart)
		case p.moves > 0:
			p.moves--
			step = pointerStep(p.id, pt, capture.MouseMove, capture.TouchMove)
			if step.Kind == capture.TouchMove && randomInt(groupOdds) == 0 {
				step.Touches = append(step.Touches, groupedMoves(pointers, p, bounds)...)
			}
		default:
			p.done = true
			live--
			step = pointerStep(p.id, pt, capture.MouseUp, capture.TouchEnd)
		}

		step.Flush = randomInt(flushOdds) == 0
		steps = append(steps, step)
	}
	if len(steps) > 0 {
		steps[len(steps)-1].Flush = true
	}

	return Script{
		SessionID: uuid.New().String(),
		Surface:   surface,
		Steps:     steps,
	}
}

func pickPointer(pointers []*simPointer) *simPointer {
	var open []*simPointer
	for _, p := range pointers {
		if !p.done {
			open = append(open, p)
		}
	}
	return open[randomInt(len(open))]
}

func pointerStep(id int, pt geometry.Point, mouse, touch capture.NativeKind) Step {
	if id == capture.MouseID {
		return Step{Kind: mouse, X: pt.X, Y: pt.Y}
	}
	return Step{Kind: touch, Touches: []capture.Touch{{ID: id, X: pt.X, Y: pt.Y}}}
}

func groupedMoves(pointers []*simPointer, except *simPointer, bounds geometry.Rect) []capture.Touch {
	var touches []capture.Touch
	for _, p := range pointers {
		if p == except || !p.down || p.done || p.id == capture.MouseID || p.moves == 0 {
			continue
		}
		p.moves--
		pt := randomPoint(bounds)
		touches = append(touches, capture.Touch{ID: p.id, X: pt.X, Y: pt.Y})
	}
	return touches
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
