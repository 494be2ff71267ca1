package main

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/adapters/surface"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/pkg/logger"
)

const (
	// Seconds a released key takes to fade out.
	fadeDuration = 0.35
	maxOctaves   = 6
	dotRadius    = 10
)

var (
	backgroundColor = color.RGBA{R: 0x18, G: 0x18, B: 0x1c, A: 0xff}
	toneColor       = color.RGBA{R: 0xee, G: 0xee, B: 0xe8, A: 0xff}
	semitoneColor   = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	activeColor     = color.RGBA{R: 0xff, G: 0x8c, B: 0x32, A: 0xff}
	gridColor       = color.RGBA{R: 0x3a, G: 0x3a, B: 0x44, A: 0xff}
	outlineColor    = color.RGBA{R: 0x55, G: 0x55, B: 0x5f, A: 0xff}
)

// game draws the rig and feeds ebiten input into it.
type game struct {
	ctx      context.Context
	rig      *rig
	platform *capture.EbitenPlatform
	logger   logger.Logger

	// glow is the highlight level of each key; fades tween it to zero.
	glow  map[int]float32
	fades map[int]*gween.Tween
}

func newGame(ctx context.Context, r *rig, platform *capture.EbitenPlatform) *game {
	return &game{
		ctx:      ctx,
		rig:      r,
		platform: platform,
		logger:   logger.Get().Named("game"),
		glow:     make(map[int]float32),
		fades:    make(map[int]*gween.Tween),
	}
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.platform.Update()
	g.handleLayoutKeys()
	g.updateGlow(float32(1 / float64(ebiten.TPS())))
	return nil
}

// handleLayoutKeys changes the octave count with up/down and the first
// octave with left/right.
func (g *game) handleLayoutKeys() {
	l := g.rig.keyboard.Layout()
	octaves, start := l.Octaves, l.StartOctave

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && octaves < maxOctaves:
		octaves++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && octaves > 1:
		octaves--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		start++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) && start > 0:
		start--
	default:
		return
	}

	if err := g.rig.keyboard.SetLayout(g.ctx, octaves, start); err != nil {
		g.logger.Warn(g.ctx, "layout change rejected", logger.Error(err))
		return
	}
	g.glow = make(map[int]float32)
	g.fades = make(map[int]*gween.Tween)
}

func (g *game) updateGlow(dt float32) {
	down := make(map[int]bool)
	for _, n := range g.rig.keyboard.Down() {
		down[n] = true
		g.glow[n] = 1
		delete(g.fades, n)
	}

	for n, level := range g.glow {
		if down[n] {
			continue
		}
		tw, ok := g.fades[n]
		if !ok {
			tw = gween.New(level, 0, fadeDuration, ease.OutQuad)
			g.fades[n] = tw
		}
		v, done := tw.Update(dt)
		if done {
			delete(g.glow, n)
			delete(g.fades, n)
			continue
		}
		g.glow[n] = v
	}
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.drawKeyboard(screen)
	g.drawRadar(screen)
}

func (g *game) drawKeyboard(screen *ebiten.Image) {
	b := g.rig.keyboard.Bounds()
	sx := b.Width / surface.ViewWidth
	sy := b.Height / surface.ViewHeight

	// Tones first so semitones are drawn on top.
	for _, semitone := range []bool{false, true} {
		for _, k := range g.rig.keyboard.Layout().Keys {
			if k.Semitone != semitone {
				continue
			}
			base := toneColor
			if semitone {
				base = semitoneColor
			}
			x := float32(b.X + k.Rect.X*sx)
			y := float32(b.Y + k.Rect.Y*sy)
			w := float32(k.Rect.Width * sx)
			h := float32(k.Rect.Height * sy)
			vector.DrawFilledRect(screen, x, y, w, h, blend(base, activeColor, g.glow[k.NoteIndex]), false)
			vector.StrokeRect(screen, x, y, w, h, 1, outlineColor, false)
		}
	}
}

func (g *game) drawRadar(screen *ebiten.Image) {
	b := g.rig.radar.Bounds()
	stops := g.rig.radar.GridStops()
	for i := range stops {
		x := float32(b.X + b.Width*float64(i)/float64(len(stops)-1))
		vector.StrokeLine(screen, x, float32(b.Y), x, float32(b.Y+b.Height), 1, gridColor, false)
	}
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), 2, outlineColor, false)

	for _, s := range g.rig.svc.Engine(radarName).Snapshot() {
		p := geometry.Denormalize(g.rig.radar.Position(s.Frequency, s.Velocity), b)
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), dotRadius, activeColor, true)
	}
}

// Layout implements ebiten.Game.
func (g *game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func blend(from, to color.RGBA, t float32) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float32(a) + (float32(b)-float32(a))*t)
	}
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 0xff}
}
