package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/synthpad/internal/adapters/capture"
	"github.com/okian/synthpad/internal/adapters/surface"
	app "github.com/okian/synthpad/internal/app"
	"github.com/okian/synthpad/internal/domain/geometry"
	"github.com/okian/synthpad/internal/domain/pitch"
)

const (
	refreshInterval = 30 * time.Millisecond
	headerRows      = 1
	footerRows      = 2
	maxOctaves      = 6
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff8c32"))
	toneStyle     = lipgloss.NewStyle().Background(lipgloss.Color("#eeeee8"))
	semitoneStyle = lipgloss.NewStyle().Background(lipgloss.Color("#222222"))
	activeStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#ff8c32"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

type tickMsg time.Time

// model is a keyboard drawn in terminal cells. The keyboard's bounds are
// kept in cell coordinates so terminal mouse events hit it directly.
type model struct {
	ctx      context.Context
	platform *capture.TeaPlatform
	keyboard *surface.Keyboard
	engine   *app.Engine

	width, height int
	err           error
}

func newModel(ctx context.Context, platform *capture.TeaPlatform, kb *surface.Keyboard, engine *app.Engine) model {
	return model{ctx: ctx, platform: platform, keyboard: kb, engine: engine}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.keyboard.SetBounds(geometry.Rect{
			Y:      headerRows,
			Width:  float64(msg.Width),
			Height: float64(max(msg.Height-headerRows-footerRows, 1)),
		})
	case tea.MouseMsg:
		m.platform.HandleMsg(msg)
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.keyboard.Layout()
	octaves, start := l.Octaves, l.StartOctave

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up":
		octaves = min(octaves+1, maxOctaves)
	case "down":
		octaves = max(octaves-1, 1)
	case "right":
		start++
	case "left":
		start = max(start-1, 0)
	default:
		return m, nil
	}
	m.err = m.keyboard.SetLayout(m.ctx, octaves, start)
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("synthpad"))
	b.WriteString("\n")
	b.WriteString(m.renderKeys())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// renderKeys paints each cell with the style of the key under its centre,
// joining runs of equal style.
func (m model) renderKeys() string {
	active := make(map[int]bool)
	for _, n := range m.keyboard.Down() {
		active[n] = true
	}

	bounds := m.keyboard.Bounds()
	rows := make([]string, 0, int(bounds.Height))
	for y := 0; y < int(bounds.Height); y++ {
		var row strings.Builder
		var run strings.Builder
		var runStyle *lipgloss.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle == nil {
				row.WriteString(run.String())
			} else {
				row.WriteString(runStyle.Render(run.String()))
			}
			run.Reset()
		}

		for x := 0; x < int(bounds.Width); x++ {
			style := cellStyle(m.keyboard, cellCenter(bounds, x, y), active)
			if style != runStyle {
				flush()
				runStyle = style
			}
			run.WriteByte(' ')
		}
		flush()
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

// cellCenter returns the client position of the middle of cell (x, y),
// counted from the top-left cell of bounds.
func cellCenter(bounds geometry.Rect, x, y int) geometry.Point {
	return geometry.Point{X: bounds.X + float64(x) + 0.5, Y: bounds.Y + float64(y) + 0.5}
}

func cellStyle(kb *surface.Keyboard, p geometry.Point, active map[int]bool) *lipgloss.Style {
	key, ok := kb.KeyAt(p)
	switch {
	case !ok:
		return nil
	case active[key.NoteIndex]:
		return &activeStyle
	case key.Semitone:
		return &semitoneStyle
	default:
		return &toneStyle
	}
}

func (m model) renderStatus() string {
	var held []string
	for _, s := range m.engine.Snapshot() {
		name := pitch.Label(int(math.Round(pitch.NoteIndex(s.Frequency))))
		held = append(held, fmt.Sprintf("%s %.1fHz", name, s.Frequency))
	}
	l := m.keyboard.Layout()
	status := fmt.Sprintf("octaves %d from %d | held: %s | arrows change layout, q quits",
		l.Octaves, l.StartOctave, strings.Join(held, ", "))
	if m.err != nil {
		status += " | " + m.err.Error()
	}
	return statusStyle.Render(status)
}
