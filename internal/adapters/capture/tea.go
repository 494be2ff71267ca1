package capture

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TeaPlatform delivers terminal mouse events. Coordinates are cells.
// Terminals have no touch input.
type TeaPlatform struct {
	router
}

// NewTeaPlatform creates a terminal platform.
func NewTeaPlatform() *TeaPlatform {
	return &TeaPlatform{}
}

// HandleMsg feeds msg to the platform from a bubbletea Update. It reports
// whether msg was a mouse message that a listener cancelled.
func (p *TeaPlatform) HandleMsg(msg tea.Msg) bool {
	m, ok := msg.(tea.MouseMsg)
	if !ok {
		return false
	}
	x, y := float64(m.X), float64(m.Y)

	switch m.Action {
	case tea.MouseActionPress:
		if m.Button != tea.MouseButtonLeft {
			return false
		}
		return p.mouseDown(x, y)
	case tea.MouseActionMotion:
		return p.mouseMove(x, y)
	case tea.MouseActionRelease:
		return p.mouseUp(x, y)
	}
	return false
}
