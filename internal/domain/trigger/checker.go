package trigger

import "fmt"

// Checker follows a stream of frames and reports the first invariant violation.
type Checker struct {
	// CheckVelocity enables the [0,1] bound on pressed and down velocities.
	CheckVelocity bool

	active map[int]bool
	frames int
}

// NewChecker returns a Checker with no held triggers.
func NewChecker() *Checker {
	return &Checker{active: make(map[int]bool)}
}

// Observe validates the next frame.
func (c *Checker) Observe(f Frame) error {
	c.frames++
	seen := make(map[int]bool, len(f))
	for i, s := range f {
		if seen[s.ID] {
			return c.wrap(ErrDuplicateID, s)
		}
		seen[s.ID] = true
		if i > 0 && f[i-1].ID > s.ID {
			return c.wrap(ErrUnsorted, s)
		}
	}

	for id := range c.active {
		if !seen[id] {
			return fmt.Errorf("frame %d: %w: id %d", c.frames, ErrMissingTrigger, id)
		}
	}

	// Ids freed in this frame are still occupied when new ids are chosen.
	occupied := make(map[int]bool, len(c.active)+len(f))
	for id := range c.active {
		occupied[id] = true
	}

	var released []int
	for _, s := range f {
		switch s.Type {
		case Pressed:
			if c.active[s.ID] {
				return c.wrap(ErrIDInUse, s)
			}
			if low := lowestFree(occupied); low != s.ID {
				return fmt.Errorf("frame %d: %w: got %d want %d", c.frames, ErrNotLowestID, s.ID, low)
			}
			occupied[s.ID] = true
		case Down:
			if !c.active[s.ID] {
				return c.wrap(ErrNotPressed, s)
			}
		case Released:
			if !c.active[s.ID] {
				return c.wrap(ErrNotPressed, s)
			}
			released = append(released, s.ID)
		default:
			return c.wrap(ErrUnknownState, s)
		}
		if c.CheckVelocity && s.IsDown() && (s.Velocity < 0 || s.Velocity > 1) {
			return c.wrap(ErrVelocityRange, s)
		}
	}

	for _, s := range f {
		if s.Type == Pressed {
			c.active[s.ID] = true
		}
	}
	for _, id := range released {
		delete(c.active, id)
	}
	return nil
}

// Held returns the number of triggers the stream currently holds.
func (c *Checker) Held() int { return len(c.active) }

// Finish reports ErrStillHeld if the stream ended with held triggers.
func (c *Checker) Finish() error {
	if len(c.active) > 0 {
		return fmt.Errorf("%w: %d", ErrStillHeld, len(c.active))
	}
	return nil
}

// CheckFrames validates a complete stream, including its teardown.
func CheckFrames(frames []Frame) error {
	c := NewChecker()
	for _, f := range frames {
		if err := c.Observe(f); err != nil {
			return err
		}
	}
	return c.Finish()
}

func (c *Checker) wrap(err error, s State) error {
	return fmt.Errorf("frame %d: %w: id %d state %s", c.frames, err, s.ID, s.Type)
}

func lowestFree(occupied map[int]bool) int {
	n := 0
	for occupied[n] {
		n++
	}
	return n
}
