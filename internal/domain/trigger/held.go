package trigger

import "sort"

// Held is the last known state of a held trigger.
type Held struct {
	ID        int
	Frequency float64
	Velocity  float64
	// Type is Pressed for a trigger first reported by the latest window,
	// Down once any later window has closed.
	Type StateType
	// PendingRelease marks a trigger pressed and released inside one
	// window. The next window reports it as released.
	PendingRelease bool
}

// HeldSet maps a source key to its held trigger.
type HeldSet map[int]Held

// Clone returns a copy of h.
func (h HeldSet) Clone() HeldSet {
	out := make(HeldSet, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Len returns the number of held triggers.
func (h HeldSet) Len() int { return len(h) }

// HasPending reports whether any trigger waits for a deferred release.
func (h HeldSet) HasPending() bool {
	for _, v := range h {
		if v.PendingRelease {
			return true
		}
	}
	return false
}

// Settle returns h with every Pressed trigger promoted to Down. h itself
// is returned when nothing needs promoting; otherwise h is left untouched
// and a copy is returned.
func (h HeldSet) Settle() HeldSet {
	var out HeldSet
	for k, v := range h {
		if v.Type != Pressed {
			continue
		}
		if out == nil {
			out = h.Clone()
		}
		v.Type = Down
		out[k] = v
	}
	if out == nil {
		return h
	}
	return out
}

// Triggers returns the held triggers as states sorted by id.
func (h HeldSet) Triggers() Frame {
	out := make(Frame, 0, len(h))
	for _, v := range h {
		out = append(out, State{ID: v.ID, Frequency: v.Frequency, Velocity: v.Velocity, Type: v.Type})
	}
	sortFrame(out)
	return out
}

// ReleaseAll builds the teardown frame: every held trigger released with
// its last frequency. It returns nil when nothing is held.
func ReleaseAll(prior HeldSet) Frame {
	if len(prior) == 0 {
		return nil
	}
	out := make(Frame, 0, len(prior))
	for _, v := range prior {
		out = append(out, State{ID: v.ID, Frequency: v.Frequency, Type: Released})
	}
	sortFrame(out)
	return out
}

// FirstAvailableID returns the smallest non-negative integer not in ids.
func FirstAvailableID(ids []int) int {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	next := 0
	for _, id := range sorted {
		if id < next {
			continue
		}
		if id != next {
			return next
		}
		next++
	}
	return next
}

func sortFrame(f Frame) {
	sort.Slice(f, func(i, j int) bool { return f[i].ID < f[j].ID })
}
