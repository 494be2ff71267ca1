package trigger

type working struct {
	State
	heldBefore bool
	pending    bool
}

// Reconcile applies one window of events to prior and returns the frame to
// emit together with the new held set. prior is never modified.
//
// Events apply in arrival order and the latest values per source win. A
// press or move from an unknown source starts a new trigger; a release
// from an unknown source is ignored. A source pressed and released within
// the same window is reported as pressed now and released by the next
// window. A source held before the window that is released and pressed
// again keeps its id and stays down. A window with nothing to report
// emits no frame but still settles pressed triggers to down.
func Reconcile(events []Event, prior HeldSet) (Frame, HeldSet) {
	if len(events) == 0 && !prior.HasPending() {
		return nil, prior.Settle()
	}

	work := make(map[int]*working, len(prior)+len(events))
	for src, h := range prior {
		w := &working{
			State:      State{ID: h.ID, Frequency: h.Frequency, Velocity: h.Velocity, Type: Down},
			heldBefore: true,
		}
		if h.PendingRelease {
			w.Type = Released
			w.Velocity = 0
		}
		work[src] = w
	}

	for _, ev := range events {
		w, known := work[ev.Source]
		switch ev.Kind {
		case Press, Move:
			if !known {
				work[ev.Source] = &working{State: State{
					ID:        nextID(work),
					Frequency: ev.Frequency,
					Velocity:  ev.Velocity,
					Type:      Pressed,
				}}
				continue
			}
			if w.Type == Released {
				w.Type = Down
			}
			w.pending = false
			w.Frequency = ev.Frequency
			w.Velocity = ev.Velocity
		case Release:
			if !known || w.Type == Released {
				continue
			}
			if w.heldBefore {
				w.Type = Released
				w.Velocity = 0
				continue
			}
			w.pending = true
		}
	}

	frame := make(Frame, 0, len(work))
	next := make(HeldSet, len(work))
	for src, w := range work {
		frame = append(frame, w.State)
		if w.Type == Released {
			continue
		}
		next[src] = Held{
			ID:             w.ID,
			Frequency:      w.Frequency,
			Velocity:       w.Velocity,
			Type:           w.Type,
			PendingRelease: w.pending,
		}
	}
	sortFrame(frame)
	return frame, next
}

func nextID(work map[int]*working) int {
	ids := make([]int, 0, len(work))
	for _, w := range work {
		ids = append(ids, w.ID)
	}
	return FirstAvailableID(ids)
}
