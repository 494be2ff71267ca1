package trigger

import (
	"context"
	"sync"
)

// Recorder is a Consumer that keeps the most recent frames.
type Recorder struct {
	mu     sync.RWMutex
	frames []Frame
	limit  int
	total  int64
}

// NewRecorder keeps up to limit frames; limit <= 0 keeps all of them.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Consume stores a copy of f.
func (r *Recorder) Consume(_ context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f.Clone())
	if r.limit > 0 && len(r.frames) > r.limit {
		r.frames = append(r.frames[:0:0], r.frames[len(r.frames)-r.limit:]...)
	}
	r.total++
	return nil
}

// Frames returns the recorded frames, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Frame, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Clone()
	}
	return out
}

// Last returns the latest frame, or nil.
func (r *Recorder) Last() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1].Clone()
}

// Total returns how many frames were consumed, including evicted ones.
func (r *Recorder) Total() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Reset drops all recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
	r.total = 0
}
