// Package dedupe tracks shared registrations so that an underlying
// resource is set up once for its first user and torn down after its last.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper reference-counts registrations by key.
type Deduper interface {
	// SeenAndRecord atomically records one more reference to id.
	// Returns true if id was already registered, false if this is the first reference.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord drops one reference to id. Returns true when the last
	// reference was removed. Unknown ids are ignored and return false.
	Unrecord(ctx context.Context, id string) bool

	// Count returns the number of references held for id.
	Count(id string) int

	// Size returns the number of distinct registered ids.
	Size() int64
}

type inMemoryDeduper struct {
	mu       sync.Mutex
	refs     map[string]int
	size     atomic.Int64
	onChange func(id string, refs int)
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	initial := 0
	for _, opt := range opts {
		opt(d, &initial)
	}
	d.refs = make(map[string]int, initial)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.refs[id]
	d.refs[id] = n + 1
	if n == 0 {
		d.size.Add(1)
	}
	d.notify(id, n+1)
	return n > 0
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.refs[id]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(d.refs, id)
		d.size.Add(-1)
		d.notify(id, 0)
		return true
	}
	d.refs[id] = n - 1
	d.notify(id, n-1)
	return false
}

func (d *inMemoryDeduper) Count(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refs[id]
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// notify must be called with d.mu held.
func (d *inMemoryDeduper) notify(id string, refs int) {
	if d.onChange != nil {
		d.onChange(id, refs)
	}
}
