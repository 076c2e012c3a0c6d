package client

import "sync"

// View is the plain data object handed to the presentation layer: the
// visible page, badge counts and pagination facts. It is derived and
// re-renderable; the cache stays the only source of truth.
type View[T any] struct {
	Visible     []T
	Counts      map[string]int
	CurrentPage int
	TotalPages  int
	TotalCount  int
	FellBack    bool
	Stale       bool
}

// Inflight tracks which mutation kinds are running against which entities,
// so the UI can show a spinner on one payment row without blocking
// interactions anywhere else.
type Inflight struct {
	mu  sync.RWMutex
	ops map[string]map[string]int
}

func NewInflight() *Inflight {
	return &Inflight{ops: make(map[string]map[string]int)}
}

// Start marks (kind, id) as in flight and returns the matching done func.
func (f *Inflight) Start(kind, id string) func() {
	f.mu.Lock()
	if f.ops[kind] == nil {
		f.ops[kind] = make(map[string]int)
	}
	f.ops[kind][id]++
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.ops[kind][id]--
			if f.ops[kind][id] <= 0 {
				delete(f.ops[kind], id)
			}
			f.mu.Unlock()
		})
	}
}

// Is reports whether a mutation of the given kind is in flight for id.
func (f *Inflight) Is(kind, id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ops[kind][id] > 0
}

// Any reports whether any mutation is in flight for id.
func (f *Inflight) Any(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ids := range f.ops {
		if ids[id] > 0 {
			return true
		}
	}
	return false
}
