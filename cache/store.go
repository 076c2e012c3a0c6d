package cache

import (
	"sync"
	"time"
)

// Entity is anything the store can hold: identifiable and deep-copyable.
// Clone must copy nested collections so that a snapshot taken before an
// optimistic mutation is immune to later edits.
type Entity[T any] interface {
	EntityID() string
	Clone() T
}

// Collection is one cached server fetch: the raw items plus the
// server-reported total for the unfiltered resource.
type Collection[T any] struct {
	Items      []T
	TotalCount int
	FetchedAt  time.Time
}

// Store is the single source of truth on the client. All writes go through
// it; UI layers hold only derived, re-renderable views. An entity may sit in
// several cached collections at once (one per filter/pagination key), so
// entity-level writes fan out to every collection that contains the id.
type Store[T Entity[T]] struct {
	mu        sync.RWMutex
	colls     map[string]*Collection[T]
	seq       map[string]uint64
	normalize func(T) T
}

// NewStore builds a store. normalize runs once at every cache-write boundary
// (nil is allowed); read sites can then rely on total, normalized entities.
func NewStore[T Entity[T]](normalize func(T) T) *Store[T] {
	return &Store[T]{
		colls:     make(map[string]*Collection[T]),
		seq:       make(map[string]uint64),
		normalize: normalize,
	}
}

func (s *Store[T]) norm(e T) T {
	if s.normalize == nil {
		return e
	}
	return s.normalize(e)
}

// SetCollection replaces the collection cached under key.
func (s *Store[T]) SetCollection(key string, items []T, totalCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normed := make([]T, len(items))
	for i, it := range items {
		normed[i] = s.norm(it)
	}
	s.colls[key] = &Collection[T]{
		Items:      normed,
		TotalCount: totalCount,
		FetchedAt:  time.Now(),
	}
}

// Get returns a copy of the collection cached under key.
func (s *Store[T]) Get(key string) (Collection[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[key]
	if !ok {
		return Collection[T]{}, false
	}
	out := *c
	out.Items = append([]T(nil), c.Items...)
	return out, true
}

// Fresh reports whether key holds data younger than the policy's dedupe
// interval; a fresh hit skips the remote fetch entirely.
func (s *Store[T]) Fresh(key string, p Policy) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[key]
	return ok && time.Since(c.FetchedAt) < p.DedupeInterval
}

// Invalidate drops the collection cached under key.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.colls, key)
}

// Lookup finds an entity by id in any cached collection and returns a deep
// copy safe to hand to a mutator.
func (s *Store[T]) Lookup(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.colls {
		for _, e := range c.Items {
			if e.EntityID() == id {
				return e.Clone(), true
			}
		}
	}
	var zero T
	return zero, false
}

// Replace swaps the entity with the given id in every collection that holds
// it. Returns false when the id is nowhere in the cache.
func (s *Store[T]) Replace(id string, entity T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	normed := s.norm(entity)
	found := false
	for _, c := range s.colls {
		for i, e := range c.Items {
			if e.EntityID() == id {
				c.Items[i] = normed
				found = true
			}
		}
	}
	return found
}

// Insert prepends an entity to the collection under key and bumps its total.
// Used for optimistic creates (temporary shadows).
func (s *Store[T]) Insert(key string, entity T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[key]
	if !ok {
		c = &Collection[T]{FetchedAt: time.Now()}
		s.colls[key] = c
	}
	c.Items = append([]T{s.norm(entity)}, c.Items...)
	c.TotalCount++
}

// Removal records where an entity sat before Remove took it out, so a
// failed optimistic delete can put it back exactly where it was.
type Removal struct {
	Key   string
	Index int
}

// Remove deletes the entity from every collection holding it.
func (s *Store[T]) Remove(id string) []Removal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removals []Removal
	for key, c := range s.colls {
		kept := make([]T, 0, len(c.Items))
		removed := false
		for i, e := range c.Items {
			if e.EntityID() == id {
				removed = true
				removals = append(removals, Removal{Key: key, Index: i})
				continue
			}
			kept = append(kept, e)
		}
		if removed {
			c.Items = kept
			c.TotalCount--
		}
	}
	return removals
}

// Reinsert restores an entity at its recorded positions.
func (s *Store[T]) Reinsert(entity T, removals []Removal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normed := s.norm(entity)
	for _, r := range removals {
		c, ok := s.colls[r.Key]
		if !ok {
			continue
		}
		i := r.Index
		if i > len(c.Items) {
			i = len(c.Items)
		}
		c.Items = append(c.Items[:i], append([]T{normed}, c.Items[i:]...)...)
		c.TotalCount++
	}
}

// BeginWrite issues the next sequence number for an entity. The holder of
// the latest sequence owns the optimistic overlay; older in-flight writes
// must not commit or roll back over it.
func (s *Store[T]) BeginWrite(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[id]++
	return s.seq[id]
}

// StillCurrent reports whether seq is the latest write issued for id.
func (s *Store[T]) StillCurrent(id string, seq uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq[id] == seq
}
