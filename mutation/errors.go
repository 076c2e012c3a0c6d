package mutation

import "errors"

// ErrStaleWrite marks a confirmation or rollback that arrived after a newer
// optimistic write took over the overlay for the same entity. It is logged
// and discarded, never applied to the cache.
var ErrStaleWrite = errors.New("stale optimistic write superseded by a newer one")

// ErrNotCached means the target entity is in no cached collection; there is
// nothing to mutate optimistically.
var ErrNotCached = errors.New("entity not present in cache")
