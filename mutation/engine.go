// Package mutation implements the optimistic read-modify-write protocol:
// snapshot the cached entity, apply the local transform synchronously, fire
// the remote write, then commit the server's answer or roll back to the
// snapshot. The cache stays the single source of truth throughout.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"druckerei-client/api"
	"druckerei-client/cache"
	"druckerei-client/logger"
)

// Notifier is the toast collaborator. The engine guarantees exactly one
// Error call per failed mutation; success messaging is left to callers, who
// know what the user actually did.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards notifications; useful in tests and batch tooling.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// Outcome is always a resolved value: callers branch on OK instead of
// wrapping every mutation in error handling, so the UI never needs a
// recover path to stay responsive.
type Outcome[T any] struct {
	OK     bool
	Entity T
	Err    error
}

// RemoteWrite performs the backend call for a mutation and returns the
// server-confirmed entity, which overrides the optimistic value.
type RemoteWrite[T any] func(ctx context.Context) (T, error)

type Engine[T cache.Entity[T]] struct {
	store  *cache.Store[T]
	notify Notifier
	log    zerolog.Logger
}

func NewEngine[T cache.Entity[T]](store *cache.Store[T], notify Notifier) *Engine[T] {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Engine[T]{
		store:  store,
		notify: notify,
		log:    logger.WithComponent("mutation"),
	}
}

// Apply runs one optimistic mutation against the entity with the given id.
//
// Two in-flight Apply calls on the same entity are allowed; the later
// optimistic write owns the overlay. Each write carries a per-entity
// sequence number and a commit or rollback whose sequence is no longer
// current is discarded (and logged), so a server confirmation is never
// overwritten by the leftovers of an older call.
func (e *Engine[T]) Apply(ctx context.Context, op, id string, mutate func(T) (T, error), write RemoteWrite[T]) Outcome[T] {
	var zero T

	before, ok := e.store.Lookup(id)
	if !ok {
		e.fail(op, ErrNotCached)
		return Outcome[T]{Entity: zero, Err: ErrNotCached}
	}

	// Validation failures reject the mutation before the cache is touched.
	after, err := mutate(before.Clone())
	if err != nil {
		e.fail(op, err)
		return Outcome[T]{Entity: zero, Err: err}
	}

	seq := e.store.BeginWrite(id)
	e.store.Replace(id, after)

	confirmed, err := write(ctx)
	if err != nil {
		if e.store.StillCurrent(id, seq) {
			e.store.Replace(id, before)
		} else {
			e.stale(op, id, "rollback")
		}
		e.fail(op, err)
		return Outcome[T]{Entity: zero, Err: err}
	}

	if e.store.StillCurrent(id, seq) {
		e.store.Replace(id, confirmed)
	} else {
		e.stale(op, id, "confirmation")
	}
	return Outcome[T]{OK: true, Entity: confirmed}
}

// Create inserts a temporary client shadow with a generated UUID into the
// collection under key, then swaps it wholesale for the server entity. The
// temporary id never outlives the round trip: it is replaced on success and
// removed on failure.
func (e *Engine[T]) Create(ctx context.Context, op, key string, build func(tempID string) T, write RemoteWrite[T]) Outcome[T] {
	var zero T

	tempID := uuid.NewString()
	e.store.Insert(key, build(tempID))

	confirmed, err := write(ctx)
	if err != nil {
		e.store.Remove(tempID)
		e.fail(op, err)
		return Outcome[T]{Entity: zero, Err: err}
	}

	e.store.Replace(tempID, confirmed)
	return Outcome[T]{OK: true, Entity: confirmed}
}

// Reject reports a mutation that failed input validation before any
// optimistic write; the cache is untouched and there is nothing to revert.
func (e *Engine[T]) Reject(op string, err error) Outcome[T] {
	e.fail(op, err)
	var zero T
	return Outcome[T]{Entity: zero, Err: err}
}

// Delete removes the entity optimistically and restores it at its previous
// positions when the remote delete fails.
func (e *Engine[T]) Delete(ctx context.Context, op, id string, write func(ctx context.Context) error) Outcome[T] {
	var zero T

	before, ok := e.store.Lookup(id)
	if !ok {
		e.fail(op, ErrNotCached)
		return Outcome[T]{Entity: zero, Err: ErrNotCached}
	}

	seq := e.store.BeginWrite(id)
	removals := e.store.Remove(id)

	if err := write(ctx); err != nil {
		if e.store.StillCurrent(id, seq) {
			e.store.Reinsert(before, removals)
		} else {
			e.stale(op, id, "reinsert")
		}
		e.fail(op, err)
		return Outcome[T]{Entity: zero, Err: err}
	}
	return Outcome[T]{OK: true, Entity: before}
}

func (e *Engine[T]) stale(op, id, phase string) {
	e.log.Warn().
		Err(ErrStaleWrite).
		Str("op", op).
		Str("entity_id", id).
		Str("phase", phase).
		Msg("discarding out-of-sequence cache write")
}

func (e *Engine[T]) fail(op string, err error) {
	e.log.Error().Err(err).Str("op", op).Msg("mutation failed")

	var timeout *api.TimeoutError
	var remote *api.RemoteError
	switch {
	case errors.As(err, &timeout):
		e.notify.Error(fmt.Sprintf("%s timed out, changes were reverted", op))
	case errors.As(err, &remote):
		e.notify.Error(fmt.Sprintf("%s failed: %s", op, remote.Message))
	default:
		e.notify.Error(fmt.Sprintf("%s failed: %s", op, err))
	}
}
