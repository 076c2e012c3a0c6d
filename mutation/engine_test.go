package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"druckerei-client/api"
	"druckerei-client/cache"
)

type entity struct {
	ID     string
	Status string
	Paid   int
}

func (e entity) EntityID() string { return e.ID }
func (e entity) Clone() entity    { return e }

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func newFixture() (*cache.Store[entity], *Engine[entity], *recordingNotifier) {
	store := cache.NewStore[entity](nil)
	notify := &recordingNotifier{}
	return store, NewEngine(store, notify), notify
}

func cached(t *testing.T, store *cache.Store[entity], id string) entity {
	t.Helper()
	e, ok := store.Lookup(id)
	require.True(t, ok)
	return e
}

func TestApplyCommitsServerEntity(t *testing.T) {
	store, engine, notify := newFixture()
	store.SetCollection("list", []entity{{ID: "a", Status: "unpaid"}}, 1)

	out := engine.Apply(context.Background(), "add payment", "a",
		func(e entity) (entity, error) {
			e.Status = "paid"
			e.Paid = 100
			return e, nil
		},
		func(ctx context.Context) (entity, error) {
			// The optimistic value is already visible while the write runs.
			assert.Equal(t, "paid", cached(t, store, "a").Status)
			// Server-confirmed payload differs from the local guess and wins.
			return entity{ID: "a", Status: "paid", Paid: 105}, nil
		})

	require.True(t, out.OK)
	assert.Equal(t, 105, out.Entity.Paid)
	assert.Equal(t, 105, cached(t, store, "a").Paid, "confirmed entity is authoritative")
	assert.Empty(t, notify.errors)
}

func TestApplyRollsBackOnRemoteError(t *testing.T) {
	store, engine, notify := newFixture()
	store.SetCollection("list", []entity{{ID: "a", Status: "unpaid", Paid: 0}}, 1)

	out := engine.Apply(context.Background(), "add payment", "a",
		func(e entity) (entity, error) {
			e.Status = "paid"
			return e, nil
		},
		func(ctx context.Context) (entity, error) {
			return entity{}, &api.RemoteError{Status: 500, Message: "boom"}
		})

	require.False(t, out.OK)
	assert.Equal(t, "unpaid", cached(t, store, "a").Status, "rollback restores the snapshot exactly")
	require.Len(t, notify.errors, 1, "exactly one toast per failed mutation")
	assert.Contains(t, notify.errors[0], "boom")
}

func TestApplyTimeoutRollsBackToo(t *testing.T) {
	store, engine, notify := newFixture()
	store.SetCollection("list", []entity{{ID: "a", Status: "unpaid"}}, 1)

	out := engine.Apply(context.Background(), "add payment", "a",
		func(e entity) (entity, error) { e.Status = "paid"; return e, nil },
		func(ctx context.Context) (entity, error) {
			return entity{}, &api.TimeoutError{Op: "POST /x", Timeout: time.Second}
		})

	require.False(t, out.OK)
	assert.Equal(t, "unpaid", cached(t, store, "a").Status)
	require.Len(t, notify.errors, 1)
	assert.Contains(t, notify.errors[0], "timed out")
}

func TestApplyValidationRejectLeavesCacheUntouched(t *testing.T) {
	store, engine, notify := newFixture()
	store.SetCollection("list", []entity{{ID: "a", Status: "unpaid"}}, 1)

	verr := errors.New("amount must be positive")
	called := false
	out := engine.Apply(context.Background(), "add payment", "a",
		func(e entity) (entity, error) { return entity{}, verr },
		func(ctx context.Context) (entity, error) {
			called = true
			return entity{}, nil
		})

	require.False(t, out.OK)
	assert.ErrorIs(t, out.Err, verr)
	assert.False(t, called, "no remote write after a validation reject")
	assert.Equal(t, "unpaid", cached(t, store, "a").Status)
	assert.Len(t, notify.errors, 1)
}

func TestApplyUncachedEntity(t *testing.T) {
	_, engine, _ := newFixture()
	out := engine.Apply(context.Background(), "add payment", "ghost",
		func(e entity) (entity, error) { return e, nil },
		func(ctx context.Context) (entity, error) { return entity{}, nil })
	require.False(t, out.OK)
	assert.ErrorIs(t, out.Err, ErrNotCached)
}

func TestApplyStaleRollbackIsDiscarded(t *testing.T) {
	store, engine, _ := newFixture()
	store.SetCollection("list", []entity{{ID: "a", Paid: 0}}, 1)

	// The first write fails, but while it is in flight a second mutation on
	// the same entity completes. The first call's rollback must not clobber
	// the newer confirmed state.
	out := engine.Apply(context.Background(), "first", "a",
		func(e entity) (entity, error) { e.Paid = 10; return e, nil },
		func(ctx context.Context) (entity, error) {
			second := engine.Apply(ctx, "second", "a",
				func(e entity) (entity, error) { e.Paid = 20; return e, nil },
				func(ctx context.Context) (entity, error) {
					return entity{ID: "a", Paid: 25}, nil
				})
			require.True(t, second.OK)
			return entity{}, &api.RemoteError{Status: 500, Message: "late failure"}
		})

	require.False(t, out.OK)
	assert.Equal(t, 25, cached(t, store, "a").Paid, "newer confirmation survives the stale rollback")
}

func TestApplyStaleConfirmationIsDiscarded(t *testing.T) {
	store, engine, _ := newFixture()
	store.SetCollection("list", []entity{{ID: "a", Paid: 0}}, 1)

	out := engine.Apply(context.Background(), "first", "a",
		func(e entity) (entity, error) { e.Paid = 10; return e, nil },
		func(ctx context.Context) (entity, error) {
			second := engine.Apply(ctx, "second", "a",
				func(e entity) (entity, error) { e.Paid = 20; return e, nil },
				func(ctx context.Context) (entity, error) {
					return entity{ID: "a", Paid: 25}, nil
				})
			require.True(t, second.OK)
			// First write "succeeds" late with an outdated confirmation.
			return entity{ID: "a", Paid: 11}, nil
		})

	require.True(t, out.OK, "the caller still sees its own confirmed entity")
	assert.Equal(t, 25, cached(t, store, "a").Paid, "cache keeps the newer write")
}

func TestCreateReplacesShadow(t *testing.T) {
	store, engine, _ := newFixture()
	store.SetCollection("list", []entity{{ID: "x"}}, 1)

	var shadowID string
	out := engine.Create(context.Background(), "create", "list",
		func(tempID string) entity {
			shadowID = tempID
			// Shadow is visible immediately.
			return entity{ID: tempID, Status: "unpaid"}
		},
		func(ctx context.Context) (entity, error) {
			e := cached(t, store, shadowID)
			assert.Equal(t, "unpaid", e.Status)
			return entity{ID: "server-id", Status: "unpaid"}, nil
		})

	require.True(t, out.OK)
	_, ok := store.Lookup(shadowID)
	assert.False(t, ok, "temporary id never outlives the round trip")
	assert.Equal(t, "server-id", cached(t, store, "server-id").ID)

	c, _ := store.Get("list")
	assert.Equal(t, 2, c.TotalCount)
}

func TestCreateRemovesShadowOnFailure(t *testing.T) {
	store, engine, notify := newFixture()
	store.SetCollection("list", []entity{{ID: "x"}}, 1)

	var shadowID string
	out := engine.Create(context.Background(), "create", "list",
		func(tempID string) entity {
			shadowID = tempID
			return entity{ID: tempID}
		},
		func(ctx context.Context) (entity, error) {
			return entity{}, &api.RemoteError{Status: 422, Message: "rejected"}
		})

	require.False(t, out.OK)
	_, ok := store.Lookup(shadowID)
	assert.False(t, ok)
	c, _ := store.Get("list")
	assert.Equal(t, 1, c.TotalCount)
	assert.Len(t, notify.errors, 1)
}

func TestDeleteReinsertsOnFailure(t *testing.T) {
	store, engine, _ := newFixture()
	store.SetCollection("list", []entity{{ID: "a"}, {ID: "b"}, {ID: "c"}}, 3)

	out := engine.Delete(context.Background(), "delete", "b",
		func(ctx context.Context) error {
			_, ok := store.Lookup("b")
			assert.False(t, ok, "optimistically removed while the write runs")
			return &api.RemoteError{Status: 500, Message: "nope"}
		})

	require.False(t, out.OK)
	c, _ := store.Get("list")
	assert.Equal(t, []entity{{ID: "a"}, {ID: "b"}, {ID: "c"}}, c.Items, "restored at its old position")
}

func TestDeleteCommits(t *testing.T) {
	store, engine, _ := newFixture()
	store.SetCollection("list", []entity{{ID: "a"}, {ID: "b"}}, 2)

	out := engine.Delete(context.Background(), "delete", "b",
		func(ctx context.Context) error { return nil })

	require.True(t, out.OK)
	_, ok := store.Lookup("b")
	assert.False(t, ok)
	c, _ := store.Get("list")
	assert.Equal(t, 1, c.TotalCount)
}
