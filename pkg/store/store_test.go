package store_test

import (
	"errors"
	"testing"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/schema"
	"github.com/aretw0/statekit/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookRecorder struct {
	events    []*domain.UpdateEvent
	destroyed []string
}

func (r *hookRecorder) hooks() domain.StoreHooks {
	return domain.StoreHooks{
		OnUpdate:  func(e *domain.UpdateEvent) { r.events = append(r.events, e) },
		OnDestroy: func(name string) { r.destroyed = append(r.destroyed, name) },
	}
}

func (r *hookRecorder) actions() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

func TestStore_UpdateDeepMerges(t *testing.T) {
	s := store.New("todos", domain.Tree{
		"ui":    domain.Tree{"filter": "all", "page": 1},
		"title": "x",
	})
	before := s.GetSnapshot()

	require.NoError(t, s.Update(domain.Tree{"ui": domain.Tree{"filter": "done"}}))

	state := s.GetSnapshot()
	assert.Equal(t, domain.Tree{"filter": "done", "page": 1}, state["ui"])
	assert.Equal(t, "x", state["title"])
	assert.Equal(t, "all", before["ui"].(domain.Tree)["filter"], "previous state must not be mutated")
}

func TestStore_UpdateRootReplacesNested(t *testing.T) {
	s := store.New("todos", domain.Tree{"ui": domain.Tree{"filter": "all", "page": 1}})

	require.NoError(t, s.UpdateRoot(domain.Tree{"ui": domain.Tree{"filter": "done"}}))

	assert.Equal(t, domain.Tree{"filter": "done"}, s.GetSnapshot()["ui"])
}

func TestStore_UpdateWith(t *testing.T) {
	s := store.New("counter", domain.Tree{"n": 1})

	require.NoError(t, s.UpdateWith(func(prev domain.Tree) domain.Tree {
		return domain.Tree{"n": prev["n"].(int) + 1}
	}))
	assert.Equal(t, 2, s.GetSnapshot()["n"])

	err := s.UpdateWith(func(domain.Tree) domain.Tree { return nil })
	assert.ErrorIs(t, err, store.ErrNilState)
}

func TestStore_RejectsNilPatch(t *testing.T) {
	s := store.New("x", nil)
	assert.ErrorIs(t, s.Update(nil), store.ErrNilPatch)
	assert.ErrorIs(t, s.UpdateRoot(nil), store.ErrNilPatch)
	assert.ErrorIs(t, s.Restore(nil), store.ErrNilPatch)
	assert.True(t, s.IsPristine())
}

func TestStore_ChangesReplayAndOrder(t *testing.T) {
	s := store.New("counter", domain.Tree{"n": 0})

	var first, second []any
	s.Changes().Subscribe(func(t domain.Tree) {
		first = append(first, t["n"])
		if t["n"] == 1 {
			_ = s.Update(domain.Tree{"n": 2})
		}
	})
	s.Changes().Subscribe(func(t domain.Tree) { second = append(second, t["n"]) })

	require.NoError(t, s.Update(domain.Tree{"n": 1}))

	assert.Equal(t, []any{0, 1, 2}, first)
	assert.Equal(t, []any{0, 1, 2}, second)
	assert.Equal(t, 2, s.GetSnapshot()["n"])
}

func TestStore_FlagsShortCircuit(t *testing.T) {
	rec := &hookRecorder{}
	s := store.New("flags", domain.Tree{"loading": false}, store.WithHooks(rec.hooks()))
	boom := errors.New("boom")

	require.NoError(t, s.SetLoading(false))
	assert.Empty(t, rec.events)

	require.NoError(t, s.SetLoading(true))
	require.NoError(t, s.SetLoading(true))
	require.NoError(t, s.SetError(boom))
	require.NoError(t, s.SetError(boom))
	require.NoError(t, s.SetError(nil))
	require.NoError(t, s.SetError(nil))

	assert.Equal(t, []string{domain.ActionSetLoading, domain.ActionSetError, domain.ActionSetError}, rec.actions())
	assert.Equal(t, []string{"error"}, rec.events[1].ChangedKeys)

	q := store.NewQuery(s)
	assert.True(t, q.GetLoading())
	assert.NoError(t, q.GetError())
}

func TestStore_Pristine(t *testing.T) {
	s := store.New("p", domain.Tree{"a": 1})
	q := store.NewQuery(s)
	assert.True(t, q.IsPristine())

	require.NoError(t, s.SetLoading(false))
	assert.False(t, q.IsPristine())
}

func TestStore_CommitLabelsAction(t *testing.T) {
	rec := &hookRecorder{}
	s := store.New("form", domain.Tree{"a": 1}, store.WithHooks(rec.hooks()))

	require.NoError(t, s.Commit("@Test - Write", func(prev domain.Tree) domain.Tree {
		return domain.Tree{"a": 1, "b": 2}
	}))
	require.NoError(t, s.Commit("@Test - Noop", func(prev domain.Tree) domain.Tree { return prev }))

	require.Len(t, rec.events, 1)
	assert.Equal(t, "@Test - Write", rec.events[0].Action)
	assert.Equal(t, "form", rec.events[0].Store)
	assert.Equal(t, []string{"b"}, rec.events[0].ChangedKeys)
}

func TestStore_ResetAndRestore(t *testing.T) {
	s := store.New("cfg", domain.Tree{"a": 1})
	require.NoError(t, s.Update(domain.Tree{"a": 2}))

	require.NoError(t, s.Reset())
	assert.Equal(t, domain.Tree{"a": 1}, s.GetSnapshot())

	require.NoError(t, s.Restore(domain.Tree{"b": 3}))
	assert.Equal(t, domain.Tree{"b": 3}, s.GetSnapshot())
}

func TestStore_Destroy(t *testing.T) {
	rec := &hookRecorder{}
	s := store.New("gone", domain.Tree{"a": 1}, store.WithHooks(rec.hooks()))

	var seen int
	sub := s.Changes().Subscribe(func(domain.Tree) { seen++ })
	require.Equal(t, 1, seen)

	s.Destroy()
	s.Destroy()

	assert.True(t, sub.Closed(), "destroy releases subscribers")
	assert.True(t, s.Destroyed())
	assert.Equal(t, []string{"gone"}, rec.destroyed)

	assert.ErrorIs(t, s.Update(domain.Tree{"a": 2}), store.ErrStoreDestroyed)
	assert.ErrorIs(t, s.SetLoading(true), store.ErrStoreDestroyed)
	assert.Equal(t, domain.Tree{"a": 1}, s.GetSnapshot())
	assert.Equal(t, 1, seen)
	assert.Empty(t, rec.events)
}

func TestStore_ApplyPatch(t *testing.T) {
	s := store.New("cfg", domain.Tree{"a": 1.0, "list": []any{"x"}})
	boom := errors.New("boom")
	require.NoError(t, s.SetError(boom))

	err := s.ApplyPatch([]byte(`[
		{"op": "replace", "path": "/a", "value": 2},
		{"op": "add", "path": "/list/-", "value": "y"}
	]`))
	require.NoError(t, err)

	state := s.GetSnapshot()
	assert.Equal(t, 2.0, state["a"])
	assert.Equal(t, []any{"x", "y"}, state["list"])
	assert.Same(t, boom, state["error"].(error))

	assert.Error(t, s.ApplyPatch([]byte("not a patch")))
	assert.Error(t, s.ApplyPatch([]byte(`[{"op": "remove", "path": "/missing"}]`)))
	assert.Equal(t, 2.0, s.GetSnapshot()["a"])
}

func TestStore_SchemaRejectsCommit(t *testing.T) {
	shape := schema.Schema{
		"ui": schema.Object(schema.Schema{"filter": schema.String()}),
	}
	s := store.New("todos", domain.Tree{"ui": domain.Tree{"filter": "SHOW_ALL"}}, store.WithSchema(shape))

	var seen []domain.Tree
	sub := s.Changes().Subscribe(func(t domain.Tree) { seen = append(seen, t) })
	defer sub.Unsubscribe()

	require.NoError(t, s.Update(domain.Tree{"ui": domain.Tree{"filter": "SHOW_DONE"}}))

	err := s.Update(domain.Tree{"ui": domain.Tree{"filter": 3}})
	require.ErrorIs(t, err, store.ErrSchemaViolation)
	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "ui.filter", errs[0].Key)

	err = s.UpdateRoot(domain.Tree{"ui": "flat"})
	require.ErrorIs(t, err, store.ErrSchemaViolation)

	assert.Equal(t, "SHOW_DONE", s.GetSnapshot()["ui"].(domain.Tree)["filter"])
	assert.Len(t, seen, 2, "rejected commits are not emitted")

	require.NoError(t, s.UpdateRoot(domain.Tree{"other": true}), "keys outside the schema are free")
	assert.Len(t, seen, 3)
}
