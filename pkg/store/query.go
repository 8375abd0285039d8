package store

import (
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/rx"
)

// Source is anything exposing a state stream: a Store or a Query.
type Source interface {
	Changes() rx.Observable[domain.Tree]
}

// Select derives a projection of src's state. The result is lazy (nothing
// runs until the first subscriber), shared by every subscriber, replays the
// latest projection on subscribe and only emits when the projection is not
// Identical to the previous one. It restarts after the last subscriber leaves.
func Select[T any](src Source, fn func(domain.Tree) T) rx.Observable[T] {
	projected := rx.Map(src.Changes(), fn)
	return rx.Share(rx.DistinctUntilChanged(projected, func(a, b T) bool {
		return domain.Identical(a, b)
	}))
}

// Query is a read-only view over a Store.
type Query struct {
	store *Store
}

// NewQuery creates a query over s.
func NewQuery(s *Store) *Query {
	return &Query{store: s}
}

// Store returns the underlying store. Plugins use it to write back.
func (q *Query) Store() *Store {
	return q.store
}

// GetSnapshot returns the current state.
func (q *Query) GetSnapshot() domain.Tree {
	return q.store.GetSnapshot()
}

// Changes returns the store state stream.
func (q *Query) Changes() rx.Observable[domain.Tree] {
	return q.store.Changes()
}

// Select derives a projection of the state; see the package-level Select.
func (q *Query) Select(fn func(domain.Tree) any) rx.Observable[any] {
	return Select(q, fn)
}

// SelectLoading streams the root loading flag.
func (q *Query) SelectLoading() rx.Observable[bool] {
	return Select(q, loadingOf)
}

// GetLoading returns the root loading flag.
func (q *Query) GetLoading() bool {
	return loadingOf(q.GetSnapshot())
}

// SelectError streams the root error.
func (q *Query) SelectError() rx.Observable[error] {
	return Select(q, errorOf)
}

// GetError returns the root error.
func (q *Query) GetError() error {
	return errorOf(q.GetSnapshot())
}

// IsPristine reports whether the store has not been mutated since creation.
func (q *Query) IsPristine() bool {
	return q.store.IsPristine()
}

func loadingOf(t domain.Tree) bool {
	loading, _ := t[domain.KeyLoading].(bool)
	return loading
}

func errorOf(t domain.Tree) error {
	err, _ := t[domain.KeyError].(error)
	return err
}
