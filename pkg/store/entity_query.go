package store

import (
	"slices"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/rx"
)

type allOptions struct {
	filters []func(domain.Tree) bool
	sort    func(a, b domain.Tree) int
	limit   int
}

// AllOption shapes the list produced by GetAll and SelectAll.
type AllOption func(*allOptions)

// Where keeps the entities for which keep returns true. Several Where
// options are combined with AND.
func Where(keep func(domain.Tree) bool) AllOption {
	return func(o *allOptions) {
		if keep != nil {
			o.filters = append(o.filters, keep)
		}
	}
}

// OrderBy sorts the result with cmp (stable). Without it, id order is kept.
func OrderBy(cmp func(a, b domain.Tree) int) AllOption {
	return func(o *allOptions) {
		o.sort = cmp
	}
}

// Limit truncates the result to at most n entities. n <= 0 means no limit.
func Limit(n int) AllOption {
	return func(o *allOptions) {
		o.limit = n
	}
}

// EntityQuery is a read-only view over an EntityStore.
type EntityQuery struct {
	*Query
	entities *EntityStore
}

// NewEntityQuery creates a query over s.
func NewEntityQuery(s *EntityStore) *EntityQuery {
	return &EntityQuery{Query: NewQuery(s.Store), entities: s}
}

// EntityStore returns the underlying entity store.
func (q *EntityQuery) EntityStore() *EntityStore {
	return q.entities
}

// GetAll returns the entities in id order, shaped by opts.
func (q *EntityQuery) GetAll(opts ...AllOption) []domain.Tree {
	return listAll(q.GetSnapshot(), opts)
}

// SelectAll streams GetAll. It re-emits only when the list differs from the
// previous one by entity reference.
func (q *EntityQuery) SelectAll(opts ...AllOption) rx.Observable[[]domain.Tree] {
	projected := rx.Map(q.Changes(), func(t domain.Tree) []domain.Tree {
		return listAll(t, opts)
	})
	return rx.Share(rx.DistinctUntilChanged(projected, sameEntities))
}

// GetEntity returns the entity with id.
func (q *EntityQuery) GetEntity(id domain.ID) (domain.Tree, bool) {
	return entityOf(q.GetSnapshot(), id)
}

// HasEntity reports whether id exists.
func (q *EntityQuery) HasEntity(id domain.ID) bool {
	_, ok := q.GetEntity(id)
	return ok
}

// SelectEntity streams the entity with id; nil while it does not exist.
func (q *EntityQuery) SelectEntity(id domain.ID) rx.Observable[domain.Tree] {
	return Select(q, func(t domain.Tree) domain.Tree {
		e, _ := entityOf(t, id)
		return e
	})
}

// GetEntityAs decodes the entity with id into out; see Decode.
// It reports false when the id does not exist.
func (q *EntityQuery) GetEntityAs(id domain.ID, out any) (bool, error) {
	e, ok := q.GetEntity(id)
	if !ok {
		return false, nil
	}
	return true, Decode(e, out)
}

// GetCount counts the entities matching every pred (all of them without one).
func (q *EntityQuery) GetCount(pred ...func(domain.Tree) bool) int {
	return countOf(q.GetSnapshot(), pred)
}

// SelectCount streams GetCount.
func (q *EntityQuery) SelectCount(pred ...func(domain.Tree) bool) rx.Observable[int] {
	return Select(q, func(t domain.Tree) int { return countOf(t, pred) })
}

// IsEmpty reports whether the collection has no entity.
func (q *EntityQuery) IsEmpty() bool {
	return q.GetCount() == 0
}

// GetActiveID returns the active id, if any.
func (q *EntityQuery) GetActiveID() (domain.ID, bool) {
	return domain.ToID(q.GetSnapshot()[domain.KeyActive])
}

// GetActive returns the active entity, if any.
func (q *EntityQuery) GetActive() (domain.Tree, bool) {
	t := q.GetSnapshot()
	id, ok := domain.ToID(t[domain.KeyActive])
	if !ok {
		return nil, false
	}
	return entityOf(t, id)
}

// SelectActive streams the active entity; nil when none is active.
func (q *EntityQuery) SelectActive() rx.Observable[domain.Tree] {
	return Select(q, func(t domain.Tree) domain.Tree {
		id, ok := domain.ToID(t[domain.KeyActive])
		if !ok {
			return nil
		}
		e, _ := entityOf(t, id)
		return e
	})
}

// IsDirty reports the root dirty marker set by EntityStore.SetDirty.
func (q *EntityQuery) IsDirty() bool {
	dirty, _ := q.GetSnapshot()[domain.KeyDirty].(bool)
	return dirty
}

func entityOf(t domain.Tree, id domain.ID) (domain.Tree, bool) {
	entities, _ := collection(t)
	raw, ok := entities[id]
	if !ok {
		return nil, false
	}
	e, _ := domain.AsTree(raw)
	return e, true
}

func listAll(t domain.Tree, opts []AllOption) []domain.Tree {
	var o allOptions
	for _, opt := range opts {
		opt(&o)
	}
	entities, ids := collection(t)
	out := make([]domain.Tree, 0, len(ids))
outer:
	for _, id := range ids {
		e, _ := domain.AsTree(entities[id])
		for _, keep := range o.filters {
			if !keep(e) {
				continue outer
			}
		}
		out = append(out, e)
	}
	if o.sort != nil {
		slices.SortStableFunc(out, o.sort)
	}
	if o.limit > 0 && len(out) > o.limit {
		out = out[:o.limit]
	}
	return out
}

func countOf(t domain.Tree, pred []func(domain.Tree) bool) int {
	entities, ids := collection(t)
	if len(pred) == 0 {
		return len(ids)
	}
	n := 0
outer:
	for _, id := range ids {
		e, _ := domain.AsTree(entities[id])
		for _, p := range pred {
			if !p(e) {
				continue outer
			}
		}
		n++
	}
	return n
}

func sameEntities(a, b []domain.Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !domain.Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}
