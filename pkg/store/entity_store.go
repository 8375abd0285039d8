package store

import (
	"fmt"
	"slices"

	"github.com/aretw0/statekit/pkg/domain"
)

// EntityStore is a Store whose state carries a normalized entity collection:
// `entities` (id → entity), `ids` (iteration order) and `active`.
// Every id in ids has an entry in entities and vice versa.
type EntityStore struct {
	*Store
}

// NewEntityStore creates an entity store. initial is merged over the empty
// collection `{entities: {}, ids: [], active: nil, loading: true, error: nil}`.
func NewEntityStore(name string, initial domain.Tree, opts ...Option) *EntityStore {
	base := domain.Tree{
		domain.KeyEntities: domain.Tree{},
		domain.KeyIDs:      []domain.ID{},
		domain.KeyActive:   nil,
		domain.KeyLoading:  true,
		domain.KeyError:    nil,
	}
	s := newStore(name, shallowMerge(base, initial), newConfig(opts))
	s.normalize = normalizeCollection
	return &EntityStore{Store: s}
}

// Set replaces the collection with entities. Order follows the first
// occurrence of every id; when an id repeats, the last value wins. Set also
// clears the loading flag and an active id that no longer exists.
func (s *EntityStore) Set(entities []domain.Tree) error {
	byID := make(domain.Tree, len(entities))
	ids := make([]domain.ID, 0, len(entities))
	for i, e := range entities {
		id, err := s.idOf(e)
		if err != nil {
			return fmt.Errorf("set entity %d: %w", i, err)
		}
		if _, seen := byID[id]; !seen {
			ids = append(ids, id)
		}
		byID[id] = e
	}

	return s.commit(domain.ActionSet, func(prev domain.Tree) (domain.Tree, error) {
		next := shallowMerge(prev, domain.Tree{
			domain.KeyEntities: byID,
			domain.KeyIDs:      ids,
			domain.KeyLoading:  false,
		})
		return resetActive(next), nil
	})
}

// Add appends entities in order. An id that already exists, in the store or
// earlier in the same call, is ignored: the first write wins.
func (s *EntityStore) Add(entities ...domain.Tree) error {
	type pending struct {
		id     domain.ID
		entity domain.Tree
	}
	batch := make([]pending, 0, len(entities))
	for i, e := range entities {
		id, err := s.idOf(e)
		if err != nil {
			return fmt.Errorf("add entity %d: %w", i, err)
		}
		batch = append(batch, pending{id: id, entity: e})
	}

	return s.commit(domain.ActionAdd, func(prev domain.Tree) (domain.Tree, error) {
		current, ids := collection(prev)
		var byID domain.Tree
		var order []domain.ID
		for _, p := range batch {
			if _, exists := current[p.id]; exists {
				continue
			}
			if _, exists := byID[p.id]; exists {
				continue
			}
			if byID == nil {
				byID = copyTree(current)
				order = slices.Clone(ids)
			}
			byID[p.id] = p.entity
			order = append(order, p.id)
		}
		if byID == nil {
			return prev, nil
		}
		return shallowMerge(prev, domain.Tree{domain.KeyEntities: byID, domain.KeyIDs: order}), nil
	})
}

// UpdateEntity shallow-merges patch into the entity with id. Unknown ids are
// ignored without notification. The id field itself cannot be changed.
func (s *EntityStore) UpdateEntity(id domain.ID, patch domain.Tree) error {
	if patch == nil {
		return ErrNilPatch
	}
	return s.UpdateEntityWith(id, func(e domain.Tree) domain.Tree {
		return shallowMerge(e, patch)
	})
}

// UpdateEntityWith replaces the entity with id by fn(entity). Unknown ids are
// ignored without notification.
func (s *EntityStore) UpdateEntityWith(id domain.ID, fn Updater) error {
	return s.commit(domain.ActionUpdateOne, func(prev domain.Tree) (domain.Tree, error) {
		current, _ := collection(prev)
		raw, exists := current[id]
		if !exists {
			return prev, nil
		}
		entity, _ := domain.AsTree(raw)
		updated := fn(entity)
		if updated == nil {
			return nil, ErrNilState
		}
		if domain.Identical(entity, updated) {
			return prev, nil
		}
		if original, ok := entity[s.idKey]; ok {
			updated = shallowMerge(updated, domain.Tree{s.idKey: original})
		}
		byID := copyTree(current)
		byID[id] = updated
		return shallowMerge(prev, domain.Tree{domain.KeyEntities: byID}), nil
	})
}

// Remove deletes the entities with the given ids. With no ids the whole
// collection is cleared. Unknown ids are ignored; removing the active entity
// clears active.
func (s *EntityStore) Remove(ids ...domain.ID) error {
	if len(ids) == 0 {
		return s.RemoveWhere(func(domain.Tree) bool { return true })
	}
	drop := make(map[domain.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	return s.removeMatching(func(id domain.ID, _ domain.Tree) bool {
		_, ok := drop[id]
		return ok
	})
}

// RemoveWhere deletes every entity for which pred returns true.
func (s *EntityStore) RemoveWhere(pred func(domain.Tree) bool) error {
	return s.removeMatching(func(_ domain.ID, e domain.Tree) bool { return pred(e) })
}

func (s *EntityStore) removeMatching(match func(domain.ID, domain.Tree) bool) error {
	return s.commit(domain.ActionRemove, func(prev domain.Tree) (domain.Tree, error) {
		current, ids := collection(prev)
		kept := make([]domain.ID, 0, len(ids))
		byID := make(domain.Tree, len(current))
		for _, id := range ids {
			e, _ := domain.AsTree(current[id])
			if match(id, e) {
				continue
			}
			kept = append(kept, id)
			byID[id] = current[id]
		}
		if len(kept) == len(ids) {
			return prev, nil
		}
		next := shallowMerge(prev, domain.Tree{domain.KeyEntities: byID, domain.KeyIDs: kept})
		return resetActive(next), nil
	})
}

// SetActive marks id as the active entity. An unknown id clears active.
func (s *EntityStore) SetActive(id domain.ID) error {
	return s.commit(domain.ActionSetActive, func(prev domain.Tree) (domain.Tree, error) {
		current, _ := collection(prev)
		var active any
		if _, ok := current[id]; ok {
			active = id
		}
		if domain.Identical(prev[domain.KeyActive], active) {
			return prev, nil
		}
		return shallowMerge(prev, domain.Tree{domain.KeyActive: active}), nil
	})
}

// ClearActive unsets the active entity.
func (s *EntityStore) ClearActive() error {
	return s.commit(domain.ActionSetActive, func(prev domain.Tree) (domain.Tree, error) {
		if prev[domain.KeyActive] == nil {
			return prev, nil
		}
		return shallowMerge(prev, domain.Tree{domain.KeyActive: nil}), nil
	})
}

// SetDirty raises the root dirty marker. It is set by callers and is
// independent of any dirty-check plugin.
func (s *EntityStore) SetDirty() error {
	return s.commit(domain.ActionSetDirty, func(prev domain.Tree) (domain.Tree, error) {
		if dirty, _ := prev[domain.KeyDirty].(bool); dirty {
			return prev, nil
		}
		return shallowMerge(prev, domain.Tree{domain.KeyDirty: true}), nil
	})
}

func (s *EntityStore) idOf(e domain.Tree) (domain.ID, error) {
	if e == nil {
		return "", ErrMissingID
	}
	id, ok := domain.ToID(e[s.idKey])
	if !ok {
		return "", fmt.Errorf("%w: field %q is %v", ErrMissingID, s.idKey, e[s.idKey])
	}
	return id, nil
}

// collection extracts the entity map and id order from a state tree.
func collection(t domain.Tree) (domain.Tree, []domain.ID) {
	entities, _ := domain.AsTree(t[domain.KeyEntities])
	return entities, domain.IDs(t[domain.KeyIDs])
}

// resetActive clears active when it no longer references an existing entity.
func resetActive(t domain.Tree) domain.Tree {
	active, ok := domain.ToID(t[domain.KeyActive])
	if !ok {
		return t
	}
	entities, _ := collection(t)
	if _, exists := entities[active]; exists {
		return t
	}
	t[domain.KeyActive] = nil
	return t
}

// normalizeCollection repairs a tree that went through JSON: ids come back as
// []any and the collection may be missing. The bijection between ids and
// entities is re-established, keeping the stored order.
func normalizeCollection(t domain.Tree) domain.Tree {
	if wellFormed(t) {
		return t
	}
	entities, ids := collection(t)
	if entities == nil {
		entities = domain.Tree{}
	}
	order := make([]domain.ID, 0, len(entities))
	seen := make(map[domain.ID]struct{}, len(entities))
	for _, id := range ids {
		if _, ok := entities[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	missing := make([]domain.ID, 0)
	for id := range entities {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	order = append(order, missing...)

	next := shallowMerge(t, domain.Tree{domain.KeyEntities: entities, domain.KeyIDs: order})
	if _, ok := next[domain.KeyActive]; !ok {
		next[domain.KeyActive] = nil
	}
	return resetActive(next)
}

// wellFormed reports whether t already satisfies the collection invariants,
// in which case normalizing leaves it untouched (and its ids by reference).
func wellFormed(t domain.Tree) bool {
	entities, ok := domain.AsTree(t[domain.KeyEntities])
	if !ok {
		return false
	}
	ids, ok := t[domain.KeyIDs].([]domain.ID)
	if !ok || len(ids) != len(entities) {
		return false
	}
	seen := make(map[domain.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return false
		}
		if _, ok := entities[id]; !ok {
			return false
		}
		seen[id] = struct{}{}
	}
	raw, ok := t[domain.KeyActive]
	if !ok {
		return false
	}
	if active, ok := domain.ToID(raw); ok {
		if _, exists := entities[active]; !exists {
			return false
		}
	}
	return true
}

func copyTree(t domain.Tree) domain.Tree {
	next := make(domain.Tree, len(t)+1)
	for k, v := range t {
		next[k] = v
	}
	return next
}
