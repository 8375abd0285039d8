package dirtycheck

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/rx"
	"github.com/aretw0/statekit/pkg/store"
)

// entityHead keeps one cloned baseline per entity plus the id order.
type entityHead struct {
	entities map[domain.ID]domain.Tree
	ids      []domain.ID
}

func newEntityHead(t domain.Tree) *entityHead {
	entities, ids := collectionOf(t)
	h := &entityHead{
		entities: make(map[domain.ID]domain.Tree, len(ids)),
		ids:      slices.Clone(ids),
	}
	for _, id := range ids {
		e, _ := domain.AsTree(entities[id])
		h.entities[id] = domain.CloneTree(e)
	}
	return h
}

func (h *entityHead) isDirty(t domain.Tree, id domain.ID) bool {
	baseline, had := h.entities[id]
	entities, _ := collectionOf(t)
	raw, has := entities[id]
	if had != has {
		return true
	}
	if !had {
		return false
	}
	current, _ := domain.AsTree(raw)
	return !equal(current, baseline)
}

// dirtyIDs lists dirty ids: current ids in order, then ids removed since the head.
func (h *entityHead) dirtyIDs(t domain.Tree) []domain.ID {
	entities, ids := collectionOf(t)
	var out []domain.ID
	for _, id := range ids {
		if h.isDirty(t, id) {
			out = append(out, id)
		}
	}
	for _, id := range h.ids {
		if _, ok := entities[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (h *entityHead) someDirty(t domain.Tree) bool {
	entities, ids := collectionOf(t)
	if len(ids) != len(h.ids) {
		return true
	}
	for _, id := range h.ids {
		if _, ok := entities[id]; !ok {
			return true
		}
		if h.isDirty(t, id) {
			return true
		}
	}
	return false
}

// EntityPlugin tracks dirtiness per entity of an entity store.
type EntityPlugin struct {
	query  *store.EntityQuery
	logger *slog.Logger

	mu        sync.Mutex
	head      *entityHead
	destroyed bool

	heads *rx.BehaviorSubject[*entityHead]
	some  rx.Observable[bool]
}

// NewEntity creates an inactive entity-scoped plugin over q.
func NewEntity(q *store.EntityQuery, opts ...Option) *EntityPlugin {
	cfg := newConfig(opts)
	p := &EntityPlugin{
		query:  q,
		logger: cfg.logger,
		heads:  rx.NewBehaviorSubject[*entityHead](nil),
	}
	p.some = p.selectWith(func(t domain.Tree, h *entityHead) bool { return h.someDirty(t) })
	return p
}

// SetHead snapshots every entity as the new baseline and returns p.
func (p *EntityPlugin) SetHead() *EntityPlugin {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return p
	}
	h := newEntityHead(p.query.GetSnapshot())
	p.head = h
	flush := p.heads.Stage(h)
	p.mu.Unlock()

	flush()
	p.logger.Debug("entity dirty check head set", "store", p.query.Store().Name(), "entities", len(h.ids))
	return p
}

// Activate implements plugins.Activatable.
func (p *EntityPlugin) Activate() error {
	p.mu.Lock()
	destroyed := p.destroyed
	p.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	p.SetHead()
	return nil
}

// IsDirty reports whether the entity with id differs from its head. An id
// added or removed since the head is dirty; an id unknown to both is not.
func (p *EntityPlugin) IsDirty(id domain.ID) (bool, error) {
	h, err := p.currentHead()
	if err != nil {
		return false, err
	}
	return h.isDirty(p.query.GetSnapshot(), id), nil
}

// SelectIsDirty streams IsDirty(id).
func (p *EntityPlugin) SelectIsDirty(id domain.ID) rx.Observable[bool] {
	return p.selectWith(func(t domain.Tree, h *entityHead) bool { return h.isDirty(t, id) })
}

// IsSomeDirty reports whether any entity differs from its head or the id set
// changed.
func (p *EntityPlugin) IsSomeDirty() (bool, error) {
	h, err := p.currentHead()
	if err != nil {
		return false, err
	}
	return h.someDirty(p.query.GetSnapshot()), nil
}

// SelectSomeDirty streams IsSomeDirty.
func (p *EntityPlugin) SelectSomeDirty() rx.Observable[bool] {
	return p.some
}

// DirtyIDs lists the dirty ids, removed ones last.
func (p *EntityPlugin) DirtyIDs() ([]domain.ID, error) {
	h, err := p.currentHead()
	if err != nil {
		return nil, err
	}
	return h.dirtyIDs(p.query.GetSnapshot()), nil
}

// Reset reverts the given entities to their head. An entity removed since
// the head is added back at the end; one added since the head is removed.
// Without ids the whole collection, order included, is reverted and re-headed.
// Clean or unknown ids are ignored.
func (p *EntityPlugin) Reset(ids ...domain.ID) error {
	h, err := p.currentHead()
	if err != nil {
		return err
	}
	s := p.query.Store()
	current := s.GetSnapshot()

	if len(ids) == 0 {
		if !h.someDirty(current) {
			p.SetHead()
			return nil
		}
		p.logRevert(h, current, h.dirtyIDs(current))
		err := s.Commit(ActionRevert, func(prev domain.Tree) domain.Tree {
			entities := make(domain.Tree, len(h.entities))
			for id, e := range h.entities {
				entities[id] = domain.CloneTree(e)
			}
			return withKeys(prev, domain.Tree{
				domain.KeyEntities: entities,
				domain.KeyIDs:      slices.Clone(h.ids),
			})
		})
		if err != nil {
			return err
		}
		p.SetHead()
		return nil
	}

	targets := slices.DeleteFunc(slices.Clone(ids), func(id domain.ID) bool { return !h.isDirty(current, id) })
	if len(targets) == 0 {
		return nil
	}
	p.logRevert(h, current, targets)
	return s.Commit(ActionRevert, func(prev domain.Tree) domain.Tree {
		entities, order := collectionOf(prev)
		byID := make(domain.Tree, len(entities))
		for id, e := range entities {
			byID[id] = e
		}
		order = slices.Clone(order)
		for _, id := range targets {
			baseline, had := h.entities[id]
			_, has := byID[id]
			switch {
			case had && has:
				byID[id] = domain.CloneTree(baseline)
			case had:
				byID[id] = domain.CloneTree(baseline)
				order = append(order, id)
			case has:
				delete(byID, id)
				order = slices.DeleteFunc(order, func(x domain.ID) bool { return x == id })
			}
		}
		return withKeys(prev, domain.Tree{domain.KeyEntities: byID, domain.KeyIDs: order})
	})
}

// Destroy stops watching and discards every head. It is idempotent.
func (p *EntityPlugin) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.head = nil
	p.mu.Unlock()

	p.heads.Complete()
	p.logger.Debug("entity dirty check destroyed", "store", p.query.Store().Name())
}

func (p *EntityPlugin) currentHead() (*entityHead, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.destroyed:
		return nil, ErrDestroyed
	case p.head == nil:
		return nil, ErrNoHead
	}
	return p.head, nil
}

func (p *EntityPlugin) selectWith(fn func(domain.Tree, *entityHead) bool) rx.Observable[bool] {
	return rx.Share(rx.Distinct(rx.CombineLatest2[domain.Tree, *entityHead, bool](p.query.Changes(), p.heads, func(t domain.Tree, h *entityHead) bool {
		return h != nil && fn(t, h)
	})))
}

func (p *EntityPlugin) logRevert(h *entityHead, current domain.Tree, ids []domain.ID) {
	if !p.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	entities, _ := collectionOf(current)
	headView := make(map[domain.ID]domain.Tree, len(ids))
	currentView := make(map[domain.ID]domain.Tree, len(ids))
	for _, id := range ids {
		headView[id] = h.entities[id]
		currentView[id], _ = domain.AsTree(entities[id])
	}
	p.logger.Debug("reverting entities to dirty check head",
		"store", p.query.Store().Name(), "ids", ids, "diff", diff(headView, currentView))
}

func collectionOf(t domain.Tree) (domain.Tree, []domain.ID) {
	entities, _ := domain.AsTree(t[domain.KeyEntities])
	return entities, domain.IDs(t[domain.KeyIDs])
}

func withKeys(base, kv domain.Tree) domain.Tree {
	next := make(domain.Tree, len(base)+len(kv))
	for k, v := range base {
		next[k] = v
	}
	for k, v := range kv {
		next[k] = v
	}
	return next
}
