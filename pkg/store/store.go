package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/rx"
	"github.com/aretw0/statekit/pkg/schema"
)

// Updater computes the next state from the current one. It must not mutate
// its argument.
type Updater func(domain.Tree) domain.Tree

// Store owns one named slice of state.
type Store struct {
	name    string
	initial domain.Tree
	logger  *slog.Logger
	hooks   domain.StoreHooks
	idKey   string
	schema  schema.Schema

	// normalize fixes the shape of externally supplied trees (Restore, patches).
	normalize func(domain.Tree) domain.Tree

	mu        sync.RWMutex
	state     domain.Tree
	pristine  bool
	destroyed bool

	changes *rx.BehaviorSubject[domain.Tree]
}

// New creates a store named name holding initial. A nil initial is an empty tree.
func New(name string, initial domain.Tree, opts ...Option) *Store {
	return newStore(name, initial, newConfig(opts))
}

func newStore(name string, initial domain.Tree, cfg config) *Store {
	if initial == nil {
		initial = domain.Tree{}
	}
	return &Store{
		name:      name,
		initial:   initial,
		logger:    cfg.logger,
		hooks:     cfg.hooks,
		idKey:     cfg.idKey,
		schema:    cfg.schema,
		normalize: func(t domain.Tree) domain.Tree { return t },
		state:     initial,
		pristine:  true,
		changes:   rx.NewBehaviorSubject(initial),
	}
}

// Name returns the store name, which is also the first segment of every path
// addressing this store.
func (s *Store) Name() string {
	return s.name
}

// GetSnapshot returns the current state.
func (s *Store) GetSnapshot() domain.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Changes returns the state stream. It replays the current state on subscribe
// and then pushes every committed state in order.
func (s *Store) Changes() rx.Observable[domain.Tree] {
	return s.changes
}

// Select derives a distinct, shared projection of the state.
func (s *Store) Select(fn func(domain.Tree) any) rx.Observable[any] {
	return Select(s, fn)
}

// IsPristine reports whether no mutation was committed since creation.
func (s *Store) IsPristine() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pristine
}

// Destroyed reports whether Destroy has run.
func (s *Store) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// Update deep-merges patch into the state: nested records present in both are
// merged key by key (copy-on-write), every other value is replaced. On an
// entity store the merged collection is normalized.
func (s *Store) Update(patch domain.Tree) error {
	if patch == nil {
		return ErrNilPatch
	}
	return s.commit(domain.ActionUpdate, func(prev domain.Tree) (domain.Tree, error) {
		return s.normalize(deepMerge(prev, patch)), nil
	})
}

// UpdateWith replaces the state with fn(state). Returning the argument
// itself is a no-op.
func (s *Store) UpdateWith(fn Updater) error {
	return s.Commit(domain.ActionUpdate, fn)
}

// UpdateRoot shallow-merges patch into the top-level record. Nested records
// in patch replace the existing ones wholesale.
func (s *Store) UpdateRoot(patch domain.Tree) error {
	if patch == nil {
		return ErrNilPatch
	}
	return s.commit(domain.ActionUpdateRoot, func(prev domain.Tree) (domain.Tree, error) {
		return s.normalize(shallowMerge(prev, patch)), nil
	})
}

// Commit applies fn and labels the transition with action. Plugins use it to
// tag their own writes. On an entity store the result is normalized, so a
// plugin writing entities or ids directly cannot break the collection.
func (s *Store) Commit(action string, fn Updater) error {
	return s.commit(action, func(prev domain.Tree) (domain.Tree, error) {
		next := fn(prev)
		if next == nil {
			return nil, ErrNilState
		}
		if domain.Identical(prev, next) {
			return prev, nil
		}
		return s.normalize(next), nil
	})
}

// SetLoading sets the root loading flag. No-op when unchanged.
func (s *Store) SetLoading(loading bool) error {
	return s.commit(domain.ActionSetLoading, func(prev domain.Tree) (domain.Tree, error) {
		if current, ok := prev[domain.KeyLoading].(bool); ok && current == loading {
			return prev, nil
		}
		return shallowMerge(prev, domain.Tree{domain.KeyLoading: loading}), nil
	})
}

// SetError sets the root error. No-op when unchanged.
func (s *Store) SetError(err error) error {
	return s.commit(domain.ActionSetError, func(prev domain.Tree) (domain.Tree, error) {
		current, _ := prev[domain.KeyError].(error)
		if domain.Identical(current, err) {
			return prev, nil
		}
		var value any
		if err != nil {
			value = err
		}
		return shallowMerge(prev, domain.Tree{domain.KeyError: value}), nil
	})
}

// Reset puts the initial state back.
func (s *Store) Reset() error {
	return s.commit(domain.ActionReset, func(domain.Tree) (domain.Tree, error) {
		return s.initial, nil
	})
}

// Restore replaces the whole state with tree, typically one read back from a
// persisted snapshot.
func (s *Store) Restore(tree domain.Tree) error {
	if tree == nil {
		return ErrNilPatch
	}
	return s.commit(domain.ActionRestore, func(domain.Tree) (domain.Tree, error) {
		return s.normalize(tree), nil
	})
}

// Destroy completes the state stream, releasing every subscriber. Later
// mutations return ErrStoreDestroyed. Calling Destroy twice is harmless.
func (s *Store) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.mu.Unlock()

	s.changes.Complete()
	s.logger.Debug("store destroyed", "store", s.name)
	if s.hooks.OnDestroy != nil {
		s.hooks.OnDestroy(s.name)
	}
}

// commit runs fn against the current state and swaps the result in. fn runs
// outside the lock so it may read other stores; if another writer won the race
// fn is re-run against the newer state. Returning prev itself means "no change"
// and nothing is notified.
func (s *Store) commit(action string, fn func(domain.Tree) (domain.Tree, error)) error {
	for {
		s.mu.RLock()
		prev, destroyed := s.state, s.destroyed
		s.mu.RUnlock()
		if destroyed {
			return ErrStoreDestroyed
		}

		next, err := fn(prev)
		if err != nil {
			return err
		}
		if domain.Identical(prev, next) {
			return nil
		}
		if s.schema != nil {
			if err := schema.Validate(s.schema, next); err != nil {
				s.logger.Warn("commit rejected", "store", s.name, "action", action, "error", err)
				return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
			}
		}

		s.mu.Lock()
		if s.destroyed {
			s.mu.Unlock()
			return ErrStoreDestroyed
		}
		if !domain.Identical(s.state, prev) {
			s.mu.Unlock()
			continue
		}
		s.state = next
		s.pristine = false
		flush := s.changes.Stage(next)
		s.mu.Unlock()

		flush()
		s.emit(action, prev, next)
		return nil
	}
}

func (s *Store) emit(action string, prev, next domain.Tree) {
	changed := domain.Diff(prev, next)
	s.logger.Debug("store updated", "store", s.name, "action", action, "changed", changed)
	if s.hooks.OnUpdate != nil {
		s.hooks.OnUpdate(&domain.UpdateEvent{
			Timestamp:   time.Now(),
			Store:       s.name,
			Action:      action,
			ChangedKeys: changed,
		})
	}
}

func shallowMerge(base, patch domain.Tree) domain.Tree {
	next := make(domain.Tree, len(base)+len(patch))
	for k, v := range base {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	return next
}

func deepMerge(base, patch domain.Tree) domain.Tree {
	next := make(domain.Tree, len(base)+len(patch))
	for k, v := range base {
		next[k] = v
	}
	for k, v := range patch {
		existing, okBase := domain.AsTree(base[k])
		incoming, okPatch := domain.AsTree(v)
		if okBase && okPatch {
			next[k] = deepMerge(existing, incoming)
			continue
		}
		next[k] = v
	}
	return next
}
