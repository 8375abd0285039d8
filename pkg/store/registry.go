package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/domain"
)

// transient root keys are owned by the running process and never persisted.
var transient = []string{domain.KeyLoading, domain.KeyError}

// Registry tracks the process-wide set of named stores so that their state
// can be captured and restored as one Snapshot.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{stores: make(map[string]*Store), logger: logger}
}

// Register adds stores. Names must be unique among live stores; a destroyed
// store with the same name is replaced.
func (r *Registry) Register(stores ...*Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stores {
		if existing, ok := r.stores[s.Name()]; ok && existing != s && !existing.Destroyed() {
			return fmt.Errorf("%w: %s", ErrDuplicateStore, s.Name())
		}
		r.stores[s.Name()] = s
	}
	return nil
}

// Unregister removes the store called name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, name)
}

// Get returns the live store called name.
func (r *Registry) Get(name string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	if !ok || s.Destroyed() {
		return nil, false
	}
	return s, true
}

// Stores returns the live stores sorted by name.
func (r *Registry) Stores() []*Store {
	r.mu.RLock()
	out := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		if !s.Destroyed() {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns the names of the live stores, sorted.
func (r *Registry) Names() []string {
	stores := r.Stores()
	names := make([]string, len(stores))
	for i, s := range stores {
		names[i] = s.Name()
	}
	return names
}

// Snapshot captures the state of every live store, without the transient
// loading and error flags.
func (r *Registry) Snapshot() domain.Snapshot {
	snap := make(domain.Snapshot)
	for _, s := range r.Stores() {
		state := copyTree(s.GetSnapshot())
		for _, k := range transient {
			delete(state, k)
		}
		snap[s.Name()] = state
	}
	return snap
}

// Restore writes every slice of snap into the store with the same name.
// Unknown names are skipped. The current loading and error flags of each
// store are kept.
func (r *Registry) Restore(snap domain.Snapshot) error {
	var errs []error
	for name, tree := range snap {
		s, ok := r.Get(name)
		if !ok {
			r.logger.Debug("skipping snapshot slice for unknown store", "store", name)
			continue
		}
		current := s.GetSnapshot()
		next := copyTree(tree)
		for _, k := range transient {
			if v, ok := current[k]; ok {
				next[k] = v
			}
		}
		if err := s.Restore(next); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
