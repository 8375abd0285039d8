package dirtycheck

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/path"
	"github.com/aretw0/statekit/pkg/rx"
	"github.com/aretw0/statekit/pkg/store"
)

// head is an immutable baseline: one cloned value per watched path, or the
// whole state when nothing is watched explicitly.
type head struct {
	values []any
}

// Plugin tracks whether a store (or some of its paths) moved away from the
// head taken by SetHead.
type Plugin struct {
	query  *store.Query
	logger *slog.Logger
	watch  []path.Path

	mu        sync.Mutex
	head      *head
	destroyed bool

	heads *rx.BehaviorSubject[*head]
	dirty rx.Observable[bool]
}

// New creates an inactive plugin over q. Call SetHead (or Activate) to start
// watching. Watching the entities of an entity store also watches ids, so a
// Reset restores the collection order.
func New(q *store.Query, opts ...Option) (*Plugin, error) {
	cfg := newConfig(opts)
	p := &Plugin{
		query:  q,
		logger: cfg.logger,
		heads:  rx.NewBehaviorSubject[*head](nil),
	}

	watch := slices.Clone(cfg.watch)
	if slices.Contains(watch, domain.KeyEntities) && !slices.Contains(watch, domain.KeyIDs) {
		if _, ok := q.GetSnapshot()[domain.KeyIDs]; ok {
			watch = append(watch, domain.KeyIDs)
		}
	}
	for _, raw := range watch {
		w, err := path.Under(q.Store().Name(), raw)
		if err != nil {
			return nil, fmt.Errorf("invalid watch property: %w", err)
		}
		p.watch = append(p.watch, w)
	}

	p.dirty = rx.Share(rx.Distinct(rx.CombineLatest2[domain.Tree, *head, bool](q.Changes(), p.heads, func(t domain.Tree, h *head) bool {
		return h != nil && !equal(p.capture(t), h.values)
	})))
	return p, nil
}

// SetHead snapshots the watched values as the new baseline. It returns p so
// that it can be chained after New. On a destroyed plugin it does nothing.
func (p *Plugin) SetHead() *Plugin {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return p
	}
	h := &head{values: cloneAll(p.capture(p.query.GetSnapshot()))}
	p.head = h
	flush := p.heads.Stage(h)
	p.mu.Unlock()

	flush()
	p.logger.Debug("dirty check head set", "store", p.query.Store().Name(), "watch", p.watchNames())
	return p
}

// Activate implements plugins.Activatable.
func (p *Plugin) Activate() error {
	p.mu.Lock()
	destroyed := p.destroyed
	p.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	p.SetHead()
	return nil
}

// IsDirty reports whether the watched values differ from the head.
func (p *Plugin) IsDirty() (bool, error) {
	h, err := p.currentHead()
	if err != nil {
		return false, err
	}
	return !equal(p.capture(p.query.GetSnapshot()), h.values), nil
}

// SelectIsDirty streams IsDirty. It emits false until a head is set and
// completes on Destroy.
func (p *Plugin) SelectIsDirty() rx.Observable[bool] {
	return p.dirty
}

// Reset writes the head back into the store and re-heads. Nothing is written
// when the state is clean.
func (p *Plugin) Reset() error {
	h, err := p.currentHead()
	if err != nil {
		return err
	}
	s := p.query.Store()
	current := p.capture(s.GetSnapshot())
	if equal(current, h.values) {
		p.SetHead()
		return nil
	}
	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug("reverting to dirty check head", "store", s.Name(), "diff", diff(h.values, current))
	}

	var setErr error
	err = s.Commit(ActionRevert, func(prev domain.Tree) domain.Tree {
		setErr = nil
		if len(p.watch) == 0 {
			next, _ := domain.AsTree(domain.Clone(h.values[0]))
			return next
		}
		next := prev
		for i, w := range p.watch {
			next, setErr = path.Set(next, w, domain.Clone(h.values[i]))
			if setErr != nil {
				return prev
			}
		}
		return next
	})
	if err != nil {
		return err
	}
	if setErr != nil {
		return setErr
	}
	p.SetHead()
	return nil
}

// Destroy stops watching and discards the head. It is idempotent.
func (p *Plugin) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.head = nil
	p.mu.Unlock()

	p.heads.Complete()
	p.logger.Debug("dirty check destroyed", "store", p.query.Store().Name())
}

func (p *Plugin) currentHead() (*head, error) {
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

// capture reads the watched values. A path that cannot be resolved reads as nil.
func (p *Plugin) capture(t domain.Tree) []any {
	if len(p.watch) == 0 {
		return []any{t}
	}
	out := make([]any, len(p.watch))
	for i, w := range p.watch {
		v, err := path.Get(t, w)
		if err == nil {
			out[i] = v
		}
	}
	return out
}

func (p *Plugin) watchNames() []string {
	if len(p.watch) == 0 {
		return nil
	}
	names := make([]string, len(p.watch))
	for i, w := range p.watch {
		names[i] = w.String()
	}
	return names
}

func cloneAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = domain.Clone(v)
	}
	return out
}
