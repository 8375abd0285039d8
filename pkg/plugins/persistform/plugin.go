package persistform

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/path"
	"github.com/aretw0/statekit/pkg/plugins"
	"github.com/aretw0/statekit/pkg/rx"
	"github.com/aretw0/statekit/pkg/store"
)

// Actions labelling the writes of this package.
const (
	ActionActivate = "@PersistForm - Activate"
	ActionUpdate   = "@PersistForm - Update"
	ActionReset    = "@PersistForm - Reset"
)

var (
	// ErrDestroyed is returned when a destroyed plugin is used.
	ErrDestroyed = errors.New("persist form plugin destroyed")

	// ErrNoForm is returned by Reset before SetForm.
	ErrNoForm = errors.New("no form bound")

	// ErrFormBound is returned when SetForm is called twice.
	ErrFormBound = errors.New("form already bound")
)

// Plugin keeps a form and a part of the store state in sync. The store seeds
// the form once on SetForm; from then on the form writes into the store after
// every debounced change. The store never pushes into the form on its own, so
// form writes cannot loop back.
type Plugin struct {
	query  *store.Query
	target Target
	cfg    config
	path   path.Path

	mu        sync.Mutex
	form      Form
	builder   Builder
	initial   domain.Tree
	changes   *rx.Subscription
	gen       atomic.Uint64
	destroyed bool
}

// New creates a plugin writing into q's store at target.
func New(q *store.Query, target Target, opts ...Option) (*Plugin, error) {
	cfg := newConfig(opts)
	p := &Plugin{query: q, target: target, cfg: cfg}

	switch target.mode {
	case modeKey:
		pth, err := path.Under(q.Store().Name(), target.key)
		if err != nil {
			return nil, fmt.Errorf("invalid form key: %w", err)
		}
		if pth.IsRoot() {
			return nil, fmt.Errorf("invalid form key: %w", &path.InvalidPathError{Path: pth.String(), Reason: "use RootKeys to bind the store root"})
		}
		p.path = pth
	case modeFactory:
		if target.factory == nil {
			return nil, errors.New("factory target needs a factory function")
		}
	}

	if cfg.hasHost {
		if err := plugins.BindLifecycle(cfg.host, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SetForm binds form and activates the plugin: the initial value is resolved
// (from the store when present, else from the form or the factory, which then
// seeds the store), array controls are rebuilt to match it when a builder is
// given, the form is patched and its changes start flowing into the store.
func (p *Plugin) SetForm(form Form, builder Builder) error {
	if form == nil {
		return errors.New("form must not be nil")
	}
	if err := p.bindable(); err != nil {
		return err
	}

	// The seed commit notifies store subscribers, so p.mu is not held here.
	initial, seed, err := p.resolveInitial(form)
	if err != nil {
		return err
	}
	if seed != nil {
		if err := p.write(ActionActivate, seed, nil); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.bindableLocked(); err != nil {
		return err
	}
	p.form, p.builder, p.initial = form, builder, initial
	p.reconcileArrays(initial)
	form.PatchValue(initial, p.patchOptions())
	p.subscribe()

	p.cfg.logger.Debug("persist form activated", "store", p.storeName(), "target", p.target.String())
	return nil
}

func (p *Plugin) bindable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindableLocked()
}

func (p *Plugin) bindableLocked() error {
	switch {
	case p.destroyed:
		return ErrDestroyed
	case p.form != nil:
		return ErrFormBound
	}
	return nil
}

// InitialValue returns the value resolved on SetForm.
func (p *Plugin) InitialValue() domain.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initial
}

// Reset re-patches the form with override, or else the initial value (the
// factory value for Factory targets), and writes it back into the store.
// A pending debounced change is dropped, and one already being committed
// when Reset starts turns into a no-op.
func (p *Plugin) Reset(override domain.Tree) error {
	p.mu.Lock()
	switch {
	case p.destroyed:
		p.mu.Unlock()
		return ErrDestroyed
	case p.form == nil:
		p.mu.Unlock()
		return ErrNoForm
	}

	value := override
	if value == nil {
		if p.target.mode == modeFactory {
			value = p.target.factory()
		} else {
			value = p.initial
		}
	}

	p.changes.Unsubscribe()
	p.reconcileArrays(value)
	p.form.PatchValue(value, p.patchOptions())
	p.subscribe()
	p.mu.Unlock()

	err := p.write(ActionReset, value, nil)
	p.cfg.logger.Debug("persist form reset", "store", p.storeName(), "target", p.target.String())
	return err
}

// Destroy stops listening to the form and releases it. It is idempotent.
// Destroy does not wait for a form write whose commit is already being
// applied to the store.
func (p *Plugin) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.gen.Add(1)
	if p.changes != nil {
		p.changes.Unsubscribe()
	}
	p.form, p.builder, p.changes = nil, nil, nil
	p.cfg.logger.Debug("persist form destroyed", "store", p.storeName())
}

// subscribe starts the form→store flow under a new generation. Writes of an
// older generation are dropped. Called with p.mu held.
func (p *Plugin) subscribe() {
	gen := p.gen.Add(1)
	current := func() bool { return p.gen.Load() == gen }
	p.changes = rx.Debounce(p.form.ValueChanges(), p.cfg.debounce).Subscribe(func(value domain.Tree) {
		if err := p.write(ActionUpdate, value, current); err != nil {
			p.cfg.logger.Warn("failed to persist form value", "store", p.storeName(), "error", err)
		}
	})
}

// resolveInitial returns the value to patch into the form and, when the store
// has nothing yet, the value to seed it with.
func (p *Plugin) resolveInitial(form Form) (initial, seed domain.Tree, err error) {
	state := p.query.GetSnapshot()
	switch p.target.mode {
	case modeRootKeys:
		formValue := form.Value()
		initial = make(domain.Tree, len(formValue))
		for k, v := range formValue {
			if current, ok := state[k]; ok {
				initial[k] = current
				continue
			}
			initial[k] = v
			if seed == nil {
				seed = domain.Tree{}
			}
			seed[k] = v
		}
		return initial, seed, nil

	case modeKey:
		raw, err := path.Get(state, p.path)
		if err != nil {
			return nil, nil, err
		}
		if raw == nil {
			v := form.Value()
			return v, v, nil
		}
		root, ok := domain.AsTree(raw)
		if !ok {
			return nil, nil, &path.InvalidPathError{Path: p.path.String(), Reason: fmt.Sprintf("form value must be a record, got %T", raw)}
		}
		return root, nil, nil

	default:
		if current, ok := domain.AsTree(state[p.cfg.formKey]); ok && current != nil {
			return current, nil, nil
		}
		v := p.target.factory()
		return v, v, nil
	}
}

// write puts value where the target says, as one labelled commit. When
// current is set and reports false the commit leaves the state untouched. It
// is asked inside the commit, so a retried commit asks again.
func (p *Plugin) write(action string, value domain.Tree, current func() bool) error {
	var setErr error
	err := p.query.Store().Commit(action, func(prev domain.Tree) domain.Tree {
		setErr = nil
		if current != nil && !current() {
			return prev
		}
		switch p.target.mode {
		case modeRootKeys:
			return merge(prev, value)
		case modeKey:
			var next domain.Tree
			next, setErr = path.Set(prev, p.path, value)
			if setErr != nil {
				return prev
			}
			return next
		default:
			return merge(prev, domain.Tree{p.cfg.formKey: value})
		}
	})
	if err != nil {
		return err
	}
	return setErr
}

// reconcileArrays rebuilds every array control whose value in v is a list, so
// that the form and the store agree on its length. Called with p.mu held.
func (p *Plugin) reconcileArrays(v domain.Tree) {
	if p.builder == nil {
		return
	}
	opts := p.patchOptions()
	for key, raw := range v {
		items, ok := asList(raw)
		if !ok {
			continue
		}
		c, ok := p.form.Get(key)
		if !ok {
			continue
		}
		arr, ok := c.(ArrayControl)
		if !ok {
			continue
		}
		for arr.Len() > 0 {
			arr.RemoveAt(0, opts)
		}
		for i, item := range items {
			arr.Insert(i, p.builder.Control(item), opts)
		}
	}
}

func (p *Plugin) patchOptions() PatchOptions {
	return PatchOptions{EmitEvent: p.cfg.emitEvent}
}

func (p *Plugin) storeName() string {
	return p.query.Store().Name()
}

func merge(base, patch domain.Tree) domain.Tree {
	next := make(domain.Tree, len(base)+len(patch))
	for k, v := range base {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	return next
}

func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
