package plugins

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Plugin is a component attached to a query. Destroy releases every
// subscription it holds and must be safe to call more than once.
type Plugin interface {
	Destroy()
}

// Activatable is a plugin with an explicit start.
type Activatable interface {
	Plugin
	Activate() error
}

// Lifecycle is implemented by hosts that announce their own destruction.
type Lifecycle interface {
	OnDestroy(fn func())
}

// MissingHookError is returned when a plugin is bound to a host lacking the
// lifecycle hook it needs. Without the hook the plugin would never be
// destroyed.
type MissingHookError struct {
	Host string
	Hook string
}

func (e *MissingHookError) Error() string {
	return fmt.Sprintf("host %s does not implement %s(): bound plugins would never be destroyed", e.Host, e.Hook)
}

// BindLifecycle destroys p when host is destroyed. host must implement
// Lifecycle; otherwise a MissingHookError naming the hook is returned and p
// is left untouched.
func BindLifecycle(host any, p Plugin) error {
	if p == nil {
		return errors.New("plugin must not be nil")
	}
	lc, ok := host.(Lifecycle)
	if !ok {
		return &MissingHookError{Host: fmt.Sprintf("%T", host), Hook: "OnDestroy"}
	}
	lc.OnDestroy(p.Destroy)
	return nil
}

// Use activates p when it is Activatable, runs fn and destroys p on every
// exit path, including a panic in fn.
func Use[P Plugin](p P, fn func(P) error) error {
	defer p.Destroy()
	if a, ok := any(p).(Activatable); ok {
		if err := a.Activate(); err != nil {
			return fmt.Errorf("activate plugin: %w", err)
		}
	}
	return fn(p)
}

// Host owns plugins and destroy callbacks. Destroy runs them in reverse
// registration order, once.
type Host struct {
	mu        sync.Mutex
	name      string
	hooks     []func()
	destroyed bool
	done      chan struct{}
}

// NewHost creates a live host. name only shows up in errors and logs.
func NewHost(name string) *Host {
	return &Host{name: name, done: make(chan struct{})}
}

// Name returns the host name.
func (h *Host) Name() string {
	return h.name
}

// OnDestroy implements Lifecycle. On a destroyed host fn runs immediately.
func (h *Host) OnDestroy(fn func()) {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		fn()
		return
	}
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

// Attach activates p when it is Activatable and destroys it with the host.
func (h *Host) Attach(p Plugin) error {
	if a, ok := p.(Activatable); ok {
		if err := a.Activate(); err != nil {
			p.Destroy()
			return fmt.Errorf("activate plugin on %s: %w", h.name, err)
		}
	}
	h.OnDestroy(p.Destroy)
	return nil
}

// Done is closed when the host is destroyed; pass it to rx.TakeUntil.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// Destroy runs every registered callback, last registered first.
func (h *Host) Destroy() {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	h.destroyed = true
	hooks := h.hooks
	h.hooks = nil
	close(h.done)
	h.mu.Unlock()

	for _, fn := range slices.Backward(hooks) {
		fn()
	}
}
