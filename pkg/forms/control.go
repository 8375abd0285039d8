package forms

import (
	"sync"

	"github.com/aretw0/statekit/pkg/plugins/persistform"
	"github.com/aretw0/statekit/pkg/rx"
)

// parent is notified when a child changed through a user edit.
type parent interface {
	childChanged()
}

// node is implemented by every control of this package.
type node interface {
	persistform.Control
	setParent(p parent)
	patch(value any, emit bool)
}

// Control holds a single value.
type Control struct {
	mu      sync.Mutex
	value   any
	parent  parent
	changes *rx.Subject[any]
}

// NewControl creates a control holding value.
func NewControl(value any) *Control {
	return &Control{value: value, changes: rx.NewSubject[any]()}
}

// Value returns the current value.
func (c *Control) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// SetValue is a user edit: the control and all its ancestors notify.
func (c *Control) SetValue(value any) {
	c.patch(value, true)
	if p := c.getParent(); p != nil {
		p.childChanged()
	}
}

// PatchValue writes value programmatically.
func (c *Control) PatchValue(value any, opts persistform.PatchOptions) {
	c.patch(value, opts.EmitEvent)
}

// ValueChanges streams the values of this control.
func (c *Control) ValueChanges() rx.Observable[any] {
	return c.changes
}

func (c *Control) patch(value any, emit bool) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
	if emit {
		c.changes.Next(value)
	}
}

func (c *Control) setParent(p parent) {
	c.mu.Lock()
	c.parent = p
	c.mu.Unlock()
}

func (c *Control) getParent() parent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parent
}

// Builder creates controls, groups and arrays. The zero value is ready to use.
type Builder struct{}

// Control implements persistform.Builder.
func (Builder) Control(value any) persistform.Control {
	return NewControl(value)
}

// Group builds a group. Values that already are controls of this package are
// used as is; anything else is wrapped in a Control.
func (b Builder) Group(fields map[string]any) *Group {
	controls := make(map[string]persistform.Control, len(fields))
	for name, v := range fields {
		controls[name] = b.wrap(v)
	}
	return NewGroup(controls)
}

// Array builds an array with one control per value.
func (b Builder) Array(values ...any) *Array {
	items := make([]persistform.Control, len(values))
	for i, v := range values {
		items[i] = b.wrap(v)
	}
	return NewArray(items...)
}

func (Builder) wrap(v any) persistform.Control {
	switch c := v.(type) {
	case *Group:
		return c.AsControl()
	case node:
		return c
	default:
		return NewControl(v)
	}
}
