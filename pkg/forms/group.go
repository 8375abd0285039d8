package forms

import (
	"sync"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/plugins/persistform"
	"github.com/aretw0/statekit/pkg/rx"
)

// Group holds named controls. Its value is a Tree with one key per control.
type Group struct {
	mu       sync.Mutex
	controls map[string]persistform.Control
	parent   parent
	changes  *rx.Subject[domain.Tree]
}

// NewGroup creates a group over controls.
func NewGroup(controls map[string]persistform.Control) *Group {
	g := &Group{
		controls: make(map[string]persistform.Control, len(controls)),
		changes:  rx.NewSubject[domain.Tree](),
	}
	for name, c := range controls {
		g.controls[name] = c
		if n, ok := c.(node); ok {
			n.setParent(g)
		}
	}
	return g
}

// Get implements persistform.Form.
func (g *Group) Get(name string) (persistform.Control, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.controls[name]
	return c, ok
}

// Value implements persistform.Form. Nested groups and arrays contribute
// their own values.
func (g *Group) Value() domain.Tree {
	g.mu.Lock()
	controls := make(map[string]persistform.Control, len(g.controls))
	for k, c := range g.controls {
		controls[k] = c
	}
	g.mu.Unlock()

	value := make(domain.Tree, len(controls))
	for name, c := range controls {
		value[name] = c.Value()
	}
	return value
}

// PatchValue implements persistform.Form. Keys without a control are ignored.
func (g *Group) PatchValue(value domain.Tree, opts persistform.PatchOptions) {
	g.patchTree(value, opts.EmitEvent)
}

// ValueChanges implements persistform.Form.
func (g *Group) ValueChanges() rx.Observable[domain.Tree] {
	return g.changes
}

func (g *Group) patch(value any, emit bool) {
	if t, ok := domain.AsTree(value); ok {
		g.patchTree(t, emit)
	}
}

func (g *Group) patchTree(value domain.Tree, emit bool) {
	for name, v := range value {
		c, ok := g.Get(name)
		if !ok {
			continue
		}
		if n, ok := c.(node); ok {
			n.patch(v, emit)
		} else {
			c.PatchValue(v, persistform.PatchOptions{EmitEvent: emit})
		}
	}
	if emit {
		g.changes.Next(g.Value())
	}
}

func (g *Group) childChanged() {
	g.changes.Next(g.Value())
	g.mu.Lock()
	p := g.parent
	g.mu.Unlock()
	if p != nil {
		p.childChanged()
	}
}

func (g *Group) setParent(p parent) {
	g.mu.Lock()
	g.parent = p
	g.mu.Unlock()
}

// AsControl adapts g for use as a field of another group or an array element.
func (g *Group) AsControl() persistform.Control {
	return groupControl{g}
}

type groupControl struct{ *Group }

func (g groupControl) Value() any { return g.Group.Value() }

func (g groupControl) PatchValue(value any, opts persistform.PatchOptions) {
	g.patch(value, opts.EmitEvent)
}
