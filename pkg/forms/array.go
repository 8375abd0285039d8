package forms

import (
	"reflect"
	"slices"
	"sync"

	"github.com/aretw0/statekit/pkg/plugins/persistform"
	"github.com/aretw0/statekit/pkg/rx"
)

// Array holds an ordered list of controls. Its value is a []any.
type Array struct {
	mu      sync.Mutex
	items   []persistform.Control
	parent  parent
	changes *rx.Subject[[]any]
}

// NewArray creates an array over items.
func NewArray(items ...persistform.Control) *Array {
	a := &Array{changes: rx.NewSubject[[]any]()}
	for _, c := range items {
		a.adopt(c)
		a.items = append(a.items, c)
	}
	return a
}

// Len implements persistform.ArrayControl.
func (a *Array) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// At returns the control at index i.
func (a *Array) At(i int) persistform.Control {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.items[i]
}

// Value implements persistform.Control.
func (a *Array) Value() any {
	items := a.snapshot()
	out := make([]any, len(items))
	for i, c := range items {
		out[i] = c.Value()
	}
	return out
}

// ValueChanges streams the values of this array.
func (a *Array) ValueChanges() rx.Observable[[]any] {
	return a.changes
}

// PatchValue patches the existing elements in order. Extra values are
// ignored and missing ones leave their control untouched.
func (a *Array) PatchValue(value any, opts persistform.PatchOptions) {
	a.patch(value, opts.EmitEvent)
}

// Insert implements persistform.ArrayControl. index is clamped to [0, Len].
func (a *Array) Insert(index int, c persistform.Control, opts persistform.PatchOptions) {
	a.adopt(c)
	a.mu.Lock()
	index = max(0, min(index, len(a.items)))
	a.items = slices.Insert(a.items, index, c)
	a.mu.Unlock()
	if opts.EmitEvent {
		a.emit()
	}
}

// RemoveAt implements persistform.ArrayControl. Out of range is a no-op.
func (a *Array) RemoveAt(index int, opts persistform.PatchOptions) {
	a.mu.Lock()
	if index < 0 || index >= len(a.items) {
		a.mu.Unlock()
		return
	}
	a.items = slices.Delete(a.items, index, index+1)
	a.mu.Unlock()
	if opts.EmitEvent {
		a.emit()
	}
}

// Push is a user edit appending c: the array and all its ancestors notify.
func (a *Array) Push(c persistform.Control) {
	a.adopt(c)
	a.mu.Lock()
	a.items = append(a.items, c)
	a.mu.Unlock()
	a.childChanged()
}

func (a *Array) patch(value any, emit bool) {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return
	}
	items := a.snapshot()
	for i := 0; i < v.Len() && i < len(items); i++ {
		elem := v.Index(i).Interface()
		if n, ok := items[i].(node); ok {
			n.patch(elem, emit)
		} else {
			items[i].PatchValue(elem, persistform.PatchOptions{EmitEvent: emit})
		}
	}
	if emit {
		a.emit()
	}
}

func (a *Array) emit() {
	a.changes.Next(a.Value().([]any))
}

func (a *Array) childChanged() {
	a.emit()
	a.mu.Lock()
	p := a.parent
	a.mu.Unlock()
	if p != nil {
		p.childChanged()
	}
}

func (a *Array) setParent(p parent) {
	a.mu.Lock()
	a.parent = p
	a.mu.Unlock()
}

func (a *Array) adopt(c persistform.Control) {
	if n, ok := c.(node); ok {
		n.setParent(a)
	}
}

func (a *Array) snapshot() []persistform.Control {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.items)
}
