package persistform

import (
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/rx"
)

// PatchOptions controls programmatic writes into a form.
type PatchOptions struct {
	// EmitEvent makes the write visible on ValueChanges. The plugin passes
	// false by default so that store→form patches never loop back.
	EmitEvent bool
}

// Control is a single form field.
type Control interface {
	Value() any
	PatchValue(value any, opts PatchOptions)
}

// ArrayControl is an ordered list of controls.
type ArrayControl interface {
	Control
	Len() int
	Insert(index int, c Control, opts PatchOptions)
	RemoveAt(index int, opts PatchOptions)
}

// Form is the form-like object kept in sync with the store. PatchValue only
// touches the named controls that exist; an array control is patched element
// by element and keeps its length.
type Form interface {
	Value() domain.Tree
	PatchValue(value domain.Tree, opts PatchOptions)
	Get(name string) (Control, bool)
	ValueChanges() rx.Observable[domain.Tree]
}

// Builder creates controls for array elements.
type Builder interface {
	Control(value any) Control
}
