package persistform

import "github.com/aretw0/statekit/pkg/domain"

type mode int

const (
	modeRootKeys mode = iota
	modeKey
	modeFactory
)

// Target selects where the form value lives in the store state.
type Target struct {
	mode    mode
	key     string
	factory func() domain.Tree
}

// RootKeys maps every form control name to the top-level state key of the
// same name.
func RootKeys() Target {
	return Target{mode: modeRootKeys}
}

// Key binds the form to the record at the dotted path rel, relative to the
// store root (e.g. "config" or "ui.filters").
func Key(rel string) Target {
	return Target{mode: modeKey, key: rel}
}

// Factory stores the form value under the form key (see WithFormKey), seeded
// with fn() when the store has no value there yet. Reset falls back to fn().
func Factory(fn func() domain.Tree) Target {
	return Target{mode: modeFactory, factory: fn}
}

func (t Target) String() string {
	switch t.mode {
	case modeKey:
		return "key:" + t.key
	case modeFactory:
		return "factory"
	default:
		return "root-keys"
	}
}
