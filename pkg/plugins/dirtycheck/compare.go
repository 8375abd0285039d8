package dirtycheck

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Actions labelling the writes of this package.
const (
	ActionRevert = "@DirtyCheck - Revert"
)

var compareOpts = cmp.Options{
	cmpopts.EquateErrors(),
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// equal is the structural comparison used for dirtiness. Empty and nil
// collections are equal, so restoring a snapshot from JSON is not dirty.
func equal(a, b any) bool {
	return cmp.Equal(a, b, compareOpts)
}

// diff renders what changed since the head, for debug logs.
func diff(head, current any) string {
	return cmp.Diff(head, current, compareOpts)
}
