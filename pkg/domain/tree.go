package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Tree is the plain state record held by a store. Writers never mutate a Tree
// in place; they build a new one that shares every untouched branch.
type Tree = map[string]any

// ID identifies an entity inside an entity collection.
type ID = string

// Snapshot holds the state of several stores keyed by store name.
type Snapshot map[string]Tree

// Reserved root keys of an entity store state.
const (
	KeyEntities = "entities"
	KeyIDs      = "ids"
	KeyActive   = "active"
	KeyLoading  = "loading"
	KeyError    = "error"
	KeyDirty    = "dirty"
)

// ToID normalizes an identifier value read from a Tree. Strings are kept,
// numbers are formatted without exponent so that 1, int64(1) and float64(1)
// all map to "1".
func ToID(v any) (ID, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, id != ""
	case int:
		return strconv.Itoa(id), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint:
		return strconv.FormatUint(uint64(id), 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32), true
	case json.Number:
		return id.String(), true
	case fmt.Stringer:
		s := id.String()
		return s, s != ""
	default:
		return "", false
	}
}

// IDs converts an ids value read from a Tree (which may have gone through JSON
// and come back as []any) into an ordered slice.
func IDs(v any) []ID {
	switch ids := v.(type) {
	case []ID:
		return ids
	case []any:
		out := make([]ID, 0, len(ids))
		for _, raw := range ids {
			if id, ok := ToID(raw); ok {
				out = append(out, id)
			}
		}
		return out
	default:
		return nil
	}
}

var treeType = reflect.TypeOf(Tree(nil))

// AsTree reports whether v is a record. Both Tree and named map types whose
// underlying type is map[string]any are accepted; the result shares storage
// with v.
func AsTree(v any) (Tree, bool) {
	if t, ok := v.(map[string]any); ok {
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || !rv.Type().ConvertibleTo(treeType) {
		return nil, false
	}
	return rv.Convert(treeType).Interface().(Tree), true
}

// Identical compares two values the way a reference-equality check would:
// records and slices are equal only when they share the same backing storage,
// comparable values use ==, everything else falls back to reflect.DeepEqual.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && (va.Len() == 0 || va.Pointer() == vb.Pointer())
	}
	if va.Comparable() {
		return va.Equal(vb)
	}
	return reflect.DeepEqual(a, b)
}
