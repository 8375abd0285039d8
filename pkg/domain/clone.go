package domain

// Clone returns a deep copy of a state value. Records and slices are copied
// recursively; every other value (scalars, errors, structs) is shared, since
// state values are never mutated in place.
func Clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return CloneTree(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case []ID:
		return append([]ID(nil), x...)
	case []Tree:
		out := make([]Tree, len(x))
		for i, e := range x {
			out[i] = CloneTree(e)
		}
		return out
	default:
		return v
	}
}

// CloneTree is Clone for a Tree. A nil tree stays nil.
func CloneTree(t Tree) Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, e := range t {
		out[k] = Clone(e)
	}
	return out
}
