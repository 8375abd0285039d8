package domain

import (
	"sort"
)

// Diff returns the root keys whose value changed between oldTree and newTree,
// sorted. Values are compared with Identical, so a branch rebuilt with equal
// content still counts as changed: that is exactly what subscribers observe.
// If oldTree is nil, every key of newTree is reported (initial load).
func Diff(oldTree, newTree Tree) []string {
	changed := make([]string, 0)

	// Added or modified
	for k, newVal := range newTree {
		oldVal, exists := oldTree[k]
		if !exists || !Identical(oldVal, newVal) {
			changed = append(changed, k)
		}
	}

	// Deleted
	for k := range oldTree {
		if _, exists := newTree[k]; !exists {
			changed = append(changed, k)
		}
	}

	if len(changed) == 0 {
		return nil
	}
	sort.Strings(changed)
	return changed
}
