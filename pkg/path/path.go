// Package path reads and writes values at dotted paths inside a state Tree.
//
// A path is written `storeName.segment.segment...`. The leading segment names
// the store and is not used for traversal: a single-segment path addresses the
// whole tree. Paths are parsed once into a Path value and reused.
package path

import (
	"fmt"
	"strings"

	"github.com/aretw0/statekit/pkg/domain"
)

// Path is a parsed dotted path.
type Path struct {
	Store    string
	Segments []string
}

// InvalidPathError reports a path that cannot be parsed or that crosses a
// value which is not a record.
type InvalidPathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *InvalidPathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("invalid path '%s': %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid path '%s' at '%s': %s", e.Path, e.Segment, e.Reason)
}

// Parse splits raw into its store name and segments.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, &InvalidPathError{Path: raw, Reason: "empty path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return Path{}, &InvalidPathError{Path: raw, Reason: "empty segment"}
		}
	}
	return Path{Store: parts[0], Segments: parts[1:]}, nil
}

// MustParse is like Parse but panics on error. Intended for constant paths.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Under builds a path rooted at store from a relative dotted path.
// An empty rel addresses the whole tree.
func Under(store, rel string) (Path, error) {
	if rel == "" {
		return Parse(store)
	}
	return Parse(store + "." + rel)
}

// IsRoot reports whether p addresses the whole tree.
func (p Path) IsRoot() bool {
	return len(p.Segments) == 0
}

func (p Path) String() string {
	if p.IsRoot() {
		return p.Store
	}
	return p.Store + "." + strings.Join(p.Segments, ".")
}

// Get returns the value at p. A missing key anywhere along the path yields
// nil; crossing a value that is not a record is an error.
func Get(tree domain.Tree, p Path) (any, error) {
	if p.IsRoot() {
		return tree, nil
	}
	var cur any = tree
	for _, seg := range p.Segments {
		if cur == nil {
			return nil, nil
		}
		node, ok := domain.AsTree(cur)
		if !ok {
			return nil, &InvalidPathError{Path: p.String(), Segment: seg, Reason: fmt.Sprintf("parent is %T, not a record", cur)}
		}
		cur = node[seg]
	}
	return cur, nil
}

// Set returns a copy of tree with value placed at p. Every record from the
// root to the parent of the target is shallow-copied; all other branches are
// shared with the input. Missing intermediates are created.
func Set(tree domain.Tree, p Path, value any) (domain.Tree, error) {
	if p.IsRoot() {
		next, ok := domain.AsTree(value)
		if !ok && value != nil {
			return nil, &InvalidPathError{Path: p.String(), Reason: fmt.Sprintf("root value must be a record, got %T", value)}
		}
		return next, nil
	}
	return setIn(tree, p, 0, value)
}

func setIn(node domain.Tree, p Path, depth int, value any) (domain.Tree, error) {
	seg := p.Segments[depth]
	next := make(domain.Tree, len(node)+1)
	for k, v := range node {
		next[k] = v
	}
	if depth == len(p.Segments)-1 {
		next[seg] = value
		return next, nil
	}

	child := node[seg]
	var childTree domain.Tree
	if child != nil {
		t, ok := domain.AsTree(child)
		if !ok {
			return nil, &InvalidPathError{Path: p.String(), Segment: p.Segments[depth+1], Reason: fmt.Sprintf("parent is %T, not a record", child)}
		}
		childTree = t
	}
	updated, err := setIn(childTree, p, depth+1, value)
	if err != nil {
		return nil, err
	}
	next[seg] = updated
	return next, nil
}

// Lookup parses raw and reads the value at it.
func Lookup(tree domain.Tree, raw string) (any, error) {
	p, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Get(tree, p)
}

// Assign parses raw and writes value at it.
func Assign(tree domain.Tree, raw string, value any) (domain.Tree, error) {
	p, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Set(tree, p, value)
}
