package store

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/statekit/pkg/domain"
	jsonpatch "github.com/evanphx/json-patch"
)

// ApplyPatch applies an RFC 6902 JSON patch to the state. The state goes
// through JSON, so numbers come back as float64 and the whole tree is rebuilt.
// The root error value is not serializable and is carried over untouched.
func (s *Store) ApplyPatch(patch []byte) error {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return fmt.Errorf("failed to decode patch: %w", err)
	}
	return s.commit(domain.ActionPatch, func(prev domain.Tree) (domain.Tree, error) {
		doc := copyTree(prev)
		delete(doc, domain.KeyError)
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}
		patched, err := ops.Apply(data)
		if err != nil {
			return nil, fmt.Errorf("failed to apply patch: %w", err)
		}
		var next domain.Tree
		if err := json.Unmarshal(patched, &next); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patched state: %w", err)
		}
		if next == nil {
			return nil, ErrNilState
		}
		if prevErr, ok := prev[domain.KeyError]; ok {
			next[domain.KeyError] = prevErr
		}
		return s.normalize(next), nil
	})
}
