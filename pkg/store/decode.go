package store

import (
	"fmt"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Decode copies a state value (usually an entity Tree) into the struct
// pointed to by out. Field names follow `json` tags so the same struct serves
// persistence and decoding. Numbers read back from JSON are converted weakly.
func Decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("failed to decode state value: %w", err)
	}
	return nil
}

// ToTree converts a struct (or map) into a Tree using `json` tags, so typed
// values can be added to an entity store.
func ToTree(v any) (domain.Tree, error) {
	out := domain.Tree{}
	if err := Decode(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GUID returns a random entity id.
func GUID() domain.ID {
	return uuid.NewString()
}
