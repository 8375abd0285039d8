package store

import "errors"

var (
	// ErrStoreDestroyed is returned by every mutation issued after Destroy.
	ErrStoreDestroyed = errors.New("store destroyed")

	// ErrNilPatch is returned when a nil patch is passed to an update.
	ErrNilPatch = errors.New("patch must not be nil")

	// ErrNilState is returned when an updater function returns a nil tree.
	ErrNilState = errors.New("updater returned a nil state")

	// ErrMissingID is returned when an entity has no usable id.
	ErrMissingID = errors.New("entity has no id")

	// ErrDuplicateStore is returned when two stores with the same name are registered.
	ErrDuplicateStore = errors.New("store already registered")

	// ErrSchemaViolation wraps the schema failures of a rejected commit.
	ErrSchemaViolation = errors.New("state does not match the store schema")
)
