package domain

import "errors"

// ErrSnapshotNotFound is returned when a snapshot key cannot be found in a snapshot store.
var ErrSnapshotNotFound = errors.New("snapshot not found")
