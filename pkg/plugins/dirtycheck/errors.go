package dirtycheck

import "errors"

var (
	// ErrDestroyed is returned by queries issued after Destroy.
	ErrDestroyed = errors.New("dirty check plugin destroyed")

	// ErrNoHead is returned by queries issued before SetHead.
	ErrNoHead = errors.New("dirty check head not set")
)
