// Package middleware wraps snapshot stores with encryption and masking.
package middleware

import "github.com/aretw0/statekit/pkg/ports"

// Middleware allows wrapping a SnapshotStore to add behavior.
type Middleware func(ports.SnapshotStore) ports.SnapshotStore

// Chain wraps next with mws. The first middleware is the outermost, so it
// sees a snapshot first on Save and last on Load.
func Chain(next ports.SnapshotStore, mws ...Middleware) ports.SnapshotStore {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}
