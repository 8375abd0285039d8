/*
Package store owns named slices of state and exposes read-only reactive views over them.

A Store holds one domain.Tree. Every mutation builds a new tree (structural
sharing, never in place), swaps it in under a lock and then notifies
subscribers synchronously on the calling goroutine. An EntityStore keeps a
normalized collection (entities by id, an ordered id list and an optional
active id) inside the same tree.

Queries wrap a store and derive selectors. Selectors are lazy,
reference-counted multicasts that replay their latest projection and only
emit when the projection changes.

# Destruction

A destroyed store rejects every mutation with ErrStoreDestroyed and releases
all subscribers. Mutations on unknown entity ids are silent no-ops.
*/
package store
