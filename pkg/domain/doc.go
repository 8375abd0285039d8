/*
Package domain contains the core data model shared by every statekit package.

It defines the plain state record (Tree), entity identifiers, the persisted
snapshot layout and the hook/event types used for observability. This package
is kept free of I/O and of any reactive machinery so that adapters and plugins
can depend on it without pulling the store in.

# Key Types

  - Tree: an immutable-by-convention record owned by one store.
  - ID: the identifier of an entity inside a normalized collection.
  - Snapshot: the state of several named stores, keyed by store name.
  - UpdateEvent / StoreHooks: notifications emitted after every committed mutation.
*/
package domain
