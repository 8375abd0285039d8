/*
Package ports defines the driven ports (interfaces) of statekit.

These interfaces decouple the in-memory stores from the places their state is
persisted, so that a session can be resumed from memory, the file system or
Redis without changing the stores.

# Key Interfaces

  - SnapshotStore: persists and loads a domain.Snapshot (store name → state) per session.
  - DistributedLocker: provides distributed locking for concurrent access to one session.
*/
package ports
