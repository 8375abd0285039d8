/*
Package dirtycheck compares live store state with an explicit baseline.

SetHead snapshots the watched values and starts watching. The plugin then
reports whether the current state differs structurally from that head, and
Reset writes the head back into the store. Plugin watches the whole state or a
set of paths; EntityPlugin keeps one head per entity and also treats
additions and removals as dirty.

Both streams (SelectIsDirty, SelectSomeDirty) are lazy and shared, replay
their latest value and complete on Destroy. After Destroy every query fails
with ErrDestroyed.
*/
package dirtycheck
