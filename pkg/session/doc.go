/*
Package session implements snapshot persistence orchestration.

A Manager serializes access to one session's snapshot within the process
with reference-counted keyed mutexes, and across replicas with an optional
ports.DistributedLocker, before delegating to a ports.SnapshotStore.
*/
package session
