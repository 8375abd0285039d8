/*
Package statekit is a reactive state core: named stores holding plain state
trees, entity collections with normalized ids, queries that expose derived
values as shared reactive streams, and plugins such as dirty checking and
form persistence that attach to a query.

# Concept

A store owns one state tree and replaces it copy-on-write on every update.
Subscribers observe changes through replay-1 streams; selectors only emit
when their projection changes. Plugins never reach into store internals, they
read through a query and write through labelled commits.

# Packages

  - pkg/path: dotted path accessor over state trees.
  - pkg/store: Store, EntityStore, Query, EntityQuery and Registry.
  - pkg/rx: the minimal reactive toolkit the queries are built on.
  - pkg/plugins: plugin capability and lifecycle binding.
  - pkg/plugins/dirtycheck: head snapshots plus dirty streams and revert.
  - pkg/plugins/persistform: two-way sync between a form and a store slice.
  - pkg/forms: a small form model implementing the persistform contract.
  - pkg/session and pkg/adapters: snapshot persistence backends.

# Usage

A Session ties a registry of stores to a persisted snapshot:

	todos := store.NewEntityStore("todos", nil)
	sess, err := statekit.NewSession("user-42", statekit.WithSnapshotStore(file.New("")))
	if err != nil {
		log.Fatal(err)
	}
	_ = sess.Register(todos.Store)

	ctx := context.Background()
	if _, err := sess.Resume(ctx); err != nil {
		log.Fatal(err)
	}
	auto, _ := sess.AutoPersist(ctx)
	defer auto.Unsubscribe()
*/
package statekit
