package statekit_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/statekit"
	"github.com/aretw0/statekit/pkg/adapters/memory"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/store"
)

// ExampleSession persists a store and resumes it into a fresh one.
func ExampleSession() {
	ctx := context.Background()
	backend := memory.NewStore()

	ui := store.New("ui", domain.Tree{"filter": "SHOW_ALL"})
	sess, err := statekit.NewSession("user-42", statekit.WithSnapshotStore(backend))
	if err != nil {
		log.Fatal(err)
	}
	_ = sess.Register(ui)
	_ = ui.Update(domain.Tree{"filter": "SHOW_COMPLETED"})
	if err := sess.Persist(ctx); err != nil {
		log.Fatal(err)
	}

	restored := store.New("ui", domain.Tree{"filter": "SHOW_ALL"})
	next, _ := statekit.NewSession("user-42", statekit.WithSnapshotStore(backend))
	_ = next.Register(restored)
	ok, err := next.Resume(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(ok, restored.GetSnapshot()["filter"])
	// Output: true SHOW_COMPLETED
}
