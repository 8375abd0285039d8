package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.Snapshot{
			"todos": domain.Tree{
				"entities": domain.Tree{"1": domain.Tree{"id": "1", "title": "write"}},
				"ids":      []domain.ID{"1"},
				"active":   nil,
			},
			"ui": domain.Tree{"filter": "SHOW_ALL", "page": 2},
		}

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		require.Contains(t, loaded, "todos")
		assert.Equal(t, "SHOW_ALL", loaded["ui"]["filter"])
		// Serializing adapters turn numbers into float64 and []ID into []any;
		// store.Restore normalizes both, so only presence is checked here.
		assert.NotNil(t, loaded["ui"]["page"])
		assert.Len(t, domain.IDs(loaded["todos"]["ids"]), 1)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		snap := domain.Snapshot{"ui": domain.Tree{"filter": "all"}}
		require.NoError(t, store.Save(ctx, sessionID, snap))
		snap["ui"]["filter"] = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "all", loaded["ui"]["filter"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.Snapshot{"ui": domain.Tree{}})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.Snapshot{})
		_ = store.Save(ctx, id2, domain.Snapshot{})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
