package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/statekit/pkg/adapters/memory"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_KeepsNativeTypes(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	snap := domain.Snapshot{"todos": domain.Tree{"ids": []domain.ID{"a", "b"}, "page": 3}}
	require.NoError(t, store.Save(ctx, "s1", snap))

	snap["todos"]["ids"].([]domain.ID)[0] = "mutated"

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{"a", "b"}, loaded["todos"]["ids"])
	assert.Equal(t, 3, loaded["todos"]["page"])
}

func TestMemoryStore_ListSorted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Save(ctx, id, domain.Snapshot{}))
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
