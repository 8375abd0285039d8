package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/ports"
)

// MockStore is an in-memory implementation of SnapshotStore for testing purposes.
type MockStore struct {
	data map[string]domain.Snapshot
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Snapshot),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	// Deep copy to simulate serialization
	copied := make(domain.Snapshot, len(snap))
	for name, tree := range snap {
		copied[name] = domain.CloneTree(tree)
	}
	m.data[sessionID] = copied
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	snap, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	copied := make(domain.Snapshot, len(snap))
	for name, tree := range snap {
		copied[name] = domain.CloneTree(tree)
	}
	return copied, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestSnapshotStore_Contract(t *testing.T) {
	// The mock doubles as a reference implementation for adapters.
	ports.RunSnapshotStoreContract(t, NewMockStore())
}
