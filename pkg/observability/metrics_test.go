package observability_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/observability"
	"github.com/aretw0/statekit/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsStoreEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	s := store.New("ui", domain.Tree{"filter": "all", "page": 1}, store.WithHooks(m.Hooks()))
	require.NoError(t, s.Update(domain.Tree{"filter": "done"}))
	require.NoError(t, s.Update(domain.Tree{"page": 2}))
	require.NoError(t, s.SetLoading(true))
	s.Destroy()

	expected := `
# HELP statekit_store_updates_total Committed store transitions by action.
# TYPE statekit_store_updates_total counter
statekit_store_updates_total{action="Set Loading",store="ui"} 1
statekit_store_updates_total{action="Update",store="ui"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "statekit_store_updates_total"))

	expectedDestroy := `
# HELP statekit_store_destroyed_total Destroyed stores.
# TYPE statekit_store_destroyed_total counter
statekit_store_destroyed_total{store="ui"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expectedDestroy), "statekit_store_destroyed_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "statekit_store_last_update_timestamp_seconds"))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_WithoutRegisterer(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Hooks().OnUpdate)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	s := store.New("ui", domain.Tree{"filter": "all"}, store.WithHooks(observability.LogHooks(logger)))
	require.NoError(t, s.Update(domain.Tree{"filter": "done"}))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "store_update", rec["msg"])
	assert.Equal(t, "ui", rec["store"])
	assert.Equal(t, "Update", rec["action"])
	assert.Equal(t, []any{"filter"}, rec["changed"])
}

func TestMergedHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var buf bytes.Buffer
	hooks := domain.MergeHooks(m.Hooks(), observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil))))

	s := store.New("ui", domain.Tree{}, store.WithHooks(hooks))
	require.NoError(t, s.Update(domain.Tree{"a": 1}))

	assert.Contains(t, buf.String(), "store_update")
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "statekit_store_updates_total"))
}
