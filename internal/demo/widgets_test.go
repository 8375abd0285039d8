package demo_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/statekit/internal/demo"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetIDs(st demo.WidgetsStatus) []string {
	ids := make([]string, 0, len(st.Widgets))
	for _, w := range st.Widgets {
		ids = append(ids, w.ID)
	}
	return ids
}

func TestWidgets_SeedsEmptyPristineStore(t *testing.T) {
	w, err := demo.NewWidgets(nil)
	require.NoError(t, err)
	defer w.Destroy()

	st, err := w.Status()
	require.NoError(t, err)
	assert.Equal(t, "Akita widgets", st.Name)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, widgetIDs(st))
	assert.Equal(t, "Widget 3", st.Widgets[2].Name)
	assert.False(t, st.Dirty)
	assert.False(t, st.SomeDirty)
}

func TestWidgets_KeepsExistingEntities(t *testing.T) {
	s := store.NewEntityStore(demo.WidgetsStoreName, nil)
	require.NoError(t, s.Set([]domain.Tree{{"id": 9, "name": "Widget 9"}}))

	w, err := demo.OpenWidgets(s, nil)
	require.NoError(t, err)
	defer w.Destroy()

	st, err := w.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, widgetIDs(st))
}

func TestWidgets_DirtyFlow(t *testing.T) {
	w, err := demo.NewWidgets(nil)
	require.NoError(t, err)
	defer w.Destroy()

	require.NoError(t, w.UpdateWidget("2", "Renamed"))
	st, err := w.Status()
	require.NoError(t, err)
	assert.True(t, st.Dirty)
	assert.True(t, st.Widgets[1].Dirty)
	assert.False(t, st.Widgets[0].Dirty)

	// The page name is outside the watched entities.
	require.NoError(t, w.Revert("2"))
	require.NoError(t, w.UpdateName("Dashboard"))
	st, err = w.Status()
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", st.Name)
	assert.False(t, st.Dirty)
	assert.False(t, st.SomeDirty)

	require.NoError(t, w.Add())
	require.NoError(t, w.Remove("1"))
	st, err = w.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "4", "5", "6"}, widgetIDs(st))
	assert.True(t, st.Widgets[4].Dirty, "added widget is dirty")
	assert.True(t, w.Query.IsDirty())

	require.NoError(t, w.RevertStore())
	st, err = w.Status()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, widgetIDs(st))
	assert.False(t, st.Dirty)
	assert.Equal(t, "Dashboard", st.Name, "reset leaves unwatched keys alone")

	// Ids restart after the restored collection.
	require.NoError(t, w.Add())
	assert.True(t, w.Query.HasEntity("6"))
}

func TestWidgets_SelectIsDirty(t *testing.T) {
	w, err := demo.NewWidgets(nil)
	require.NoError(t, err)
	defer w.Destroy()

	var got []bool
	sub := w.Collection.SelectIsDirty().Subscribe(func(v bool) { got = append(got, v) })
	defer sub.Unsubscribe()

	require.NoError(t, w.Remove())
	require.NoError(t, w.RevertStore())

	assert.Equal(t, []bool{false, true, false}, got)
}

func TestWidgets_DestroyEndsStreams(t *testing.T) {
	w, err := demo.NewWidgets(nil)
	require.NoError(t, err)

	sub := w.Specific.SelectSomeDirty().Subscribe(func(bool) {})
	w.Destroy()
	require.Eventually(t, sub.Closed, time.Second, 5*time.Millisecond)
}

func TestRunWidgets(t *testing.T) {
	report, err := demo.RunWidgets(nil)
	require.NoError(t, err)
	require.Len(t, report.Steps, 8)

	md := report.Markdown()
	assert.True(t, strings.HasPrefix(md, "# Widgets"))
	assert.Contains(t, md, "Renamed widget")
	assert.Contains(t, report.Steps[1].Result, "Entities dirty: `true`")
	assert.Contains(t, report.Steps[6].Result, "Entities dirty: `false`")
}

func TestWidgets_WatchName(t *testing.T) {
	s := store.NewEntityStore(demo.WidgetsStoreName, domain.Tree{"name": "Akita widgets"})
	w, err := demo.OpenWidgets(s, nil, "name")
	require.NoError(t, err)
	defer w.Destroy()

	require.NoError(t, w.UpdateWidget("1", "Renamed"))
	st, err := w.Status()
	require.NoError(t, err)
	assert.False(t, st.Dirty, "entities are not watched")
	assert.True(t, st.SomeDirty)

	require.NoError(t, w.UpdateName("Dashboard"))
	st, err = w.Status()
	require.NoError(t, err)
	assert.True(t, st.Dirty)

	require.NoError(t, w.RevertStore())
	st, err = w.Status()
	require.NoError(t, err)
	assert.Equal(t, "Akita widgets", st.Name)
	assert.Equal(t, "Renamed", st.Widgets[0].Name)
}
