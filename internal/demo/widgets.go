package demo

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/plugins"
	"github.com/aretw0/statekit/pkg/plugins/dirtycheck"
	"github.com/aretw0/statekit/pkg/store"
)

// WidgetsStoreName is the registry name of the widget store.
const WidgetsStoreName = "widgets"

// initialWidgets is the number of widgets created on an empty pristine store.
const initialWidgets = 5

// Widget is one row of the table.
type Widget struct {
	ID    string
	Name  string
	Dirty bool
}

// WidgetsStatus is what the widgets page displays.
type WidgetsStatus struct {
	Name      string
	Widgets   []Widget
	Dirty     bool
	SomeDirty bool
}

// Widgets is the widgets page: an entity store watched by a collection-wide
// dirty check on its entities and a per-entity dirty check.
type Widgets struct {
	Store      *store.EntityStore
	Query      *store.EntityQuery
	Collection *dirtycheck.Plugin
	Specific   *dirtycheck.EntityPlugin

	host   *plugins.Host
	nextID int
}

// NewWidgets opens the page over a new store.
func NewWidgets(logger *slog.Logger, opts ...store.Option) (*Widgets, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := store.NewEntityStore(WidgetsStoreName, domain.Tree{"name": "Akita widgets"}, opts...)
	return OpenWidgets(s, logger)
}

// OpenWidgets opens the page over an existing store, seeding it when it is
// empty and pristine. The collection check watches the given root keys,
// entities by default.
func OpenWidgets(s *store.EntityStore, logger *slog.Logger, watch ...string) (*Widgets, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(watch) == 0 {
		watch = []string{domain.KeyEntities}
	}
	w := &Widgets{
		Store: s,
		Query: store.NewEntityQuery(s),
		host:  plugins.NewHost("widgets-page"),
	}
	if w.Query.IsEmpty() && w.Query.IsPristine() {
		seed := make([]domain.Tree, 0, initialWidgets)
		for range initialWidgets {
			seed = append(seed, w.createWidget())
		}
		if err := s.Set(seed); err != nil {
			return nil, err
		}
	} else {
		w.nextID = w.Query.GetCount()
	}

	collection, err := dirtycheck.New(w.Query.Query,
		dirtycheck.WithWatchProperty(watch...),
		dirtycheck.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	w.Collection = collection
	w.Specific = dirtycheck.NewEntity(w.Query, dirtycheck.WithLogger(logger))

	if err := errors.Join(w.host.Attach(w.Collection), w.host.Attach(w.Specific)); err != nil {
		w.host.Destroy()
		return nil, err
	}
	return w, nil
}

func (w *Widgets) createWidget() domain.Tree {
	w.nextID++
	return domain.Tree{"id": w.nextID, "name": fmt.Sprintf("Widget %d", w.nextID)}
}

// UpdateWidget renames one widget.
func (w *Widgets) UpdateWidget(id domain.ID, name string) error {
	return w.Store.UpdateEntity(id, domain.Tree{"name": name})
}

// Add appends a new widget.
func (w *Widgets) Add() error {
	return w.Store.Add(w.createWidget())
}

// Remove deletes the given widgets, or all of them without ids, and marks the
// store dirty.
func (w *Widgets) Remove(ids ...domain.ID) error {
	if err := w.Store.Remove(ids...); err != nil {
		return err
	}
	return w.Store.SetDirty()
}

// UpdateName renames the page. The collection check does not watch it.
func (w *Widgets) UpdateName(name string) error {
	return w.Store.UpdateRoot(domain.Tree{"name": name})
}

// Revert restores one widget from its head.
func (w *Widgets) Revert(id domain.ID) error {
	return w.Specific.Reset(id)
}

// RevertStore restores every entity from the collection head.
func (w *Widgets) RevertStore() error {
	if err := w.Collection.Reset(); err != nil {
		return err
	}
	w.nextID = w.Query.GetCount()
	return nil
}

// Destroy releases both dirty checks.
func (w *Widgets) Destroy() {
	w.host.Destroy()
}

// Status reads what the page shows.
func (w *Widgets) Status() (WidgetsStatus, error) {
	st := WidgetsStatus{}
	st.Name, _ = w.Query.GetSnapshot()["name"].(string)

	var err error
	if st.Dirty, err = w.Collection.IsDirty(); err != nil {
		return st, err
	}
	if st.SomeDirty, err = w.Specific.IsSomeDirty(); err != nil {
		return st, err
	}
	for _, e := range w.Query.GetAll() {
		id, _ := domain.ToID(e["id"])
		dirty, err := w.Specific.IsDirty(id)
		if err != nil {
			return st, err
		}
		name, _ := e["name"].(string)
		st.Widgets = append(st.Widgets, Widget{ID: id, Name: name, Dirty: dirty})
	}
	return st, nil
}

// Markdown renders the status as a table plus the collection flags.
func (st WidgetsStatus) Markdown() string {
	rows := make([][]string, 0, len(st.Widgets))
	for _, wd := range st.Widgets {
		rows = append(rows, []string{wd.ID, wd.Name, strconv.FormatBool(wd.Dirty)})
	}
	return fmt.Sprintf("Page name: **%s**\n\n%s\nEntities dirty: `%t`, some entity dirty: `%t`",
		st.Name, table([]string{"Id", "Name", "Dirty"}, rows), st.Dirty, st.SomeDirty)
}

// RunWidgets plays the widgets page script and reports every step.
func RunWidgets(logger *slog.Logger, watch ...string) (Report, error) {
	report := Report{Title: "Widgets"}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := store.NewEntityStore(WidgetsStoreName, domain.Tree{"name": "Akita widgets"}, store.WithLogger(logger))
	w, err := OpenWidgets(s, logger, watch...)
	if err != nil {
		return report, err
	}
	defer w.Destroy()

	steps := []struct {
		action string
		run    func() error
	}{
		{"Open page", func() error { return nil }},
		{"Rename widget 2", func() error { return w.UpdateWidget("2", "Renamed widget") }},
		{"Rename the page (not watched)", func() error { return w.UpdateName("Dashboard") }},
		{"Revert widget 2", func() error { return w.Revert("2") }},
		{"Add widget", w.Add},
		{"Delete widget 1", func() error { return w.Remove("1") }},
		{"Reset store entities", w.RevertStore},
		{"Clear list", func() error { return w.Remove() }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return report, fmt.Errorf("%s: %w", s.action, err)
		}
		st, err := w.Status()
		if err != nil {
			return report, err
		}
		report.add(s.action, "%s", st.Markdown())
	}
	return report, nil
}
