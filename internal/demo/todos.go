package demo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/rx"
	"github.com/aretw0/statekit/pkg/schema"
	"github.com/aretw0/statekit/pkg/store"
)

// TodosStoreName is the registry name of the todo store.
const TodosStoreName = "todos"

// Visibility filters.
const (
	FilterAll       = "SHOW_ALL"
	FilterCompleted = "SHOW_COMPLETED"
	FilterActive    = "SHOW_ACTIVE"
)

// Filters lists the accepted visibility filters in display order.
var Filters = []string{FilterAll, FilterCompleted, FilterActive}

// ErrUnknownFilter is returned by SetFilter for a value outside Filters.
var ErrUnknownFilter = errors.New("unknown visibility filter")

// ErrNoTodo is returned when an operation names a todo that does not exist.
var ErrNoTodo = errors.New("todo not found")

// Todo is one entry of the list.
type Todo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodosSchema is the shape every committed todo list must keep.
var TodosSchema = schema.Schema{
	domain.KeyEntities: schema.Map(schema.Object(schema.Schema{
		"id":        schema.String(),
		"title":     schema.String(),
		"completed": schema.Bool(),
	})),
	domain.KeyIDs: schema.Slice(schema.String()),
	"ui": schema.Object(schema.Schema{
		"filter": schema.String(),
	}),
}

// Todos pairs the todo entity store with its query.
type Todos struct {
	Store *store.EntityStore
	Query *store.EntityQuery
}

// NewTodos creates an empty list showing every todo. Commits that break
// TodosSchema are rejected.
func NewTodos(opts ...store.Option) *Todos {
	opts = append([]store.Option{store.WithSchema(TodosSchema)}, opts...)
	s := store.NewEntityStore(TodosStoreName, domain.Tree{
		"ui": domain.Tree{"filter": FilterAll},
	}, opts...)
	return &Todos{Store: s, Query: store.NewEntityQuery(s)}
}

// Add appends a new open todo and returns its id.
func (t *Todos) Add(title string) (domain.ID, error) {
	id := store.GUID()
	err := t.Store.Add(domain.Tree{"id": id, "title": title, "completed": false})
	return id, err
}

// Complete sets the completed flag of a todo.
func (t *Todos) Complete(id domain.ID, completed bool) error {
	if !t.Query.HasEntity(id) {
		return fmt.Errorf("%w: %s", ErrNoTodo, id)
	}
	return t.Store.UpdateEntity(id, domain.Tree{"completed": completed})
}

// Delete removes a todo.
func (t *Todos) Delete(id domain.ID) error {
	if !t.Query.HasEntity(id) {
		return fmt.Errorf("%w: %s", ErrNoTodo, id)
	}
	return t.Store.Remove(id)
}

// SetFilter changes the visibility filter.
func (t *Todos) SetFilter(filter string) error {
	if !slices.Contains(Filters, filter) {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}
	return t.Store.UpdateRoot(domain.Tree{"ui": domain.Tree{"filter": filter}})
}

// Filter returns the current visibility filter.
func (t *Todos) Filter() string {
	return filterOf(t.Query.GetSnapshot())
}

// SelectVisibilityFilter streams the visibility filter.
func (t *Todos) SelectVisibilityFilter() rx.Observable[string] {
	return store.Select(t.Query, filterOf)
}

// SelectVisible streams the todos that pass the visibility filter.
func (t *Todos) SelectVisible() rx.Observable[[]Todo] {
	return rx.CombineLatest2[string, []domain.Tree, []Todo](
		t.SelectVisibilityFilter(),
		t.Query.SelectAll(),
		func(filter string, all []domain.Tree) []Todo {
			return visible(filter, decodeTodos(all))
		},
	)
}

// Visible returns the todos that pass the visibility filter and, when where
// is not empty, the expression over each todo.
func (t *Todos) Visible(where string) ([]Todo, error) {
	var opts []store.AllOption
	if where != "" {
		opt, err := store.WhereExpr(where)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return visible(t.Filter(), decodeTodos(t.Query.GetAll(opts...))), nil
}

// SelectAllDone streams true when the list is not empty and every todo is completed.
func (t *Todos) SelectAllDone() rx.Observable[bool] {
	return store.Select(t.Query, allDone)
}

// AllDone is the synchronous form of SelectAllDone.
func (t *Todos) AllDone() bool {
	return allDone(t.Query.GetSnapshot())
}

func allDone(s domain.Tree) bool {
	entities, _ := domain.AsTree(s[domain.KeyEntities])
	if len(entities) == 0 {
		return false
	}
	for _, raw := range entities {
		e, _ := domain.AsTree(raw)
		if !isCompleted(e) {
			return false
		}
	}
	return true
}

func isCompleted(e domain.Tree) bool {
	done, _ := e["completed"].(bool)
	return done
}

func filterOf(s domain.Tree) string {
	ui, _ := domain.AsTree(s["ui"])
	f, _ := ui["filter"].(string)
	if f == "" {
		return FilterAll
	}
	return f
}

func visible(filter string, todos []Todo) []Todo {
	switch filter {
	case FilterCompleted:
		return slices.DeleteFunc(todos, func(t Todo) bool { return !t.Completed })
	case FilterActive:
		return slices.DeleteFunc(todos, func(t Todo) bool { return t.Completed })
	default:
		return todos
	}
}

func decodeTodos(all []domain.Tree) []Todo {
	out := make([]Todo, 0, len(all))
	for _, e := range all {
		var todo Todo
		if err := store.Decode(e, &todo); err == nil {
			out = append(out, todo)
		}
	}
	return out
}
