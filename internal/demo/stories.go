package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/forms"
	"github.com/aretw0/statekit/pkg/path"
	"github.com/aretw0/statekit/pkg/plugins"
	"github.com/aretw0/statekit/pkg/plugins/persistform"
	"github.com/aretw0/statekit/pkg/store"
)

// StoriesStoreName is the registry name of the story store.
const StoriesStoreName = "stories"

// settleTimeout bounds how long the script waits for a debounced write.
const settleTimeout = 2 * time.Second

// ErrNotSettled is returned when a debounced form write never reached the store.
var ErrNotSettled = errors.New("form value did not reach the store")

// NewStory is the factory of the new-story form.
func NewStory() domain.Tree {
	return domain.Tree{"title": "", "story": "", "draft": false, "category": "js"}
}

// Stories is the story editor page: three forms persisted into one store,
// by factory key, by nested key and by root keys.
type Stories struct {
	Store *store.EntityStore
	Query *store.EntityQuery

	Form     *forms.Group
	KeyForm  *forms.Group
	RootForm *forms.Group

	Persist     *persistform.Plugin
	PersistKey  *persistform.Plugin
	PersistRoot *persistform.Plugin

	builder forms.Builder
	formKey string
	host    *plugins.Host
}

// StoriesOptions configures the three persist-form plugins of the page.
type StoriesOptions struct {
	Debounce  time.Duration
	FormKey   string
	EmitEvent bool
}

func (o StoriesOptions) plugin(logger *slog.Logger, host any) []persistform.Option {
	opts := []persistform.Option{
		persistform.WithLogger(logger),
		persistform.WithHost(host),
		persistform.WithEmitEvent(o.EmitEvent),
	}
	if o.Debounce > 0 {
		opts = append(opts, persistform.WithDebounce(o.Debounce))
	}
	if o.FormKey != "" {
		opts = append(opts, persistform.WithFormKey(o.FormKey))
	}
	return opts
}

// NewStories opens the page over a new store.
func NewStories(logger *slog.Logger, o StoriesOptions) (*Stories, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := store.NewEntityStore(StoriesStoreName, domain.Tree{
		domain.KeyLoading: false,
		"someBoolean":     true,
		"skills":          []any{"JS"},
		"config": domain.Tree{
			"time":       "",
			"tankOwners": []any{"one", "two "},
			"isAdmin":    false,
		},
	}, store.WithLogger(logger))
	return OpenStories(s, logger, o)
}

// OpenStories binds the three forms to s.
func OpenStories(s *store.EntityStore, logger *slog.Logger, o StoriesOptions) (*Stories, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	formKey := o.FormKey
	if formKey == "" {
		formKey = persistform.DefaultFormKey
	}
	b := forms.Builder{}
	p := &Stories{
		Store:   s,
		Query:   store.NewEntityQuery(s),
		builder: b,
		formKey: formKey,
		host:    plugins.NewHost("stories-page"),
		Form: b.Group(map[string]any{
			"title":    "",
			"story":    "",
			"draft":    false,
			"category": "js",
		}),
		KeyForm: b.Group(map[string]any{
			"time":       "",
			"tankOwners": b.Array(),
			"isAdmin":    nil,
		}),
		RootForm: b.Group(map[string]any{
			"skills":      b.Array(),
			"someBoolean": false,
		}),
	}

	opts := o.plugin(logger, p.host)
	var err error
	if p.Persist, err = persistform.New(p.Query.Query, persistform.Factory(NewStory), opts...); err != nil {
		return nil, err
	}
	if p.PersistKey, err = persistform.New(p.Query.Query, persistform.Key("config"), opts...); err != nil {
		return nil, err
	}
	if p.PersistRoot, err = persistform.New(p.Query.Query, persistform.RootKeys(), opts...); err != nil {
		return nil, err
	}

	err = errors.Join(
		p.Persist.SetForm(p.Form, nil),
		p.PersistKey.SetForm(p.KeyForm, b),
		p.PersistRoot.SetForm(p.RootForm, b),
	)
	if err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// Edit sets one field of the new-story form, as typing would.
func (p *Stories) Edit(field string, value any) error {
	return setField(p.Form, field, value)
}

// EditConfig sets one field of the key-based form.
func (p *Stories) EditConfig(field string, value any) error {
	return setField(p.KeyForm, field, value)
}

// AddSkill appends a skill control to the root-key form.
func (p *Stories) AddSkill(skill string) error {
	c, ok := p.RootForm.Get("skills")
	if !ok {
		return fmt.Errorf("form has no skills array")
	}
	arr, ok := c.(*forms.Array)
	if !ok {
		return fmt.Errorf("skills is %T, not an array", c)
	}
	arr.Push(p.builder.Control(skill))
	return nil
}

// Submit saves the story: it raises the loading flag while the story is
// "sent", then resets all three forms.
func (p *Stories) Submit() error {
	if err := p.Store.SetLoading(true); err != nil {
		return err
	}
	if err := p.Store.SetLoading(false); err != nil {
		return err
	}
	return errors.Join(p.Persist.Reset(nil), p.PersistKey.Reset(nil), p.PersistRoot.Reset(nil))
}

// Draft returns the persisted new-story form value.
func (p *Stories) Draft() domain.Tree {
	t, _ := domain.AsTree(p.Query.GetSnapshot()[p.formKey])
	return t
}

// Settle waits until the store value at rel equals want.
func (p *Stories) Settle(rel string, want any) error {
	ptr, err := path.Under(p.Store.Name(), rel)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(settleTimeout)
	for {
		got, err := path.Get(p.Query.GetSnapshot(), ptr)
		if err == nil && jsonEqual(got, want) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrNotSettled, rel)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Destroy releases the three plugins.
func (p *Stories) Destroy() {
	p.host.Destroy()
}

// Markdown renders the form values next to the store slices they persist to.
func (p *Stories) Markdown() string {
	s := p.Query.GetSnapshot()
	return fmt.Sprintf("Form: `%s`\n\nStore `%s`: `%s`\n\nKey form: `%s`\n\nStore `config`: `%s`\n\nRoot form: `%s`\n\nStore root: skills `%s`, someBoolean `%s`",
		jsonString(p.Form.Value()), p.formKey, jsonString(s[p.formKey]),
		jsonString(p.KeyForm.Value()), jsonString(s["config"]),
		jsonString(p.RootForm.Value()), jsonString(s["skills"]), jsonString(s["someBoolean"]))
}

// RunStories plays the story editor script and reports every step.
func RunStories(logger *slog.Logger, o StoriesOptions) (Report, error) {
	report := Report{Title: "Stories"}
	p, err := NewStories(logger, o)
	if err != nil {
		return report, err
	}
	defer p.Destroy()

	steps := []struct {
		action string
		run    func() error
	}{
		{"Open page", func() error { return nil }},
		{"Type a title", func() error {
			if err := p.Edit("title", "Akita in Go"); err != nil {
				return err
			}
			return p.Settle(p.formKey+".title", "Akita in Go")
		}},
		{"Add skill", func() error {
			if err := p.AddSkill("Akita"); err != nil {
				return err
			}
			return p.Settle("skills", []any{"JS", "Akita"})
		}},
		{"Set time", func() error {
			if err := p.EditConfig("time", "10:00"); err != nil {
				return err
			}
			return p.Settle("config.time", "10:00")
		}},
		{"Submit", p.Submit},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return report, fmt.Errorf("%s: %w", s.action, err)
		}
		report.add(s.action, "%s", p.Markdown())
	}
	return report, nil
}

func setField(g *forms.Group, field string, value any) error {
	c, ok := g.Get(field)
	if !ok {
		return fmt.Errorf("form has no field %q", field)
	}
	ctl, ok := c.(*forms.Control)
	if !ok {
		return fmt.Errorf("field %q is %T, not a control", field, c)
	}
	ctl.SetValue(value)
	return nil
}

func jsonString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func jsonEqual(a, b any) bool {
	return jsonString(a) == jsonString(b)
}
