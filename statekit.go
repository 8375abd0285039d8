package statekit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/adapters/memory"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/ports"
	"github.com/aretw0/statekit/pkg/rx"
	"github.com/aretw0/statekit/pkg/session"
	"github.com/aretw0/statekit/pkg/store"
)

// DefaultAutoPersistDebounce is the quiet period AutoPersist waits for
// before writing a snapshot.
const DefaultAutoPersistDebounce = 500 * time.Millisecond

var (
	// ErrEmptySessionID is returned by NewSession without an id.
	ErrEmptySessionID = errors.New("session id cannot be empty")
	// ErrAutoPersistRunning is returned when AutoPersist is started twice.
	ErrAutoPersistRunning = errors.New("auto persist already running")
)

// Session binds a registry of stores to one persisted snapshot. It is the
// entry point for resuming an application's state across restarts.
type Session struct {
	id       string
	registry *store.Registry
	manager  *session.Manager
	snapshot ports.SnapshotStore
	debounce time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	auto *rx.Subscription
}

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithRegistry uses an existing registry instead of a new empty one.
func WithRegistry(r *store.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithSnapshotStore sets the backend snapshots are written to
// (default: in memory).
func WithSnapshotStore(st ports.SnapshotStore) Option {
	return func(s *Session) {
		s.snapshot = st
	}
}

// WithManager injects a configured session manager, e.g. one holding a
// distributed locker. It takes precedence over WithSnapshotStore.
func WithManager(m *session.Manager) Option {
	return func(s *Session) {
		s.manager = m
	}
}

// WithDebounce sets the AutoPersist quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session called id.
func NewSession(id string, opts ...Option) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	s := &Session{
		id:       id,
		debounce: DefaultAutoPersistDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = store.NewRegistry(s.logger)
	}
	if s.manager == nil {
		if s.snapshot == nil {
			s.snapshot = memory.NewStore()
		}
		s.manager = session.NewManager(s.snapshot, session.WithLogger(s.logger))
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Registry returns the stores tracked by the session.
func (s *Session) Registry() *store.Registry {
	return s.registry
}

// Manager returns the session manager.
func (s *Session) Manager() *session.Manager {
	return s.manager
}

// Register adds stores to the session registry.
func (s *Session) Register(stores ...*store.Store) error {
	return s.registry.Register(stores...)
}

// Persist writes the current registry snapshot.
func (s *Session) Persist(ctx context.Context) error {
	snap := s.registry.Snapshot()
	if err := s.manager.Save(ctx, s.id, snap); err != nil {
		return fmt.Errorf("persist session %s: %w", s.id, err)
	}
	s.logger.Debug("session persisted", "session_id", s.id, "stores", len(snap))
	return nil
}

// Resume loads the persisted snapshot into the registered stores. It reports
// false, without error, when nothing was persisted yet.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	snap, err := s.manager.Load(ctx, s.id)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resume session %s: %w", s.id, err)
	}
	if err := s.registry.Restore(snap); err != nil {
		return true, fmt.Errorf("resume session %s: %w", s.id, err)
	}
	s.logger.Info("session resumed", "session_id", s.id, "stores", len(snap))
	return true, nil
}

// AutoPersist persists the session after every burst of changes to the
// stores registered at call time, once the debounce period has passed
// quietly. It stops when ctx is done or the returned subscription is
// released. Write failures are logged.
func (s *Session) AutoPersist(ctx context.Context) (*rx.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auto != nil && !s.auto.Closed() {
		return nil, ErrAutoPersistRunning
	}

	ticks := rx.NewSubject[string]()
	sub := rx.TakeUntil(rx.Debounce[string](ticks, s.debounce), ctx.Done()).Subscribe(func(name string) {
		if err := s.Persist(ctx); err != nil {
			s.logger.Error("auto persist failed", "session_id", s.id, "last_store", name, "err", err)
		}
	})

	for _, st := range s.registry.Stores() {
		name := st.Name()
		replayed := false
		// The first delivery is the replayed current state, not a change.
		inner := st.Changes().Subscribe(func(domain.Tree) {
			if !replayed {
				replayed = true
				return
			}
			ticks.Next(name)
		})
		sub.Add(inner.Unsubscribe)
	}
	sub.Add(ticks.Complete)

	s.auto = sub
	return sub, nil
}

// Close stops AutoPersist, if running, and writes a final snapshot.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	auto := s.auto
	s.auto = nil
	s.mu.Unlock()
	if auto != nil {
		auto.Unsubscribe()
	}
	return s.Persist(ctx)
}
