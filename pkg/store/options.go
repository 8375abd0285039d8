package store

import (
	"log/slog"

	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/schema"
)

type config struct {
	logger *slog.Logger
	hooks  domain.StoreHooks
	idKey  string
	schema schema.Schema
}

func newConfig(opts []Option) config {
	cfg := config{
		logger: logging.NewNop(),
		idKey:  "id",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Store or EntityStore.
type Option func(*config)

// WithLogger sets the structured logger used for mutation events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.StoreHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithIDKey sets the entity field holding the id (default: "id").
func WithIDKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.idKey = key
		}
	}
}

// WithSchema rejects every commit whose resulting state does not match s.
// The initial state is not checked.
func WithSchema(s schema.Schema) Option {
	return func(c *config) {
		c.schema = s
	}
}
