package dirtycheck

import (
	"log/slog"

	"github.com/aretw0/statekit/internal/logging"
)

type config struct {
	logger *slog.Logger
	watch  []string
}

// Option configures a Plugin or EntityPlugin.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWatchProperty restricts the generic plugin to the given dotted paths,
// relative to the store root. Without it the whole state is watched.
// EntityPlugin ignores it.
func WithWatchProperty(paths ...string) Option {
	return func(c *config) {
		c.watch = append(c.watch, paths...)
	}
}
