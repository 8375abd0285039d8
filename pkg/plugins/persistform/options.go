package persistform

import (
	"log/slog"
	"time"

	"github.com/aretw0/statekit/internal/logging"
)

// Defaults for the plugin options.
const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultFormKey  = "akitaForm"
)

type config struct {
	debounce  time.Duration
	formKey   string
	emitEvent bool
	logger    *slog.Logger
	host      any
	hasHost   bool
}

// Option configures a Plugin.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		debounce: DefaultDebounce,
		formKey:  DefaultFormKey,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDebounce sets the quiet window before a form change is written to the
// store. Zero writes every change at once.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithFormKey sets the top-level key used by Factory targets.
func WithFormKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.formKey = key
		}
	}
}

// WithEmitEvent makes store→form patches visible on the form's ValueChanges.
func WithEmitEvent(emit bool) Option {
	return func(c *config) {
		c.emitEvent = emit
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHost destroys the plugin together with host, which must implement
// plugins.Lifecycle. New fails naming the missing hook otherwise.
func WithHost(host any) Option {
	return func(c *config) {
		c.host = host
		c.hasHost = true
	}
}
