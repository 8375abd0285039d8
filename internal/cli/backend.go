package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/statekit/internal/adapters/file"
	"github.com/aretw0/statekit/internal/config"
	"github.com/aretw0/statekit/internal/logging"
	"github.com/aretw0/statekit/pkg/adapters/memory"
	"github.com/aretw0/statekit/pkg/adapters/redis"
	"github.com/aretw0/statekit/pkg/persistence/middleware"
	"github.com/aretw0/statekit/pkg/ports"
	"github.com/aretw0/statekit/pkg/session"
)

// Backend is an opened snapshot store plus its release function.
type Backend struct {
	Store   ports.SnapshotStore
	Manager *session.Manager
	Close   func() error
}

// OpenBackend builds the snapshot store selected by p, wrapped with masking
// and encryption when configured. Redis backends also get a distributed
// locker on the same client.
func OpenBackend(p config.Persistence, logger *slog.Logger) (*Backend, error) {
	var (
		st      ports.SnapshotStore
		opts    = []session.Option{session.WithLogger(logger)}
		closeFn = func() error { return nil }
	)
	switch p.Backend {
	case config.BackendMemory:
		st = memory.NewStore()
	case config.BackendFile:
		st = file.New(p.Dir)
	case config.BackendRedis:
		rs := redis.New(p.RedisAddr, p.RedisPassword, p.RedisDB,
			redis.WithPrefix(p.Prefix),
			redis.WithTTL(p.TTL),
		)
		st, closeFn = rs, rs.Close
		opts = append(opts, session.WithLocker(redis.NewLocker(rs.Client(), rs.Prefix())))
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, p.Backend)
	}

	mws, err := middlewares(p)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	st = middleware.Chain(st, mws...)
	return &Backend{Store: st, Manager: session.NewManager(st, opts...), Close: closeFn}, nil
}

// middlewares masks before it encrypts, so decrypted snapshots still hold
// the mask.
func middlewares(p config.Persistence) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(p.Mask) > 0 {
		pii, err := middleware.NewPIIMiddleware(p.Mask)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	active, fallback, err := p.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// NewLogger builds the CLI logger. Output goes to stderr so stdout only
// carries command results.
func NewLogger(cfg config.Config, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level, logging.Options{Output: os.Stderr, JSON: cfg.LogJSON})
}
